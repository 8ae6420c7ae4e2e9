package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-rental/internal/logger"
	"github.com/iliyamo/movie-rental/internal/service"
)

// requestTimeout bounds every store call made on behalf of a request.
const requestTimeout = 5 * time.Second

func requestContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}

// statusFor maps an error kind to its HTTP status.
func statusFor(kind service.Kind) int {
	switch kind {
	case service.KindValidation:
		return http.StatusUnprocessableEntity
	case service.KindRentalNotFound, service.KindMovieNotFound, service.KindCustomerNotFound, service.KindNotFound:
		return http.StatusNotFound
	case service.KindOutOfStock:
		return http.StatusBadRequest
	case service.KindConflict:
		return http.StatusConflict
	case service.KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as {"error", "kind"[, "field"]}. Server-side
// failures are logged and their details withheld from the client.
func respondError(c echo.Context, err error) error {
	var se *service.Error
	if !errors.As(err, &se) {
		se = service.FromStore(err)
	}
	status := statusFor(se.Kind)
	if status >= http.StatusInternalServerError {
		logger.FromContext(c.Request().Context()).Error("request failed",
			"kind", string(se.Kind), "path", c.Path(), "error", err)
	}
	body := echo.Map{"error": se.Message, "kind": string(se.Kind)}
	if se.Field != "" {
		body["field"] = se.Field
	}
	return c.JSON(status, body)
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": msg, "kind": string(service.KindValidation)})
}

func validationFailed(c echo.Context, field, msg string) error {
	return respondError(c, &service.Error{Kind: service.KindValidation, Message: msg, Field: field})
}

func notFound(c echo.Context) error {
	return respondError(c, &service.Error{Kind: service.KindNotFound, Message: "Not found"})
}
