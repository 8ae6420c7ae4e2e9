package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/movie-rental/internal/model"
)

// RentalLedger is the part of service.RentalLedger the HTTP layer uses.
type RentalLedger interface {
	CreateRental(ctx context.Context, customerID, movieID string, dateOut *time.Time) (*model.Rental, error)
	AmendRental(ctx context.Context, id string, patch model.RentalPatch) (*model.Rental, error)
	DeleteRental(ctx context.Context, id string) error
	ListRentals(ctx context.Context) ([]model.RentalDetail, error)
	GetRental(ctx context.Context, id string) (*model.RentalDetail, error)
}

// RentalHandler serves /rentals.
type RentalHandler struct {
	Ledger RentalLedger
}

func NewRentalHandler(l RentalLedger) *RentalHandler { return &RentalHandler{Ledger: l} }

type createRentalReq struct {
	CustomerID string  `json:"customerId" validate:"required,uuid" msg:"Invalid customer ID"`
	MovieID    string  `json:"movieId" validate:"required,uuid" msg:"Invalid movie ID"`
	DateOut    *string `json:"dateOut" validate:"omitempty,date" msg:"Invalid date"`
}

type updateRentalReq struct {
	CustomerID   *string          `json:"customerId" validate:"omitempty,uuid" msg:"Invalid customer ID"`
	MovieID      *string          `json:"movieId" validate:"omitempty,uuid" msg:"Invalid movie ID"`
	DateOut      *string          `json:"dateOut" validate:"omitempty,date" msg:"Invalid date"`
	DateReturned *string          `json:"dateReturned" validate:"omitempty,date" msg:"Invalid date"`
	RentalFee    *decimal.Decimal `json:"rentalFee"`
}

func normalizeIDPtr(id *string) {
	if id != nil {
		*id = model.NormalizeID(*id)
	}
}

// optionalDate parses a validated optional date field.
func optionalDate(s *string) *time.Time {
	if s == nil {
		return nil
	}
	t, err := parseDate(*s)
	if err != nil {
		return nil
	}
	return &t
}

// List handles GET /rentals.
func (h *RentalHandler) List(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	rentals, err := h.Ledger.ListRentals(ctx)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, rentals)
}

// Get handles GET /rentals/:id.
func (h *RentalHandler) Get(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	rental, err := h.Ledger.GetRental(ctx, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, rental)
}

// Create handles POST /rentals.
func (h *RentalHandler) Create(c echo.Context) error {
	var req createRentalReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	req.CustomerID, req.MovieID = model.NormalizeID(req.CustomerID), model.NormalizeID(req.MovieID)
	if err := c.Validate(&req); err != nil {
		return respondError(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	rental, err := h.Ledger.CreateRental(ctx, req.CustomerID, req.MovieID, optionalDate(req.DateOut))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, rental)
}

// Update handles PUT /rentals/:id. Absent fields are left unchanged.
func (h *RentalHandler) Update(c echo.Context) error {
	var req updateRentalReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	normalizeIDPtr(req.CustomerID)
	normalizeIDPtr(req.MovieID)
	if err := c.Validate(&req); err != nil {
		return respondError(c, err)
	}
	if req.RentalFee != nil {
		if err := model.ValidateRentalFee(*req.RentalFee); err != nil {
			return respondError(c, err)
		}
	}

	patch := model.RentalPatch{
		CustomerID:   req.CustomerID,
		MovieID:      req.MovieID,
		DateOut:      optionalDate(req.DateOut),
		DateReturned: optionalDate(req.DateReturned),
		RentalFee:    req.RentalFee,
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	rental, err := h.Ledger.AmendRental(ctx, c.Param("id"), patch)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, rental)
}

// Delete handles DELETE /rentals/:id.
func (h *RentalHandler) Delete(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.Ledger.DeleteRental(ctx, c.Param("id")); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
