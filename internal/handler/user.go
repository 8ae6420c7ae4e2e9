package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-rental/internal/middleware"
	"github.com/iliyamo/movie-rental/internal/model"
)

// UserHandler lets an authenticated user edit or remove their own account.
type UserHandler struct {
	Users UserStore
}

func NewUserHandler(u UserStore) *UserHandler { return &UserHandler{Users: u} }

type updateUserReq struct {
	Username string `json:"username" validate:"required,min=5,max=255" msg:"username must be between 5 and 255 characters"`
	Email    string `json:"email" validate:"required,email" msg:"Email must be a valid email"`
}

// Update handles PUT /users for the caller.
func (h *UserHandler) Update(c echo.Context) error {
	var req updateUserReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return respondError(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	id := middleware.UserID(c)
	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	u.Username = req.Username
	u.Email = model.NormalizeEmail(req.Email)
	if err := u.Validate(); err != nil {
		return respondError(c, err)
	}
	taken, err := h.Users.ExistsByUsernameOrEmail(ctx, u.Username, u.Email, id)
	if err != nil {
		return respondError(c, err)
	}
	if taken {
		return respondError(c, errUserExists)
	}
	if err := h.Users.Update(ctx, u); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toUserPart(u))
}

// Delete handles DELETE /users for the caller. Refresh tokens cascade.
func (h *UserHandler) Delete(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.Users.Delete(ctx, middleware.UserID(c)); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
