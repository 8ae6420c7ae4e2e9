package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-rental/internal/model"
	"github.com/iliyamo/movie-rental/internal/service"
)

// CustomerHandler serves /customers.
type CustomerHandler struct {
	Customers CustomerStore
	Rentals   CustomerRentals
}

func NewCustomerHandler(cs CustomerStore, rs CustomerRentals) *CustomerHandler {
	return &CustomerHandler{Customers: cs, Rentals: rs}
}

type customerReq struct {
	Username string  `json:"username" validate:"required,min=3,max=255" msg:"username must be at least three characters long"`
	Email    string  `json:"email" validate:"required,email" msg:"email must be a valid email address"`
	Phone    *string `json:"phone" validate:"omitempty,min=9" msg:"Phone must be at least 9 characters"`
	IsGold   bool    `json:"isGold"`
}

type customerResp struct {
	*model.Customer
	Rentals []model.RentalDetail `json:"rentals"`
}

var errCustomerExists = &service.Error{Kind: service.KindConflict, Message: "Customer already exists"}

func (h *CustomerHandler) List(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	customers, err := h.Customers.List(ctx)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, customers)
}

// Get returns one customer together with their rentals.
func (h *CustomerHandler) Get(c echo.Context) error {
	id := c.Param("id")
	if !model.IsValidID(id) {
		return respondError(c, &service.Error{Kind: service.KindCustomerNotFound, Message: "Customer not found"})
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	cust, err := h.Customers.GetByID(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	rentals, err := h.Rentals.ListDetailsByCustomer(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, customerResp{Customer: cust, Rentals: rentals})
}

func (h *CustomerHandler) Create(c echo.Context) error {
	var req customerReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return respondError(c, err)
	}
	cust, err := model.NewCustomer(req.Username, req.Email, req.Phone, req.IsGold)
	if err != nil {
		return respondError(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	taken, err := h.Customers.ExistsByUsernameOrEmail(ctx, cust.Username, cust.Email, "")
	if err != nil {
		return respondError(c, err)
	}
	if taken {
		return respondError(c, errCustomerExists)
	}
	if err := h.Customers.Create(ctx, cust); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, cust)
}

func (h *CustomerHandler) Update(c echo.Context) error {
	id := c.Param("id")
	if !model.IsValidID(id) {
		return respondError(c, &service.Error{Kind: service.KindCustomerNotFound, Message: "Customer not found"})
	}
	var req customerReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return respondError(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	cust, err := h.Customers.GetByID(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	cust.Username = req.Username
	cust.Email = model.NormalizeEmail(req.Email)
	cust.Phone = req.Phone
	cust.IsGold = req.IsGold
	if err := cust.Validate(); err != nil {
		return respondError(c, err)
	}
	taken, err := h.Customers.ExistsByUsernameOrEmail(ctx, cust.Username, cust.Email, id)
	if err != nil {
		return respondError(c, err)
	}
	if taken {
		return respondError(c, errCustomerExists)
	}
	if err := h.Customers.Update(ctx, cust); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, cust)
}

// Delete removes a customer. Customers with rentals on record yield 409.
func (h *CustomerHandler) Delete(c echo.Context) error {
	id := c.Param("id")
	if !model.IsValidID(id) {
		return respondError(c, &service.Error{Kind: service.KindCustomerNotFound, Message: "Customer not found"})
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.Customers.Delete(ctx, id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
