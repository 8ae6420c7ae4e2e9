package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/movie-rental/internal/model"
	"github.com/iliyamo/movie-rental/internal/repository"
)

// MovieHandler serves /movies. The genre named in the body is resolved
// to a snapshot of its id and current name.
type MovieHandler struct {
	Movies MovieStore
	Genres GenreStore
}

func NewMovieHandler(m MovieStore, g GenreStore) *MovieHandler {
	return &MovieHandler{Movies: m, Genres: g}
}

type movieReq struct {
	Title           string           `json:"title" validate:"required,min=3,max=255" msg:"Title must be between 3 to 255 characters long"`
	Genre           string           `json:"genre" validate:"required" msg:"Genre is required"`
	NumberInStock   *int             `json:"numberInStock" validate:"required,min=0,max=200" msg:"numberInStock must be a positive integer and maximum of 200"`
	DailyRentalRate *decimal.Decimal `json:"dailyRentalRate" validate:"required" msg:"dailyRentalRate is required"`
}

func (h *MovieHandler) List(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	movies, err := h.Movies.List(ctx)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, movies)
}

func (h *MovieHandler) Get(c echo.Context) error {
	id := c.Param("id")
	if !model.IsValidID(id) {
		return notFound(c)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	m, err := h.Movies.GetByID(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, m)
}

// bindMovie binds and validates the body and resolves its genre.
func (h *MovieHandler) bindMovie(c echo.Context) (*movieReq, model.GenreSnapshot, error) {
	var req movieReq
	if err := c.Bind(&req); err != nil {
		return nil, model.GenreSnapshot{}, badRequest(c, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return nil, model.GenreSnapshot{}, respondError(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	g, err := h.Genres.GetByName(ctx, model.NormalizeGenreName(req.Genre))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, model.GenreSnapshot{}, validationFailed(c, "genre", "Invalid genre")
	}
	if err != nil {
		return nil, model.GenreSnapshot{}, respondError(c, err)
	}
	return &req, model.GenreSnapshot{ID: g.ID, Name: g.Name}, nil
}

func (h *MovieHandler) Create(c echo.Context) error {
	req, genre, err := h.bindMovie(c)
	if req == nil {
		return err
	}
	m, err := model.NewMovie(req.Title, genre, *req.NumberInStock, *req.DailyRentalRate)
	if err != nil {
		return respondError(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.Movies.Create(ctx, m); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, m)
}

// Update replaces title, genre snapshot, stock and rate. Stock written here
// is the shelf count; open rentals are not re-counted.
func (h *MovieHandler) Update(c echo.Context) error {
	id := c.Param("id")
	if !model.IsValidID(id) {
		return notFound(c)
	}
	req, genre, err := h.bindMovie(c)
	if req == nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	m, err := h.Movies.GetByID(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	updated, err := model.NewMovie(req.Title, genre, *req.NumberInStock, *req.DailyRentalRate)
	if err != nil {
		return respondError(c, err)
	}
	m.Title = updated.Title
	m.Genre = updated.Genre
	m.NumberInStock = updated.NumberInStock
	m.DailyRentalRate = updated.DailyRentalRate
	if err := h.Movies.Update(ctx, m); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, m)
}

// Delete removes a movie. Movies still referenced by rentals yield 409.
func (h *MovieHandler) Delete(c echo.Context) error {
	id := c.Param("id")
	if !model.IsValidID(id) {
		return notFound(c)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.Movies.Delete(ctx, id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
