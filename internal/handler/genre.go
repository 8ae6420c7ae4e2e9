package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-rental/internal/model"
)

// GenreHandler serves /genres.
type GenreHandler struct {
	Genres GenreStore
}

func NewGenreHandler(g GenreStore) *GenreHandler { return &GenreHandler{Genres: g} }

type genreReq struct {
	Name string `json:"name" validate:"required,max=255" msg:"Invalid name"`
}

func (h *GenreHandler) List(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	genres, err := h.Genres.List(ctx)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, genres)
}

func (h *GenreHandler) Get(c echo.Context) error {
	id := c.Param("id")
	if !model.IsValidID(id) {
		return notFound(c)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	g, err := h.Genres.GetByID(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, g)
}

// Create handles POST /genres. Names are unique after lower-casing.
func (h *GenreHandler) Create(c echo.Context) error {
	var req genreReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return respondError(c, err)
	}
	g, err := model.NewGenre(req.Name)
	if err != nil {
		return respondError(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.Genres.Create(ctx, g); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, g)
}

// Update renames a genre. Movies keep the name they were saved with.
func (h *GenreHandler) Update(c echo.Context) error {
	id := c.Param("id")
	if !model.IsValidID(id) {
		return notFound(c)
	}
	var req genreReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return respondError(c, err)
	}
	renamed, err := model.NewGenre(req.Name)
	if err != nil {
		return respondError(c, err)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	g, err := h.Genres.GetByID(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	g.Name = renamed.Name
	if err := h.Genres.Rename(ctx, g); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, g)
}

func (h *GenreHandler) Delete(c echo.Context) error {
	id := c.Param("id")
	if !model.IsValidID(id) {
		return notFound(c)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.Genres.Delete(ctx, id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
