package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-rental/internal/repository"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	maxPage         = 10000
)

// Search handles GET /movies/search?title=&genre=&in_stock=&page=&page_size=.
func (h *MovieHandler) Search(c echo.Context) error {
	inStock, _ := strconv.ParseBool(c.QueryParam("in_stock"))

	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	if page > maxPage {
		page = maxPage
	}
	ps, _ := strconv.Atoi(c.QueryParam("page_size"))
	if ps < 1 {
		ps = defaultPageSize
	}
	if ps > maxPageSize {
		ps = maxPageSize
	}

	q := repository.MovieSearchQuery{
		Title:    strings.TrimSpace(c.QueryParam("title")),
		Genre:    strings.TrimSpace(c.QueryParam("genre")),
		InStock:  inStock,
		Page:     page,
		PageSize: ps,
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	items, total, err := h.Movies.Search(ctx, q)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"data":      items,
		"total":     total,
		"page":      page,
		"page_size": ps,
	})
}
