package handler

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/movie-rental/internal/model"
	"github.com/iliyamo/movie-rental/internal/repository"
)

// fakeGenres and fakeMovies are map-backed stores for handler tests.
type fakeGenres struct{ byID map[string]*model.Genre }

func (f *fakeGenres) Create(_ context.Context, g *model.Genre) error {
	for _, x := range f.byID {
		if x.Name == g.Name {
			return repository.ErrDuplicate
		}
	}
	f.byID[g.ID] = g
	return nil
}

func (f *fakeGenres) GetByID(_ context.Context, id string) (*model.Genre, error) {
	if g, ok := f.byID[id]; ok {
		return g, nil
	}
	return nil, repository.ErrGenreNotFound
}

func (f *fakeGenres) GetByName(_ context.Context, name string) (*model.Genre, error) {
	for _, g := range f.byID {
		if g.Name == name {
			return g, nil
		}
	}
	return nil, repository.ErrGenreNotFound
}

func (f *fakeGenres) List(context.Context) ([]model.Genre, error) {
	out := []model.Genre{}
	for _, g := range f.byID {
		out = append(out, *g)
	}
	return out, nil
}

func (f *fakeGenres) Rename(_ context.Context, g *model.Genre) error {
	f.byID[g.ID] = g
	return nil
}

func (f *fakeGenres) Delete(_ context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return repository.ErrGenreNotFound
	}
	delete(f.byID, id)
	return nil
}

type fakeMovies struct {
	byID       map[string]*model.Movie
	lastSearch repository.MovieSearchQuery
}

func (f *fakeMovies) Create(_ context.Context, m *model.Movie) error { f.byID[m.ID] = m; return nil }

func (f *fakeMovies) GetByID(_ context.Context, id string) (*model.Movie, error) {
	if m, ok := f.byID[id]; ok {
		return m, nil
	}
	return nil, repository.ErrMovieNotFound
}

func (f *fakeMovies) List(context.Context) ([]model.Movie, error) {
	out := []model.Movie{}
	for _, m := range f.byID {
		out = append(out, *m)
	}
	return out, nil
}

func (f *fakeMovies) Search(_ context.Context, q repository.MovieSearchQuery) ([]model.Movie, int64, error) {
	f.lastSearch = q
	out := []model.Movie{}
	for _, m := range f.byID {
		if q.InStock && m.NumberInStock == 0 {
			continue
		}
		if q.Title != "" && !strings.Contains(m.Title, strings.ToLower(q.Title)) {
			continue
		}
		out = append(out, *m)
	}
	return out, int64(len(out)), nil
}

func (f *fakeMovies) Update(_ context.Context, m *model.Movie) error { f.byID[m.ID] = m; return nil }

func (f *fakeMovies) Delete(_ context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return repository.ErrMovieNotFound
	}
	return repository.ErrConflict
}

func catalogServer(t *testing.T) (*echo.Echo, *fakeGenres, *fakeMovies) {
	t.Helper()
	genres := &fakeGenres{byID: map[string]*model.Genre{}}
	movies := &fakeMovies{byID: map[string]*model.Movie{}}
	g, err := model.NewGenre("Comedy")
	require.NoError(t, err)
	genres.byID[g.ID] = g

	e := newTestEcho()
	gh := NewGenreHandler(genres)
	mh := NewMovieHandler(movies, genres)
	e.POST("/genres", gh.Create)
	e.GET("/genres/:id", gh.Get)
	e.PUT("/genres/:id", gh.Update)
	e.POST("/movies", mh.Create)
	e.GET("/movies/search", mh.Search)
	e.GET("/movies/:id", mh.Get)
	e.PUT("/movies/:id", mh.Update)
	e.DELETE("/movies/:id", mh.Delete)
	return e, genres, movies
}

func TestGenreCreate(t *testing.T) {
	e, _, _ := catalogServer(t)

	rec := do(e, http.MethodPost, "/genres", `{"name":"  Drama "}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"drama"`)

	rec = do(e, http.MethodPost, "/genres", `{"name":"COMEDY"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(e, http.MethodPost, "/genres", `{}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.JSONEq(t, `{"error":"Invalid name","kind":"validation_error","field":"name"}`, rec.Body.String())
}

func TestGenreGet_MalformedID(t *testing.T) {
	e, _, _ := catalogServer(t)
	rec := do(e, http.MethodGet, "/genres/123", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMovieCreate_ResolvesGenreSnapshot(t *testing.T) {
	e, genres, movies := catalogServer(t)

	rec := do(e, http.MethodPost, "/movies",
		`{"title":"Airplane!","genre":"Comedy","numberInStock":3,"dailyRentalRate":"2.5"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Len(t, movies.byID, 1)

	var comedy *model.Genre
	for _, g := range genres.byID {
		comedy = g
	}
	for _, m := range movies.byID {
		assert.Equal(t, model.GenreSnapshot{ID: comedy.ID, Name: "comedy"}, m.Genre)
		assert.Equal(t, 3, m.NumberInStock)
		assert.True(t, m.DailyRentalRate.Equal(decimal.RequireFromString("2.5")))
	}
}

func TestMovieCreate_Validation(t *testing.T) {
	e, _, movies := catalogServer(t)

	rec := do(e, http.MethodPost, "/movies",
		`{"title":"Heat","genre":"western","numberInStock":1,"dailyRentalRate":1}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.JSONEq(t, `{"error":"Invalid genre","kind":"validation_error","field":"genre"}`, rec.Body.String())

	rec = do(e, http.MethodPost, "/movies",
		`{"title":"Heat","genre":"comedy","numberInStock":201,"dailyRentalRate":1}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), `"field":"numberInStock"`)

	rec = do(e, http.MethodPost, "/movies",
		`{"title":"Heat","genre":"comedy","numberInStock":1,"dailyRentalRate":51}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), `"field":"dailyRentalRate"`)

	assert.Empty(t, movies.byID)
}

func TestGenreRename_LeavesMovieSnapshot(t *testing.T) {
	e, genres, movies := catalogServer(t)
	rec := do(e, http.MethodPost, "/movies",
		`{"title":"Airplane!","genre":"comedy","numberInStock":1,"dailyRentalRate":1}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	for id := range genres.byID {
		rec = do(e, http.MethodPut, "/genres/"+id, `{"name":"Slapstick"}`)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	for _, m := range movies.byID {
		assert.Equal(t, "comedy", m.Genre.Name)
	}
}

func TestMovieDelete(t *testing.T) {
	e, _, movies := catalogServer(t)
	m, err := model.NewMovie("Alien", model.GenreSnapshot{ID: model.NewID(), Name: "horror"}, 1, decimal.NewFromInt(1))
	require.NoError(t, err)
	movies.byID[m.ID] = m

	rec := do(e, http.MethodDelete, "/movies/"+model.NewID(), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"kind":"movie_not_found"`)

	rec = do(e, http.MethodDelete, "/movies/"+m.ID, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestMovieSearch(t *testing.T) {
	e, _, movies := catalogServer(t)
	for _, tc := range []struct {
		title string
		stock int
	}{{"alien", 0}, {"aliens", 2}, {"heat", 1}} {
		m, err := model.NewMovie(tc.title, model.GenreSnapshot{ID: model.NewID(), Name: "x"}, tc.stock, decimal.NewFromInt(1))
		require.NoError(t, err)
		movies.byID[m.ID] = m
	}

	rec := do(e, http.MethodGet, "/movies/search?title=ALIEN&in_stock=true&page_size=500", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total":1`)
	assert.Contains(t, rec.Body.String(), `"page_size":100`)
	assert.Contains(t, rec.Body.String(), `"title":"aliens"`)
}

func TestMovieSearch_PageCapped(t *testing.T) {
	e, _, movies := catalogServer(t)

	rec := do(e, http.MethodGet, "/movies/search?page=99999999999&page_size=100", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, maxPage, movies.lastSearch.Page)
	assert.Equal(t, 100, movies.lastSearch.PageSize)
	assert.Contains(t, rec.Body.String(), `"page":10000`)
}
