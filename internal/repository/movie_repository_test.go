package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/movie-rental/internal/model"
)

var movieCols = []string{"id", "title", "genre_id", "genre_name", "number_in_stock", "daily_rental_rate", "created_at", "updated_at"}

const movieID = "6f1c3f7e-3a57-4c3e-9a51-2a0f3d1f8b10"

func TestMovieRepo_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("FROM movies WHERE id = ?")).
		WithArgs(movieID).
		WillReturnRows(sqlmock.NewRows(movieCols).
			AddRow(movieID, "alien", "g1", "horror", 4, "2.50", now, now))

	m, err := NewMovieRepo(db).GetByID(context.Background(), movieID)
	require.NoError(t, err)
	assert.Equal(t, "alien", m.Title)
	assert.Equal(t, model.GenreSnapshot{ID: "g1", Name: "horror"}, m.Genre)
	assert.Equal(t, 4, m.NumberInStock)
	assert.True(t, decimal.RequireFromString("2.5").Equal(m.DailyRentalRate))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMovieRepo_GetByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("FROM movies").WillReturnRows(sqlmock.NewRows(movieCols))

	_, err = NewMovieRepo(db).GetByID(context.Background(), movieID)
	assert.ErrorIs(t, err, ErrMovieNotFound)
}

func TestMovieRepo_List_Empty(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("FROM movies ORDER BY title").WillReturnRows(sqlmock.NewRows(movieCols))

	got, err := NewMovieRepo(db).List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestMovieRepo_DecrementStockTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	decrement := regexp.QuoteMeta("SET number_in_stock = number_in_stock - 1") + ".*" + regexp.QuoteMeta("AND number_in_stock > 0")
	mock.ExpectBegin()
	mock.ExpectExec(decrement).WithArgs(sqlmock.AnyArg(), movieID).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(decrement).WithArgs(sqlmock.AnyArg(), movieID).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	repo := NewMovieRepo(db)
	err = RunInTx(context.Background(), db, func(ctx context.Context, tx *sql.Tx) error {
		require.NoError(t, repo.DecrementStockTx(ctx, tx, movieID))
		return repo.DecrementStockTx(ctx, tx, movieID)
	})
	assert.ErrorIs(t, err, ErrOutOfStock)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMovieRepo_IncrementStockTx_MissingMovie(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("SET number_in_stock = number_in_stock + 1")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	repo := NewMovieRepo(db)
	err = RunInTx(context.Background(), db, func(ctx context.Context, tx *sql.Tx) error {
		return repo.IncrementStockTx(ctx, tx, movieID)
	})
	assert.ErrorIs(t, err, ErrMovieNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMovieRepo_Delete_Referenced(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("DELETE FROM movies").WithArgs(movieID).
		WillReturnError(&mysql.MySQLError{Number: 1451, Message: "Cannot delete or update a parent row"})

	err = NewMovieRepo(db).Delete(context.Background(), movieID)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestMovieRepo_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	m, err := model.NewMovie("Alien", model.GenreSnapshot{ID: "g1", Name: "horror"}, 3, decimal.NewFromInt(2))
	require.NoError(t, err)

	mock.ExpectExec("INSERT INTO movies").
		WithArgs(m.ID, "alien", "g1", "horror", 3, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, NewMovieRepo(db).Create(context.Background(), m))
	assert.False(t, m.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMovieRepo_Search(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM movies WHERE LOWER(title) LIKE ? ESCAPE '\\' AND genre_name = ? AND number_in_stock > 0`)).
		WithArgs("%alien%", "horror").
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(3))
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY title ASC LIMIT ? OFFSET ?")).
		WithArgs("%alien%", "horror", 2, 2).
		WillReturnRows(sqlmock.NewRows(movieCols).
			AddRow(movieID, "aliens", "g1", "horror", 1, "1.00", now, now))

	items, total, err := NewMovieRepo(db).Search(context.Background(), MovieSearchQuery{
		Title: "ALIEN", Genre: " Horror ", InStock: true, Page: 2, PageSize: 2,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, items, 1)
	assert.Equal(t, "aliens", items[0].Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMovieRepo_SearchEscapesWildcards(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM movies WHERE LOWER(title) LIKE ?")).
		WithArgs(`%100\%\_off\\%`).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY title ASC LIMIT ? OFFSET ?")).
		WithArgs(`%100\%\_off\\%`, 20, 0).
		WillReturnRows(sqlmock.NewRows(movieCols))

	items, total, err := NewMovieRepo(db).Search(context.Background(), MovieSearchQuery{
		Title: `100%_OFF\`, Page: 1, PageSize: 20,
	})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, items)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, "plain", escapeLike("plain"))
	assert.Equal(t, `a\%b\_c\\d`, escapeLike(`a%b_c\d`))
}
