package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/movie-rental/internal/model"
)

// GenreRepo manages persistence for genres.
type GenreRepo struct {
	db *sql.DB
}

// NewGenreRepo constructs a GenreRepo with the given DB handle.
func NewGenreRepo(db *sql.DB) *GenreRepo {
	return &GenreRepo{db: db}
}

func scanGenre(s rowScanner) (*model.Genre, error) {
	var g model.Genre
	if err := s.Scan(&g.ID, &g.Name, &g.CreatedAt, &g.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGenreNotFound
		}
		return nil, err
	}
	return &g, nil
}

// Create inserts g; a taken name yields ErrDuplicate.
func (r *GenreRepo) Create(ctx context.Context, g *model.Genre) error {
	now := time.Now().UTC()
	g.CreatedAt, g.UpdatedAt = now, now
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO genres (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		g.ID, g.Name, g.CreatedAt, g.UpdatedAt)
	return mapMySQLError(err)
}

// GetByID returns the genre or ErrGenreNotFound.
func (r *GenreRepo) GetByID(ctx context.Context, id string) (*model.Genre, error) {
	return scanGenre(r.db.QueryRowContext(ctx,
		`SELECT id, name, created_at, updated_at FROM genres WHERE id = ?`, id))
}

// GetByName looks a genre up by its normalized name.
func (r *GenreRepo) GetByName(ctx context.Context, name string) (*model.Genre, error) {
	return scanGenre(r.db.QueryRowContext(ctx,
		`SELECT id, name, created_at, updated_at FROM genres WHERE name = ? LIMIT 1`,
		model.NormalizeGenreName(name)))
}

// List returns all genres sorted by name.
func (r *GenreRepo) List(ctx context.Context) ([]model.Genre, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, created_at, updated_at FROM genres ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Genre, 0)
	for rows.Next() {
		g, err := scanGenre(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *g)
	}
	return out, rows.Err()
}

// Rename changes the genre name. Movies keep the snapshot taken when they
// were last saved.
func (r *GenreRepo) Rename(ctx context.Context, g *model.Genre) error {
	g.UpdatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `UPDATE genres SET name = ?, updated_at = ? WHERE id = ?`,
		g.Name, g.UpdatedAt, g.ID)
	if err != nil {
		return mapMySQLError(err)
	}
	return expectOneRow(res, ErrGenreNotFound)
}

// Delete removes a genre.
func (r *GenreRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM genres WHERE id = ?`, id)
	if err != nil {
		return mapMySQLError(err)
	}
	return expectOneRow(res, ErrGenreNotFound)
}
