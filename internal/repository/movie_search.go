package repository

import (
	"context"
	"strings"

	"github.com/iliyamo/movie-rental/internal/model"
)

// MovieSearchQuery defines filters & pagination for searching movies.
type MovieSearchQuery struct {
	Title    string // substring, case-insensitive
	Genre    string // exact genre name as snapshotted on the movie
	InStock  bool   // only movies with at least one copy on the shelf
	Page     int
	PageSize int
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes s match literally inside a LIKE pattern.
func escapeLike(s string) string { return likeEscaper.Replace(s) }

// Search returns one page of movies matching q, ordered by title, and the
// total number of matches.
func (r *MovieRepo) Search(ctx context.Context, q MovieSearchQuery) ([]model.Movie, int64, error) {
	where := []string{}
	args := []any{}

	if q.Title != "" {
		where = append(where, `LOWER(title) LIKE ? ESCAPE '\\'`)
		args = append(args, "%"+escapeLike(strings.ToLower(q.Title))+"%")
	}
	if q.Genre != "" {
		where = append(where, "genre_name = ?")
		args = append(args, model.NormalizeGenreName(q.Genre))
	}
	if q.InStock {
		where = append(where, "number_in_stock > 0")
	}

	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM movies WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := q.PageSize
	offset := (q.Page - 1) * q.PageSize
	dataSQL := `SELECT ` + movieColumns + ` FROM movies WHERE ` + cond + ` ORDER BY title ASC LIMIT ? OFFSET ?`
	argsData := append(append([]any{}, args...), limit, offset)

	rows, err := r.db.QueryContext(ctx, dataSQL, argsData...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]model.Movie, 0, limit)
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
