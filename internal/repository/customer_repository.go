package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/movie-rental/internal/model"
)

const customerColumns = `id, username, email, phone, is_gold, created_at, updated_at`

// CustomerRepo manages persistence for customers.
type CustomerRepo struct {
	db *sql.DB
}

// NewCustomerRepo constructs a CustomerRepo with the given DB handle.
func NewCustomerRepo(db *sql.DB) *CustomerRepo {
	return &CustomerRepo{db: db}
}

func scanCustomer(s rowScanner) (*model.Customer, error) {
	var c model.Customer
	if err := s.Scan(&c.ID, &c.Username, &c.Email, &c.Phone, &c.IsGold, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}
	return &c, nil
}

// Create inserts c. Username and email are unique.
func (r *CustomerRepo) Create(ctx context.Context, c *model.Customer) error {
	now := time.Now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now
	const q = `INSERT INTO customers (` + customerColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q, c.ID, c.Username, c.Email, c.Phone, c.IsGold, c.CreatedAt, c.UpdatedAt)
	return mapMySQLError(err)
}

// GetByID returns the customer or ErrCustomerNotFound.
func (r *CustomerRepo) GetByID(ctx context.Context, id string) (*model.Customer, error) {
	const q = `SELECT ` + customerColumns + ` FROM customers WHERE id = ?`
	return scanCustomer(r.db.QueryRowContext(ctx, q, id))
}

// GetByIDTx is GetByID inside tx. The row is not locked: rentals only need
// the customer to exist, and the foreign key guards against a concurrent
// delete.
func (r *CustomerRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id string) (*model.Customer, error) {
	const q = `SELECT ` + customerColumns + ` FROM customers WHERE id = ?`
	return scanCustomer(tx.QueryRowContext(ctx, q, id))
}

// List returns all customers sorted by username.
func (r *CustomerRepo) List(ctx context.Context) ([]model.Customer, error) {
	const q = `SELECT ` + customerColumns + ` FROM customers ORDER BY username ASC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Customer, 0)
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// ExistsByUsernameOrEmail reports whether another customer (any id other
// than excludeID) already uses username or email.
func (r *CustomerRepo) ExistsByUsernameOrEmail(ctx context.Context, username, email, excludeID string) (bool, error) {
	const q = `SELECT COUNT(1) FROM customers WHERE (username = ? OR email = ?) AND id <> ?`
	var n int
	if err := r.db.QueryRowContext(ctx, q, username, email, excludeID).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// Update overwrites the editable columns of c.
func (r *CustomerRepo) Update(ctx context.Context, c *model.Customer) error {
	c.UpdatedAt = time.Now().UTC()
	const q = `UPDATE customers SET username = ?, email = ?, phone = ?, is_gold = ?, updated_at = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, c.Username, c.Email, c.Phone, c.IsGold, c.UpdatedAt, c.ID)
	if err != nil {
		return mapMySQLError(err)
	}
	return expectOneRow(res, ErrCustomerNotFound)
}

// Delete removes a customer; existing rentals make this ErrConflict.
func (r *CustomerRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM customers WHERE id = ?`, id)
	if err != nil {
		return mapMySQLError(err)
	}
	return expectOneRow(res, ErrCustomerNotFound)
}
