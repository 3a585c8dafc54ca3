package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fairyhunter13/coupon-marketplace/internal/model"
	"github.com/fairyhunter13/coupon-marketplace/internal/service"
)

const customerColumns = `id, first_name, last_name, email, password_hash, created_at`

// CustomerRepository provides data access for customers using pgx.
type CustomerRepository struct {
	pool PoolInterface
}

// NewCustomerRepository creates a new CustomerRepository with the given pool.
func NewCustomerRepository(pool *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{pool: pool}
}

// NewCustomerRepositoryWithPool creates a new CustomerRepository with a custom pool interface.
// This is primarily used for testing.
func NewCustomerRepositoryWithPool(pool PoolInterface) *CustomerRepository {
	return &CustomerRepository{pool: pool}
}

func scanCustomer(row pgx.Row) (*model.Customer, error) {
	var c model.Customer
	if err := row.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Password, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// Insert inserts a new customer and sets its ID and CreatedAt.
// Returns service.ErrCustomerExists if the email is taken.
func (r *CustomerRepository) Insert(ctx context.Context, customer *model.Customer) error {
	query := `INSERT INTO customers (first_name, last_name, email, password_hash) VALUES ($1, $2, $3, $4) RETURNING id, created_at`

	err := r.pool.QueryRow(ctx, query, customer.FirstName, customer.LastName, customer.Email, customer.Password).
		Scan(&customer.ID, &customer.CreatedAt)
	if err != nil {
		if pgCode(err) == pgUniqueViolation {
			return service.ErrCustomerExists
		}
		return fmt.Errorf("insert customer: %w", err)
	}
	return nil
}

// GetByID retrieves a customer by id.
// Returns nil, nil if the customer is not found.
func (r *CustomerRepository) GetByID(ctx context.Context, id int64) (*model.Customer, error) {
	customer, err := scanCustomer(r.pool.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get customer %d: %w", id, err)
	}
	return customer, nil
}

// GetByEmail retrieves a customer by email.
// Returns nil, nil if the customer is not found.
func (r *CustomerRepository) GetByEmail(ctx context.Context, email string) (*model.Customer, error) {
	customer, err := scanCustomer(r.pool.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE email = $1`, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get customer by email: %w", err)
	}
	return customer, nil
}

// ExistsByEmailExcluding reports whether a customer other than excludeID uses the email.
// Pass excludeID 0 when adding.
func (r *CustomerRepository) ExistsByEmailExcluding(ctx context.Context, email string, excludeID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM customers WHERE email = $1 AND id <> $2)`, email, excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check customer email: %w", err)
	}
	return exists, nil
}

// Update writes every mutable customer field.
// Returns service.ErrCustomerNotFound if no row matched.
func (r *CustomerRepository) Update(ctx context.Context, customer *model.Customer) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE customers SET first_name = $1, last_name = $2, email = $3, password_hash = $4 WHERE id = $5`,
		customer.FirstName, customer.LastName, customer.Email, customer.Password, customer.ID)
	if err != nil {
		if pgCode(err) == pgUniqueViolation {
			return service.ErrCustomerExists
		}
		return fmt.Errorf("update customer %d: %w", customer.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return service.ErrCustomerNotFound
	}
	return nil
}

// Delete removes a customer. Their purchases cascade.
// Returns false if the customer does not exist.
func (r *CustomerRepository) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete customer %d: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

// List returns every customer ordered by id.
func (r *CustomerRepository) List(ctx context.Context) ([]model.Customer, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+customerColumns+` FROM customers ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	customers := []model.Customer{}
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		customers = append(customers, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate customer rows: %w", err)
	}
	return customers, nil
}
