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

const companyColumns = `id, name, email, password_hash, created_at`

// CompanyRepository provides data access for companies using pgx.
type CompanyRepository struct {
	pool PoolInterface
}

// NewCompanyRepository creates a new CompanyRepository with the given pool.
func NewCompanyRepository(pool *pgxpool.Pool) *CompanyRepository {
	return &CompanyRepository{pool: pool}
}

// NewCompanyRepositoryWithPool creates a new CompanyRepository with a custom pool interface.
// This is primarily used for testing.
func NewCompanyRepositoryWithPool(pool PoolInterface) *CompanyRepository {
	return &CompanyRepository{pool: pool}
}

func scanCompany(row pgx.Row) (*model.Company, error) {
	var c model.Company
	if err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Password, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// Insert inserts a new company and sets its ID and CreatedAt.
// Returns service.ErrCompanyExists if the name or email is taken.
func (r *CompanyRepository) Insert(ctx context.Context, company *model.Company) error {
	query := `INSERT INTO companies (name, email, password_hash) VALUES ($1, $2, $3) RETURNING id, created_at`

	err := r.pool.QueryRow(ctx, query, company.Name, company.Email, company.Password).
		Scan(&company.ID, &company.CreatedAt)
	if err != nil {
		if pgCode(err) == pgUniqueViolation {
			return service.ErrCompanyExists
		}
		return fmt.Errorf("insert company: %w", err)
	}
	return nil
}

// GetByID retrieves a company by id.
// Returns nil, nil if the company is not found.
func (r *CompanyRepository) GetByID(ctx context.Context, id int64) (*model.Company, error) {
	company, err := scanCompany(r.pool.QueryRow(ctx, `SELECT `+companyColumns+` FROM companies WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get company %d: %w", id, err)
	}
	return company, nil
}

// GetByEmail retrieves a company by email.
// Returns nil, nil if the company is not found.
func (r *CompanyRepository) GetByEmail(ctx context.Context, email string) (*model.Company, error) {
	company, err := scanCompany(r.pool.QueryRow(ctx, `SELECT `+companyColumns+` FROM companies WHERE email = $1`, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get company by email: %w", err)
	}
	return company, nil
}

// ExistsByNameOrEmail reports whether any company already uses the name or the email.
func (r *CompanyRepository) ExistsByNameOrEmail(ctx context.Context, name, email string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM companies WHERE name = $1 OR email = $2)`, name, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check company name or email: %w", err)
	}
	return exists, nil
}

// ExistsByEmailExcluding reports whether a company other than excludeID uses the email.
func (r *CompanyRepository) ExistsByEmailExcluding(ctx context.Context, email string, excludeID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM companies WHERE email = $1 AND id <> $2)`, email, excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check company email: %w", err)
	}
	return exists, nil
}

// Update writes the email and password hash. The name is never changed.
// Returns service.ErrCompanyNotFound if no row matched.
func (r *CompanyRepository) Update(ctx context.Context, company *model.Company) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE companies SET email = $1, password_hash = $2 WHERE id = $3`,
		company.Email, company.Password, company.ID)
	if err != nil {
		if pgCode(err) == pgUniqueViolation {
			return service.ErrCompanyExists
		}
		return fmt.Errorf("update company %d: %w", company.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return service.ErrCompanyNotFound
	}
	return nil
}

// Delete removes a company. Its coupons and their purchases cascade.
// Returns false if the company does not exist.
func (r *CompanyRepository) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM companies WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete company %d: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

// List returns every company ordered by id.
func (r *CompanyRepository) List(ctx context.Context) ([]model.Company, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+companyColumns+` FROM companies ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	defer rows.Close()

	companies := []model.Company{}
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, fmt.Errorf("scan company: %w", err)
		}
		companies = append(companies, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate company rows: %w", err)
	}
	return companies, nil
}
