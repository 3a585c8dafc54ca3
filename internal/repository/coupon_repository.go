package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fairyhunter13/coupon-marketplace/internal/model"
	"github.com/fairyhunter13/coupon-marketplace/internal/service"
	"github.com/fairyhunter13/coupon-marketplace/pkg/database"
)

// PostgreSQL error codes mapped to domain errors.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgNumericOutOfRange   = "22003"
)

// PoolInterface defines the database operations needed by repositories.
// This allows for easier testing with mocks.
type PoolInterface interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

const couponColumns = `id, company_id, category, title, description, start_date, end_date, amount, price, image, created_at`

// same columns, qualified for joins
const couponColumnsQualified = `c.id, c.company_id, c.category, c.title, c.description, c.start_date, c.end_date, c.amount, c.price, c.image, c.created_at`

// CouponRepository provides data access for coupons using pgx.
type CouponRepository struct {
	pool PoolInterface
}

// NewCouponRepository creates a new CouponRepository with the given pool.
func NewCouponRepository(pool *pgxpool.Pool) *CouponRepository {
	return &CouponRepository{pool: pool}
}

// NewCouponRepositoryWithPool creates a new CouponRepository with a custom pool interface.
// This is primarily used for testing.
func NewCouponRepositoryWithPool(pool PoolInterface) *CouponRepository {
	return &CouponRepository{pool: pool}
}

func scanCoupon(row pgx.Row) (*model.Coupon, error) {
	var c model.Coupon
	err := row.Scan(
		&c.ID,
		&c.CompanyID,
		&c.Category,
		&c.Title,
		&c.Description,
		&c.StartDate,
		&c.EndDate,
		&c.Amount,
		&c.Price,
		&c.Image,
		&c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// collectCoupons drains rows. Returns an empty slice, not nil, when there are none.
func collectCoupons(rows pgx.Rows) ([]model.Coupon, error) {
	defer rows.Close()

	coupons := []model.Coupon{}
	for rows.Next() {
		c, err := scanCoupon(rows)
		if err != nil {
			return nil, fmt.Errorf("scan coupon: %w", err)
		}
		coupons = append(coupons, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate coupon rows: %w", err)
	}
	return coupons, nil
}

// Insert inserts a new coupon and sets its ID and CreatedAt.
// Returns service.ErrCouponTitleExists if the company already has a coupon with this title,
// service.ErrCompanyNotFound if the owner does not exist.
func (r *CouponRepository) Insert(ctx context.Context, coupon *model.Coupon) error {
	query := `INSERT INTO coupons (company_id, category, title, description, start_date, end_date, amount, price, image)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`

	err := r.pool.QueryRow(ctx, query,
		coupon.CompanyID, coupon.Category, coupon.Title, coupon.Description,
		coupon.StartDate, coupon.EndDate, coupon.Amount, coupon.Price, coupon.Image,
	).Scan(&coupon.ID, &coupon.CreatedAt)
	if err != nil {
		switch pgCode(err) {
		case pgUniqueViolation:
			return service.ErrCouponTitleExists
		case pgForeignKeyViolation:
			return service.ErrCompanyNotFound
		case pgNumericOutOfRange:
			return fmt.Errorf("%w: coupon amount or price out of range", service.ErrInvalidRequest)
		}
		return fmt.Errorf("insert coupon: %w", err)
	}
	return nil
}

// GetByID retrieves a coupon by its id.
// Returns nil, nil if the coupon is not found (service layer handles this).
func (r *CouponRepository) GetByID(ctx context.Context, id int64) (*model.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons WHERE id = $1`

	coupon, err := scanCoupon(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get coupon %d: %w", id, err)
	}
	return coupon, nil
}

// ExistsByTitle reports whether the company owns a coupon with the title, ignoring excludeID.
// Pass excludeID 0 when adding.
func (r *CouponRepository) ExistsByTitle(ctx context.Context, companyID int64, title string, excludeID int64) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM coupons WHERE company_id = $1 AND title = $2 AND id <> $3)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, companyID, title, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check coupon title: %w", err)
	}
	return exists, nil
}

// GetCouponForUpdate retrieves a coupon with a row lock (SELECT FOR UPDATE).
// This locks the row until the transaction completes.
// Returns service.ErrCouponNotFound if the coupon doesn't exist.
func (r *CouponRepository) GetCouponForUpdate(ctx context.Context, tx database.TxQuerier, id int64) (*model.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons WHERE id = $1 FOR UPDATE`

	coupon, err := scanCoupon(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrCouponNotFound
		}
		return nil, fmt.Errorf("get coupon for update %d: %w", id, err)
	}
	return coupon, nil
}

// Update overwrites the mutable fields of a locked coupon. ID and owner never change.
// Returns service.ErrCouponTitleExists if the new title collides.
func (r *CouponRepository) Update(ctx context.Context, tx database.TxQuerier, coupon *model.Coupon) error {
	query := `UPDATE coupons
		SET category = $1, title = $2, description = $3, start_date = $4, end_date = $5, amount = $6, price = $7, image = $8
		WHERE id = $9 AND company_id = $10`

	tag, err := tx.Exec(ctx, query,
		coupon.Category, coupon.Title, coupon.Description, coupon.StartDate, coupon.EndDate,
		coupon.Amount, coupon.Price, coupon.Image, coupon.ID, coupon.CompanyID,
	)
	if err != nil {
		switch pgCode(err) {
		case pgUniqueViolation:
			return service.ErrCouponTitleExists
		case pgNumericOutOfRange:
			return fmt.Errorf("%w: coupon amount or price out of range", service.ErrInvalidRequest)
		}
		return fmt.Errorf("update coupon %d: %w", coupon.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return service.ErrCouponNotFound
	}
	return nil
}

// Delete removes a coupon owned by the company. Purchases cascade.
// Returns false if no such coupon exists for the company.
func (r *CouponRepository) Delete(ctx context.Context, companyID, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM coupons WHERE id = $1 AND company_id = $2`, id, companyID)
	if err != nil {
		return false, fmt.Errorf("delete coupon %d: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

// DecrementStock decrements the amount of a coupon by 1.
// Must be called within a transaction after locking the row.
func (r *CouponRepository) DecrementStock(ctx context.Context, tx database.TxQuerier, id int64) error {
	query := `UPDATE coupons SET amount = amount - 1 WHERE id = $1`

	_, err := tx.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("decrement stock for %d: %w", id, err)
	}
	return nil
}

// applyFilter appends the filter predicates and the ordering to a query.
// Max-price listings are ordered by price, everything else by id.
func applyFilter(query string, args []any, filter model.CouponFilter) (string, []any) {
	var sb strings.Builder
	sb.WriteString(query)
	if filter.Category != "" {
		args = append(args, filter.Category)
		sb.WriteString(" AND c.category = $" + strconv.Itoa(len(args)))
	}
	if filter.MaxPrice != nil {
		args = append(args, *filter.MaxPrice)
		sb.WriteString(" AND c.price <= $" + strconv.Itoa(len(args)))
		sb.WriteString(" ORDER BY c.price, c.id")
	} else {
		sb.WriteString(" ORDER BY c.id")
	}
	return sb.String(), args
}

// ListByCompany returns the company's coupons matching the filter.
func (r *CouponRepository) ListByCompany(ctx context.Context, companyID int64, filter model.CouponFilter) ([]model.Coupon, error) {
	query, args := applyFilter(
		`SELECT `+couponColumnsQualified+` FROM coupons c WHERE c.company_id = $1`,
		[]any{companyID}, filter)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list coupons of company %d: %w", companyID, err)
	}
	return collectCoupons(rows)
}

// ListByCustomer returns the coupons the customer purchased matching the filter.
func (r *CouponRepository) ListByCustomer(ctx context.Context, customerID int64, filter model.CouponFilter) ([]model.Coupon, error) {
	query, args := applyFilter(
		`SELECT `+couponColumnsQualified+` FROM coupons c
		JOIN purchases p ON p.coupon_id = c.id
		WHERE p.customer_id = $1`,
		[]any{customerID}, filter)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list coupons of customer %d: %w", customerID, err)
	}
	return collectCoupons(rows)
}

// ListPurchasable returns coupons in stock, not expired on today, and not yet bought by the customer.
func (r *CouponRepository) ListPurchasable(ctx context.Context, customerID int64, today time.Time) ([]model.Coupon, error) {
	query := `SELECT ` + couponColumnsQualified + ` FROM coupons c
		WHERE c.amount > 0 AND c.end_date >= $2
		AND NOT EXISTS (SELECT 1 FROM purchases p WHERE p.coupon_id = c.id AND p.customer_id = $1)
		ORDER BY c.id`

	rows, err := r.pool.Query(ctx, query, customerID, today)
	if err != nil {
		return nil, fmt.Errorf("list purchasable coupons for customer %d: %w", customerID, err)
	}
	return collectCoupons(rows)
}

// ListEndingOn returns purchasable coupons for the customer whose last valid day is day.
func (r *CouponRepository) ListEndingOn(ctx context.Context, customerID int64, day time.Time) ([]model.Coupon, error) {
	query := `SELECT ` + couponColumnsQualified + ` FROM coupons c
		WHERE c.amount > 0 AND c.end_date = $2
		AND NOT EXISTS (SELECT 1 FROM purchases p WHERE p.coupon_id = c.id AND p.customer_id = $1)
		ORDER BY c.id`

	rows, err := r.pool.Query(ctx, query, customerID, day)
	if err != nil {
		return nil, fmt.Errorf("list coupons ending on %s: %w", day.Format(time.DateOnly), err)
	}
	return collectCoupons(rows)
}

// DeleteExpired removes every coupon whose end date is before today and returns how many went.
func (r *CouponRepository) DeleteExpired(ctx context.Context, today time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM coupons WHERE end_date < $1`, today)
	if err != nil {
		return 0, fmt.Errorf("delete expired coupons: %w", err)
	}
	return tag.RowsAffected(), nil
}
