package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fairyhunter13/coupon-marketplace/internal/service"
	"github.com/fairyhunter13/coupon-marketplace/pkg/database"
)

// PurchaseRepository provides data access for purchase records using pgx.
// Records are only ever inserted; they go away with their coupon or customer.
type PurchaseRepository struct {
	pool PoolInterface
}

// NewPurchaseRepository creates a new PurchaseRepository with the given pool.
func NewPurchaseRepository(pool *pgxpool.Pool) *PurchaseRepository {
	return &PurchaseRepository{pool: pool}
}

// NewPurchaseRepositoryWithPool creates a new PurchaseRepository with a custom pool interface.
// This is primarily used for testing.
func NewPurchaseRepositoryWithPool(pool PoolInterface) *PurchaseRepository {
	return &PurchaseRepository{pool: pool}
}

// Exists reports whether the customer already bought the coupon.
func (r *PurchaseRepository) Exists(ctx context.Context, tx database.TxQuerier, customerID, couponID int64) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM purchases WHERE customer_id = $1 AND coupon_id = $2)`

	var exists bool
	if err := tx.QueryRow(ctx, query, customerID, couponID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check purchase: %w", err)
	}
	return exists, nil
}

// Insert inserts a new purchase record within a transaction.
// Returns service.ErrAlreadyPurchased if the customer already holds this coupon,
// service.ErrCustomerNotFound if the customer does not exist.
func (r *PurchaseRepository) Insert(ctx context.Context, tx database.TxQuerier, customerID, couponID int64) error {
	query := `INSERT INTO purchases (customer_id, coupon_id) VALUES ($1, $2)`

	_, err := tx.Exec(ctx, query, customerID, couponID)
	if err != nil {
		switch pgCode(err) {
		case pgUniqueViolation:
			return service.ErrAlreadyPurchased
		case pgForeignKeyViolation:
			return service.ErrCustomerNotFound
		}
		return fmt.Errorf("insert purchase: %w", err)
	}
	return nil
}

// CountByCoupon returns how many customers hold the coupon.
func (r *PurchaseRepository) CountByCoupon(ctx context.Context, couponID int64) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM purchases WHERE coupon_id = $1`, couponID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count purchases of coupon %d: %w", couponID, err)
	}
	return n, nil
}
