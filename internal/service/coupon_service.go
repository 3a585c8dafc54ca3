package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/coupon-marketplace/internal/metrics"
	"github.com/fairyhunter13/coupon-marketplace/internal/model"
	"github.com/fairyhunter13/coupon-marketplace/pkg/database"
)

// CouponRepositoryInterface defines the interface for coupon data access.
type CouponRepositoryInterface interface {
	Insert(ctx context.Context, coupon *model.Coupon) error
	GetByID(ctx context.Context, id int64) (*model.Coupon, error)
	ExistsByTitle(ctx context.Context, companyID int64, title string, excludeID int64) (bool, error)
	GetCouponForUpdate(ctx context.Context, tx database.TxQuerier, id int64) (*model.Coupon, error)
	Update(ctx context.Context, tx database.TxQuerier, coupon *model.Coupon) error
	Delete(ctx context.Context, companyID, id int64) (bool, error)
	DecrementStock(ctx context.Context, tx database.TxQuerier, id int64) error
	ListByCompany(ctx context.Context, companyID int64, filter model.CouponFilter) ([]model.Coupon, error)
	ListByCustomer(ctx context.Context, customerID int64, filter model.CouponFilter) ([]model.Coupon, error)
	ListPurchasable(ctx context.Context, customerID int64, today time.Time) ([]model.Coupon, error)
	ListEndingOn(ctx context.Context, customerID int64, day time.Time) ([]model.Coupon, error)
}

// PurchaseRepositoryInterface defines the interface for purchase record data access.
type PurchaseRepositoryInterface interface {
	Exists(ctx context.Context, tx database.TxQuerier, customerID, couponID int64) (bool, error)
	Insert(ctx context.Context, tx database.TxQuerier, customerID, couponID int64) error
}

// ImageUploader stores a coupon image and returns its URL. It never fails.
type ImageUploader interface {
	Upload(ctx context.Context, file model.ImageFile) string
}

// TxBeginner defines the interface for beginning transactions.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// CouponService provides business logic for coupon inventory and purchases.
type CouponService struct {
	pool         TxBeginner
	couponRepo   CouponRepositoryInterface
	purchaseRepo PurchaseRepositoryInterface
	images       ImageUploader
	now          func() time.Time
}

// NewCouponService creates a new CouponService with the given pool and repositories.
func NewCouponService(pool *pgxpool.Pool, couponRepo CouponRepositoryInterface, purchaseRepo PurchaseRepositoryInterface, images ImageUploader) *CouponService {
	return NewCouponServiceWithTxBeginner(pool, couponRepo, purchaseRepo, images)
}

// NewCouponServiceWithTxBeginner creates a CouponService with a custom TxBeginner.
// Primarily used for testing.
func NewCouponServiceWithTxBeginner(pool TxBeginner, couponRepo CouponRepositoryInterface, purchaseRepo PurchaseRepositoryInterface, images ImageUploader) *CouponService {
	return &CouponService{
		pool:         pool,
		couponRepo:   couponRepo,
		purchaseRepo: purchaseRepo,
		images:       images,
		now:          time.Now,
	}
}

func (s *CouponService) today() time.Time {
	return model.DateOf(s.now())
}

// imageURL uploads the draft's file if it has one, otherwise returns the given URL.
func (s *CouponService) imageURL(ctx context.Context, d *model.CouponDraft, current string) string {
	if d.ImageFile != nil && s.images != nil {
		return s.images.Upload(ctx, *d.ImageFile)
	}
	if d.Image != nil {
		return *d.Image
	}
	return current
}

// AddCoupon creates a coupon owned by the company.
// Returns:
//   - ErrInvalidRequest if the owner or a required field is missing, or the dates are inverted
//   - ErrCouponTitleExists if the company already has a coupon with the title
func (s *CouponService) AddCoupon(ctx context.Context, companyID int64, d *model.CouponDraft) (*model.Coupon, error) {
	if companyID <= 0 || d == nil {
		return nil, ErrInvalidRequest
	}
	if d.Category == nil || d.Title == nil || d.StartDate == nil || d.EndDate == nil || d.Amount == nil || d.Price == nil {
		return nil, fmt.Errorf("%w: category, title, startDate, endDate, amount and price are required", ErrInvalidRequest)
	}

	coupon := &model.Coupon{
		CompanyID: companyID,
		Category:  *d.Category,
		Title:     *d.Title,
		StartDate: *d.StartDate,
		EndDate:   *d.EndDate,
		Amount:    *d.Amount,
		Price:     *d.Price,
	}
	if d.Description != nil {
		coupon.Description = *d.Description
	}
	if err := checkCoupon(coupon); err != nil {
		return nil, err
	}

	exists, err := s.couponRepo.ExistsByTitle(ctx, companyID, coupon.Title, 0)
	if err != nil {
		return nil, fmt.Errorf("check title: %w", err)
	}
	if exists {
		return nil, ErrCouponTitleExists
	}

	coupon.Image = s.imageURL(ctx, d, "")

	if err := s.couponRepo.Insert(ctx, coupon); err != nil {
		return nil, err
	}
	return coupon, nil
}

func checkCoupon(c *model.Coupon) error {
	if c.EndDate.Before(c.StartDate) {
		return fmt.Errorf("%w: endDate is before startDate", ErrInvalidRequest)
	}
	if c.Amount < 0 || c.Price < 0 {
		return fmt.Errorf("%w: amount and price must not be negative", ErrInvalidRequest)
	}
	return nil
}

// UpdateCoupon overwrites the fields set in the draft. ID and owner never change.
// Returns:
//   - ErrInvalidRequest if the draft has no id
//   - ErrCouponNotFound if the coupon does not exist or belongs to another company
//   - ErrCouponTitleExists if the new title collides with another coupon of the owner
func (s *CouponService) UpdateCoupon(ctx context.Context, companyID int64, d *model.CouponDraft) (*model.Coupon, error) {
	if companyID <= 0 || d == nil || d.ID <= 0 {
		return nil, ErrInvalidRequest
	}

	// upload outside the transaction so the row lock is not held across the call,
	// and only for a coupon the company owns
	var uploaded *string
	if d.ImageFile != nil {
		if _, err := s.GetCompanyCoupon(ctx, companyID, d.ID); err != nil {
			return nil, err
		}
		url := s.imageURL(ctx, d, "")
		uploaded = &url
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }() // Safe: no-op if committed

	coupon, err := s.couponRepo.GetCouponForUpdate(ctx, tx, d.ID)
	if err != nil {
		if errors.Is(err, ErrCouponNotFound) {
			return nil, ErrCouponNotFound
		}
		return nil, fmt.Errorf("get coupon for update: %w", err)
	}
	if coupon.CompanyID != companyID {
		return nil, ErrCouponNotFound
	}

	if d.Title != nil && *d.Title != coupon.Title {
		exists, err := s.couponRepo.ExistsByTitle(ctx, companyID, *d.Title, coupon.ID)
		if err != nil {
			return nil, fmt.Errorf("check title: %w", err)
		}
		if exists {
			return nil, ErrCouponTitleExists
		}
	}

	applyDraft(coupon, d)
	if uploaded != nil {
		coupon.Image = *uploaded
	}
	if err := checkCoupon(coupon); err != nil {
		return nil, err
	}

	if err := s.couponRepo.Update(ctx, tx, coupon); err != nil {
		if errors.Is(err, ErrCouponTitleExists) || errors.Is(err, ErrCouponNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update coupon: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return coupon, nil
}

func applyDraft(c *model.Coupon, d *model.CouponDraft) {
	if d.Category != nil {
		c.Category = *d.Category
	}
	if d.Title != nil {
		c.Title = *d.Title
	}
	if d.Description != nil {
		c.Description = *d.Description
	}
	if d.StartDate != nil {
		c.StartDate = *d.StartDate
	}
	if d.EndDate != nil {
		c.EndDate = *d.EndDate
	}
	if d.Amount != nil {
		c.Amount = *d.Amount
	}
	if d.Price != nil {
		c.Price = *d.Price
	}
	if d.Image != nil {
		c.Image = *d.Image
	}
}

// DeleteCoupon removes a coupon owned by the company. Its purchase records go with it.
// Returns ErrCouponNotFound if the coupon does not exist or belongs to another company.
func (s *CouponService) DeleteCoupon(ctx context.Context, companyID, couponID int64) error {
	if companyID <= 0 || couponID <= 0 {
		return ErrInvalidRequest
	}
	deleted, err := s.couponRepo.Delete(ctx, companyID, couponID)
	if err != nil {
		return fmt.Errorf("delete coupon: %w", err)
	}
	if !deleted {
		return ErrCouponNotFound
	}
	return nil
}

// GetCoupon retrieves any coupon by id.
// Returns ErrCouponNotFound if the coupon doesn't exist.
func (s *CouponService) GetCoupon(ctx context.Context, couponID int64) (*model.Coupon, error) {
	if couponID <= 0 {
		return nil, ErrInvalidRequest
	}
	coupon, err := s.couponRepo.GetByID(ctx, couponID)
	if err != nil {
		return nil, fmt.Errorf("get coupon: %w", err)
	}
	if coupon == nil {
		return nil, ErrCouponNotFound
	}
	return coupon, nil
}

// GetCompanyCoupon retrieves a coupon only if the company owns it.
func (s *CouponService) GetCompanyCoupon(ctx context.Context, companyID, couponID int64) (*model.Coupon, error) {
	coupon, err := s.GetCoupon(ctx, couponID)
	if err != nil {
		return nil, err
	}
	if coupon.CompanyID != companyID {
		return nil, ErrCouponNotFound
	}
	return coupon, nil
}

// Purchase atomically buys one unit of a coupon for a customer.
// Uses SELECT FOR UPDATE to lock the coupon row during the transaction,
// so concurrent purchases of the same coupon are serialised.
// Returns:
//   - ErrCouponNotFound if the coupon doesn't exist
//   - ErrAlreadyPurchased if the customer already holds this coupon
//   - ErrCouponUnavailable if the coupon is sold out or expired
//   - ErrCustomerNotFound if the customer doesn't exist
func (s *CouponService) Purchase(ctx context.Context, customerID, couponID int64) (*model.Coupon, error) {
	if customerID <= 0 || couponID <= 0 {
		return nil, ErrInvalidRequest
	}

	start := time.Now()
	status := "failed"
	defer func() {
		metrics.RecordPurchaseDuration(status, time.Since(start).Seconds())
	}()

	coupon, err := s.purchase(ctx, customerID, couponID)
	switch {
	case err == nil:
		status = "success"
		log.Info().Int64("customer_id", customerID).Int64("coupon_id", couponID).Msg("Coupon purchased")
	case errors.Is(err, ErrNotFound) || errors.Is(err, ErrNotUnique):
		status = "rejected"
	}
	return coupon, err
}

func (s *CouponService) purchase(ctx context.Context, customerID, couponID int64) (*model.Coupon, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }() // Safe: no-op if committed

	// 1. Lock the coupon row (SELECT FOR UPDATE)
	coupon, err := s.couponRepo.GetCouponForUpdate(ctx, tx, couponID)
	if err != nil {
		if errors.Is(err, ErrCouponNotFound) {
			return nil, ErrCouponNotFound
		}
		return nil, fmt.Errorf("get coupon for update: %w", err)
	}

	// 2. One unit per customer
	owned, err := s.purchaseRepo.Exists(ctx, tx, customerID, couponID)
	if err != nil {
		return nil, fmt.Errorf("check purchase: %w", err)
	}
	if owned {
		return nil, ErrAlreadyPurchased
	}

	// 3. Check stock and expiry
	if !coupon.Purchasable(s.today()) {
		return nil, ErrCouponUnavailable
	}

	// 4. Insert record (primary key catches duplicates)
	if err := s.purchaseRepo.Insert(ctx, tx, customerID, couponID); err != nil {
		if errors.Is(err, ErrAlreadyPurchased) || errors.Is(err, ErrCustomerNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("insert purchase: %w", err)
	}

	// 5. Decrement stock
	if err := s.couponRepo.DecrementStock(ctx, tx, couponID); err != nil {
		return nil, fmt.Errorf("decrement stock: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	coupon.Amount--
	return coupon, nil
}

func maxPriceFilter(maxPrice float64) (model.CouponFilter, error) {
	if maxPrice < 0 {
		return model.CouponFilter{}, fmt.Errorf("%w: maxPrice must not be negative", ErrInvalidRequest)
	}
	return model.CouponFilter{MaxPrice: &maxPrice}, nil
}

// ListCompanyCoupons returns all coupons of the company ordered by id.
func (s *CouponService) ListCompanyCoupons(ctx context.Context, companyID int64) ([]model.Coupon, error) {
	return s.couponRepo.ListByCompany(ctx, companyID, model.CouponFilter{})
}

// ListCompanyCouponsByCategory returns the company's coupons of one category ordered by id.
func (s *CouponService) ListCompanyCouponsByCategory(ctx context.Context, companyID int64, category model.Category) ([]model.Coupon, error) {
	return s.couponRepo.ListByCompany(ctx, companyID, model.CouponFilter{Category: category})
}

// ListCompanyCouponsByMaxPrice returns the company's coupons priced at most maxPrice, cheapest first.
func (s *CouponService) ListCompanyCouponsByMaxPrice(ctx context.Context, companyID int64, maxPrice float64) ([]model.Coupon, error) {
	filter, err := maxPriceFilter(maxPrice)
	if err != nil {
		return nil, err
	}
	return s.couponRepo.ListByCompany(ctx, companyID, filter)
}

// ListCustomerCoupons returns all coupons the customer purchased ordered by id.
func (s *CouponService) ListCustomerCoupons(ctx context.Context, customerID int64) ([]model.Coupon, error) {
	return s.couponRepo.ListByCustomer(ctx, customerID, model.CouponFilter{})
}

// ListCustomerCouponsByCategory returns the customer's purchased coupons of one category ordered by id.
func (s *CouponService) ListCustomerCouponsByCategory(ctx context.Context, customerID int64, category model.Category) ([]model.Coupon, error) {
	return s.couponRepo.ListByCustomer(ctx, customerID, model.CouponFilter{Category: category})
}

// ListCustomerCouponsByMaxPrice returns the customer's purchased coupons priced at most maxPrice, cheapest first.
func (s *CouponService) ListCustomerCouponsByMaxPrice(ctx context.Context, customerID int64, maxPrice float64) ([]model.Coupon, error) {
	filter, err := maxPriceFilter(maxPrice)
	if err != nil {
		return nil, err
	}
	return s.couponRepo.ListByCustomer(ctx, customerID, filter)
}

// ListPurchasable returns coupons the customer could buy today.
func (s *CouponService) ListPurchasable(ctx context.Context, customerID int64) ([]model.Coupon, error) {
	return s.couponRepo.ListPurchasable(ctx, customerID, s.today())
}

// ListAboutToExpire returns purchasable coupons whose last valid day is today.
func (s *CouponService) ListAboutToExpire(ctx context.Context, customerID int64) ([]model.Coupon, error) {
	return s.couponRepo.ListEndingOn(ctx, customerID, s.today())
}
