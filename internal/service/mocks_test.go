package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fairyhunter13/coupon-marketplace/internal/model"
	"github.com/fairyhunter13/coupon-marketplace/pkg/database"
)

// mockCouponRepository is a mock implementation of CouponRepositoryInterface.
type mockCouponRepository struct {
	insertFn             func(ctx context.Context, coupon *model.Coupon) error
	getByIDFn            func(ctx context.Context, id int64) (*model.Coupon, error)
	existsByTitleFn      func(ctx context.Context, companyID int64, title string, excludeID int64) (bool, error)
	getCouponForUpdateFn func(ctx context.Context, tx database.TxQuerier, id int64) (*model.Coupon, error)
	updateFn             func(ctx context.Context, tx database.TxQuerier, coupon *model.Coupon) error
	deleteFn             func(ctx context.Context, companyID, id int64) (bool, error)
	decrementStockFn     func(ctx context.Context, tx database.TxQuerier, id int64) error
	listByCompanyFn      func(ctx context.Context, companyID int64, filter model.CouponFilter) ([]model.Coupon, error)
	listByCustomerFn     func(ctx context.Context, customerID int64, filter model.CouponFilter) ([]model.Coupon, error)
	listPurchasableFn    func(ctx context.Context, customerID int64, today time.Time) ([]model.Coupon, error)
	listEndingOnFn       func(ctx context.Context, customerID int64, day time.Time) ([]model.Coupon, error)
	deleteExpiredFn      func(ctx context.Context, today time.Time) (int64, error)
}

func (m *mockCouponRepository) Insert(ctx context.Context, coupon *model.Coupon) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, coupon)
	}
	return nil
}

func (m *mockCouponRepository) GetByID(ctx context.Context, id int64) (*model.Coupon, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockCouponRepository) ExistsByTitle(ctx context.Context, companyID int64, title string, excludeID int64) (bool, error) {
	if m.existsByTitleFn != nil {
		return m.existsByTitleFn(ctx, companyID, title, excludeID)
	}
	return false, nil
}

func (m *mockCouponRepository) GetCouponForUpdate(ctx context.Context, tx database.TxQuerier, id int64) (*model.Coupon, error) {
	if m.getCouponForUpdateFn != nil {
		return m.getCouponForUpdateFn(ctx, tx, id)
	}
	return nil, ErrCouponNotFound
}

func (m *mockCouponRepository) Update(ctx context.Context, tx database.TxQuerier, coupon *model.Coupon) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, tx, coupon)
	}
	return nil
}

func (m *mockCouponRepository) Delete(ctx context.Context, companyID, id int64) (bool, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, companyID, id)
	}
	return false, nil
}

func (m *mockCouponRepository) DecrementStock(ctx context.Context, tx database.TxQuerier, id int64) error {
	if m.decrementStockFn != nil {
		return m.decrementStockFn(ctx, tx, id)
	}
	return nil
}

func (m *mockCouponRepository) ListByCompany(ctx context.Context, companyID int64, filter model.CouponFilter) ([]model.Coupon, error) {
	if m.listByCompanyFn != nil {
		return m.listByCompanyFn(ctx, companyID, filter)
	}
	return []model.Coupon{}, nil
}

func (m *mockCouponRepository) ListByCustomer(ctx context.Context, customerID int64, filter model.CouponFilter) ([]model.Coupon, error) {
	if m.listByCustomerFn != nil {
		return m.listByCustomerFn(ctx, customerID, filter)
	}
	return []model.Coupon{}, nil
}

func (m *mockCouponRepository) ListPurchasable(ctx context.Context, customerID int64, today time.Time) ([]model.Coupon, error) {
	if m.listPurchasableFn != nil {
		return m.listPurchasableFn(ctx, customerID, today)
	}
	return []model.Coupon{}, nil
}

func (m *mockCouponRepository) ListEndingOn(ctx context.Context, customerID int64, day time.Time) ([]model.Coupon, error) {
	if m.listEndingOnFn != nil {
		return m.listEndingOnFn(ctx, customerID, day)
	}
	return []model.Coupon{}, nil
}

func (m *mockCouponRepository) DeleteExpired(ctx context.Context, today time.Time) (int64, error) {
	if m.deleteExpiredFn != nil {
		return m.deleteExpiredFn(ctx, today)
	}
	return 0, nil
}

// mockPurchaseRepository is a mock implementation of PurchaseRepositoryInterface.
type mockPurchaseRepository struct {
	existsFn func(ctx context.Context, tx database.TxQuerier, customerID, couponID int64) (bool, error)
	insertFn func(ctx context.Context, tx database.TxQuerier, customerID, couponID int64) error
}

func (m *mockPurchaseRepository) Exists(ctx context.Context, tx database.TxQuerier, customerID, couponID int64) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, tx, customerID, couponID)
	}
	return false, nil
}

func (m *mockPurchaseRepository) Insert(ctx context.Context, tx database.TxQuerier, customerID, couponID int64) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, tx, customerID, couponID)
	}
	return nil
}

// mockUploader is a mock implementation of ImageUploader.
type mockUploader struct {
	uploads []model.ImageFile
	url     string
}

func (m *mockUploader) Upload(ctx context.Context, file model.ImageFile) string {
	m.uploads = append(m.uploads, file)
	return m.url
}

// mockTx is a mock implementation of pgx.Tx for testing transactions.
type mockTx struct {
	commitFn   func(ctx context.Context) error
	rollbackFn func(ctx context.Context) error
	committed  bool
}

func (m *mockTx) Begin(ctx context.Context) (pgx.Tx, error) {
	return nil, errors.New("nested transactions not supported")
}

func (m *mockTx) Commit(ctx context.Context) error {
	m.committed = true
	if m.commitFn != nil {
		return m.commitFn(ctx)
	}
	return nil
}

func (m *mockTx) Rollback(ctx context.Context) error {
	if m.rollbackFn != nil {
		return m.rollbackFn(ctx)
	}
	return nil
}

func (m *mockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}

func (m *mockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	return nil
}

func (m *mockTx) LargeObjects() pgx.LargeObjects {
	return pgx.LargeObjects{}
}

func (m *mockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}

func (m *mockTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (m *mockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}

func (m *mockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}

func (m *mockTx) Conn() *pgx.Conn {
	return nil
}

// mockTxBeginner is a mock implementation of TxBeginner.
type mockTxBeginner struct {
	beginFn func(ctx context.Context) (pgx.Tx, error)
}

func (m *mockTxBeginner) Begin(ctx context.Context) (pgx.Tx, error) {
	if m.beginFn != nil {
		return m.beginFn(ctx)
	}
	return &mockTx{}, nil
}

func ptr[T any](v T) *T {
	return &v
}
