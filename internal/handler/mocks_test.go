package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/coupon-marketplace/internal/auth"
	"github.com/fairyhunter13/coupon-marketplace/internal/model"
)

// mockLoginService is a mock implementation of LoginServiceInterface.
type mockLoginService struct {
	loginFn func(ctx context.Context, email, password string, role model.Role) (*model.UserDetails, error)
}

func (m *mockLoginService) Login(ctx context.Context, email, password string, role model.Role) (*model.UserDetails, error) {
	if m.loginFn != nil {
		return m.loginFn(ctx, email, password, role)
	}
	return nil, nil
}

// mockAdminService is a mock implementation of AdminServiceInterface.
type mockAdminService struct {
	addCompanyFn     func(ctx context.Context, req *model.CreateCompanyRequest) (*model.Company, error)
	updateCompanyFn  func(ctx context.Context, req *model.UpdateCompanyRequest) (*model.Company, error)
	deleteCompanyFn  func(ctx context.Context, id int64) error
	getCompanyFn     func(ctx context.Context, id int64) (*model.Company, error)
	listCompaniesFn  func(ctx context.Context) ([]model.Company, error)
	addCustomerFn    func(ctx context.Context, req *model.CreateCustomerRequest) (*model.Customer, error)
	updateCustomerFn func(ctx context.Context, req *model.UpdateCustomerRequest) (*model.Customer, error)
	deleteCustomerFn func(ctx context.Context, id int64) error
	getCustomerFn    func(ctx context.Context, id int64) (*model.Customer, error)
	listCustomersFn  func(ctx context.Context) ([]model.Customer, error)
}

func (m *mockAdminService) AddCompany(ctx context.Context, req *model.CreateCompanyRequest) (*model.Company, error) {
	if m.addCompanyFn != nil {
		return m.addCompanyFn(ctx, req)
	}
	return &model.Company{Name: req.Name, Email: req.Email}, nil
}

func (m *mockAdminService) UpdateCompany(ctx context.Context, req *model.UpdateCompanyRequest) (*model.Company, error) {
	if m.updateCompanyFn != nil {
		return m.updateCompanyFn(ctx, req)
	}
	return &model.Company{ID: req.ID}, nil
}

func (m *mockAdminService) DeleteCompany(ctx context.Context, id int64) error {
	if m.deleteCompanyFn != nil {
		return m.deleteCompanyFn(ctx, id)
	}
	return nil
}

func (m *mockAdminService) GetCompany(ctx context.Context, id int64) (*model.Company, error) {
	if m.getCompanyFn != nil {
		return m.getCompanyFn(ctx, id)
	}
	return &model.Company{ID: id}, nil
}

func (m *mockAdminService) ListCompanies(ctx context.Context) ([]model.Company, error) {
	if m.listCompaniesFn != nil {
		return m.listCompaniesFn(ctx)
	}
	return []model.Company{}, nil
}

func (m *mockAdminService) AddCustomer(ctx context.Context, req *model.CreateCustomerRequest) (*model.Customer, error) {
	if m.addCustomerFn != nil {
		return m.addCustomerFn(ctx, req)
	}
	return &model.Customer{FirstName: req.FirstName, LastName: req.LastName, Email: req.Email}, nil
}

func (m *mockAdminService) UpdateCustomer(ctx context.Context, req *model.UpdateCustomerRequest) (*model.Customer, error) {
	if m.updateCustomerFn != nil {
		return m.updateCustomerFn(ctx, req)
	}
	return &model.Customer{ID: req.ID}, nil
}

func (m *mockAdminService) DeleteCustomer(ctx context.Context, id int64) error {
	if m.deleteCustomerFn != nil {
		return m.deleteCustomerFn(ctx, id)
	}
	return nil
}

func (m *mockAdminService) GetCustomer(ctx context.Context, id int64) (*model.Customer, error) {
	if m.getCustomerFn != nil {
		return m.getCustomerFn(ctx, id)
	}
	return &model.Customer{ID: id}, nil
}

func (m *mockAdminService) ListCustomers(ctx context.Context) ([]model.Customer, error) {
	if m.listCustomersFn != nil {
		return m.listCustomersFn(ctx)
	}
	return []model.Customer{}, nil
}

// mockCouponService implements both the company and the customer coupon interfaces.
type mockCouponService struct {
	addCouponFn         func(ctx context.Context, companyID int64, d *model.CouponDraft) (*model.Coupon, error)
	updateCouponFn      func(ctx context.Context, companyID int64, d *model.CouponDraft) (*model.Coupon, error)
	deleteCouponFn      func(ctx context.Context, companyID, couponID int64) error
	getCompanyCouponFn  func(ctx context.Context, companyID, couponID int64) (*model.Coupon, error)
	getCouponFn         func(ctx context.Context, couponID int64) (*model.Coupon, error)
	purchaseFn          func(ctx context.Context, customerID, couponID int64) (*model.Coupon, error)
	listFn              func(ctx context.Context, ownerID int64) ([]model.Coupon, error)
	listByCategoryFn    func(ctx context.Context, ownerID int64, category model.Category) ([]model.Coupon, error)
	listByMaxPriceFn    func(ctx context.Context, ownerID int64, maxPrice float64) ([]model.Coupon, error)
	listPurchasableFn   func(ctx context.Context, customerID int64) ([]model.Coupon, error)
	listAboutToExpireFn func(ctx context.Context, customerID int64) ([]model.Coupon, error)
}

func (m *mockCouponService) AddCoupon(ctx context.Context, companyID int64, d *model.CouponDraft) (*model.Coupon, error) {
	if m.addCouponFn != nil {
		return m.addCouponFn(ctx, companyID, d)
	}
	return &model.Coupon{ID: 1, CompanyID: companyID}, nil
}

func (m *mockCouponService) UpdateCoupon(ctx context.Context, companyID int64, d *model.CouponDraft) (*model.Coupon, error) {
	if m.updateCouponFn != nil {
		return m.updateCouponFn(ctx, companyID, d)
	}
	return &model.Coupon{ID: d.ID, CompanyID: companyID}, nil
}

func (m *mockCouponService) DeleteCoupon(ctx context.Context, companyID, couponID int64) error {
	if m.deleteCouponFn != nil {
		return m.deleteCouponFn(ctx, companyID, couponID)
	}
	return nil
}

func (m *mockCouponService) GetCompanyCoupon(ctx context.Context, companyID, couponID int64) (*model.Coupon, error) {
	if m.getCompanyCouponFn != nil {
		return m.getCompanyCouponFn(ctx, companyID, couponID)
	}
	return &model.Coupon{ID: couponID, CompanyID: companyID}, nil
}

func (m *mockCouponService) GetCoupon(ctx context.Context, couponID int64) (*model.Coupon, error) {
	if m.getCouponFn != nil {
		return m.getCouponFn(ctx, couponID)
	}
	return &model.Coupon{ID: couponID}, nil
}

func (m *mockCouponService) Purchase(ctx context.Context, customerID, couponID int64) (*model.Coupon, error) {
	if m.purchaseFn != nil {
		return m.purchaseFn(ctx, customerID, couponID)
	}
	return &model.Coupon{ID: couponID}, nil
}

func (m *mockCouponService) list(ctx context.Context, ownerID int64) ([]model.Coupon, error) {
	if m.listFn != nil {
		return m.listFn(ctx, ownerID)
	}
	return []model.Coupon{}, nil
}

func (m *mockCouponService) listByCategory(ctx context.Context, ownerID int64, category model.Category) ([]model.Coupon, error) {
	if m.listByCategoryFn != nil {
		return m.listByCategoryFn(ctx, ownerID, category)
	}
	return []model.Coupon{}, nil
}

func (m *mockCouponService) listByMaxPrice(ctx context.Context, ownerID int64, maxPrice float64) ([]model.Coupon, error) {
	if m.listByMaxPriceFn != nil {
		return m.listByMaxPriceFn(ctx, ownerID, maxPrice)
	}
	return []model.Coupon{}, nil
}

func (m *mockCouponService) ListCompanyCoupons(ctx context.Context, companyID int64) ([]model.Coupon, error) {
	return m.list(ctx, companyID)
}

func (m *mockCouponService) ListCompanyCouponsByCategory(ctx context.Context, companyID int64, category model.Category) ([]model.Coupon, error) {
	return m.listByCategory(ctx, companyID, category)
}

func (m *mockCouponService) ListCompanyCouponsByMaxPrice(ctx context.Context, companyID int64, maxPrice float64) ([]model.Coupon, error) {
	return m.listByMaxPrice(ctx, companyID, maxPrice)
}

func (m *mockCouponService) ListCustomerCoupons(ctx context.Context, customerID int64) ([]model.Coupon, error) {
	return m.list(ctx, customerID)
}

func (m *mockCouponService) ListCustomerCouponsByCategory(ctx context.Context, customerID int64, category model.Category) ([]model.Coupon, error) {
	return m.listByCategory(ctx, customerID, category)
}

func (m *mockCouponService) ListCustomerCouponsByMaxPrice(ctx context.Context, customerID int64, maxPrice float64) ([]model.Coupon, error) {
	return m.listByMaxPrice(ctx, customerID, maxPrice)
}

func (m *mockCouponService) ListPurchasable(ctx context.Context, customerID int64) ([]model.Coupon, error) {
	if m.listPurchasableFn != nil {
		return m.listPurchasableFn(ctx, customerID)
	}
	return []model.Coupon{}, nil
}

func (m *mockCouponService) ListAboutToExpire(ctx context.Context, customerID int64) ([]model.Coupon, error) {
	if m.listAboutToExpireFn != nil {
		return m.listAboutToExpireFn(ctx, customerID)
	}
	return []model.Coupon{}, nil
}

// asPrincipal stands in for the access gate, storing claims for the given identity.
func asPrincipal(id int64, role model.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(claimsKey, &auth.Claims{UserID: id, UserType: role})
		return c.Next()
	}
}

type registrar interface {
	Register(r fiber.Router)
}

// newTestApp mounts h under prefix, with the caller's identity injected when id > 0.
func newTestApp(h registrar, prefix string, id int64, role model.Role) *fiber.App {
	app := fiber.New(AppConfig())
	group := app.Group(prefix)
	if id > 0 {
		group.Use(asPrincipal(id, role))
	}
	h.Register(group)
	return app
}

// doRequest sends a request with an optional JSON body and returns the status and body.
func doRequest(t *testing.T, app *fiber.App, method, path, body string) (int, []byte) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, respBody
}

func jsonDecode(resp *http.Response, v any) error {
	defer func() {
		_ = resp.Body.Close()
	}()
	return json.NewDecoder(resp.Body).Decode(v)
}

// errorMessage extracts the "error" field from a JSON error body.
func errorMessage(t *testing.T, body []byte) string {
	t.Helper()
	var resp map[string]string
	require.NoError(t, json.Unmarshal(body, &resp))
	return resp["error"]
}
