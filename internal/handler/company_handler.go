package handler

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/coupon-marketplace/internal/model"
	"github.com/fairyhunter13/coupon-marketplace/internal/service"
)

// imageFormField is the multipart field carrying a coupon image.
const imageFormField = "imageFile"

// CompanyCouponServiceInterface defines the coupon operations available to a company.
type CompanyCouponServiceInterface interface {
	AddCoupon(ctx context.Context, companyID int64, d *model.CouponDraft) (*model.Coupon, error)
	UpdateCoupon(ctx context.Context, companyID int64, d *model.CouponDraft) (*model.Coupon, error)
	DeleteCoupon(ctx context.Context, companyID, couponID int64) error
	GetCompanyCoupon(ctx context.Context, companyID, couponID int64) (*model.Coupon, error)
	ListCompanyCoupons(ctx context.Context, companyID int64) ([]model.Coupon, error)
	ListCompanyCouponsByCategory(ctx context.Context, companyID int64, category model.Category) ([]model.Coupon, error)
	ListCompanyCouponsByMaxPrice(ctx context.Context, companyID int64, maxPrice float64) ([]model.Coupon, error)
}

// CompanyFinder returns a company account.
type CompanyFinder interface {
	GetCompany(ctx context.Context, id int64) (*model.Company, error)
}

// CompanyHandler handles the /api/u-company routes. The acting company is the token subject.
type CompanyHandler struct {
	coupons   CompanyCouponServiceInterface
	companies CompanyFinder
	validator *validator.Validate
}

// NewCompanyHandler creates a new CompanyHandler.
func NewCompanyHandler(coupons CompanyCouponServiceInterface, companies CompanyFinder, v *validator.Validate) *CompanyHandler {
	return &CompanyHandler{coupons: coupons, companies: companies, validator: v}
}

// Register mounts the company routes on r.
func (h *CompanyHandler) Register(r fiber.Router) {
	r.Post("/coupon", h.AddCoupon)
	r.Put("/coupon", h.UpdateCoupon)
	r.Delete("/coupon/:couponId", h.DeleteCoupon)
	r.Get("/coupon/:couponId", h.GetCoupon)
	r.Get("/coupons", h.ListCoupons)
	r.Get("/coupons-by-category/:category", h.ListCouponsByCategory)
	r.Get("/coupons-up-to-price/:maxPrice", h.ListCouponsByMaxPrice)
	r.Get("", h.Details)
}

// bindCoupon reads a coupon from a JSON body or a multipart form. A multipart
// form may carry the image file in imageFormField.
func (h *CompanyHandler) bindCoupon(c *fiber.Ctx) (*model.CouponDraft, error) {
	var req model.CouponRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, fmt.Errorf("%w: invalid request body", service.ErrInvalidRequest)
	}
	if err := h.validator.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", service.ErrInvalidRequest,
			strings.TrimPrefix(formatValidationError(err), "invalid request: "))
	}

	draft, err := req.Draft()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", service.ErrInvalidRequest, err)
	}

	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		image, err := readImage(c)
		if err != nil {
			return nil, err
		}
		draft.ImageFile = image
	}
	return draft, nil
}

// readImage returns the uploaded image, or nil when the form has none.
func readImage(c *fiber.Ctx) (*model.ImageFile, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", service.ErrInvalidRequest, err)
	}
	files := form.File[imageFormField]
	if len(files) == 0 {
		return nil, nil
	}
	header := files[0]

	f, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("open uploaded image: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read uploaded image: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	return &model.ImageFile{Name: header.Filename, Data: data}, nil
}

// AddCoupon handles POST /coupon.
func (h *CompanyHandler) AddCoupon(c *fiber.Ctx) error {
	companyID, ok := principalID(c, model.RoleCompany)
	if !ok {
		return notLoggedIn(c)
	}
	draft, err := h.bindCoupon(c)
	if err != nil {
		return respondError(c, err, "failed to read coupon")
	}

	coupon, err := h.coupons.AddCoupon(c.Context(), companyID, draft)
	if err != nil {
		return respondError(c, err, "failed to add coupon")
	}

	log.Info().
		Str("request_id", requestID(c)).
		Int64("company_id", companyID).
		Int64("coupon_id", coupon.ID).
		Msg("coupon added")
	return c.Status(fiber.StatusCreated).JSON(coupon)
}

// UpdateCoupon handles PUT /coupon.
func (h *CompanyHandler) UpdateCoupon(c *fiber.Ctx) error {
	companyID, ok := principalID(c, model.RoleCompany)
	if !ok {
		return notLoggedIn(c)
	}
	draft, err := h.bindCoupon(c)
	if err != nil {
		return respondError(c, err, "failed to read coupon")
	}

	coupon, err := h.coupons.UpdateCoupon(c.Context(), companyID, draft)
	if err != nil {
		return respondError(c, err, "failed to update coupon")
	}
	return c.JSON(coupon)
}

// DeleteCoupon handles DELETE /coupon/:couponId.
func (h *CompanyHandler) DeleteCoupon(c *fiber.Ctx) error {
	companyID, ok := principalID(c, model.RoleCompany)
	if !ok {
		return notLoggedIn(c)
	}
	couponID, err := idParam(c, "couponId")
	if err != nil {
		return respondError(c, err, "")
	}

	if err := h.coupons.DeleteCoupon(c.Context(), companyID, couponID); err != nil {
		return respondError(c, err, "failed to delete coupon")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetCoupon handles GET /coupon/:couponId.
func (h *CompanyHandler) GetCoupon(c *fiber.Ctx) error {
	companyID, ok := principalID(c, model.RoleCompany)
	if !ok {
		return notLoggedIn(c)
	}
	couponID, err := idParam(c, "couponId")
	if err != nil {
		return respondError(c, err, "")
	}

	coupon, err := h.coupons.GetCompanyCoupon(c.Context(), companyID, couponID)
	if err != nil {
		return respondError(c, err, "failed to get coupon")
	}
	return c.JSON(coupon)
}

// ListCoupons handles GET /coupons.
func (h *CompanyHandler) ListCoupons(c *fiber.Ctx) error {
	companyID, ok := principalID(c, model.RoleCompany)
	if !ok {
		return notLoggedIn(c)
	}
	coupons, err := h.coupons.ListCompanyCoupons(c.Context(), companyID)
	if err != nil {
		return respondError(c, err, "failed to list coupons")
	}
	return c.JSON(coupons)
}

// ListCouponsByCategory handles GET /coupons-by-category/:category.
func (h *CompanyHandler) ListCouponsByCategory(c *fiber.Ctx) error {
	companyID, ok := principalID(c, model.RoleCompany)
	if !ok {
		return notLoggedIn(c)
	}
	category, err := categoryParam(c)
	if err != nil {
		return respondError(c, err, "")
	}

	coupons, err := h.coupons.ListCompanyCouponsByCategory(c.Context(), companyID, category)
	if err != nil {
		return respondError(c, err, "failed to list coupons")
	}
	return c.JSON(coupons)
}

// ListCouponsByMaxPrice handles GET /coupons-up-to-price/:maxPrice.
func (h *CompanyHandler) ListCouponsByMaxPrice(c *fiber.Ctx) error {
	companyID, ok := principalID(c, model.RoleCompany)
	if !ok {
		return notLoggedIn(c)
	}
	maxPrice, err := priceParam(c)
	if err != nil {
		return respondError(c, err, "")
	}

	coupons, err := h.coupons.ListCompanyCouponsByMaxPrice(c.Context(), companyID, maxPrice)
	if err != nil {
		return respondError(c, err, "failed to list coupons")
	}
	return c.JSON(coupons)
}

// Details handles GET on the company root and returns the caller's account.
func (h *CompanyHandler) Details(c *fiber.Ctx) error {
	companyID, ok := principalID(c, model.RoleCompany)
	if !ok {
		return notLoggedIn(c)
	}
	company, err := h.companies.GetCompany(c.Context(), companyID)
	if err != nil {
		return respondError(c, err, "failed to get company details")
	}
	return c.JSON(company)
}

func categoryParam(c *fiber.Ctx) (model.Category, error) {
	category, err := model.ParseCategory(c.Params("category"))
	if err != nil {
		return "", fmt.Errorf("%w: %v", service.ErrInvalidRequest, err)
	}
	return category, nil
}

func priceParam(c *fiber.Ctx) (float64, error) {
	maxPrice, err := strconv.ParseFloat(c.Params("maxPrice"), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: maxPrice must be a number", service.ErrInvalidRequest)
	}
	return maxPrice, nil
}
