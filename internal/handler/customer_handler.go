package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/coupon-marketplace/internal/model"
)

// CustomerCouponServiceInterface defines the coupon operations available to a customer.
type CustomerCouponServiceInterface interface {
	Purchase(ctx context.Context, customerID, couponID int64) (*model.Coupon, error)
	GetCoupon(ctx context.Context, couponID int64) (*model.Coupon, error)
	ListCustomerCoupons(ctx context.Context, customerID int64) ([]model.Coupon, error)
	ListCustomerCouponsByCategory(ctx context.Context, customerID int64, category model.Category) ([]model.Coupon, error)
	ListCustomerCouponsByMaxPrice(ctx context.Context, customerID int64, maxPrice float64) ([]model.Coupon, error)
	ListPurchasable(ctx context.Context, customerID int64) ([]model.Coupon, error)
	ListAboutToExpire(ctx context.Context, customerID int64) ([]model.Coupon, error)
}

// CustomerFinder returns a customer account.
type CustomerFinder interface {
	GetCustomer(ctx context.Context, id int64) (*model.Customer, error)
}

// CustomerHandler handles the /api/u-customer routes. The acting customer is the token subject.
type CustomerHandler struct {
	coupons   CustomerCouponServiceInterface
	customers CustomerFinder
}

// NewCustomerHandler creates a new CustomerHandler.
func NewCustomerHandler(coupons CustomerCouponServiceInterface, customers CustomerFinder) *CustomerHandler {
	return &CustomerHandler{coupons: coupons, customers: customers}
}

// Register mounts the customer routes on r.
func (h *CustomerHandler) Register(r fiber.Router) {
	r.Put("/coupon/:couponId", h.Purchase)
	r.Get("/coupon/:couponId", h.GetCoupon)
	r.Get("/coupons", h.ListCoupons)
	r.Get("/coupons-by-category/:category", h.ListCouponsByCategory)
	r.Get("/coupons-up-to-price/:maxPrice", h.ListCouponsByMaxPrice)
	r.Get("/coupons-can-purchase", h.ListPurchasable)
	r.Get("/coupons-about-to-expire", h.ListAboutToExpire)
	r.Get("", h.Details)
}

// Purchase handles PUT /coupon/:couponId and returns the coupon with its remaining amount.
func (h *CustomerHandler) Purchase(c *fiber.Ctx) error {
	customerID, ok := principalID(c, model.RoleCustomer)
	if !ok {
		return notLoggedIn(c)
	}
	couponID, err := idParam(c, "couponId")
	if err != nil {
		return respondError(c, err, "")
	}

	coupon, err := h.coupons.Purchase(c.Context(), customerID, couponID)
	if err != nil {
		return respondError(c, err, "failed to purchase coupon")
	}

	log.Info().
		Str("request_id", requestID(c)).
		Int64("customer_id", customerID).
		Int64("coupon_id", couponID).
		Msg("coupon purchased")
	return c.JSON(coupon)
}

// GetCoupon handles GET /coupon/:couponId.
func (h *CustomerHandler) GetCoupon(c *fiber.Ctx) error {
	couponID, err := idParam(c, "couponId")
	if err != nil {
		return respondError(c, err, "")
	}
	coupon, err := h.coupons.GetCoupon(c.Context(), couponID)
	if err != nil {
		return respondError(c, err, "failed to get coupon")
	}
	return c.JSON(coupon)
}

// ListCoupons handles GET /coupons: the coupons the caller has purchased.
func (h *CustomerHandler) ListCoupons(c *fiber.Ctx) error {
	return h.list(c, h.coupons.ListCustomerCoupons)
}

// ListCouponsByCategory handles GET /coupons-by-category/:category.
func (h *CustomerHandler) ListCouponsByCategory(c *fiber.Ctx) error {
	category, err := categoryParam(c)
	if err != nil {
		return respondError(c, err, "")
	}
	return h.list(c, func(ctx context.Context, customerID int64) ([]model.Coupon, error) {
		return h.coupons.ListCustomerCouponsByCategory(ctx, customerID, category)
	})
}

// ListCouponsByMaxPrice handles GET /coupons-up-to-price/:maxPrice.
func (h *CustomerHandler) ListCouponsByMaxPrice(c *fiber.Ctx) error {
	maxPrice, err := priceParam(c)
	if err != nil {
		return respondError(c, err, "")
	}
	return h.list(c, func(ctx context.Context, customerID int64) ([]model.Coupon, error) {
		return h.coupons.ListCustomerCouponsByMaxPrice(ctx, customerID, maxPrice)
	})
}

// ListPurchasable handles GET /coupons-can-purchase.
func (h *CustomerHandler) ListPurchasable(c *fiber.Ctx) error {
	return h.list(c, h.coupons.ListPurchasable)
}

// ListAboutToExpire handles GET /coupons-about-to-expire.
func (h *CustomerHandler) ListAboutToExpire(c *fiber.Ctx) error {
	return h.list(c, h.coupons.ListAboutToExpire)
}

// Details handles GET on the customer root and returns the caller's account.
func (h *CustomerHandler) Details(c *fiber.Ctx) error {
	customerID, ok := principalID(c, model.RoleCustomer)
	if !ok {
		return notLoggedIn(c)
	}
	customer, err := h.customers.GetCustomer(c.Context(), customerID)
	if err != nil {
		return respondError(c, err, "failed to get customer details")
	}
	return c.JSON(customer)
}

func (h *CustomerHandler) list(c *fiber.Ctx, query func(ctx context.Context, customerID int64) ([]model.Coupon, error)) error {
	customerID, ok := principalID(c, model.RoleCustomer)
	if !ok {
		return notLoggedIn(c)
	}
	coupons, err := query(c.Context(), customerID)
	if err != nil {
		return respondError(c, err, "failed to list coupons")
	}
	return c.JSON(coupons)
}
