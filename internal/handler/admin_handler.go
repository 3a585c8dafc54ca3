package handler

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/fairyhunter13/coupon-marketplace/internal/model"
)

// AdminServiceInterface defines the account administration operations.
type AdminServiceInterface interface {
	AddCompany(ctx context.Context, req *model.CreateCompanyRequest) (*model.Company, error)
	UpdateCompany(ctx context.Context, req *model.UpdateCompanyRequest) (*model.Company, error)
	DeleteCompany(ctx context.Context, id int64) error
	GetCompany(ctx context.Context, id int64) (*model.Company, error)
	ListCompanies(ctx context.Context) ([]model.Company, error)
	AddCustomer(ctx context.Context, req *model.CreateCustomerRequest) (*model.Customer, error)
	UpdateCustomer(ctx context.Context, req *model.UpdateCustomerRequest) (*model.Customer, error)
	DeleteCustomer(ctx context.Context, id int64) error
	GetCustomer(ctx context.Context, id int64) (*model.Customer, error)
	ListCustomers(ctx context.Context) ([]model.Customer, error)
}

// AdminHandler handles the /api/u-admin routes.
type AdminHandler struct {
	service   AdminServiceInterface
	validator *validator.Validate
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(svc AdminServiceInterface, v *validator.Validate) *AdminHandler {
	return &AdminHandler{service: svc, validator: v}
}

// Register mounts the admin routes on r.
func (h *AdminHandler) Register(r fiber.Router) {
	r.Use(requireRole(model.RoleAdmin))

	r.Post("/company", h.AddCompany)
	r.Put("/company", h.UpdateCompany)
	r.Delete("/company/:companyId", h.DeleteCompany)
	r.Get("/company/:companyId", h.GetCompany)
	r.Get("/companies", h.ListCompanies)

	r.Post("/customer", h.AddCustomer)
	r.Put("/customer", h.UpdateCustomer)
	r.Delete("/customer/:customerId", h.DeleteCustomer)
	r.Get("/customer/:customerId", h.GetCustomer)
	r.Get("/customers", h.ListCustomers)
}

// AddCompany handles POST /company.
func (h *AdminHandler) AddCompany(c *fiber.Ctx) error {
	var req model.CreateCompanyRequest
	if msg := bindBody(c, h.validator, &req); msg != "" {
		return badRequest(c, msg)
	}
	company, err := h.service.AddCompany(c.Context(), &req)
	if err != nil {
		return respondError(c, err, "failed to add company")
	}
	return c.Status(fiber.StatusCreated).JSON(company)
}

// UpdateCompany handles PUT /company.
func (h *AdminHandler) UpdateCompany(c *fiber.Ctx) error {
	var req model.UpdateCompanyRequest
	if msg := bindBody(c, h.validator, &req); msg != "" {
		return badRequest(c, msg)
	}
	company, err := h.service.UpdateCompany(c.Context(), &req)
	if err != nil {
		return respondError(c, err, "failed to update company")
	}
	return c.JSON(company)
}

// DeleteCompany handles DELETE /company/:companyId.
func (h *AdminHandler) DeleteCompany(c *fiber.Ctx) error {
	id, err := idParam(c, "companyId")
	if err != nil {
		return respondError(c, err, "")
	}
	if err := h.service.DeleteCompany(c.Context(), id); err != nil {
		return respondError(c, err, "failed to delete company")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetCompany handles GET /company/:companyId.
func (h *AdminHandler) GetCompany(c *fiber.Ctx) error {
	id, err := idParam(c, "companyId")
	if err != nil {
		return respondError(c, err, "")
	}
	company, err := h.service.GetCompany(c.Context(), id)
	if err != nil {
		return respondError(c, err, "failed to get company")
	}
	return c.JSON(company)
}

// ListCompanies handles GET /companies.
func (h *AdminHandler) ListCompanies(c *fiber.Ctx) error {
	companies, err := h.service.ListCompanies(c.Context())
	if err != nil {
		return respondError(c, err, "failed to list companies")
	}
	return c.JSON(companies)
}

// AddCustomer handles POST /customer.
func (h *AdminHandler) AddCustomer(c *fiber.Ctx) error {
	var req model.CreateCustomerRequest
	if msg := bindBody(c, h.validator, &req); msg != "" {
		return badRequest(c, msg)
	}
	customer, err := h.service.AddCustomer(c.Context(), &req)
	if err != nil {
		return respondError(c, err, "failed to add customer")
	}
	return c.Status(fiber.StatusCreated).JSON(customer)
}

// UpdateCustomer handles PUT /customer.
func (h *AdminHandler) UpdateCustomer(c *fiber.Ctx) error {
	var req model.UpdateCustomerRequest
	if msg := bindBody(c, h.validator, &req); msg != "" {
		return badRequest(c, msg)
	}
	customer, err := h.service.UpdateCustomer(c.Context(), &req)
	if err != nil {
		return respondError(c, err, "failed to update customer")
	}
	return c.JSON(customer)
}

// DeleteCustomer handles DELETE /customer/:customerId.
func (h *AdminHandler) DeleteCustomer(c *fiber.Ctx) error {
	id, err := idParam(c, "customerId")
	if err != nil {
		return respondError(c, err, "")
	}
	if err := h.service.DeleteCustomer(c.Context(), id); err != nil {
		return respondError(c, err, "failed to delete customer")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetCustomer handles GET /customer/:customerId.
func (h *AdminHandler) GetCustomer(c *fiber.Ctx) error {
	id, err := idParam(c, "customerId")
	if err != nil {
		return respondError(c, err, "")
	}
	customer, err := h.service.GetCustomer(c.Context(), id)
	if err != nil {
		return respondError(c, err, "failed to get customer")
	}
	return c.JSON(customer)
}

// ListCustomers handles GET /customers.
func (h *AdminHandler) ListCustomers(c *fiber.Ctx) error {
	customers, err := h.service.ListCustomers(c.Context())
	if err != nil {
		return respondError(c, err, "failed to list customers")
	}
	return c.JSON(customers)
}
