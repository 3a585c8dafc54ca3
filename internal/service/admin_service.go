package service

import (
	"context"
	"fmt"

	"github.com/fairyhunter13/coupon-marketplace/internal/auth"
	"github.com/fairyhunter13/coupon-marketplace/internal/model"
)

// CompanyRepositoryInterface defines the interface for company data access.
type CompanyRepositoryInterface interface {
	Insert(ctx context.Context, company *model.Company) error
	GetByID(ctx context.Context, id int64) (*model.Company, error)
	ExistsByNameOrEmail(ctx context.Context, name, email string) (bool, error)
	ExistsByEmailExcluding(ctx context.Context, email string, excludeID int64) (bool, error)
	Update(ctx context.Context, company *model.Company) error
	Delete(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context) ([]model.Company, error)
}

// CustomerRepositoryInterface defines the interface for customer data access.
type CustomerRepositoryInterface interface {
	Insert(ctx context.Context, customer *model.Customer) error
	GetByID(ctx context.Context, id int64) (*model.Customer, error)
	ExistsByEmailExcluding(ctx context.Context, email string, excludeID int64) (bool, error)
	Update(ctx context.Context, customer *model.Customer) error
	Delete(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context) ([]model.Customer, error)
}

// AdminService manages company and customer accounts.
// Passwords are hashed before they reach a repository.
type AdminService struct {
	companies CompanyRepositoryInterface
	customers CustomerRepositoryInterface
	hash      func(password string) (string, error)
}

// NewAdminService creates a new AdminService.
func NewAdminService(companies CompanyRepositoryInterface, customers CustomerRepositoryInterface) *AdminService {
	return &AdminService{companies: companies, customers: customers, hash: auth.HashPassword}
}

// AddCompany creates a company.
// Returns ErrCompanyExists if the name or the email is already in use.
func (s *AdminService) AddCompany(ctx context.Context, req *model.CreateCompanyRequest) (*model.Company, error) {
	if req == nil || req.Name == "" || req.Email == "" || req.Password == "" {
		return nil, ErrInvalidRequest
	}

	exists, err := s.companies.ExistsByNameOrEmail(ctx, req.Name, req.Email)
	if err != nil {
		return nil, fmt.Errorf("check company: %w", err)
	}
	if exists {
		return nil, ErrCompanyExists
	}

	hash, err := s.hash(req.Password)
	if err != nil {
		return nil, err
	}
	company := &model.Company{Name: req.Name, Email: req.Email, Password: hash}
	if err := s.companies.Insert(ctx, company); err != nil {
		return nil, err
	}
	return company, nil
}

// UpdateCompany changes a company's email and password. The name cannot change.
// Returns:
//   - ErrCompanyNotFound if the company doesn't exist
//   - ErrCompanyExists if another company uses the new email
func (s *AdminService) UpdateCompany(ctx context.Context, req *model.UpdateCompanyRequest) (*model.Company, error) {
	if req == nil || req.ID <= 0 {
		return nil, ErrInvalidRequest
	}

	company, err := s.GetCompany(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if req.Email != nil && *req.Email != company.Email {
		exists, err := s.companies.ExistsByEmailExcluding(ctx, *req.Email, company.ID)
		if err != nil {
			return nil, fmt.Errorf("check company email: %w", err)
		}
		if exists {
			return nil, ErrCompanyExists
		}
		company.Email = *req.Email
	}
	if req.Password != nil {
		if company.Password, err = s.hash(*req.Password); err != nil {
			return nil, err
		}
	}

	if err := s.companies.Update(ctx, company); err != nil {
		return nil, err
	}
	return company, nil
}

// DeleteCompany removes a company with its coupons and their purchase records.
func (s *AdminService) DeleteCompany(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrInvalidRequest
	}
	deleted, err := s.companies.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete company: %w", err)
	}
	if !deleted {
		return ErrCompanyNotFound
	}
	return nil
}

// GetCompany retrieves a company by id.
// Returns ErrCompanyNotFound if the company doesn't exist.
func (s *AdminService) GetCompany(ctx context.Context, id int64) (*model.Company, error) {
	if id <= 0 {
		return nil, ErrInvalidRequest
	}
	company, err := s.companies.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get company: %w", err)
	}
	if company == nil {
		return nil, ErrCompanyNotFound
	}
	return company, nil
}

// ListCompanies returns every company ordered by id.
func (s *AdminService) ListCompanies(ctx context.Context) ([]model.Company, error) {
	return s.companies.List(ctx)
}

// AddCustomer creates a customer.
// Returns ErrCustomerExists if the email is already in use.
func (s *AdminService) AddCustomer(ctx context.Context, req *model.CreateCustomerRequest) (*model.Customer, error) {
	if req == nil || req.FirstName == "" || req.LastName == "" || req.Email == "" || req.Password == "" {
		return nil, ErrInvalidRequest
	}

	exists, err := s.customers.ExistsByEmailExcluding(ctx, req.Email, 0)
	if err != nil {
		return nil, fmt.Errorf("check customer: %w", err)
	}
	if exists {
		return nil, ErrCustomerExists
	}

	hash, err := s.hash(req.Password)
	if err != nil {
		return nil, err
	}
	customer := &model.Customer{FirstName: req.FirstName, LastName: req.LastName, Email: req.Email, Password: hash}
	if err := s.customers.Insert(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

// UpdateCustomer overwrites the fields set in the request.
// Returns:
//   - ErrCustomerNotFound if the customer doesn't exist
//   - ErrCustomerExists if another customer uses the new email
func (s *AdminService) UpdateCustomer(ctx context.Context, req *model.UpdateCustomerRequest) (*model.Customer, error) {
	if req == nil || req.ID <= 0 {
		return nil, ErrInvalidRequest
	}

	customer, err := s.GetCustomer(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if req.Email != nil && *req.Email != customer.Email {
		exists, err := s.customers.ExistsByEmailExcluding(ctx, *req.Email, customer.ID)
		if err != nil {
			return nil, fmt.Errorf("check customer email: %w", err)
		}
		if exists {
			return nil, ErrCustomerExists
		}
		customer.Email = *req.Email
	}
	if req.FirstName != nil {
		customer.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		customer.LastName = *req.LastName
	}
	if req.Password != nil {
		if customer.Password, err = s.hash(*req.Password); err != nil {
			return nil, err
		}
	}

	if err := s.customers.Update(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

// DeleteCustomer removes a customer with their purchase records.
func (s *AdminService) DeleteCustomer(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrInvalidRequest
	}
	deleted, err := s.customers.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	if !deleted {
		return ErrCustomerNotFound
	}
	return nil
}

// GetCustomer retrieves a customer by id.
// Returns ErrCustomerNotFound if the customer doesn't exist.
func (s *AdminService) GetCustomer(ctx context.Context, id int64) (*model.Customer, error) {
	if id <= 0 {
		return nil, ErrInvalidRequest
	}
	customer, err := s.customers.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get customer: %w", err)
	}
	if customer == nil {
		return nil, ErrCustomerNotFound
	}
	return customer, nil
}

// ListCustomers returns every customer ordered by id.
func (s *AdminService) ListCustomers(ctx context.Context) ([]model.Customer, error) {
	return s.customers.List(ctx)
}
