package model

import (
	"fmt"
	"strings"
	"time"
)

// Role identifies which partition of the API a principal may use.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleCompany  Role = "COMPANY"
	RoleCustomer Role = "CUSTOMER"
)

// ParseRole parses a role name case-insensitively.
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToUpper(strings.TrimSpace(s))); r {
	case RoleAdmin, RoleCompany, RoleCustomer:
		return r, nil
	}
	return "", fmt.Errorf("unknown user type %q", s)
}

// Lower returns the role name in lower case, as used in client messages.
func (r Role) Lower() string {
	return strings.ToLower(string(r))
}

// Company is a coupon issuer. Password holds a bcrypt hash.
type Company struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	CreatedAt time.Time `json:"-"`
}

// Customer buys coupons. Password holds a bcrypt hash.
type Customer struct {
	ID        int64     `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	CreatedAt time.Time `json:"-"`
}

// FullName joins first and last name.
func (c *Customer) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// Principal is the identity resolved by a successful credential check.
type Principal struct {
	ID    int64
	Email string
	Name  string
	Role  Role
}

// LoginRequest is the DTO for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,max=255"`
	Password string `json:"password" validate:"required,max=72"`
	UserType string `json:"userType" validate:"required,role"`
}

// UserDetails is returned to the client after a successful login.
type UserDetails struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	UserType Role   `json:"userType"`
	Token    string `json:"token"`
}

// CreateCompanyRequest is the DTO for adding a company.
type CreateCompanyRequest struct {
	Name     string `json:"name" validate:"required,notblank,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,notblank,max=72"`
}

// UpdateCompanyRequest is the DTO for updating a company. The name cannot change.
type UpdateCompanyRequest struct {
	ID       int64   `json:"id" validate:"required,gt=0"`
	Email    *string `json:"email" validate:"omitempty,email,max=255"`
	Password *string `json:"password" validate:"omitempty,notblank,max=72"`
}

// CreateCustomerRequest is the DTO for adding a customer.
type CreateCustomerRequest struct {
	FirstName string `json:"firstName" validate:"required,notblank,max=255"`
	LastName  string `json:"lastName" validate:"required,notblank,max=255"`
	Email     string `json:"email" validate:"required,email,max=255"`
	Password  string `json:"password" validate:"required,notblank,max=72"`
}

// UpdateCustomerRequest is the DTO for updating a customer.
type UpdateCustomerRequest struct {
	ID        int64   `json:"id" validate:"required,gt=0"`
	FirstName *string `json:"firstName" validate:"omitempty,notblank,max=255"`
	LastName  *string `json:"lastName" validate:"omitempty,notblank,max=255"`
	Email     *string `json:"email" validate:"omitempty,email,max=255"`
	Password  *string `json:"password" validate:"omitempty,notblank,max=72"`
}
