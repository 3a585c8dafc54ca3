package auth

import (
	"context"
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/fairyhunter13/coupon-marketplace/internal/model"
)

// bcryptCost is a variable so tests can lower it.
var bcryptCost = bcrypt.DefaultCost

// HashPassword returns the bcrypt hash stored for an identity.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword compares a plaintext password with a stored bcrypt hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// CompanyFinder looks up companies by email. Returns nil, nil when absent.
type CompanyFinder interface {
	GetByEmail(ctx context.Context, email string) (*model.Company, error)
}

// CustomerFinder looks up customers by email. Returns nil, nil when absent.
type CustomerFinder interface {
	GetByEmail(ctx context.Context, email string) (*model.Customer, error)
}

// AdminCredential is the single operator login. It is not stored per identity.
type AdminCredential struct {
	Email    string
	Password string
}

// CredentialVerifier checks an email and password against the identities of one role.
// It never writes.
type CredentialVerifier struct {
	admin     AdminCredential
	companies CompanyFinder
	customers CustomerFinder
}

// NewCredentialVerifier creates a verifier for all three roles.
func NewCredentialVerifier(admin AdminCredential, companies CompanyFinder, customers CustomerFinder) *CredentialVerifier {
	return &CredentialVerifier{admin: admin, companies: companies, customers: customers}
}

// Verify reports whether email and password identify a principal of the given role,
// and returns that principal with its canonical id and display name.
// Returns ErrInvalidCredentials for empty input or an unknown role.
func (v *CredentialVerifier) Verify(ctx context.Context, role model.Role, email, password string) (model.Principal, bool, error) {
	if email == "" || password == "" {
		return model.Principal{}, false, ErrInvalidCredentials
	}

	switch role {
	case model.RoleAdmin:
		p, ok := verifyAdmin(v.admin, email, password)
		return p, ok, nil

	case model.RoleCompany:
		company, err := v.companies.GetByEmail(ctx, email)
		if err != nil {
			return model.Principal{}, false, fmt.Errorf("find company: %w", err)
		}
		p, ok := verifyCompany(company, password)
		return p, ok, nil

	case model.RoleCustomer:
		customer, err := v.customers.GetByEmail(ctx, email)
		if err != nil {
			return model.Principal{}, false, fmt.Errorf("find customer: %w", err)
		}
		p, ok := verifyCustomer(customer, password)
		return p, ok, nil
	}

	return model.Principal{}, false, fmt.Errorf("%w: unknown user type %q", ErrInvalidCredentials, role)
}

func verifyAdmin(admin AdminCredential, email, password string) (model.Principal, bool) {
	emailOK := subtle.ConstantTimeCompare([]byte(admin.Email), []byte(email)) == 1
	passwordOK := subtle.ConstantTimeCompare([]byte(admin.Password), []byte(password)) == 1
	if admin.Email == "" || !emailOK || !passwordOK {
		return model.Principal{}, false
	}
	return model.Principal{ID: 0, Email: admin.Email, Name: "Admin", Role: model.RoleAdmin}, true
}

func verifyCompany(c *model.Company, password string) (model.Principal, bool) {
	if c == nil || !CheckPassword(c.Password, password) {
		return model.Principal{}, false
	}
	return model.Principal{ID: c.ID, Email: c.Email, Name: c.Name, Role: model.RoleCompany}, true
}

func verifyCustomer(c *model.Customer, password string) (model.Principal, bool) {
	if c == nil || !CheckPassword(c.Password, password) {
		return model.Principal{}, false
	}
	return model.Principal{ID: c.ID, Email: c.Email, Name: c.FullName(), Role: model.RoleCustomer}, true
}
