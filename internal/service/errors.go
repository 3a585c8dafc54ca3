package service

import "errors"

// Error kinds. Every error returned by this package either is or wraps one of
// these, except infrastructure failures which surface as 5xx.
var (
	// ErrInvalidRequest is returned when request data is invalid or incomplete
	ErrInvalidRequest = errors.New("invalid request")

	// ErrNotFound is returned when a referenced entity does not exist
	ErrNotFound = errors.New("not found")

	// ErrNotUnique is returned when a uniqueness constraint would be violated
	ErrNotUnique = errors.New("not unique")
)

var (
	// ErrCouponNotFound is returned when a coupon cannot be found or is owned by another company
	ErrCouponNotFound = kindError(ErrNotFound, "coupon not found")

	// ErrCouponUnavailable is returned when a coupon exists but is sold out or expired.
	// Clients see it as not found.
	ErrCouponUnavailable = kindError(ErrNotFound, "coupon is sold out or expired")

	// ErrCouponTitleExists is returned when the company already has a coupon with the same title
	ErrCouponTitleExists = kindError(ErrNotUnique, "coupon title already exists for company")

	// ErrAlreadyPurchased is returned when a customer attempts to buy a coupon twice
	ErrAlreadyPurchased = kindError(ErrNotUnique, "coupon already purchased by customer")

	// ErrCompanyNotFound is returned when a company cannot be found
	ErrCompanyNotFound = kindError(ErrNotFound, "company not found")

	// ErrCompanyExists is returned when a company name or email is already taken
	ErrCompanyExists = kindError(ErrNotUnique, "company name or email already exists")

	// ErrCustomerNotFound is returned when a customer cannot be found
	ErrCustomerNotFound = kindError(ErrNotFound, "customer not found")

	// ErrCustomerExists is returned when a customer email is already taken
	ErrCustomerExists = kindError(ErrNotUnique, "customer email already exists")
)

type kindErr struct {
	kind error
	msg  string
}

func kindError(kind error, msg string) error {
	return &kindErr{kind: kind, msg: msg}
}

func (e *kindErr) Error() string { return e.msg }

func (e *kindErr) Unwrap() error { return e.kind }
