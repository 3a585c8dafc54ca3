package validator

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/fairyhunter13/coupon-marketplace/internal/model"
)

// New creates a new validator instance with custom validations registered.
// This ensures consistent validation across the application and tests.
func New() *validator.Validate {
	v := validator.New()

	// "notblank" rejects whitespace-only strings such as "   " for titles and names
	_ = v.RegisterValidation("notblank", stringRule(func(s string) bool {
		return strings.TrimSpace(s) != ""
	}))

	// "category" accepts a coupon category name in any case
	_ = v.RegisterValidation("category", stringRule(func(s string) bool {
		_, err := model.ParseCategory(s)
		return err == nil
	}))

	// "role" accepts ADMIN, COMPANY or CUSTOMER in any case
	_ = v.RegisterValidation("role", stringRule(func(s string) bool {
		_, err := model.ParseRole(s)
		return err == nil
	}))

	return v
}

// stringRule adapts a string predicate. Non-string fields pass so other tags can judge them.
func stringRule(ok func(string) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		str, isString := fl.Field().Interface().(string)
		if !isString {
			return true
		}
		return ok(str)
	}
}
