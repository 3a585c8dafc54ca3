package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/fairyhunter13/coupon-marketplace/internal/model"
)

// ProtectedPrefix is the namespace that requires a token.
const ProtectedPrefix = "/api/"

// roleSegments maps the first path segment under ProtectedPrefix to the role it requires.
var roleSegments = map[string]model.Role{
	"u-admin":    model.RoleAdmin,
	"u-company":  model.RoleCompany,
	"u-customer": model.RoleCustomer,
}

// Verdict is the outcome of evaluating a request at the gate.
type Verdict int

const (
	VerdictAllow Verdict = iota
	VerdictPreflight
	VerdictReject
)

// Rejection causes, used as metric labels.
const (
	CauseNotLoggedIn       = "not_logged_in"
	CauseInvalidToken      = "invalid_token"
	CauseMissingPrivileges = "missing_privileges"
)

// GateRequest is the part of an inbound request the gate looks at.
type GateRequest struct {
	Method string
	Path   string
	Token  string
	// RequestHeaders is the Access-Control-Request-Headers value of a pre-flight.
	RequestHeaders string
}

// Decision is the gate's verdict. Claims is set when a valid token was presented.
type Decision struct {
	Verdict Verdict
	Reason  string
	Cause   string
	Claims  *Claims
}

// TokenValidator validates identity tokens.
type TokenValidator interface {
	Validate(token string) (*Claims, error)
}

// AccessGate decides, per request, whether it may reach a handler.
// Evaluate has no side effects and holds no per-request state.
type AccessGate struct {
	tokens TokenValidator
}

// NewAccessGate creates an AccessGate.
func NewAccessGate(tokens TokenValidator) *AccessGate {
	return &AccessGate{tokens: tokens}
}

// Evaluate applies the access rules in order: pre-flight, namespace, token, role.
func (g *AccessGate) Evaluate(req GateRequest) Decision {
	if req.Method == http.MethodOptions && req.RequestHeaders != "" {
		return Decision{Verdict: VerdictPreflight}
	}

	if !strings.HasPrefix(strings.ToLower(req.Path), ProtectedPrefix) {
		return Decision{Verdict: VerdictAllow}
	}

	if req.Token == "" {
		return reject(CauseNotLoggedIn, "You are not logged in")
	}

	claims, err := g.tokens.Validate(req.Token)
	if err != nil {
		return reject(CauseInvalidToken, "You are not authorized. See details: "+err.Error())
	}

	if required, ok := RequiredRole(req.Path); ok && claims.UserType != required {
		return reject(CauseMissingPrivileges, fmt.Sprintf("You do not have %s privileges.", required.Lower()))
	}

	return Decision{Verdict: VerdictAllow, Claims: claims}
}

// RequiredRole returns the role a protected path is scoped to, if any.
// Paths are matched without regard to case.
func RequiredRole(path string) (model.Role, bool) {
	rest, ok := strings.CutPrefix(strings.ToLower(path), ProtectedPrefix)
	if !ok {
		return "", false
	}
	segment, _, _ := strings.Cut(rest, "/")
	role, ok := roleSegments[segment]
	return role, ok
}

func reject(cause, reason string) Decision {
	return Decision{Verdict: VerdictReject, Cause: cause, Reason: reason}
}
