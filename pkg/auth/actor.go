package auth

import (
	"strings"

	"github.com/labstack/echo/v4"

	"beanline/pkg/apperr"
)

type Role string

const (
	RoleAdmin   Role = "Admin"
	RoleManager Role = "Manager"
	RoleExpert  Role = "Expert"
	RoleFarmer  Role = "Farmer"
)

func ParseRole(s string) (Role, bool) {
	for _, r := range []Role{RoleAdmin, RoleManager, RoleExpert, RoleFarmer} {
		if strings.EqualFold(strings.TrimSpace(s), string(r)) {
			return r, true
		}
	}
	return "", false
}

// Actor is the caller as resolved by the identity middleware. ScopeID is the
// cooperative or region a manager/expert works for; farmers are matched on ID.
type Actor struct {
	ID      string `json:"id"`
	Role    Role   `json:"role"`
	ScopeID string `json:"scope_id"`
}

type RoleFlags struct {
	IsAdmin           bool `json:"is_admin"`
	IsManagerOrExpert bool `json:"is_manager_or_expert"`
	IsExpert          bool `json:"is_expert"`
}

func (a Actor) Flags() RoleFlags {
	return RoleFlags{
		IsAdmin:           a.Role == RoleAdmin,
		IsManagerOrExpert: a.Role == RoleManager || a.Role == RoleExpert,
		IsExpert:          a.Role == RoleExpert,
	}
}

// CanSee answers read access to anything hanging off a batch.
func (a Actor) CanSee(farmerID, scopeID string) bool {
	f := a.Flags()
	switch {
	case f.IsAdmin:
		return true
	case f.IsManagerOrExpert:
		return a.ScopeID != "" && a.ScopeID == scopeID
	default:
		return a.ID != "" && a.ID == farmerID
	}
}

// CanWork allows recording progress and waste: the owning farmer or staff
// of the batch's scope.
func (a Actor) CanWork(farmerID, scopeID string) bool {
	return a.CanSee(farmerID, scopeID)
}

// CanEvaluate allows creating and editing evaluations.
func (a Actor) CanEvaluate(scopeID string) bool {
	f := a.Flags()
	return f.IsAdmin || (f.IsManagerOrExpert && a.ScopeID != "" && a.ScopeID == scopeID)
}

func (a Actor) CanRestore(scopeID string) bool {
	return a.Role == RoleAdmin || (a.Role == RoleManager && a.ScopeID == scopeID)
}

func (a Actor) CanHardDelete() bool { return a.Role == RoleAdmin }

// ManagesReferenceData covers processing methods.
func (a Actor) ManagesReferenceData() bool {
	return a.Role == RoleAdmin || a.Role == RoleManager
}

const ctxKey = "actor"

func WithActor(c echo.Context, a Actor) { c.Set(ctxKey, a) }

// FromContext returns the request's actor. ok is false when no identity
// middleware ran.
func FromContext(c echo.Context) (Actor, bool) {
	a, ok := c.Get(ctxKey).(Actor)
	return a, ok
}

// Require is FromContext for handlers that need an identity.
func Require(c echo.Context) (Actor, error) {
	a, ok := FromContext(c)
	if !ok || a.ID == "" {
		return Actor{}, apperr.ErrUnauthorized
	}
	return a, nil
}

const (
	DevActorID       = "dev-admin"
	CookieActorID    = "ACTOR_ID"
	CookieActorRole  = "ACTOR_ROLE"
	CookieActorScope = "ACTOR_SCOPE"
)
