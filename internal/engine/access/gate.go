package access

import (
	"strings"

	"portal/internal/platform/models"
)

type Outcome int

const (
	Allow Outcome = iota
	Deny
	Retry
)

func (o Outcome) String() string {
	switch o {
	case Allow:
		return "allow"
	case Deny:
		return "deny"
	case Retry:
		return "retry"
	default:
		return "unknown"
	}
}

const (
	ReasonNoProfile         = "no profile"
	ReasonInactive          = "inactive"
	ReasonInsufficientRole  = "insufficient role"
	ReasonSessionTerminated = "session terminated"
)

type Decision struct {
	Outcome Outcome
	Reason  string
}

// Role sets used by the router.
var (
	ContentRoles   = []models.Role{models.RoleSuperAdmin, models.RoleAdmin, models.RoleStaff}
	SuperAdminOnly = []models.Role{models.RoleSuperAdmin}
)

// Gate decides whether a resolved profile may reach a protected resource.
type Gate struct {
	adminEmails map[string]struct{}
}

func NewGate(adminEmails []string) *Gate {
	g := &Gate{adminEmails: make(map[string]struct{}, len(adminEmails))}
	for _, e := range adminEmails {
		if e = normalizeEmail(e); e != "" {
			g.adminEmails[e] = struct{}{}
		}
	}
	return g
}

// Evaluate applies the rules in order: missing profile, inactive account
// (Retry for allow-listed emails), role membership.
func (g *Gate) Evaluate(p *models.Profile, email string, required []models.Role) Decision {
	if p == nil {
		return Decision{Outcome: Deny, Reason: ReasonNoProfile}
	}
	if !p.IsActive {
		if g.allowListed(email) || g.allowListed(p.Email) {
			return Decision{Outcome: Retry, Reason: ReasonInactive}
		}
		return Decision{Outcome: Deny, Reason: ReasonInactive}
	}
	if !hasRole(p.Role, required) {
		return Decision{Outcome: Deny, Reason: ReasonInsufficientRole}
	}
	return Decision{Outcome: Allow}
}

func (g *Gate) allowListed(email string) bool {
	_, ok := g.adminEmails[normalizeEmail(email)]
	return ok
}

func hasRole(role models.Role, required []models.Role) bool {
	switch role {
	case models.RoleSuperAdmin, models.RoleAdmin, models.RoleStaff:
	default:
		return false
	}
	for _, r := range required {
		if r == role {
			return true
		}
	}
	return false
}

func normalizeEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}
