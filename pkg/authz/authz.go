// Package authz decides whether the current session may see a
// destination. Decisions are navigation outcomes, not errors: the wrong
// role redirects silently.
package authz

// Role is the closed set of account roles. Unknown strings do not parse;
// routing treats them via the default landing fallback.
type Role string

const (
	RoleAdmin      Role = "Admin"
	RoleInstructor Role = "Instructor"
	RoleStudent    Role = "Student"
)

// ParseRole maps a server-reported role string onto the enum.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin, RoleInstructor, RoleStudent:
		return Role(s), true
	}
	return "", false
}

// Decision is the outcome of evaluating a destination against the
// session.
type Decision int

const (
	// DecisionPending means the session is still resolving; render
	// nothing and re-evaluate once it settles.
	DecisionPending Decision = iota
	DecisionAllowed
	DecisionRedirectLogin
	DecisionRedirectUnauthorized
	DecisionRedirectHome
)

func (d Decision) String() string {
	switch d {
	case DecisionPending:
		return "pending"
	case DecisionAllowed:
		return "allowed"
	case DecisionRedirectLogin:
		return "redirect-login"
	case DecisionRedirectUnauthorized:
		return "redirect-unauthorized"
	case DecisionRedirectHome:
		return "redirect-home"
	}
	return "unknown"
}

// Fixed navigation targets.
const (
	LoginPath        = "/login"
	UnauthorizedPath = "/unauthorized"
	DefaultHomePath  = "/"
)

var homePaths = map[Role]string{
	RoleAdmin:      "/admin",
	RoleInstructor: "/instructor",
	RoleStudent:    "/student",
}

// HomePath is total: a role outside the enum lands on the default path.
func HomePath(r Role) string {
	if p, ok := homePaths[r]; ok {
		return p
	}
	return DefaultHomePath
}

// Session is the slice of session-store state the gate needs.
type Session interface {
	// Resolved reports whether boot identity resolution has finished.
	Resolved() bool
	// Role returns the session role; ok is false when no identity is
	// live.
	Role() (Role, bool)
}

// Gate protects a destination with an allow-set of roles.
type Gate struct {
	Allowed []Role
}

func NewGate(allowed ...Role) *Gate {
	return &Gate{Allowed: allowed}
}

// Evaluate maps session state to a navigation decision.
func (g *Gate) Evaluate(s Session) Decision {
	if !s.Resolved() {
		return DecisionPending
	}
	role, ok := s.Role()
	if !ok {
		return DecisionRedirectLogin
	}
	for _, r := range g.Allowed {
		if r == role {
			return DecisionAllowed
		}
	}
	return DecisionRedirectUnauthorized
}

// PublicOnly inverts the gate for login/register style destinations: an
// authenticated session is sent to its role home instead.
func PublicOnly(s Session) Decision {
	if !s.Resolved() {
		return DecisionPending
	}
	if _, ok := s.Role(); ok {
		return DecisionRedirectHome
	}
	return DecisionAllowed
}
