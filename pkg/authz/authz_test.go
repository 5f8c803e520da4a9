package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeSession struct {
	resolved bool
	role     Role
	hasRole  bool
}

func (f fakeSession) Resolved() bool    { return f.resolved }
func (f fakeSession) Role() (Role, bool) { return f.role, f.hasRole }

func TestGateTotality(t *testing.T) {
	roles := []Role{RoleAdmin, RoleInstructor, RoleStudent}
	allowSets := [][]Role{
		{RoleAdmin},
		{RoleInstructor},
		{RoleStudent},
		{RoleAdmin, RoleInstructor},
		{RoleInstructor, RoleStudent},
		{RoleAdmin, RoleInstructor, RoleStudent},
	}
	for _, allowed := range allowSets {
		g := NewGate(allowed...)
		for _, role := range roles {
			got := g.Evaluate(fakeSession{resolved: true, role: role, hasRole: true})
			if contains(allowed, role) {
				assert.Equal(t, DecisionAllowed, got, "role %s allowed %v", role, allowed)
			} else {
				assert.Equal(t, DecisionRedirectUnauthorized, got, "role %s allowed %v", role, allowed)
			}
		}
	}
}

func TestGateNoSessionAlwaysRedirectsLogin(t *testing.T) {
	allowSets := [][]Role{
		{},
		{RoleAdmin},
		{RoleAdmin, RoleInstructor, RoleStudent},
	}
	for _, allowed := range allowSets {
		g := NewGate(allowed...)
		got := g.Evaluate(fakeSession{resolved: true})
		assert.Equal(t, DecisionRedirectLogin, got, "allowed %v", allowed)
	}
}

func TestGatePendingWhileLoading(t *testing.T) {
	g := NewGate(RoleAdmin)
	assert.Equal(t, DecisionPending, g.Evaluate(fakeSession{}))
}

func TestPublicOnly(t *testing.T) {
	assert.Equal(t, DecisionPending, PublicOnly(fakeSession{}))
	assert.Equal(t, DecisionAllowed, PublicOnly(fakeSession{resolved: true}))
	assert.Equal(t, DecisionRedirectHome, PublicOnly(fakeSession{resolved: true, role: RoleStudent, hasRole: true}))
}

func TestHomePathTotal(t *testing.T) {
	assert.Equal(t, "/admin", HomePath(RoleAdmin))
	assert.Equal(t, "/instructor", HomePath(RoleInstructor))
	assert.Equal(t, "/student", HomePath(RoleStudent))
	assert.Equal(t, DefaultHomePath, HomePath(Role("Superuser")))
}

func TestParseRole(t *testing.T) {
	r, ok := ParseRole("Instructor")
	assert.True(t, ok)
	assert.Equal(t, RoleInstructor, r)
	_, ok = ParseRole("superuser")
	assert.False(t, ok)
}

func contains(set []Role, r Role) bool {
	for _, x := range set {
		if x == r {
			return true
		}
	}
	return false
}
