package rbac

import (
	"context"
	"strings"
)

// Checker answers "may this role perform this action?" against a role-to-
// permission table. Permission strings are "resource:action"; a trailing *
// grants the whole prefix and a bare "*" grants everything.
type Checker struct {
	roles map[string][]string
}

// NewChecker builds a Checker over the given table, falling back to the
// package default policy when nil.
func NewChecker(roles map[string][]string) *Checker {
	if roles == nil {
		roles = RolePermissions
	}
	return &Checker{roles: roles}
}

func (c *Checker) Has(role, perm string) bool {
	for _, granted := range c.roles[role] {
		if permCovers(granted, perm) {
			return true
		}
	}
	return false
}

// Any reports whether the role holds at least one of the permissions.
func (c *Checker) Any(role string, perms ...string) bool {
	for _, p := range perms {
		if c.Has(role, p) {
			return true
		}
	}
	return false
}

func permCovers(granted, want string) bool {
	if granted == "*" || granted == want {
		return true
	}
	if prefix, ok := strings.CutSuffix(granted, "*"); ok {
		return strings.HasPrefix(want, prefix)
	}
	return false
}

// Role travels in the request context between the JWT middleware and the
// route guards.

type roleKey struct{}

func WithRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, roleKey{}, role)
}

func RoleFromContext(ctx context.Context) string {
	role, _ := ctx.Value(roleKey{}).(string)
	return role
}
