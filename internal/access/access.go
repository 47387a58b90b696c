// Package access decides what an authenticated caller may do and which role a new account receives.
package access

import (
	"fmt"
	"regexp"
	"strings"

	"quartermaster/internal/models"
)

// Principal is the verified identity behind a request.
type Principal struct {
	UserID uint
	Email  string
	Role   models.Role
}

// IsAdmin reports whether the principal holds the admin role.
func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == models.RoleAdmin
}

// RequireAuthenticated fails with UNAUTHORIZED when there is no principal.
func RequireAuthenticated(p *Principal) error {
	if p == nil || p.UserID == 0 {
		return models.NewUnauthorizedError("Authentication required")
	}
	return nil
}

// RequireAdmin fails with FORBIDDEN unless the principal is an administrator.
func RequireAdmin(p *Principal) error {
	if err := RequireAuthenticated(p); err != nil {
		return err
	}
	if !p.IsAdmin() {
		return models.NewForbiddenError("Admin access required")
	}
	return nil
}

// RoleAssigner maps emails to roles using an admin allow-list and decides
// whether an unknown email may be provisioned, using the organizational pattern.
type RoleAssigner struct {
	admins  map[string]struct{}
	pattern *regexp.Regexp
}

// NewRoleAssigner builds a RoleAssigner. An empty pattern accepts any email.
func NewRoleAssigner(adminEmails []string, pattern string) (*RoleAssigner, error) {
	ra := &RoleAssigner{admins: make(map[string]struct{}, len(adminEmails))}
	for _, e := range adminEmails {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" {
			ra.admins[e] = struct{}{}
		}
	}
	if pattern != "" {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("compile email pattern: %w", err)
		}
		ra.pattern = re
	}
	return ra, nil
}

// IsAdminEmail reports whether email is on the admin allow-list.
func (ra *RoleAssigner) IsAdminEmail(email string) bool {
	_, ok := ra.admins[strings.ToLower(strings.TrimSpace(email))]
	return ok
}

// Assign returns the role a new account with this email receives.
func (ra *RoleAssigner) Assign(email string) models.Role {
	if ra.IsAdminEmail(email) {
		return models.RoleAdmin
	}
	return models.RoleUser
}

// MatchesPattern reports whether email matches the organizational pattern.
func (ra *RoleAssigner) MatchesPattern(email string) bool {
	if ra.pattern == nil {
		return true
	}
	return ra.pattern.MatchString(strings.ToLower(strings.TrimSpace(email)))
}

// Eligible reports whether a new account may be provisioned for email.
func (ra *RoleAssigner) Eligible(email string) bool {
	return ra.IsAdminEmail(email) || ra.MatchesPattern(email)
}
