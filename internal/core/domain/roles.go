package domain

import (
	"sort"
)

// Role represents a named capability grant
type Role string

// Available roles
const (
	RoleAdministrator Role = "ADMINISTRATOR"
	RoleAccountant    Role = "ACCOUNTANT"
	RoleUser          Role = "USER"
	RoleAuditor       Role = "AUDITOR"
)

// ParseRole resolves a role by its exact name
func ParseRole(name string) (Role, bool) {
	switch Role(name) {
	case RoleAdministrator, RoleAccountant, RoleUser, RoleAuditor:
		return Role(name), true
	}
	return "", false
}

// IsAdministrative returns true for the administrative role
func (r Role) IsAdministrative() bool {
	return r == RoleAdministrator
}

// Authority returns the role name with the ROLE_ prefix used in API responses
func (r Role) Authority() string {
	return "ROLE_" + string(r)
}

// RoleSet is a set of roles held by one identity.
// Kept sorted and duplicate-free by the helpers below.
type RoleSet []Role

// NewRoleSet builds a normalized role set
func NewRoleSet(roles ...Role) RoleSet {
	var rs RoleSet
	for _, r := range roles {
		rs = rs.Add(r)
	}
	return rs
}

// Has checks membership
func (rs RoleSet) Has(role Role) bool {
	for _, r := range rs {
		if r == role {
			return true
		}
	}
	return false
}

// HasAny checks membership of any of the given roles
func (rs RoleSet) HasAny(roles ...Role) bool {
	for _, r := range roles {
		if rs.Has(r) {
			return true
		}
	}
	return false
}

// Add returns a new set containing role
func (rs RoleSet) Add(role Role) RoleSet {
	if rs.Has(role) {
		return rs
	}
	out := make(RoleSet, len(rs), len(rs)+1)
	copy(out, rs)
	out = append(out, role)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Remove returns a new set without role
func (rs RoleSet) Remove(role Role) RoleSet {
	out := make(RoleSet, 0, len(rs))
	for _, r := range rs {
		if r != role {
			out = append(out, r)
		}
	}
	return out
}

// Authorities returns the sorted ROLE_-prefixed names for API responses
func (rs RoleSet) Authorities() []string {
	names := make([]string, len(rs))
	for i, r := range rs {
		names[i] = r.Authority()
	}
	sort.Strings(names)
	return names
}

// ValidateRoleSet enforces the structural role invariants.
// Every identity-mutating operation must consult this before persisting:
// the set is never empty and the administrative role is never combined
// with business roles.
func ValidateRoleSet(rs RoleSet) error {
	if len(rs) == 0 {
		return ErrLastRole
	}
	if rs.Has(RoleAdministrator) && len(rs) > 1 {
		return ErrRoleCombination
	}
	return nil
}
