package oauthmodel

import (
	"fmt"
	"sort"
	"strings"
)

// Permission is an OAuth scope understood by the provider.
type Permission string

const (
	PermissionAccessProfile Permission = "access_profile"
	PermissionAccessEmail   Permission = "access_email"
	PermissionAccessPhone   Permission = "access_phone"
	PermissionAccessBalance Permission = "access_balance"
	PermissionAccessFriends Permission = "access_friends"
	PermissionAccessFeed    Permission = "access_feed"
	PermissionMakePayments  Permission = "make_payments"
)

var knownPermissions = map[Permission]struct{}{
	PermissionAccessProfile: {},
	PermissionAccessEmail:   {},
	PermissionAccessPhone:   {},
	PermissionAccessBalance: {},
	PermissionAccessFriends: {},
	PermissionAccessFeed:    {},
	PermissionMakePayments:  {},
}

// IsKnown reports whether p is one of the provider's published permissions.
func (p Permission) IsKnown() bool {
	_, ok := knownPermissions[p]
	return ok
}

// Permissions is a set of permissions kept as a sorted, de-duplicated slice.
type Permissions []Permission

// NewPermissions normalises the given permissions into a set.
func NewPermissions(perms ...Permission) Permissions {
	seen := make(map[Permission]struct{}, len(perms))
	set := make(Permissions, 0, len(perms))
	for _, p := range perms {
		p = Permission(strings.TrimSpace(string(p)))
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		set = append(set, p)
	}
	sort.Slice(set, func(i, j int) bool { return set[i] < set[j] })
	return set
}

// ParsePermissions accepts a comma or space separated list, as the provider
// returns either form depending on the flow.
func ParsePermissions(s string) Permissions {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
	perms := make([]Permission, 0, len(fields))
	for _, f := range fields {
		perms = append(perms, Permission(f))
	}
	return NewPermissions(perms...)
}

func (ps Permissions) Contains(p Permission) bool {
	for _, v := range ps {
		if v == p {
			return true
		}
	}
	return false
}

// Validate rejects empty sets and permissions the provider does not publish.
func (ps Permissions) Validate() error {
	if len(ps) == 0 {
		return ErrNoPermissions
	}
	for _, p := range ps {
		if !p.IsKnown() {
			return fmt.Errorf("%w: %q", ErrUnknownPermission, p)
		}
	}
	return nil
}

// CSV renders the set in the form used by the authorize URL.
func (ps Permissions) CSV() string {
	return ps.join(",")
}

func (ps Permissions) Strings() []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = string(p)
	}
	return out
}

func (ps Permissions) join(sep string) string {
	return strings.Join(ps.Strings(), sep)
}
