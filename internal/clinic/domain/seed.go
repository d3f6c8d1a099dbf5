package domain

import "strings"

// SeedAdminID is a fixed non-canonical identifier so the seed administrator
// is never written to the remote store.
const SeedAdminID = "00000000-0000-0000-0000-000000000001"

// SeedAdmin describes the bootstrap administrator account. It is merged into
// the roster on every refresh so an administrator is always reachable, even
// against an empty or unreachable remote store.
type SeedAdmin struct {
	Email    string
	Password string
	PIN      string
	Name     string
}

// SeedRoster builds the fixed local staff list the remote roster is merged
// into. It contains exactly the administrator.
func SeedRoster(a SeedAdmin) []User {
	first, last := splitName(a.Name)
	return []User{
		{
			ID:             SeedAdminID,
			Email:          a.Email,
			Password:       a.Password,
			PIN:            a.PIN,
			FirstName:      first,
			LastName:       last,
			Name:           a.Name,
			Role:           RoleAdmin,
			SessionValue:   0,
			CommissionRate: 100,
		},
	}
}

func splitName(full string) (first, last string) {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return "", ""
	}
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}
