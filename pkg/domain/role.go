package domain

import "strings"

// Role is the access role asserted by a verifiable credential.
type Role string

const (
	// RoleNone means no recognized role was established; it prices as public.
	RoleNone       Role = ""
	RoleJournalist Role = "journalist"
	RolePremium    Role = "premium"
)

// ParseRole maps a credential claim onto the closed role set. Unknown values yield RoleNone.
func ParseRole(raw string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleJournalist:
		return RoleJournalist
	case RolePremium:
		return RolePremium
	default:
		return RoleNone
	}
}
