package auth

// Role is the coarse authorization tier derived from a principal's
// metadata. The hierarchy is a strict total order:
// guest(0) < user(1) < creator(2) < admin(3).
type Role string

const (
	// RoleGuest is the sentinel for unauthenticated principals. It is
	// never stored on a provider record.
	RoleGuest Role = "guest"
	// RoleUser is the lowest authenticated tier (buy, manage purchases)
	RoleUser Role = "user"
	// RoleCreator can additionally list and manage agents
	RoleCreator Role = "creator"
	// RoleAdmin can administer the marketplace
	RoleAdmin Role = "admin"
)

// roleMetadataKey is the attribute the provider stores the role under.
const roleMetadataKey = "role"

// IsValid checks if the role is one of the predefined valid roles
func (r Role) IsValid() bool {
	switch r {
	case RoleGuest, RoleUser, RoleCreator, RoleAdmin:
		return true
	default:
		return false
	}
}

// Rank returns the role's position in the hierarchy. Unknown roles rank
// below guest so they never satisfy a gate.
func (r Role) Rank() int {
	switch r {
	case RoleGuest:
		return 0
	case RoleUser:
		return 1
	case RoleCreator:
		return 2
	case RoleAdmin:
		return 3
	default:
		return -1
	}
}

// IsAtLeast checks if this role meets the minimum required level
func (r Role) IsAtLeast(minRole Role) bool {
	if !r.IsValid() || !minRole.IsValid() {
		return false
	}
	return r.Rank() >= minRole.Rank()
}

// GetAllRoles returns all predefined roles in hierarchical order
func GetAllRoles() []Role {
	return []Role{
		RoleGuest,
		RoleUser,
		RoleCreator,
		RoleAdmin,
	}
}

// ParseRole safely parses a string into a Role type
func ParseRole(roleStr string) (Role, bool) {
	role := Role(roleStr)
	return role, role.IsValid()
}

// ResolveRole maps a possibly absent principal to a role.
//
// A nil principal is a guest. A recognized role attribute wins.
// An absent or unrecognized attribute resolves to RoleUser, the lowest
// authenticated tier, NOT to guest: authenticated principals without a
// provisioned role get baseline access. This fail-open default matches
// the provider-side data and is deliberate; changing it to fail-closed
// would alter observable authorization behavior.
func ResolveRole(principal *Principal) Role {
	if principal == nil {
		return RoleGuest
	}

	if raw, ok := principal.Attribute(roleMetadataKey); ok {
		if role, valid := ParseRole(raw); valid && role != RoleGuest {
			return role
		}
	}

	return RoleUser
}
