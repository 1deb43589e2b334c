package enums

import "strings"

// Role is the caller role carried in bearer tokens.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)

var roles = set[Role]{RoleAdmin, RoleCustomer}

func (r Role) String() string { return string(r) }

func (r Role) IsValid() bool { return roles.has(r) }

// ParseRole accepts any casing; roles are stored lower case.
func ParseRole(value string) (Role, error) {
	return roles.parse("role", value, strings.ToLower)
}
