package user

import (
	"database/sql/driver"
	"fmt"
)

// Role is one of the four church roles. The zero value is not a valid role.
type Role string

const (
	RoleDiscipulo   Role = "discipulo"
	RoleLiderCelula Role = "lider_celula"
	RoleSupervisor  Role = "supervisor"
	RolePastor      Role = "pastor"
)

// ParseRole maps a stored or submitted string onto a Role
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleDiscipulo:
		return RoleDiscipulo, true
	case RoleLiderCelula:
		return RoleLiderCelula, true
	case RoleSupervisor:
		return RoleSupervisor, true
	case RolePastor:
		return RolePastor, true
	}
	return "", false
}

// Roles returns every valid role, lowest privilege first
func Roles() []Role {
	return []Role{RoleDiscipulo, RoleLiderCelula, RoleSupervisor, RolePastor}
}

// Valid reports whether r is one of the declared roles
func (r Role) Valid() bool {
	_, ok := ParseRole(string(r))
	return ok
}

// Scan rejects unknown role strings coming from the database
func (r *Role) Scan(src interface{}) error {
	var s string
	switch v := src.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("user role: unsupported type %T", src)
	}

	role, ok := ParseRole(s)
	if !ok {
		return fmt.Errorf("user role: unknown value %q", s)
	}
	*r = role
	return nil
}

// Value implements driver.Valuer
func (r Role) Value() (driver.Value, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("user role: unknown value %q", string(r))
	}
	return string(r), nil
}

// HasRole reports whether u holds one of the allowed roles. A nil user never does.
func HasRole(u *User, allowed ...Role) bool {
	if u == nil {
		return false
	}
	for _, role := range allowed {
		if u.Role == role {
			return true
		}
	}
	return false
}
