package auth

import "strings"

const (
	RoleCandidate = "CANDIDATE"
	RoleCompany   = "COMPANY"
	RoleAdmin     = "ADMIN"
	RoleDev       = "DEV"
)

// Identity is the resolved caller, threaded explicitly through every service
// operation. There is no ambient "current user" lookup anywhere below the
// HTTP layer.
type Identity struct {
	Username string
	Roles    []string
}

func (id Identity) HasRole(role string) bool {
	for _, r := range id.Roles {
		if strings.EqualFold(r, role) {
			return true
		}
	}
	return false
}

// CanAccessAll reports whether the caller may read entities it does not own.
func (id Identity) CanAccessAll() bool {
	return id.HasRole(RoleAdmin) || id.HasRole(RoleDev)
}
