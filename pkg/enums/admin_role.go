package enums

// AdminRole is the role carried in back-office access tokens.
type AdminRole string

const (
	AdminRoleAdmin AdminRole = "admin"
)

// IsValid reports whether the value is a known AdminRole.
func (r AdminRole) IsValid() bool {
	return r == AdminRoleAdmin
}
