package types

// UserRole is the CRM role of a user
type UserRole string

const (
	UserRoleAdmin      UserRole = "admin"
	UserRoleSeller     UserRole = "seller"
	UserRoleTechnician UserRole = "technician"
)

func (r UserRole) String() string {
	return string(r)
}

// UserStatus is the account status of a user
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive"
)

func (s UserStatus) String() string {
	return string(s)
}
