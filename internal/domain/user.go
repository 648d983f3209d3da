package domain

import "time"

// Role is a named authority granted to a user.
type Role struct {
	ID   int64
	Name string
}

// User is the domain model for an authenticated account.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	LastName     string
	PhoneNo      string
	EmailID      string
	Roles        []Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RoleNames returns the user's role names in store order.
func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, role := range u.Roles {
		names = append(names, role.Name)
	}
	return names
}
