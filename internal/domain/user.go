package domain

import "time"

// User is anyone who can log in: requesters, agents and administrators.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	IsStaff      bool
	IsSuperuser  bool
	IsActive     bool
	CreatedAt    time.Time
}

// CanHandleTickets reports whether the user belongs to the support staff.
func (u *User) CanHandleTickets() bool {
	return u != nil && (u.IsStaff || u.IsSuperuser)
}

// UserProfile holds per-user helpdesk attributes.
type UserProfile struct {
	UserID     int64
	IsCritical bool
	NationalID *string
}
