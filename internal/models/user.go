package models

import "time"

// User represents a platform user. Users are created out-of-band; this
// service only manages their group and project memberships.
type User struct {
	ID        int64     `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	CreatedAt time.Time `json:"created_at"`
}

// FullName returns the display name used in member projections.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// AddedMember is the public projection returned by the add-member operations.
type AddedMember struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
