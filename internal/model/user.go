// Package model defines domain entities for the application.
package model

import "time"

// TimestampLayout renders creation times as ISO-8601 local time with
// microsecond precision and no zone suffix, e.g. 2024-05-01T13:45:10.123456.
const TimestampLayout = "2006-01-02T15:04:05.000000"

// User represents a user record held by the store.
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// CreatedAtString returns the creation time formatted with TimestampLayout.
func (u *User) CreatedAtString() string {
	return u.CreatedAt.Format(TimestampLayout)
}

// Clone returns a copy of the user that shares no state with the original.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
