package model

import "time"

// User is the identity record. Credentials and token issuance live in the
// external identity service; this side only references users by id.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}
