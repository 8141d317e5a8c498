package user

import "time"

// User is the stored shape, including the credential digest. Handlers never
// marshal a User directly; they build the public {id,email} view themselves.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
}
