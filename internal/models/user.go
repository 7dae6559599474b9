package models

import "time"

// UserDetail is the profile of the signed-in user as returned by the finance API.
type UserDetail struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Currency    string    `json:"currency,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Group is a household the user belongs to.
type Group struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

// Credentials are submitted on sign-in.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
