package handlers

import (
	"finance-dashboard/internal/authsession"
)

// AuthStatusResponse is the client's session state together with where it
// should navigate next, if anywhere.
type AuthStatusResponse struct {
	authsession.State
	RedirectTo string `json:"redirect_to,omitempty"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
