package authsession

import (
	"errors"
	"fmt"
)

type ErrorKind int

const (
	// AuthenticationRejected means the credentials were refused. The message
	// is shown to the user and the gate is left untouched.
	AuthenticationRejected ErrorKind = iota + 1

	// VerificationFailed means the held credential is absent, expired or was
	// rejected. Callers treat the client as unauthenticated.
	VerificationFailed

	// RefreshFailed means a background refresh gave up. It forces sign-out
	// navigation.
	RefreshFailed

	// SignOutTransportError means the remote sign-out call failed. The local
	// session is torn down anyway.
	SignOutTransportError

	// SignInTransportError means the finance API could not be asked about the
	// credentials at all. The user may retry later.
	SignInTransportError
)

func (k ErrorKind) String() string {
	switch k {
	case AuthenticationRejected:
		return "authentication_rejected"
	case VerificationFailed:
		return "verification_failed"
	case RefreshFailed:
		return "refresh_failed"
	case SignOutTransportError:
		return "sign_out_transport_error"
	case SignInTransportError:
		return "sign_in_transport_error"
	default:
		return "unknown"
	}
}

// Messages surfaced to the user on a failed sign-in.
const (
	MessageInvalidCredentials = "Invalid email or password."
	MessageSignInUnavailable  = "Sign-in is currently unavailable. Please try again later."
)

var ErrNotAuthenticated = errors.New("client is not authenticated")

type AuthError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// Is matches another *AuthError of the same kind, so callers can write
// errors.Is(err, &AuthError{Kind: AuthenticationRejected}).
func (e *AuthError) Is(target error) bool {
	t, ok := target.(*AuthError)
	return ok && t.Kind == e.Kind
}

// IsKind reports whether err carries an *AuthError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var authErr *AuthError
	return errors.As(err, &authErr) && authErr.Kind == kind
}
