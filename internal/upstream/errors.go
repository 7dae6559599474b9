package upstream

import (
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
)

var (
	// ErrRejected means the finance API refused the presented credentials or
	// refresh token. Retrying with the same input will not succeed.
	ErrRejected = errors.New("credentials rejected by upstream")

	ErrNoCredential = errors.New("no credential available")
)

// StatusError is returned when the finance API answers with an unexpected
// status code.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream %s %s returned status %d", e.Method, e.Path, e.StatusCode)
}

func classifyTokenError(err error) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
		switch retrieveErr.Response.StatusCode {
		case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: %s", ErrRejected, retrieveErr.ErrorCode)
		}
	}

	return fmt.Errorf("token request failed: %w", err)
}
