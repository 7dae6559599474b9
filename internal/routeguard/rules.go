// Package routeguard decides, per page navigation, whether a request passes
// through or is redirected based only on the presence of a session cookie.
package routeguard

import (
	"errors"
	"fmt"
	"path"
	"strings"
)

type Policy string

const (
	PolicyNext     Policy = "next"
	PolicyRedirect Policy = "redirect"
)

var (
	ErrInvalidRulePath   = errors.New("rule path must be absolute")
	ErrInvalidPolicy     = errors.New("unknown when_authenticated policy")
	ErrMissingRedirect   = errors.New("redirect policy requires a target")
	ErrUnexpectedTarget  = errors.New("target is only allowed with the redirect policy")
	ErrDuplicateRulePath = errors.New("duplicate rule path")
	ErrSignOutIsPrivate  = errors.New("sign-out path must not be private")
)

// Rule is a static access policy for a path prefix.
type Rule struct {
	Path              string `yaml:"path"`
	Private           bool   `yaml:"private"`
	WhenAuthenticated Policy `yaml:"when_authenticated"`
	RedirectTo        string `yaml:"redirect_to"`
}

func (r Rule) policy() Policy {
	if r.WhenAuthenticated == "" {
		return PolicyNext
	}
	return r.WhenAuthenticated
}

// Validate checks that a target is present exactly when the policy is
// redirect.
func (r Rule) Validate() error {
	if !strings.HasPrefix(r.Path, "/") {
		return fmt.Errorf("%w: %q", ErrInvalidRulePath, r.Path)
	}

	switch r.policy() {
	case PolicyNext:
		if r.RedirectTo != "" {
			return fmt.Errorf("%w: rule %s", ErrUnexpectedTarget, r.Path)
		}
	case PolicyRedirect:
		if r.RedirectTo == "" {
			return fmt.Errorf("%w: rule %s", ErrMissingRedirect, r.Path)
		}
		if !strings.HasPrefix(r.RedirectTo, "/") {
			return fmt.Errorf("%w: redirect target %q", ErrInvalidRulePath, r.RedirectTo)
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidPolicy, r.WhenAuthenticated)
	}

	return nil
}

// DefaultRules protect the app under /internal and send signed-in users
// away from the sign-in page.
func DefaultRules() []Rule {
	return []Rule{
		{Path: "/internal", Private: true, WhenAuthenticated: PolicyNext},
		{Path: "/signin", Private: false, WhenAuthenticated: PolicyRedirect, RedirectTo: "/internal/financial/overview"},
		{Path: "/signup", Private: false, WhenAuthenticated: PolicyRedirect, RedirectTo: "/internal/financial/overview"},
	}
}

// Normalize cleans p and drops any trailing slash. The empty path becomes "/".
func Normalize(p string) string {
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}

// covers reports whether prefix matches p on whole path segments.
func covers(prefix, p string) bool {
	if prefix == "/" {
		return true
	}
	return p == prefix || strings.HasPrefix(p, prefix+"/")
}
