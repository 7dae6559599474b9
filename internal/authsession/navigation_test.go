package authsession

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextNavigation(t *testing.T) {
	tests := []struct {
		name         string
		state        State
		wantTarget   string
		wantRedirect bool
	}{
		{
			name:         "authenticated client stays",
			state:        State{Authenticated: true},
			wantRedirect: false,
		},
		{
			name:         "unauthenticated client goes to sign-in",
			state:        State{},
			wantTarget:   "/signin",
			wantRedirect: true,
		},
		{
			name:         "busy client is never redirected",
			state:        State{Busy: true},
			wantRedirect: false,
		},
		{
			name:         "forced navigation wins over busy",
			state:        State{Busy: true, PendingNavigation: "/signout"},
			wantTarget:   "/signout",
			wantRedirect: true,
		},
		{
			name:         "forced navigation wins over authenticated",
			state:        State{Authenticated: true, PendingNavigation: "/signout"},
			wantTarget:   "/signout",
			wantRedirect: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target, redirect := NextNavigation(tt.state, testPaths)
			assert.Equal(t, tt.wantRedirect, redirect)
			assert.Equal(t, tt.wantTarget, target)
		})
	}
}
