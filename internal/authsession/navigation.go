package authsession

// Paths are the fixed navigation targets of the session flow.
type Paths struct {
	SignIn  string
	SignOut string
}

// NextNavigation decides where the client should go next. It never performs
// the navigation itself.
//
// A forced navigation wins over everything. While a verify or sign-in is in
// flight the client stays put, so it is not bounced to sign-in before the
// result is known. Otherwise an unauthenticated client is sent to sign-in.
func NextNavigation(state State, paths Paths) (target string, redirect bool) {
	if state.PendingNavigation != "" {
		return state.PendingNavigation, true
	}

	if state.Busy {
		return "", false
	}

	if !state.Authenticated {
		return paths.SignIn, true
	}

	return "", false
}
