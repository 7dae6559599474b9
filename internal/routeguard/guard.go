package routeguard

import (
	"fmt"
	"sort"
)

type Outcome int

const (
	Continue Outcome = iota
	Redirect
)

func (o Outcome) String() string {
	if o == Redirect {
		return "redirect"
	}
	return "continue"
}

type Decision struct {
	Outcome Outcome
	Target  string
	// Rule is the path of the matched rule, empty when none matched.
	Rule string
}

// Guard holds the compiled rule set. It is immutable and safe for concurrent
// use.
type Guard struct {
	rules       []Rule
	signOutPath string
}

// New validates rules and orders them from most to least specific.
func New(rules []Rule, signOutPath string) (*Guard, error) {
	signOutPath = Normalize(signOutPath)

	compiled := make([]Rule, 0, len(rules))
	seen := make(map[string]struct{}, len(rules))

	for _, rule := range rules {
		if err := rule.Validate(); err != nil {
			return nil, err
		}

		rule.Path = Normalize(rule.Path)
		rule.WhenAuthenticated = rule.policy()

		if _, ok := seen[rule.Path]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateRulePath, rule.Path)
		}
		seen[rule.Path] = struct{}{}

		compiled = append(compiled, rule)
	}

	sort.SliceStable(compiled, func(i, j int) bool {
		return len(compiled[i].Path) > len(compiled[j].Path)
	})

	g := &Guard{rules: compiled, signOutPath: signOutPath}

	// An unauthenticated visitor of the sign-out page would be redirected to
	// itself forever.
	if rule, ok := g.match(signOutPath); ok && rule.Private {
		return nil, fmt.Errorf("%w: %s falls under rule %s", ErrSignOutIsPrivate, signOutPath, rule.Path)
	}

	return g, nil
}

func (g *Guard) Rules() []Rule {
	return append([]Rule(nil), g.rules...)
}

// Decide evaluates the rule table for a request path. It performs no I/O.
func (g *Guard) Decide(requestPath string, hasCookie bool) Decision {
	rule, ok := g.match(Normalize(requestPath))
	if !ok {
		return Decision{Outcome: Continue}
	}

	switch {
	case !hasCookie && rule.Private:
		return Decision{Outcome: Redirect, Target: g.signOutPath, Rule: rule.Path}
	case hasCookie && !rule.Private && rule.WhenAuthenticated == PolicyRedirect:
		return Decision{Outcome: Redirect, Target: rule.RedirectTo, Rule: rule.Path}
	default:
		return Decision{Outcome: Continue, Rule: rule.Path}
	}
}

func (g *Guard) match(p string) (Rule, bool) {
	for _, rule := range g.rules {
		if covers(rule.Path, p) {
			return rule, true
		}
	}
	return Rule{}, false
}
