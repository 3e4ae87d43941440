package core

import (
	"fmt"

	"github.com/gobwas/glob"
)

// GateRule is a single allow/deny entry in the route gate policy.
// Patterns are glob-style with '/' as the segment separator, so
// "/admin/*" matches one path segment and "/admin/**" matches any depth.
type GateRule struct {
	Pattern string `json:"pattern" koanf:"pattern"`

	// Public marks paths that proceed without an authenticated session.
	Public bool `json:"public" koanf:"public"`

	// Role, when set, additionally requires the session to carry this role.
	Role string `json:"role,omitempty" koanf:"role"`
}

type compiledRule struct {
	rule GateRule
	glob glob.Glob
}

// RouteGate answers whether a request may proceed given the session
// hydrated from its token. Path-matching policy comes from the caller's
// rule set; the gate itself only combines it with the session state.
//
// Rules are matched in order; the first matching pattern wins. A path
// matching no rule requires an authenticated session.
type RouteGate struct {
	rules []compiledRule
}

// NewRouteGate compiles the rule set. Returns an error wrapping
// ErrInvalidGateRule if any pattern fails to compile.
func NewRouteGate(rules []GateRule) (*RouteGate, error) {
	compiled := make([]compiledRule, 0, len(rules))
	for _, r := range rules {
		g, err := glob.Compile(r.Pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidGateRule, r.Pattern, err)
		}
		compiled = append(compiled, compiledRule{rule: r, glob: g})
	}
	return &RouteGate{rules: compiled}, nil
}

// Allow reports whether a request for path may proceed with the given
// session.
func (g *RouteGate) Allow(path string, session Session) bool {
	for _, c := range g.rules {
		if !c.glob.Match(path) {
			continue
		}
		if c.rule.Public {
			return true
		}
		if c.rule.Role != "" {
			return session.HasRole(c.rule.Role)
		}
		return session.Authenticated()
	}
	return session.Authenticated()
}
