// Package filter selects peer sets by name and tickers by symbol.
package filter

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/komsit37/peerval/pkg/peerval/types"
)

// Filter matches a peer-set name or a ticker.
type Filter interface {
	Match(name string) bool
}

// Parse builds a filter from an expression:
//   - Comma-separated exact names: "MSFT,ORCL"
//   - Glob: "Software/*"
//   - Regex: "/^S/"
//   - Leading "!" negates any of the above: "!SNOW"
//
// Anything else is a case-insensitive substring match.
func Parse(expr string) (Filter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return Always(true), nil
	}
	if strings.HasPrefix(expr, "!") {
		inner, err := Parse(expr[1:])
		if err != nil {
			return nil, err
		}
		return Not{inner}, nil
	}
	if strings.HasPrefix(expr, "/") && strings.HasSuffix(expr, "/") && len(expr) > 2 {
		re, err := regexp.Compile(expr[1 : len(expr)-1])
		if err != nil {
			return nil, fmt.Errorf("filter %q: %w", expr, err)
		}
		return Regex{re: re}, nil
	}
	if strings.Contains(expr, ",") {
		set := map[string]struct{}{}
		for _, p := range strings.Split(expr, ",") {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			set[strings.ToUpper(p)] = struct{}{}
		}
		return ExactSet{set: set}, nil
	}
	if strings.ContainsAny(expr, "*?[") {
		if _, err := filepath.Match(expr, ""); err != nil {
			return nil, fmt.Errorf("filter %q: %w", expr, err)
		}
		return Glob{pattern: expr}, nil
	}
	return SubstrCI{needle: expr}, nil
}

// Sets keeps the peer sets whose name matches f.
func Sets(sets []types.PeerSet, f Filter) []types.PeerSet {
	if f == nil {
		return sets
	}
	out := make([]types.PeerSet, 0, len(sets))
	for _, s := range sets {
		if f.Match(s.Name) {
			out = append(out, s)
		}
	}
	return out
}

// Tickers keeps the tickers matching f, de-duplicated in first-seen order.
func Tickers(tickers []string, f Filter) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(tickers))
	for _, t := range tickers {
		if _, dup := seen[t]; dup {
			continue
		}
		if f != nil && !f.Match(t) {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// Union returns every ticker of sets, de-duplicated in first-seen order.
func Union(sets []types.PeerSet) []string {
	var all []string
	for _, s := range sets {
		all = append(all, s.Tickers...)
	}
	return Tickers(all, nil)
}

// Implementations

type Always bool

func (a Always) Match(string) bool { return bool(a) }

// ExactSet matches case-insensitively against a fixed set.
type ExactSet struct{ set map[string]struct{} }

func (e ExactSet) Match(name string) bool {
	_, ok := e.set[strings.ToUpper(name)]
	return ok
}

type Glob struct{ pattern string }

func (g Glob) Match(name string) bool {
	ok, _ := filepath.Match(g.pattern, name)
	return ok
}

type Regex struct{ re *regexp.Regexp }

func (r Regex) Match(name string) bool { return r.re.MatchString(name) }

// Not inverts a filter.
type Not struct{ F Filter }

func (n Not) Match(name string) bool { return !n.F.Match(name) }

// SubstrCI matches if name contains needle, case-insensitively.
type SubstrCI struct{ needle string }

func (s SubstrCI) Match(name string) bool {
	if s.needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(name), strings.ToLower(s.needle))
}

// String provides a human-readable representation useful for logs/errors.
func (g Glob) String() string     { return fmt.Sprintf("glob:%s", g.pattern) }
func (s SubstrCI) String() string { return fmt.Sprintf("substr-ci:%s", s.needle) }
func (r Regex) String() string    { return fmt.Sprintf("regex:%s", r.re) }
