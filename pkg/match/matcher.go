package match

import (
	"errors"

	"github.com/bmatcuk/doublestar/v4"
)

// Matcher evaluates path-aware doublestar patterns against object keys.
//
// The index pages use a Matcher for operator-configured visibility rules:
//   - Include patterns: when present, a key must match at least one
//   - Exclude patterns: a key must not match any
//   - Hidden keys (a segment starting with '.') are dropped unless
//     IncludeHidden is set
//
// The Matcher is safe for concurrent use after creation.
type Matcher struct {
	includes      []string
	excludes      []string
	includeHidden bool
}

// Config configures a Matcher.
type Config struct {
	// Includes are doublestar patterns a key must match (at least one).
	// Empty means every key is included.
	Includes []string

	// Excludes are doublestar patterns a key must not match (any).
	Excludes []string

	// IncludeHidden controls whether hidden keys are matched.
	IncludeHidden bool
}

// ErrInvalidPattern is returned when a pattern cannot be compiled.
var ErrInvalidPattern = errors.New("invalid glob pattern")

// PatternError wraps pattern-related errors with context.
type PatternError struct {
	Pattern string
	Err     error
}

func (e *PatternError) Error() string {
	return "pattern " + e.Pattern + ": " + e.Err.Error()
}

func (e *PatternError) Unwrap() error {
	return e.Err
}

// New creates a new Matcher from the given configuration.
//
// Patterns are normalized to handle Windows-style backslash separators
// while preserving escape sequences for literal glob metacharacters.
func New(cfg Config) (*Matcher, error) {
	includes, err := compilePatterns(cfg.Includes)
	if err != nil {
		return nil, err
	}
	excludes, err := compilePatterns(cfg.Excludes)
	if err != nil {
		return nil, err
	}
	return &Matcher{
		includes:      includes,
		excludes:      excludes,
		includeHidden: cfg.IncludeHidden,
	}, nil
}

func compilePatterns(raw []string) ([]string, error) {
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		normalized := NormalizePattern(r)
		if !doublestar.ValidatePattern(normalized) {
			return nil, &PatternError{Pattern: r, Err: ErrInvalidPattern}
		}
		out = append(out, normalized)
	}
	return out, nil
}

// Match returns true if the key passes the visibility rules.
//
// Keys are matched as-is since object keys are opaque strings. A trailing
// '/' on grouping markers is ignored so "internal/" is matched as
// "internal".
func (m *Matcher) Match(key string) bool {
	if !m.includeHidden && IsHidden(key) {
		return false
	}

	subject := TrimTrailingSlash(key)

	if len(m.includes) > 0 {
		matched := false
		for _, inc := range m.includes {
			if matchPattern(inc, subject) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	for _, exc := range m.excludes {
		if matchPattern(exc, subject) {
			return false
		}
	}

	return true
}

// Apply returns the keys that pass Match, preserving order. A nil Matcher
// passes every key.
func (m *Matcher) Apply(keys []string) []string {
	if m == nil {
		return keys
	}
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if m.Match(k) {
			out = append(out, k)
		}
	}
	return out
}

// matchPattern matches a key against a doublestar pattern.
func matchPattern(pattern, key string) bool {
	matched, err := doublestar.Match(pattern, key)
	if err != nil {
		// Patterns are validated at construction time.
		return false
	}
	return matched
}
