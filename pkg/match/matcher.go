// Package match scopes which projected namespace keys are exposed,
// using glob patterns.
package match

import (
	"errors"

	"github.com/bmatcuk/doublestar/v4"
)

// Matcher evaluates include/exclude glob patterns against namespace keys.
//
//   - Include patterns: a key must match at least one. An empty include
//     set matches every key.
//   - Exclude patterns: a key must not match any.
//
// The Matcher is safe for concurrent use after creation.
type Matcher struct {
	includes []string
	excludes []string
}

// Config configures a Matcher.
type Config struct {
	// Includes are glob patterns keys must match (at least one).
	// Optional: empty means every key is included.
	Includes []string

	// Excludes are glob patterns keys must not match (any).
	Excludes []string
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

// New creates a Matcher, validating every pattern up front.
func New(cfg Config) (*Matcher, error) {
	for _, raw := range append(append([]string{}, cfg.Includes...), cfg.Excludes...) {
		if !doublestar.ValidatePattern(raw) {
			return nil, &PatternError{Pattern: raw, Err: ErrInvalidPattern}
		}
	}
	return &Matcher{includes: cfg.Includes, excludes: cfg.Excludes}, nil
}

// Match reports whether key passes the include/exclude rules.
func (m *Matcher) Match(key string) bool {
	if m == nil {
		return true
	}
	for _, pat := range m.excludes {
		if ok, _ := doublestar.Match(pat, key); ok {
			return false
		}
	}
	if len(m.includes) == 0 {
		return true
	}
	for _, pat := range m.includes {
		if ok, _ := doublestar.Match(pat, key); ok {
			return true
		}
	}
	return false
}
