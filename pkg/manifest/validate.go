package manifest

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/3leaps/pagecrate/pkg/notion"
)

// Validation errors
var (
	// ErrValidationFailed indicates the manifest failed validation.
	ErrValidationFailed = errors.New("manifest validation failed")
)

// ValidationError represents a single validation issue.
type ValidationError struct {
	// Path locates the problematic field (e.g., "crawl.concurrency").
	Path string

	// Message describes the validation failure.
	Message string
}

// Error implements error interface.
func (e ValidationError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

// Error implements error interface.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var b strings.Builder
	b.WriteString("manifest validation failed with ")
	b.WriteString(fmt.Sprintf("%d errors:\n", len(e)))
	for i, err := range e {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("  - ")
		b.WriteString(err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error type.
func (e ValidationErrors) Unwrap() error {
	return ErrValidationFailed
}

// Validate checks the manifest's fields against the documented
// constraints.
//
// Returns nil if validation succeeds, or a ValidationErrors with
// details about all validation failures.
func Validate(m *Manifest) error {
	var errs ValidationErrors

	if m.Version != DefaultVersion {
		errs = append(errs, ValidationError{
			Path:    "version",
			Message: fmt.Sprintf("must be %q, got %q", DefaultVersion, m.Version),
		})
	}

	if m.Root == "" {
		errs = append(errs, ValidationError{
			Path:    "root",
			Message: "is required",
		})
	} else if _, err := notion.NormalizeID(m.Root); err != nil {
		errs = append(errs, ValidationError{
			Path:    "root",
			Message: "is not a resolvable identifier or URL",
		})
	}

	errs = append(errs, validateRange("crawl.max_depth", m.Crawl.MaxDepth, 1, 20)...)
	errs = append(errs, validateRange("crawl.max_children", m.Crawl.MaxChildren, 1, 1000)...)
	errs = append(errs, validateRange("crawl.concurrency", m.Crawl.Concurrency, 1, 32)...)
	if m.Crawl.RateLimit < 0 {
		errs = append(errs, ValidationError{
			Path:    "crawl.rate_limit",
			Message: "must not be negative",
		})
	}

	errs = append(errs, validatePatterns("match.includes", m.Match.Includes)...)
	errs = append(errs, validatePatterns("match.excludes", m.Match.Excludes)...)

	if d := m.Output.Destination; d != "" && d != DefaultDestination && !strings.HasPrefix(d, "file:") {
		errs = append(errs, ValidationError{
			Path:    "output.destination",
			Message: `must be "stdout" or "file:<path>"`,
		})
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// validateRange checks an already-defaulted integer bound. Zero is
// accepted so Validate can run before ApplyDefaults.
func validateRange(path string, v, min, max int) ValidationErrors {
	if v == 0 || (v >= min && v <= max) {
		return nil
	}
	return ValidationErrors{{
		Path:    path,
		Message: fmt.Sprintf("must be between %d and %d, got %d", min, max, v),
	}}
}

func validatePatterns(path string, patterns []string) ValidationErrors {
	var errs ValidationErrors
	for i, pat := range patterns {
		if !doublestar.ValidatePattern(pat) {
			errs = append(errs, ValidationError{
				Path:    fmt.Sprintf("%s[%d]", path, i),
				Message: fmt.Sprintf("invalid glob pattern %q", pat),
			})
		}
	}
	return errs
}
