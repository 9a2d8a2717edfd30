// Package manifest provides loading and validation of pagecrate job manifests.
//
// A job manifest is a YAML or JSON file that configures all aspects of a
// crawl job: the root identifier, crawl bounds, key scoping, and output.
//
// Example manifest (YAML):
//
//	version: "1.0"
//	root: https://www.notion.so/Team-Wiki-0123456789abcdef0123456789abcdef
//	crawl:
//	  max_depth: 5
//	  max_children: 50
//	  concurrency: 4
//	match:
//	  includes:
//	    - "docs/**"
//	  excludes:
//	    - "**/*.tmp"
//	output:
//	  destination: stdout
//	  progress: true
package manifest

// Manifest represents a validated job manifest.
//
// A manifest configures all aspects of a crawl job. Required fields are
// Version and Root. Crawl, Match, and Output are optional with sensible
// defaults.
type Manifest struct {
	// Version is the manifest schema version. Must be "1.0".
	Version string `json:"version" yaml:"version"`

	// Root is the crawl root: a normalized identifier or a URL
	// containing one.
	Root string `json:"root" yaml:"root"`

	// Crawl configures crawl bounds (optional).
	Crawl CrawlConfig `json:"crawl,omitempty" yaml:"crawl,omitempty"`

	// Match configures key scoping by glob patterns (optional).
	Match MatchConfig `json:"match,omitempty" yaml:"match,omitempty"`

	// Output configures output destination and format (optional).
	Output OutputConfig `json:"output,omitempty" yaml:"output,omitempty"`
}

// CrawlConfig configures crawl bounds.
//
// All fields are optional with sensible defaults applied during loading.
type CrawlConfig struct {
	// MaxDepth is the maximum recursion depth. Range: 1-20. Default: 5.
	MaxDepth int `json:"max_depth,omitempty" yaml:"max_depth,omitempty"`

	// MaxChildren caps per-parent recursion fan-out.
	// Range: 1-1000. Default: 50.
	MaxChildren int `json:"max_children,omitempty" yaml:"max_children,omitempty"`

	// Concurrency is the number of concurrent subtree fetches.
	// Range: 1-32. Default: 4.
	Concurrency int `json:"concurrency,omitempty" yaml:"concurrency,omitempty"`

	// RateLimit is the maximum upstream requests per second
	// (0 = provider default).
	RateLimit float64 `json:"rate_limit,omitempty" yaml:"rate_limit,omitempty"`
}

// MatchConfig configures projected-key scoping by glob patterns.
type MatchConfig struct {
	// Includes is a list of glob patterns for keys to include.
	// Optional: empty includes every key.
	Includes []string `json:"includes,omitempty" yaml:"includes,omitempty"`

	// Excludes is a list of glob patterns for keys to exclude. Optional.
	Excludes []string `json:"excludes,omitempty" yaml:"excludes,omitempty"`
}

// OutputConfig configures output destination and format.
//
// All fields are optional with sensible defaults applied during loading.
type OutputConfig struct {
	// Destination is the output target.
	// Values: "stdout" or "file:/path/to/output.jsonl"
	// Default: "stdout".
	Destination string `json:"destination,omitempty" yaml:"destination,omitempty"`

	// Progress enables progress record emission during the crawl.
	// Default: true.
	Progress *bool `json:"progress,omitempty" yaml:"progress,omitempty"`
}

// Default values for optional configuration fields.
const (
	// DefaultVersion is the current manifest schema version.
	DefaultVersion = "1.0"

	// DefaultMaxDepth is the default recursion depth bound.
	DefaultMaxDepth = 5

	// DefaultMaxChildren is the default per-parent fan-out cap.
	DefaultMaxChildren = 50

	// DefaultConcurrency is the default number of concurrent fetches.
	DefaultConcurrency = 4

	// DefaultDestination is the default output destination.
	DefaultDestination = "stdout"

	// DefaultProgress is the default value for progress emission.
	DefaultProgress = true
)

// ApplyDefaults fills in default values for optional fields.
//
// This should be called after loading and validating the manifest to ensure
// all optional fields have sensible values.
func (m *Manifest) ApplyDefaults() {
	if m.Crawl.MaxDepth == 0 {
		m.Crawl.MaxDepth = DefaultMaxDepth
	}
	if m.Crawl.MaxChildren == 0 {
		m.Crawl.MaxChildren = DefaultMaxChildren
	}
	if m.Crawl.Concurrency == 0 {
		m.Crawl.Concurrency = DefaultConcurrency
	}
	// RateLimit: 0 is a valid value (provider default), so no default needed

	if m.Output.Destination == "" {
		m.Output.Destination = DefaultDestination
	}
	if m.Output.Progress == nil {
		defaultProgress := DefaultProgress
		m.Output.Progress = &defaultProgress
	}
}

// ProgressEnabled returns whether progress records should be emitted.
// Returns the configured value, or DefaultProgress if not set.
func (o *OutputConfig) ProgressEnabled() bool {
	if o.Progress == nil {
		return DefaultProgress
	}
	return *o.Progress
}
