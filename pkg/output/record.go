// Package output provides JSONL output for crawl results.
//
// Output is structured as typed record envelopes containing discovered
// files, folders, errors, and progress updates. Each line is a
// self-contained JSON object that can be parsed independently.
package output

import (
	"encoding/json"
	"errors"
	"time"
)

// Record type constants define the envelope types for JSONL output.
// These follow the pattern: pagecrate.<type>.v<version>
const (
	// TypeFile identifies extracted file-leaf records.
	TypeFile = "pagecrate.file.v1"

	// TypeFolder identifies derived folder records.
	TypeFolder = "pagecrate.folder.v1"

	// TypeError identifies error records.
	TypeError = "pagecrate.error.v1"

	// TypeProgress identifies progress update records.
	TypeProgress = "pagecrate.progress.v1"

	// TypeSummary identifies final summary records.
	TypeSummary = "pagecrate.summary.v1"
)

// Record is the envelope for all JSONL output.
//
// Each line of JSONL output contains a Record with a type-specific
// payload in the Data field. The type field determines how to
// interpret the Data payload.
type Record struct {
	// Type identifies the record type (e.g., "pagecrate.file.v1").
	Type string `json:"type"`

	// TS is the timestamp when the record was created (RFC3339Nano).
	TS time.Time `json:"ts"`

	// JobID is the correlation ID for this crawl job.
	JobID string `json:"job_id"`

	// Root is the crawl root's normalized identifier.
	Root string `json:"root"`

	// Data contains the type-specific payload as raw JSON.
	Data json.RawMessage `json:"data"`
}

// FileRecord is the data payload for extracted file leaves.
type FileRecord struct {
	// ID is the leaf's entity id.
	ID string `json:"id"`

	// Key is the projected namespace key.
	Key string `json:"key"`

	// Name is the derived display name.
	Name string `json:"name"`

	// MediaKind is the source block type (file, pdf, image, ...).
	MediaKind string `json:"media_kind"`

	// Size is the size in bytes; zero when the source cannot report it.
	Size int64 `json:"size"`

	// ETag is the entity tag derived from the entity id.
	ETag string `json:"etag"`

	// LastModified is the entity's last-edit time upstream.
	LastModified time.Time `json:"last_modified"`

	// SourceURL is the time-limited retrieval URL.
	SourceURL string `json:"source_url"`

	// ExpiresAt is when SourceURL stops being valid.
	ExpiresAt time.Time `json:"expires_at"`

	// ParentID is the id of the node the leaf was extracted from.
	ParentID string `json:"parent_id"`
}

// FolderRecord is the data payload for derived folders.
type FolderRecord struct {
	// ID is the folder's entity id.
	ID string `json:"id"`

	// Key is the projected namespace key, trailing separator included.
	Key string `json:"key"`

	// Name is the folder's display name.
	Name string `json:"name"`

	// ParentID is the parent folder's id, empty for the crawl root.
	ParentID string `json:"parent_id,omitempty"`

	// Children lists child entity ids in fetch order.
	Children []string `json:"children,omitempty"`
}

// ErrorRecord is the data payload for errors.
//
// Errors are emitted as records rather than failing the entire crawl,
// allowing partial results when some subtrees fail.
type ErrorRecord struct {
	// Code is a machine-readable error code.
	Code string `json:"code"`

	// Message is a human-readable error description.
	Message string `json:"message"`

	// ID is the node id related to this error, if applicable.
	ID string `json:"id,omitempty"`

	// Details contains additional error context.
	Details any `json:"details,omitempty"`
}

// Error codes for ErrorRecord.
const (
	// ErrCodeUnresolvable indicates an identifier could not be classified.
	ErrCodeUnresolvable = "UNRESOLVABLE"

	// ErrCodeUpstream indicates an upstream API failure.
	ErrCodeUpstream = "UPSTREAM"

	// ErrCodeTimeout indicates an operation timed out.
	ErrCodeTimeout = "TIMEOUT"

	// ErrCodeInternal indicates an unexpected internal error.
	ErrCodeInternal = "INTERNAL"
)

// ProgressRecord is the data payload for progress updates.
type ProgressRecord struct {
	// Phase indicates the current pipeline phase.
	Phase string `json:"phase"`

	// NodesFound is the number of nodes discovered so far.
	NodesFound int64 `json:"nodes_found"`

	// FilesFound is the number of file leaves extracted so far.
	FilesFound int64 `json:"files_found"`
}

// Pipeline phase constants.
const (
	// PhaseStarting indicates the crawl is initializing.
	PhaseStarting = "starting"

	// PhaseCrawling indicates the tree walk is in progress.
	PhaseCrawling = "crawling"

	// PhaseProjecting indicates keys are being projected.
	PhaseProjecting = "projecting"

	// PhaseComplete indicates the pipeline has finished.
	PhaseComplete = "complete"
)

// SummaryRecord is the data payload for final summaries.
type SummaryRecord struct {
	// Nodes is the total number of nodes discovered.
	Nodes int64 `json:"nodes"`

	// Folders is the number of folders derived.
	Folders int64 `json:"folders"`

	// Files is the number of file leaves extracted.
	Files int64 `json:"files"`

	// Keys is the number of projected namespace keys.
	Keys int64 `json:"keys"`

	// Duration is the total pipeline duration.
	Duration time.Duration `json:"duration_ns"`

	// DurationHuman is a human-readable duration string.
	DurationHuman string `json:"duration"`

	// Errors is the count of errors encountered.
	Errors int64 `json:"errors"`
}

// Writer errors.
var (
	// ErrWriterClosed is returned when writing to a closed writer.
	ErrWriterClosed = errors.New("writer is closed")
)

// WriteError wraps errors that occur during write operations.
type WriteError struct {
	Op  string // Operation that failed (e.g., "marshal_data", "write")
	Err error  // Underlying error
}

func (e *WriteError) Error() string {
	return "output: " + e.Op + ": " + e.Err.Error()
}

func (e *WriteError) Unwrap() error {
	return e.Err
}
