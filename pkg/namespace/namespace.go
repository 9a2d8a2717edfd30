// Package namespace projects a crawled folder/file set onto a flat,
// S3-style key namespace and serves prefix/delimiter listing queries
// against it.
//
// A projection is built once into an immutable Snapshot; a Store swaps
// whole snapshots atomically so concurrent readers never observe a
// half-updated namespace.
package namespace

import (
	"errors"
	"time"
)

// StorageClassStandard is the storage class reported for every object.
const StorageClassStandard = "STANDARD"

// DefaultMaxKeys is the listing page size when the caller passes none.
const DefaultMaxKeys = 1000

// Sentinel errors for listing and retrieval operations.
var (
	// ErrNoSuchKey indicates the requested key is not in the namespace,
	// or has no retrievable URL behind it.
	ErrNoSuchKey = errors.New("no such key")

	// ErrNoSuchBucket indicates the requested bucket is not served.
	ErrNoSuchBucket = errors.New("no such bucket")
)

// ObjectSummary is one entry in the projected namespace.
type ObjectSummary struct {
	Key          string
	LastModified time.Time
	ETag         string
	Size         int64
	StorageClass string

	// EntityID is the id of the backing folder or file leaf.
	EntityID string

	// IsFolder marks directory placeholders (keys ending in the path
	// separator).
	IsFolder bool

	// SourceURL is the time-limited retrieval URL for file entries;
	// empty for folders.
	SourceURL string

	// ExpiresAt is when SourceURL stops being valid. Zero for folders.
	ExpiresAt time.Time
}

// ListResult is the outcome of one listing call. Constructed fresh per
// call; never persisted.
type ListResult struct {
	Bucket         string
	Prefix         string
	Marker         string
	MaxKeys        int
	IsTruncated    bool
	Contents       []ObjectSummary
	CommonPrefixes []string
}
