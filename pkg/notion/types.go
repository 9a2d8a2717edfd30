// Package notion models the upstream Notion API surface that pagecrate
// consumes: point retrieval by id, cursor-paginated children listing,
// database queries, and rich-text runs.
//
// Block payloads are loosely typed upstream. They are modeled as a
// type-keyed attribute bag (map[string]any) rather than one struct per
// block kind; callers probe the bag through helper accessors.
package notion

import (
	"context"
	"encoding/json"
	"time"
)

// Kind classifies a Notion entity.
type Kind string

const (
	KindPage     Kind = "page"
	KindDatabase Kind = "database"
	KindBlock    Kind = "block"
	KindUnknown  Kind = "unknown"
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	return string(k)
}

// RichText is a single rich-text run. Only the plain-text projection is
// needed here.
type RichText struct {
	PlainText string `json:"plain_text"`
}

// JoinPlainText concatenates the plain-text segments of rich-text runs.
func JoinPlainText(runs []RichText) string {
	var out string
	for _, r := range runs {
		out += r.PlainText
	}
	return out
}

// JoinAnyRichText concatenates plain-text segments from an untyped
// rich-text array, as found inside block attribute bags. Returns ""
// when v is not a rich-text array.
func JoinAnyRichText(v any) string {
	runs, ok := v.([]any)
	if !ok {
		return ""
	}
	var out string
	for _, run := range runs {
		m, ok := run.(map[string]any)
		if !ok {
			continue
		}
		if s, ok := m["plain_text"].(string); ok {
			out += s
		}
	}
	return out
}

// PageProperty is a property value on a page. Only title properties are
// inspected; everything else is carried opaquely.
type PageProperty struct {
	Type  string     `json:"type"`
	Title []RichText `json:"title"`
}

// Page is the point-retrieval shape for a page.
type Page struct {
	ID             string                  `json:"id"`
	CreatedTime    time.Time               `json:"created_time"`
	LastEditedTime time.Time               `json:"last_edited_time"`
	URL            string                  `json:"url"`
	Properties     map[string]PageProperty `json:"properties"`
}

// Database is the point-retrieval shape for a database.
type Database struct {
	ID             string     `json:"id"`
	CreatedTime    time.Time  `json:"created_time"`
	LastEditedTime time.Time  `json:"last_edited_time"`
	URL            string     `json:"url"`
	Title          []RichText `json:"title"`
}

// Block is a child record: a content block from a children listing, or a
// page-like row from a database query (which carries no block type).
//
// The type-keyed payload and any other fields are retained in an untyped
// attribute bag populated during unmarshaling.
type Block struct {
	ID             string
	Type           string
	HasChildren    bool
	CreatedTime    time.Time
	LastEditedTime time.Time

	fields map[string]any
}

// UnmarshalJSON decodes the well-known fields and retains the full record
// in the attribute bag.
func (b *Block) UnmarshalJSON(data []byte) error {
	var known struct {
		ID             string    `json:"id"`
		Type           string    `json:"type"`
		HasChildren    bool      `json:"has_children"`
		CreatedTime    time.Time `json:"created_time"`
		LastEditedTime time.Time `json:"last_edited_time"`
	}
	if err := json.Unmarshal(data, &known); err != nil {
		return err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	b.ID = known.ID
	b.Type = known.Type
	b.HasChildren = known.HasChildren
	b.CreatedTime = known.CreatedTime
	b.LastEditedTime = known.LastEditedTime
	b.fields = raw
	return nil
}

// NewBlock constructs a block from an attribute bag. Used by tests and by
// code paths that synthesize child records.
func NewBlock(fields map[string]any) Block {
	b := Block{fields: fields}
	if v, ok := fields["id"].(string); ok {
		b.ID = v
	}
	if v, ok := fields["type"].(string); ok {
		b.Type = v
	}
	if v, ok := fields["has_children"].(bool); ok {
		b.HasChildren = v
	}
	return b
}

// Field returns a raw attribute from the record.
func (b Block) Field(name string) (any, bool) {
	v, ok := b.fields[name]
	return v, ok
}

// Payload returns the type-keyed sub-object for the block's declared type.
func (b Block) Payload() (map[string]any, bool) {
	if b.Type == "" {
		return nil, false
	}
	v, ok := b.fields[b.Type]
	if !ok {
		return nil, false
	}
	m, ok := v.(map[string]any)
	return m, ok
}

// IsChildPage reports whether the record is a sub-page reference.
func (b Block) IsChildPage() bool { return b.Type == "child_page" }

// IsChildDatabase reports whether the record is a sub-database reference.
func (b Block) IsChildDatabase() bool { return b.Type == "child_database" }

// BlockList is one page of a cursor-paginated children listing or
// database query.
type BlockList struct {
	Results    []Block `json:"results"`
	HasMore    bool    `json:"has_more"`
	NextCursor string  `json:"next_cursor"`
}

// Source is the upstream data-source contract. Transport and auth are the
// implementation's concern; see Client for the HTTP implementation.
type Source interface {
	// RetrievePage fetches a page by id.
	RetrievePage(ctx context.Context, id string) (*Page, error)

	// RetrieveDatabase fetches a database by id.
	RetrieveDatabase(ctx context.Context, id string) (*Database, error)

	// RetrieveBlock fetches a block by id.
	RetrieveBlock(ctx context.Context, id string) (*Block, error)

	// ListChildren returns one page of a block's (or page's) children.
	// Pass the NextCursor from the previous page to continue; empty
	// cursor starts from the beginning.
	ListChildren(ctx context.Context, id, cursor string) (*BlockList, error)

	// QueryDatabase returns one page of a database's rows. Rows are
	// page-like records and carry no block type.
	QueryDatabase(ctx context.Context, id, cursor string) (*BlockList, error)
}
