package crawler

import (
	"net/url"
	"path"
	"time"

	"github.com/3leaps/pagecrate/pkg/notion"
)

// FileLeaf is a retrievable file extracted from a node's children.
// Size is best-effort; the upstream source does not report file sizes,
// so it is zero. The backing URL is time-limited upstream, reflected in
// ExpiresAt.
type FileLeaf struct {
	ID        string
	Name      string
	MediaKind string
	Size      int64
	SourceURL string
	UpdatedAt time.Time
	ExpiresAt time.Time
	ParentID  string
}

// ExtractFileLeaf converts a child block into a FileLeaf if it passes
// the file capability test and a retrieval URL can be found. Returns
// false for blocks that are simply not convertible.
func ExtractFileLeaf(b notion.Block, parentID string, expiresAt time.Time) (FileLeaf, bool) {
	if !notion.IsFileBlock(b) {
		return FileLeaf{}, false
	}

	rawURL := extractURL(b)
	if rawURL == "" {
		return FileLeaf{}, false
	}

	return FileLeaf{
		ID:        b.ID,
		Name:      extractName(b, rawURL),
		MediaKind: b.Type,
		Size:      0,
		SourceURL: rawURL,
		UpdatedAt: b.LastEditedTime,
		ExpiresAt: expiresAt,
		ParentID:  parentID,
	}, true
}

// extractURL probes the block payload with an ordered chain of
// strategies; the first hit wins.
func extractURL(b notion.Block) string {
	payload, ok := b.Payload()
	if !ok {
		return ""
	}

	// 1. Direct url field on the payload.
	if u, ok := payload["url"].(string); ok && u != "" {
		return u
	}

	// 2. Nested type-keyed sub-object with a url.
	if typ, ok := payload["type"].(string); ok {
		if u := nestedURL(payload, typ); u != "" {
			return u
		}
	}

	// 3. file.url.
	if u := nestedURL(payload, "file"); u != "" {
		return u
	}

	// 4. external.url.
	if u := nestedURL(payload, "external"); u != "" {
		return u
	}

	// 5. Legacy {type}.{type}.url shape, defaulting the inner type to
	// "external" when absent.
	typ, _ := payload["type"].(string)
	if typ == "" {
		typ = "external"
	}
	return nestedURL(payload, typ)
}

// nestedURL returns payload[key].url when that shape is present.
func nestedURL(payload map[string]any, key string) string {
	sub, ok := payload[key].(map[string]any)
	if !ok {
		return ""
	}
	u, _ := sub["url"].(string)
	return u
}

// extractName resolves the leaf's display name: an explicit title or
// caption on the block wins, then the last path segment of the URL. The
// final name is percent-decoded.
func extractName(b notion.Block, rawURL string) string {
	name := ""
	if payload, ok := b.Payload(); ok {
		if t := notion.JoinAnyRichText(payload["title"]); t != "" {
			name = t
		} else if c := notion.JoinAnyRichText(payload["caption"]); c != "" {
			name = c
		}
	}
	if name == "" {
		name = urlBasename(rawURL)
	}
	if decoded, err := url.PathUnescape(name); err == nil {
		name = decoded
	}
	return name
}

func urlBasename(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return path.Base(rawURL)
	}
	return path.Base(u.Path)
}
