package namespace

import (
	"sort"
	"strings"
)

// ListQuery carries the parameters of one listing call.
type ListQuery struct {
	Prefix    string
	Delimiter string

	// Marker is echoed back in the result. Continuation is not
	// supported: the upstream source exposes no stable cursor, so a
	// truncated listing cannot be resumed.
	Marker string

	// MaxKeys caps the number of content entries. Nil means
	// DefaultMaxKeys; an explicit zero lists no contents and reports
	// IsTruncated when any key matched.
	MaxKeys *int
}

// List applies prefix filtering, delimiter grouping, lexicographic
// ordering and truncation to the snapshot's key set.
//
// When a delimiter is supplied, a key whose post-prefix remainder
// contains it is collapsed into a common prefix and excluded from the
// contents. Common prefixes do not count against MaxKeys.
func (s *Snapshot) List(q ListQuery) ListResult {
	maxKeys := DefaultMaxKeys
	if q.MaxKeys != nil {
		maxKeys = *q.MaxKeys
		if maxKeys < 0 {
			maxKeys = 0
		}
	}

	result := ListResult{
		Bucket:  s.bucket,
		Prefix:  q.Prefix,
		Marker:  q.Marker,
		MaxKeys: maxKeys,
	}

	seenPrefixes := make(map[string]struct{})
	for _, key := range s.keys {
		if !strings.HasPrefix(key, q.Prefix) {
			continue
		}
		if q.Delimiter != "" {
			rest := key[len(q.Prefix):]
			if i := strings.Index(rest, q.Delimiter); i >= 0 {
				prefix := key[:len(q.Prefix)+i+len(q.Delimiter)]
				if _, seen := seenPrefixes[prefix]; !seen {
					seenPrefixes[prefix] = struct{}{}
					result.CommonPrefixes = append(result.CommonPrefixes, prefix)
				}
				continue
			}
		}
		// Truncation drops content entries but keeps scanning, so
		// common prefixes past the cut are still reported.
		if len(result.Contents) == maxKeys {
			result.IsTruncated = true
			continue
		}
		result.Contents = append(result.Contents, s.objects[key])
	}
	sort.Strings(result.CommonPrefixes)

	return result
}

// ResolveURL returns the retrieval URL behind key. Folders and keys
// without a backing URL miss with ErrNoSuchKey.
func (s *Snapshot) ResolveURL(key string) (string, error) {
	obj, ok := s.objects[key]
	if !ok || obj.IsFolder || obj.SourceURL == "" {
		return "", ErrNoSuchKey
	}
	return obj.SourceURL, nil
}
