package notion

import "strings"

// idLength is the dash-stripped length of a canonical Notion id.
const idLength = 32

// dashOffsets are where dashes are re-inserted to produce the canonical
// 8-4-4-4-12 form.
var dashOffsets = []int{8, 12, 16, 20}

// NormalizeID canonicalizes a raw external identifier.
//
// The input may be an already-formatted id, a URL containing one, or a
// malformed string. URLs are handled by taking the first path segment
// whose dash-stripped length is at least 32 characters. Inputs that
// strip to fewer than 32 characters are unresolvable; longer inputs are
// truncated to the first 32 characters.
func NormalizeID(raw string) (string, error) {
	s := raw
	if strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") {
		for _, part := range strings.Split(s, "/") {
			if len(strings.ReplaceAll(part, "-", "")) >= idLength {
				s = part
				break
			}
		}
	}

	compact := strings.ReplaceAll(s, "-", "")
	if len(compact) < idLength {
		return "", ErrUnresolvable
	}
	if len(compact) > idLength {
		compact = compact[:idLength]
	}

	var b strings.Builder
	b.Grow(idLength + len(dashOffsets))
	prev := 0
	for _, off := range dashOffsets {
		b.WriteString(compact[prev:off])
		b.WriteByte('-')
		prev = off
	}
	b.WriteString(compact[prev:])
	return b.String(), nil
}
