package notion

// fileBlockTypes is the fixed allow-list of file-like block kinds.
var fileBlockTypes = map[string]struct{}{
	"file":            {},
	"pdf":             {},
	"image":           {},
	"video":           {},
	"audio":           {},
	"media":           {},
	"file_attachment": {},
	"document":        {},
	"spreadsheet":     {},
	"presentation":    {},
}

// IsFileBlock reports whether a block represents a file-like leaf.
//
// A block qualifies if its declared type is in the allow-list, or if its
// type-keyed payload carries a url, file, or external field.
func IsFileBlock(b Block) bool {
	if _, ok := fileBlockTypes[b.Type]; ok {
		return true
	}
	payload, ok := b.Payload()
	if !ok {
		return false
	}
	if _, ok := payload["url"]; ok {
		return true
	}
	if _, ok := payload["file"]; ok {
		return true
	}
	if _, ok := payload["external"]; ok {
		return true
	}
	return false
}
