package notion

import (
	"fmt"
	"strings"
)

// paragraphTitleLimit is the maximum number of characters in a title
// derived from paragraph text before truncation.
const paragraphTitleLimit = 50

// Title derives a display title for a resolved entity.
func (r *Resolution) Title() string {
	switch r.Kind {
	case KindPage:
		return pageTitle(r.Page)
	case KindDatabase:
		return databaseTitle(r.Database)
	case KindBlock:
		return blockTitle(r.Block)
	}
	return fmt.Sprintf("Unknown Object (%s)", r.ID)
}

func pageTitle(p *Page) string {
	for _, prop := range p.Properties {
		if prop.Type == "title" {
			if title := JoinPlainText(prop.Title); title != "" {
				return title
			}
			break
		}
	}
	return fmt.Sprintf("Untitled Page (%s)", p.ID)
}

func databaseTitle(d *Database) string {
	if title := JoinPlainText(d.Title); title != "" {
		return title
	}
	return fmt.Sprintf("Untitled Database (%s)", d.ID)
}

func blockTitle(b *Block) string {
	switch b.Type {
	case "heading_1", "heading_2", "heading_3":
		return payloadRichText(*b, "rich_text")
	case "paragraph":
		text := payloadRichText(*b, "rich_text")
		// Truncate by runes: a byte slice can cut a multi-byte
		// character in half and yield an invalid key.
		if runes := []rune(text); len(runes) > paragraphTitleLimit {
			return string(runes[:paragraphTitleLimit]) + "..."
		}
		return text
	}
	if IsFileBlock(*b) {
		return fmt.Sprintf("%s Block", capitalize(b.Type))
	}
	return fmt.Sprintf("%s Block (%s)", capitalize(b.Type), b.ID)
}

// payloadRichText joins the plain-text runs of a rich-text field inside
// the block's type-keyed payload.
func payloadRichText(b Block, field string) string {
	payload, ok := b.Payload()
	if !ok {
		return ""
	}
	return JoinAnyRichText(payload[field])
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
