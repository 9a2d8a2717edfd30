package notion

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTitle_Page(t *testing.T) {
	t.Run("from title property", func(t *testing.T) {
		res := &Resolution{ID: testID, Kind: KindPage, Page: &Page{
			ID: testID,
			Properties: map[string]PageProperty{
				"Name": {Type: "title", Title: []RichText{{PlainText: "Project "}, {PlainText: "Plan"}}},
				"Tags": {Type: "multi_select"},
			},
		}}
		assert.Equal(t, "Project Plan", res.Title())
	})

	t.Run("untitled fallback", func(t *testing.T) {
		res := &Resolution{ID: testID, Kind: KindPage, Page: &Page{ID: testID}}
		assert.Equal(t, "Untitled Page ("+testID+")", res.Title())
	})
}

func TestTitle_Database(t *testing.T) {
	res := &Resolution{ID: testID, Kind: KindDatabase, Database: &Database{
		ID:    testID,
		Title: []RichText{{PlainText: "Inventory"}},
	}}
	assert.Equal(t, "Inventory", res.Title())

	empty := &Resolution{ID: testID, Kind: KindDatabase, Database: &Database{ID: testID}}
	assert.Equal(t, "Untitled Database ("+testID+")", empty.Title())
}

func TestTitle_Block(t *testing.T) {
	richText := func(text string) []any {
		return []any{map[string]any{"plain_text": text}}
	}

	t.Run("heading text", func(t *testing.T) {
		b := NewBlock(map[string]any{
			"id":   "b1",
			"type": "heading_2",
			"heading_2": map[string]any{
				"rich_text": richText("Section One"),
			},
		})
		res := &Resolution{ID: "b1", Kind: KindBlock, Block: &b}
		assert.Equal(t, "Section One", res.Title())
	})

	t.Run("long paragraph is truncated", func(t *testing.T) {
		long := strings.Repeat("x", 80)
		b := NewBlock(map[string]any{
			"id":   "b2",
			"type": "paragraph",
			"paragraph": map[string]any{
				"rich_text": richText(long),
			},
		})
		res := &Resolution{ID: "b2", Kind: KindBlock, Block: &b}
		assert.Equal(t, strings.Repeat("x", 50)+"...", res.Title())
	})

	t.Run("multi-byte paragraph truncates on rune boundaries", func(t *testing.T) {
		long := strings.Repeat("文", 60)
		b := NewBlock(map[string]any{
			"id":   "b6",
			"type": "paragraph",
			"paragraph": map[string]any{
				"rich_text": richText(long),
			},
		})
		res := &Resolution{ID: "b6", Kind: KindBlock, Block: &b}

		title := res.Title()
		assert.Equal(t, strings.Repeat("文", 50)+"...", title)
		assert.True(t, utf8.ValidString(title))
	})

	t.Run("multi-byte paragraph under the limit kept whole", func(t *testing.T) {
		// 30 runes but 90 bytes: byte-based truncation would cut this.
		text := strings.Repeat("文", 30)
		b := NewBlock(map[string]any{
			"id":   "b7",
			"type": "paragraph",
			"paragraph": map[string]any{
				"rich_text": richText(text),
			},
		})
		res := &Resolution{ID: "b7", Kind: KindBlock, Block: &b}
		assert.Equal(t, text, res.Title())
	})

	t.Run("short paragraph kept whole", func(t *testing.T) {
		b := NewBlock(map[string]any{
			"id":   "b3",
			"type": "paragraph",
			"paragraph": map[string]any{
				"rich_text": richText("short"),
			},
		})
		res := &Resolution{ID: "b3", Kind: KindBlock, Block: &b}
		assert.Equal(t, "short", res.Title())
	})

	t.Run("file block gets generic label", func(t *testing.T) {
		b := NewBlock(map[string]any{
			"id":   "b4",
			"type": "pdf",
			"pdf":  map[string]any{"file": map[string]any{"url": "https://x/y.pdf"}},
		})
		res := &Resolution{ID: "b4", Kind: KindBlock, Block: &b}
		assert.Equal(t, "Pdf Block", res.Title())
	})

	t.Run("other block includes id", func(t *testing.T) {
		b := NewBlock(map[string]any{
			"id":      "b5",
			"type":    "divider",
			"divider": map[string]any{},
		})
		res := &Resolution{ID: "b5", Kind: KindBlock, Block: &b}
		assert.Equal(t, "Divider Block (b5)", res.Title())
	})
}

func TestIsFileBlock(t *testing.T) {
	tests := []struct {
		name  string
		block Block
		want  bool
	}{
		{
			name:  "allow-listed type",
			block: NewBlock(map[string]any{"type": "image", "image": map[string]any{}}),
			want:  true,
		},
		{
			name: "payload url field",
			block: NewBlock(map[string]any{
				"type":     "embedish",
				"embedish": map[string]any{"url": "https://example.com/a"},
			}),
			want: true,
		},
		{
			name: "payload external field",
			block: NewBlock(map[string]any{
				"type":     "custom",
				"custom":   map[string]any{"external": map[string]any{"url": "https://x"}},
				"children": nil,
			}),
			want: true,
		},
		{
			name:  "plain paragraph",
			block: NewBlock(map[string]any{"type": "paragraph", "paragraph": map[string]any{"rich_text": []any{}}}),
			want:  false,
		},
		{
			name:  "missing payload",
			block: NewBlock(map[string]any{"type": "bookmarkless"}),
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsFileBlock(tt.block))
		})
	}
}
