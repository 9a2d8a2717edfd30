package output

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecoder_RoundTripsWriterOutput(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	w := NewJSONLWriter(&buf, "job-1", testRoot)

	require.NoError(t, w.WriteFolder(ctx, &FolderRecord{ID: "f1", Key: "docs/", Name: "docs"}))
	require.NoError(t, w.WriteFile(ctx, &FileRecord{ID: "a1", Key: "docs/report.pdf"}))
	require.NoError(t, w.WriteSummary(ctx, &SummaryRecord{Files: 1, Folders: 1, Keys: 2}))
	require.NoError(t, w.Close())

	d := NewDecoder(&buf)

	rec, err := d.Next()
	require.NoError(t, err)
	assert.Equal(t, TypeFolder, rec.Type)
	assert.Equal(t, "job-1", rec.JobID)
	var folder FolderRecord
	require.NoError(t, rec.DecodeData(&folder))
	assert.Equal(t, "docs/", folder.Key)

	rec, err = d.Next()
	require.NoError(t, err)
	assert.Equal(t, TypeFile, rec.Type)
	var file FileRecord
	require.NoError(t, rec.DecodeData(&file))
	assert.Equal(t, "docs/report.pdf", file.Key)

	rec, err = d.Next()
	require.NoError(t, err)
	assert.Equal(t, TypeSummary, rec.Type)

	_, err = d.Next()
	require.ErrorIs(t, err, io.EOF)
}

func TestDecoder_BlankLineEndsStream(t *testing.T) {
	d := NewDecoder(strings.NewReader("\n"))

	_, err := d.Next()
	require.ErrorIs(t, err, io.EOF)
}

func TestDecoder_MalformedLine(t *testing.T) {
	d := NewDecoder(strings.NewReader("not json\n"))

	_, err := d.Next()
	require.Error(t, err)
}

func TestDecoder_LineTooLong(t *testing.T) {
	line := `{"type":"pagecrate.file.v1","data":{"key":"` + strings.Repeat("x", 256) + `"}}`
	d := NewDecoder(strings.NewReader(line + "\n"))
	d.SetMaxLineBytes(64)

	_, err := d.Next()
	require.ErrorIs(t, err, ErrLineTooLong)
}

func TestDecoder_MissingTrailingNewline(t *testing.T) {
	d := NewDecoder(strings.NewReader(`{"type":"pagecrate.file.v1","job_id":"j","data":{}}`))

	rec, err := d.Next()
	require.NoError(t, err)
	assert.Equal(t, TypeFile, rec.Type)

	_, err = d.Next()
	require.ErrorIs(t, err, io.EOF)
}
