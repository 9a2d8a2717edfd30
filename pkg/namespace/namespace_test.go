package namespace

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/3leaps/pagecrate/pkg/crawler"
	"github.com/3leaps/pagecrate/pkg/folder"
	"github.com/3leaps/pagecrate/pkg/match"
)

const testBucket = "notion-s3-api"

// uid builds a normalized-form id distinguishable by a small number.
func uid(n int) string {
	return fmt.Sprintf("%032d", n)
}

// fixture assembles a small projected tree:
//
//	root/
//	  docs/
//	    report.pdf
//	    archive/
//	  readme.txt
func fixture(t *testing.T) *Snapshot {
	t.Helper()

	root, docs, archive := uid(1), uid(2), uid(3)
	nodes := map[string]crawler.Node{
		root:    {ID: root, Title: "Root", Seq: 0},
		docs:    {ID: docs, Title: "docs", ParentID: root, Seq: 0, UpdatedAt: time.Unix(100, 0)},
		archive: {ID: archive, Title: "archive", ParentID: docs, Seq: 0, UpdatedAt: time.Unix(200, 0)},
	}
	folders := folder.Build(root, nodes)
	files := []crawler.FileLeaf{
		{ID: uid(10), Name: "report.pdf", ParentID: docs, SourceURL: "https://files.example/report.pdf", UpdatedAt: time.Unix(300, 0)},
		{ID: uid(11), Name: "readme.txt", ParentID: root, SourceURL: "https://files.example/readme.txt"},
	}
	return Project(testBucket, root, nodes, folders, files, nil)
}

func TestProject_Keys(t *testing.T) {
	snap := fixture(t)

	assert.Equal(t, []string{
		"docs/",
		"docs/archive/",
		"docs/report.pdf",
		"readme.txt",
	}, snap.Keys())

	obj, ok := snap.Get("docs/report.pdf")
	require.True(t, ok)
	assert.Equal(t, uid(10), obj.EntityID)
	assert.Equal(t, "https://files.example/report.pdf", obj.SourceURL)
	assert.Equal(t, time.Unix(300, 0), obj.LastModified)
	assert.Equal(t, StorageClassStandard, obj.StorageClass)
	assert.False(t, obj.IsFolder)

	dir, ok := snap.Get("docs/")
	require.True(t, ok)
	assert.True(t, dir.IsFolder)
	assert.Empty(t, dir.SourceURL)
	assert.Equal(t, time.Unix(100, 0), dir.LastModified)
}

func TestProject_RootFolderHasNoKey(t *testing.T) {
	snap := fixture(t)

	_, ok := snap.Get("Root/")
	assert.False(t, ok)
	_, ok = snap.Get("")
	assert.False(t, ok)
}

func TestProject_Idempotent(t *testing.T) {
	a := fixture(t)
	b := fixture(t)
	assert.Equal(t, a.Keys(), b.Keys())
}

func TestProject_CollisionFirstWriteWins(t *testing.T) {
	root := uid(1)
	nodes := map[string]crawler.Node{root: {ID: root, Title: "Root"}}
	folders := folder.Build(root, nodes)
	files := []crawler.FileLeaf{
		{ID: uid(10), Name: "x.txt", ParentID: root, SourceURL: "https://files.example/first"},
		{ID: uid(11), Name: "x.txt", ParentID: root, SourceURL: "https://files.example/second"},
	}

	snap := Project(testBucket, root, nodes, folders, files, nil)

	require.Equal(t, 1, snap.Len())
	obj, ok := snap.Get("x.txt")
	require.True(t, ok)
	assert.Equal(t, uid(10), obj.EntityID)
}

func TestProject_OrphanLeafExposedAtRoot(t *testing.T) {
	root := uid(1)
	nodes := map[string]crawler.Node{root: {ID: root, Title: "Root"}}
	folders := folder.Build(root, nodes)
	files := []crawler.FileLeaf{
		{ID: uid(10), Name: "stray.bin", ParentID: uid(99), SourceURL: "https://files.example/stray"},
	}

	snap := Project(testBucket, root, nodes, folders, files, nil)

	_, ok := snap.Get("stray.bin")
	assert.True(t, ok)
}

func TestProject_MatcherScopesFiles(t *testing.T) {
	root, docs := uid(1), uid(2)
	nodes := map[string]crawler.Node{
		root: {ID: root, Title: "Root"},
		docs: {ID: docs, Title: "docs", ParentID: root},
	}
	folders := folder.Build(root, nodes)
	files := []crawler.FileLeaf{
		{ID: uid(10), Name: "report.pdf", ParentID: docs, SourceURL: "https://files.example/a"},
		{ID: uid(11), Name: "scratch.tmp", ParentID: docs, SourceURL: "https://files.example/b"},
	}
	m, err := match.New(match.Config{Excludes: []string{"**/*.tmp"}})
	require.NoError(t, err)

	snap := Project(testBucket, root, nodes, folders, files, m)

	_, ok := snap.Get("docs/report.pdf")
	assert.True(t, ok)
	_, ok = snap.Get("docs/scratch.tmp")
	assert.False(t, ok)
	// Folders are structural and never filtered.
	_, ok = snap.Get("docs/")
	assert.True(t, ok)
}

func maxKeys(n int) *int {
	return &n
}

func snapshotWithKeys(keys ...string) *Snapshot {
	objects := make(map[string]ObjectSummary, len(keys))
	for i, key := range keys {
		objects[key] = ObjectSummary{
			Key:          key,
			ETag:         ETag(uid(i)),
			StorageClass: StorageClassStandard,
			EntityID:     uid(i),
			SourceURL:    "https://files.example/" + key,
		}
	}
	return NewSnapshot(testBucket, uid(0), objects)
}

func TestList_DelimiterRoundTrip(t *testing.T) {
	snap := snapshotWithKeys("a/b.txt", "a/c.txt", "d.txt")

	result := snap.List(ListQuery{Delimiter: "/"})

	assert.Equal(t, testBucket, result.Bucket)
	assert.Equal(t, []string{"a/"}, result.CommonPrefixes)
	require.Len(t, result.Contents, 1)
	assert.Equal(t, "d.txt", result.Contents[0].Key)
	assert.False(t, result.IsTruncated)
}

func TestList_NoDelimiterReturnsEverything(t *testing.T) {
	snap := snapshotWithKeys("a/b.txt", "a/c.txt", "d.txt")

	result := snap.List(ListQuery{})

	keys := make([]string, 0, len(result.Contents))
	for _, obj := range result.Contents {
		keys = append(keys, obj.Key)
	}
	assert.Equal(t, []string{"a/b.txt", "a/c.txt", "d.txt"}, keys)
	assert.Empty(t, result.CommonPrefixes)
}

func TestList_PrefixFilter(t *testing.T) {
	snap := snapshotWithKeys("docs/a.txt", "docs/sub/b.txt", "media/c.mp4")

	result := snap.List(ListQuery{Prefix: "docs/", Delimiter: "/"})

	require.Len(t, result.Contents, 1)
	assert.Equal(t, "docs/a.txt", result.Contents[0].Key)
	assert.Equal(t, []string{"docs/sub/"}, result.CommonPrefixes)
}

func TestList_Truncation(t *testing.T) {
	keys := make([]string, 0, 150)
	for i := 0; i < 150; i++ {
		keys = append(keys, fmt.Sprintf("file-%03d.txt", i))
	}
	snap := snapshotWithKeys(keys...)

	result := snap.List(ListQuery{MaxKeys: maxKeys(100)})

	require.Len(t, result.Contents, 100)
	assert.True(t, result.IsTruncated)
	assert.Equal(t, "file-000.txt", result.Contents[0].Key)
	assert.Equal(t, "file-099.txt", result.Contents[99].Key)
}

func TestList_TruncationStillReportsLaterPrefixes(t *testing.T) {
	snap := snapshotWithKeys("a.txt", "b.txt", "z/deep.txt")

	result := snap.List(ListQuery{Delimiter: "/", MaxKeys: maxKeys(1)})

	require.Len(t, result.Contents, 1)
	assert.True(t, result.IsTruncated)
	assert.Equal(t, []string{"z/"}, result.CommonPrefixes)
}

func TestList_DefaultMaxKeys(t *testing.T) {
	snap := snapshotWithKeys("a.txt")

	result := snap.List(ListQuery{})

	assert.Equal(t, DefaultMaxKeys, result.MaxKeys)
}

func TestList_ExplicitZeroMaxKeys(t *testing.T) {
	snap := snapshotWithKeys("a.txt", "docs/b.txt")

	result := snap.List(ListQuery{Delimiter: "/", MaxKeys: maxKeys(0)})

	assert.Empty(t, result.Contents)
	assert.True(t, result.IsTruncated)
	assert.Equal(t, 0, result.MaxKeys)
	// Prefix grouping is unaffected by the content cap.
	assert.Equal(t, []string{"docs/"}, result.CommonPrefixes)
}

func TestList_ZeroMaxKeysOnEmptyMatchIsNotTruncated(t *testing.T) {
	snap := snapshotWithKeys("a.txt")

	result := snap.List(ListQuery{Prefix: "nothing/", MaxKeys: maxKeys(0)})

	assert.Empty(t, result.Contents)
	assert.False(t, result.IsTruncated)
}

func TestList_MarkerIsEchoed(t *testing.T) {
	snap := snapshotWithKeys("a.txt", "b.txt")

	result := snap.List(ListQuery{Marker: "a.txt"})

	assert.Equal(t, "a.txt", result.Marker)
}

func TestResolveURL(t *testing.T) {
	snap := fixture(t)

	url, err := snap.ResolveURL("docs/report.pdf")
	require.NoError(t, err)
	assert.Equal(t, "https://files.example/report.pdf", url)

	_, err = snap.ResolveURL("docs/")
	assert.ErrorIs(t, err, ErrNoSuchKey)

	_, err = snap.ResolveURL("missing.txt")
	assert.ErrorIs(t, err, ErrNoSuchKey)
}

func TestETag_QuotedStableHex(t *testing.T) {
	tag := ETag(uid(1))
	assert.Equal(t, tag, ETag(uid(1)))
	assert.NotEqual(t, tag, ETag(uid(2)))
	assert.Len(t, tag, 34) // 32 hex chars plus quotes
	assert.Equal(t, byte('"'), tag[0])
	assert.Equal(t, byte('"'), tag[len(tag)-1])
}

func TestStore_SwapPublishesAtomically(t *testing.T) {
	store := NewStore(testBucket)

	initial := store.Load()
	require.NotNil(t, initial)
	assert.Equal(t, 0, initial.Len())

	next := snapshotWithKeys("a.txt")
	prev := store.Swap(next)

	assert.Same(t, initial, prev)
	assert.Same(t, next, store.Load())
}

func TestFindByEntityID(t *testing.T) {
	snap := fixture(t)

	obj, ok := snap.FindByEntityID(uid(10))
	require.True(t, ok)
	assert.Equal(t, "docs/report.pdf", obj.Key)

	_, ok = snap.FindByEntityID(uid(42))
	assert.False(t, ok)
}
