package mirror

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/3leaps/pagecrate/pkg/crawler"
	"github.com/3leaps/pagecrate/pkg/notion"
)

func uid(n int) string {
	id, err := notion.NormalizeID(fmt.Sprintf("%032d", n))
	if err != nil {
		panic(err)
	}
	return id
}

// fakeSource serves a tiny two-level tree: a root page with a child
// page holding one file block.
type fakeSource struct {
	mu         sync.Mutex
	pages      map[string]*notion.Page
	children   map[string][]notion.Block
	crawlCalls int
}

func newFakeSource() *fakeSource {
	root, child := uid(1), uid(2)
	return &fakeSource{
		pages: map[string]*notion.Page{
			root: pageNamed(root, "Root"),
			child: pageNamed(child, "docs"),
		},
		children: map[string][]notion.Block{
			root: {notion.NewBlock(map[string]any{
				"id":         child,
				"type":       "child_page",
				"child_page": map[string]any{"title": "docs"},
			})},
			child: {notion.NewBlock(map[string]any{
				"id":   uid(3),
				"type": "file",
				"file": map[string]any{
					"file": map[string]any{"url": "https://files.example/report.pdf"},
				},
			})},
		},
	}
}

func pageNamed(id, title string) *notion.Page {
	return &notion.Page{
		ID: id,
		Properties: map[string]notion.PageProperty{
			"title": {Type: "title", Title: []notion.RichText{{PlainText: title}}},
		},
	}
}

func (f *fakeSource) RetrievePage(_ context.Context, id string) (*notion.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.pages[id]; ok {
		return p, nil
	}
	return nil, &notion.APIError{Op: "retrieve page", Status: 404, Code: "object_not_found"}
}

func (f *fakeSource) RetrieveDatabase(_ context.Context, id string) (*notion.Database, error) {
	return nil, &notion.APIError{Op: "retrieve database", Status: 404, Code: "object_not_found"}
}

func (f *fakeSource) RetrieveBlock(_ context.Context, id string) (*notion.Block, error) {
	return nil, &notion.APIError{Op: "retrieve block", Status: 404, Code: "object_not_found"}
}

func (f *fakeSource) ListChildren(_ context.Context, id, _ string) (*notion.BlockList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.crawlCalls++
	return &notion.BlockList{Results: f.children[id]}, nil
}

func (f *fakeSource) QueryDatabase(_ context.Context, id, _ string) (*notion.BlockList, error) {
	return &notion.BlockList{}, nil
}

func (f *fakeSource) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.crawlCalls
}

// slowSource signals when the first child listing starts and then
// holds it until released, simulating a long crawl.
type slowSource struct {
	*fakeSource
	once    sync.Once
	started chan struct{}
	release chan struct{}
}

func newSlowSource() *slowSource {
	return &slowSource{
		fakeSource: newFakeSource(),
		started:    make(chan struct{}),
		release:    make(chan struct{}),
	}
}

func (s *slowSource) ListChildren(ctx context.Context, id, cursor string) (*notion.BlockList, error) {
	s.once.Do(func() {
		close(s.started)
		<-s.release
	})
	return s.fakeSource.ListChildren(ctx, id, cursor)
}

func newMirror(src notion.Source, cfg Config) *Mirror {
	resolver := notion.NewResolver(src, time.Minute, nil)
	cr := crawler.New(src, resolver, crawler.Config{ChildListTTL: time.Millisecond}, nil)
	return New(resolver, cr, nil, cfg, nil)
}

func TestMirror_SetRootValidates(t *testing.T) {
	m := newMirror(newFakeSource(), Config{})

	id, kind, err := m.SetRoot(context.Background(), uid(1))
	require.NoError(t, err)
	assert.Equal(t, notion.KindPage, kind)
	assert.Equal(t, id, m.Root())

	_, _, err = m.SetRoot(context.Background(), "nope")
	assert.ErrorIs(t, err, notion.ErrUnresolvable)
}

func TestMirror_EnsureBuildsLazily(t *testing.T) {
	m := newMirror(newFakeSource(), Config{Bucket: "notion-s3-api"})

	_, err := m.Ensure(context.Background())
	assert.ErrorIs(t, err, ErrNoActiveRoot)

	_, _, err = m.SetRoot(context.Background(), uid(1))
	require.NoError(t, err)

	snap, err := m.Ensure(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"docs/", "docs/report.pdf"}, snap.Keys())

	// The published snapshot matches the built one.
	assert.Same(t, snap, m.Snapshot())
}

func TestMirror_EnsureServesCachedSnapshot(t *testing.T) {
	src := newFakeSource()
	m := newMirror(src, Config{SnapshotTTL: time.Hour})

	_, _, err := m.SetRoot(context.Background(), uid(1))
	require.NoError(t, err)

	first, err := m.Ensure(context.Background())
	require.NoError(t, err)
	callsAfterBuild := src.calls()

	second, err := m.Ensure(context.Background())
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, callsAfterBuild, src.calls())
}

func TestMirror_RefreshRebuilds(t *testing.T) {
	src := newFakeSource()
	m := newMirror(src, Config{SnapshotTTL: time.Hour})

	_, _, err := m.SetRoot(context.Background(), uid(1))
	require.NoError(t, err)

	first, err := m.Ensure(context.Background())
	require.NoError(t, err)

	second, err := m.Refresh(context.Background())
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.Equal(t, first.Keys(), second.Keys())
	assert.Same(t, second, m.Snapshot())
}

func TestMirror_SetRootDoesNotWaitForInflightBuild(t *testing.T) {
	src := newSlowSource()
	m := newMirror(src, Config{})

	_, _, err := m.SetRoot(context.Background(), uid(1))
	require.NoError(t, err)

	buildDone := make(chan error, 1)
	go func() {
		_, err := m.Ensure(context.Background())
		buildDone <- err
	}()
	<-src.started

	swapped := make(chan string, 1)
	go func() {
		id, _, err := m.SetRoot(context.Background(), uid(2))
		assert.NoError(t, err)
		swapped <- id
	}()

	select {
	case id := <-swapped:
		assert.Equal(t, id, m.Root())
	case <-time.After(2 * time.Second):
		t.Fatal("SetRoot blocked behind an in-flight build")
	}

	close(src.release)
	require.NoError(t, <-buildDone)
}

func TestMirror_CancelledBuildIsNotPublished(t *testing.T) {
	m := newMirror(newFakeSource(), Config{})

	_, _, err := m.SetRoot(context.Background(), uid(1))
	require.NoError(t, err)

	before := m.Snapshot()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = m.Ensure(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Same(t, before, m.Snapshot())
}
