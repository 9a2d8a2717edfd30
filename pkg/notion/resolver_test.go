package notion

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testID = "01234567-89ab-cdef-0123-456789abcdef"

// fakeSource implements Source with canned per-kind responses.
type fakeSource struct {
	mu sync.Mutex

	pages     map[string]*Page
	databases map[string]*Database
	blocks    map[string]*Block

	pageCalls     int
	databaseCalls int
	blockCalls    int
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		pages:     make(map[string]*Page),
		databases: make(map[string]*Database),
		blocks:    make(map[string]*Block),
	}
}

func (f *fakeSource) RetrievePage(ctx context.Context, id string) (*Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pageCalls++
	if p, ok := f.pages[id]; ok {
		return p, nil
	}
	return nil, &APIError{Op: "RetrievePage", Status: 404, Code: "object_not_found"}
}

func (f *fakeSource) RetrieveDatabase(ctx context.Context, id string) (*Database, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.databaseCalls++
	if d, ok := f.databases[id]; ok {
		return d, nil
	}
	return nil, &APIError{Op: "RetrieveDatabase", Status: 404, Code: "object_not_found"}
}

func (f *fakeSource) RetrieveBlock(ctx context.Context, id string) (*Block, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.blockCalls++
	if b, ok := f.blocks[id]; ok {
		return b, nil
	}
	return nil, &APIError{Op: "RetrieveBlock", Status: 404, Code: "object_not_found"}
}

func (f *fakeSource) ListChildren(ctx context.Context, id, cursor string) (*BlockList, error) {
	return &BlockList{}, nil
}

func (f *fakeSource) QueryDatabase(ctx context.Context, id, cursor string) (*BlockList, error) {
	return &BlockList{}, nil
}

func TestResolver_ProbeOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("page wins without further probes", func(t *testing.T) {
		src := newFakeSource()
		src.pages[testID] = &Page{ID: testID}
		// Register the id as a database too; the page probe must win.
		src.databases[testID] = &Database{ID: testID}

		r := NewResolver(src, time.Minute, nil)
		res, err := r.Resolve(ctx, testID)
		require.NoError(t, err)
		assert.Equal(t, KindPage, res.Kind)
		assert.Equal(t, 1, src.pageCalls)
		assert.Equal(t, 0, src.databaseCalls)
		assert.Equal(t, 0, src.blockCalls)
	})

	t.Run("database probed after page", func(t *testing.T) {
		src := newFakeSource()
		src.databases[testID] = &Database{ID: testID}

		r := NewResolver(src, time.Minute, nil)
		res, err := r.Resolve(ctx, testID)
		require.NoError(t, err)
		assert.Equal(t, KindDatabase, res.Kind)
		assert.Equal(t, 1, src.pageCalls)
		assert.Equal(t, 1, src.databaseCalls)
	})

	t.Run("block probed last", func(t *testing.T) {
		src := newFakeSource()
		src.blocks[testID] = &Block{ID: testID, Type: "paragraph"}

		r := NewResolver(src, time.Minute, nil)
		res, err := r.Resolve(ctx, testID)
		require.NoError(t, err)
		assert.Equal(t, KindBlock, res.Kind)
		assert.Equal(t, 1, src.blockCalls)
	})

	t.Run("all probes fail", func(t *testing.T) {
		src := newFakeSource()

		r := NewResolver(src, time.Minute, nil)
		_, err := r.Resolve(ctx, testID)
		require.ErrorIs(t, err, ErrUnresolvable)
	})
}

func TestResolver_CachesFirstSuccess(t *testing.T) {
	src := newFakeSource()
	src.pages[testID] = &Page{ID: testID}

	r := NewResolver(src, time.Minute, nil)

	for i := 0; i < 3; i++ {
		res, err := r.Resolve(context.Background(), testID)
		require.NoError(t, err)
		assert.Equal(t, KindPage, res.Kind)
	}

	assert.Equal(t, 1, src.pageCalls, "repeated resolutions must be served from cache")
}

func TestResolver_NormalizesBeforeProbing(t *testing.T) {
	src := newFakeSource()
	src.pages[testID] = &Page{ID: testID}

	r := NewResolver(src, time.Minute, nil)

	res, err := r.Resolve(context.Background(), "0123456789abcdef0123456789abcdef")
	require.NoError(t, err)
	assert.Equal(t, testID, res.ID)
}

func TestResolver_ShortIDUnresolvable(t *testing.T) {
	r := NewResolver(newFakeSource(), time.Minute, nil)

	_, err := r.Resolve(context.Background(), "nope")
	require.ErrorIs(t, err, ErrUnresolvable)
}
