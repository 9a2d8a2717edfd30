// Package mirror orchestrates the projection pipeline: resolve the
// root, crawl the tree, extract file leaves, derive folders, project
// namespace keys, and publish the result as the served snapshot.
package mirror

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/3leaps/pagecrate/pkg/cache"
	"github.com/3leaps/pagecrate/pkg/crawler"
	"github.com/3leaps/pagecrate/pkg/folder"
	"github.com/3leaps/pagecrate/pkg/match"
	"github.com/3leaps/pagecrate/pkg/namespace"
	"github.com/3leaps/pagecrate/pkg/notion"
)

// ErrNoActiveRoot indicates no root identifier has been set yet.
var ErrNoActiveRoot = errors.New("no active root identifier")

// Config configures a Mirror.
type Config struct {
	// Bucket is the bucket name snapshots are served under.
	Bucket string

	// SnapshotTTL is how long a built snapshot stays fresh before a
	// lazy access rebuilds it. Default: 5m.
	SnapshotTTL time.Duration
}

// DefaultConfig returns the default mirror configuration.
func DefaultConfig() Config {
	return Config{
		Bucket:      "notion-s3-api",
		SnapshotTTL: 5 * time.Minute,
	}
}

// Mirror builds and publishes namespace snapshots for one active root
// at a time. Reads go through the atomic Store; builds are serialized
// so concurrent refreshes never crawl the same tree twice.
type Mirror struct {
	resolver *notion.Resolver
	crawler  *crawler.Crawler
	matcher  *match.Matcher
	config   Config
	logger   *zap.Logger

	store     *namespace.Store
	snapshots *cache.Cache[string, *namespace.Snapshot]

	// rootMu guards only the active-root field; buildMu serializes
	// pipeline runs. Kept separate so SetRoot and Root never wait on
	// an in-flight build.
	rootMu sync.Mutex
	root   string

	buildMu sync.Mutex
}

// New creates a mirror. Zero config fields take defaults; matcher may
// be nil to expose every key.
func New(resolver *notion.Resolver, cr *crawler.Crawler, m *match.Matcher, cfg Config, logger *zap.Logger) *Mirror {
	def := DefaultConfig()
	if cfg.Bucket == "" {
		cfg.Bucket = def.Bucket
	}
	if cfg.SnapshotTTL <= 0 {
		cfg.SnapshotTTL = def.SnapshotTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mirror{
		resolver:  resolver,
		crawler:   cr,
		matcher:   m,
		config:    cfg,
		logger:    logger,
		store:     namespace.NewStore(cfg.Bucket),
		snapshots: cache.New[string, *namespace.Snapshot](),
	}
}

// Bucket returns the served bucket name.
func (m *Mirror) Bucket() string { return m.config.Bucket }

// Root returns the active root id, empty when none is set.
func (m *Mirror) Root() string {
	m.rootMu.Lock()
	defer m.rootMu.Unlock()
	return m.root
}

// SetRoot validates raw against the upstream source and makes it the
// active root. The snapshot is not rebuilt here; the next access
// builds it lazily. Returns the normalized id and resolved kind.
func (m *Mirror) SetRoot(ctx context.Context, raw string) (string, notion.Kind, error) {
	res, err := m.resolver.Resolve(ctx, raw)
	if err != nil {
		return "", notion.KindUnknown, err
	}

	m.rootMu.Lock()
	m.root = res.ID
	m.rootMu.Unlock()

	m.logger.Info("active root set",
		zap.String("id", res.ID),
		zap.String("kind", res.Kind.String()))
	return res.ID, res.Kind, nil
}

// Snapshot returns the currently published snapshot without triggering
// any upstream work.
func (m *Mirror) Snapshot() *namespace.Snapshot {
	return m.store.Load()
}

// Ensure returns a fresh snapshot for the active root, building one
// only when the cached projection has expired. This backs the lazy
// bucket endpoints.
func (m *Mirror) Ensure(ctx context.Context) (*namespace.Snapshot, error) {
	root := m.Root()
	if root == "" {
		return nil, ErrNoActiveRoot
	}
	if snap, ok := m.snapshots.Get(root); ok {
		return snap, nil
	}
	return m.rebuild(ctx, root)
}

// Refresh rebuilds the active root's snapshot unconditionally.
func (m *Mirror) Refresh(ctx context.Context) (*namespace.Snapshot, error) {
	root := m.Root()
	if root == "" {
		return nil, ErrNoActiveRoot
	}
	m.snapshots.Delete(root)
	return m.rebuild(ctx, root)
}

// rebuild runs the full pipeline for root and publishes the result.
// Builds are serialized; a cancelled build is discarded, never cached
// or published.
func (m *Mirror) rebuild(ctx context.Context, root string) (*namespace.Snapshot, error) {
	m.buildMu.Lock()
	defer m.buildMu.Unlock()

	// A concurrent caller may have finished the same build while we
	// waited for the lock.
	if snap, ok := m.snapshots.Get(root); ok {
		return snap, nil
	}

	start := time.Now()
	nodes, err := m.crawler.Crawl(ctx, root)
	if err != nil {
		return nil, err
	}
	files, err := m.crawler.ExtractFiles(ctx, nodes)
	if err != nil {
		return nil, err
	}
	folders := folder.Build(root, nodes)
	snap := namespace.Project(m.config.Bucket, root, nodes, folders, files, m.matcher)

	m.snapshots.Put(root, snap, m.config.SnapshotTTL)
	m.store.Swap(snap)

	m.logger.Info("snapshot rebuilt",
		zap.String("root", root),
		zap.Int("nodes", len(nodes)),
		zap.Int("files", len(files)),
		zap.Int("keys", snap.Len()),
		zap.Duration("elapsed", time.Since(start)))
	return snap, nil
}
