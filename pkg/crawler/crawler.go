// Package crawler discovers the reachable tree under a root Notion
// identifier and extracts file-like leaves from it.
//
// Traversal is bounded three ways: a per-invocation visited set breaks
// cycles, a depth limit stops expansion below it, and a per-parent
// fan-out cap limits how many children are recursed into. Sibling
// subtrees are crawled concurrently behind a shared permit limiter.
// Hitting a bound produces a partial result, never an error.
package crawler

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/3leaps/pagecrate/pkg/cache"
	"github.com/3leaps/pagecrate/pkg/notion"
)

// Node is one discovered entity in the tree. Immutable once created;
// identity is the id.
type Node struct {
	ID        string
	Kind      notion.Kind
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time
	SourceURL string

	// ParentID is the discovering parent's id, empty for the crawl root.
	ParentID string

	// Seq is the node's position among its parent's recursion
	// candidates, preserving fetch order for deterministic folder
	// construction.
	Seq int
}

// Config configures crawler bounds.
type Config struct {
	// MaxDepth is the maximum recursion depth. The root is depth 0;
	// nodes at the bound appear in the result with their children
	// unexpanded. Default: 5.
	MaxDepth int

	// MaxChildren caps how many of a node's children are recursed into.
	// Remaining children are not expanded. Default: 50.
	MaxChildren int

	// Concurrency is the permit count of the limiter shared across all
	// crawl invocations of this Crawler. Default: 4.
	Concurrency int

	// ChildListTTL is how long fetched children lists are cached.
	// Default: 5m.
	ChildListTTL time.Duration

	// PresignedURLTTL is the validity window stamped onto extracted
	// file leaves. Default: 1h.
	PresignedURLTTL time.Duration
}

// DefaultConfig returns the default crawler configuration.
func DefaultConfig() Config {
	return Config{
		MaxDepth:        5,
		MaxChildren:     50,
		Concurrency:     4,
		ChildListTTL:    5 * time.Minute,
		PresignedURLTTL: time.Hour,
	}
}

// Crawler walks Notion trees. Safe for concurrent use; each Crawl call
// has its own visited set, while the permit limiter and children cache
// are shared so total upstream call volume stays bounded.
type Crawler struct {
	source   notion.Source
	resolver *notion.Resolver
	config   Config
	logger   *zap.Logger

	sem      chan struct{}
	children *cache.Cache[string, []notion.Block]
}

// New creates a crawler. Zero config fields take defaults.
func New(source notion.Source, resolver *notion.Resolver, cfg Config, logger *zap.Logger) *Crawler {
	def := DefaultConfig()
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = def.MaxDepth
	}
	if cfg.MaxChildren <= 0 {
		cfg.MaxChildren = def.MaxChildren
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = def.Concurrency
	}
	if cfg.ChildListTTL <= 0 {
		cfg.ChildListTTL = def.ChildListTTL
	}
	if cfg.PresignedURLTTL <= 0 {
		cfg.PresignedURLTTL = def.PresignedURLTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Crawler{
		source:   source,
		resolver: resolver,
		config:   cfg,
		logger:   logger,
		sem:      make(chan struct{}, cfg.Concurrency),
		children: cache.New[string, []notion.Block](),
	}
}

// invocation holds per-crawl state so concurrent crawls for different
// roots never share visited-set pollution.
type invocation struct {
	mu      sync.Mutex
	visited map[string]struct{}
	nodes   map[string]Node
}

// markVisited records id in the visited set, returning false if it was
// already present.
func (inv *invocation) markVisited(id string) bool {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	if _, seen := inv.visited[id]; seen {
		return false
	}
	inv.visited[id] = struct{}{}
	return true
}

func (inv *invocation) addNode(n Node) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	inv.nodes[n.ID] = n
}

// Crawl discovers all reachable nodes from rootID.
//
// A failure fetching one subtree's children is logged and treated as
// "no children" for that subtree; it never aborts siblings. The only
// error returned is context cancellation, in which case the partial
// result must be discarded by the caller.
func (c *Crawler) Crawl(ctx context.Context, rootID string) (map[string]Node, error) {
	inv := &invocation{
		visited: make(map[string]struct{}),
		nodes:   make(map[string]Node),
	}
	c.crawlNode(ctx, inv, rootID, "", 0, 0)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return inv.nodes, nil
}

// crawlNode visits a single node and recurses into its selected children.
func (c *Crawler) crawlNode(ctx context.Context, inv *invocation, id, parentID string, seq, depth int) {
	if !inv.markVisited(id) {
		return
	}
	if depth > c.config.MaxDepth {
		return
	}
	if ctx.Err() != nil {
		return
	}

	// All remote work for this node happens under one permit. The
	// permit is released before recursing, so a full permit set held by
	// ancestors can never starve descendants.
	if !c.acquire(ctx) {
		return
	}
	res, err := c.resolver.Resolve(ctx, id)
	if err != nil {
		c.release()
		if notion.IsUnresolvable(err) {
			c.logger.Debug("skipping unresolvable node", zap.String("id", id))
		} else {
			c.logger.Warn("failed to resolve node", zap.String("id", id), zap.Error(err))
		}
		return
	}
	title := res.Title()
	children, err := c.fetchChildren(ctx, res.ID, res.Kind)
	c.release()
	if err != nil {
		c.logger.Warn("failed to list children, treating subtree as childless",
			zap.String("id", res.ID),
			zap.String("kind", res.Kind.String()),
			zap.Error(err))
		children = nil
	}

	inv.addNode(Node{
		ID:        res.ID,
		Kind:      res.Kind,
		Title:     title,
		CreatedAt: res.CreatedTime(),
		UpdatedAt: res.LastEditedTime(),
		SourceURL: res.URL(),
		ParentID:  parentID,
		Seq:       seq,
	})

	candidates := selectRecursionCandidates(res.Kind, children, c.config.MaxChildren)

	var wg sync.WaitGroup
	for i, child := range candidates {
		wg.Add(1)
		go func(childID string, childSeq int) {
			defer wg.Done()
			c.crawlNode(ctx, inv, childID, res.ID, childSeq, depth+1)
		}(child.ID, i)
	}
	wg.Wait()
}

// selectRecursionCandidates picks the children worth expanding: sub-pages
// and sub-databases, or every child when the parent is a database (query
// rows are page-like). The set is capped at maxChildren.
func selectRecursionCandidates(parentKind notion.Kind, children []notion.Block, maxChildren int) []notion.Block {
	var out []notion.Block
	for _, child := range children {
		if child.ID == "" {
			continue
		}
		if parentKind == notion.KindDatabase || child.IsChildPage() || child.IsChildDatabase() {
			out = append(out, child)
			if len(out) == maxChildren {
				break
			}
		}
	}
	return out
}

// fetchChildren accumulates the full children list for id through
// cursor pagination, serving repeats from the TTL cache.
func (c *Crawler) fetchChildren(ctx context.Context, id string, kind notion.Kind) ([]notion.Block, error) {
	if children, ok := c.children.Get(id); ok {
		return children, nil
	}

	var all []notion.Block
	cursor := ""
	for {
		var (
			page *notion.BlockList
			err  error
		)
		if kind == notion.KindDatabase {
			page, err = c.source.QueryDatabase(ctx, id, cursor)
		} else {
			page, err = c.source.ListChildren(ctx, id, cursor)
		}
		if err != nil {
			return nil, err
		}
		all = append(all, page.Results...)
		if !page.HasMore || page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}

	c.children.Put(id, all, c.config.ChildListTTL)
	return all, nil
}

// acquire blocks for a limiter permit, returning false on cancellation.
func (c *Crawler) acquire(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case c.sem <- struct{}{}:
		return true
	}
}

func (c *Crawler) release() {
	<-c.sem
}

// CollectFiles crawls from rootID and returns every file leaf found
// among the discovered nodes' children.
func (c *Crawler) CollectFiles(ctx context.Context, rootID string) ([]FileLeaf, error) {
	nodes, err := c.Crawl(ctx, rootID)
	if err != nil {
		return nil, err
	}
	return c.ExtractFiles(ctx, nodes)
}

// ExtractFiles scans the children of every node for file-like blocks,
// descending into container blocks (toggles, columns, callouts) that
// report children of their own. Nodes are processed in id order so
// repeated runs over the same tree yield the same leaf order.
func (c *Crawler) ExtractFiles(ctx context.Context, nodes map[string]Node) ([]FileLeaf, error) {
	ids := make([]string, 0, len(nodes))
	for id := range nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	expiresAt := time.Now().Add(c.config.PresignedURLTTL)
	visited := make(map[string]struct{}, len(nodes))

	var leaves []FileLeaf
	for _, id := range ids {
		node := nodes[id]
		if err := c.extractInto(ctx, node.ID, node.Kind, node.ID, 0, visited, expiresAt, &leaves); err != nil {
			return nil, err
		}
	}
	return leaves, nil
}

// extractInto collects file leaves among id's children. Container
// blocks that report children of their own are descended into; leaves
// found below them still attach to ownerID, the crawled node whose
// folder they belong in. Sub-pages and sub-databases are nodes in
// their own right and are not re-entered here. The descent shares the
// crawl's depth and fan-out bounds. Listing failures skip the subtree;
// only cancellation aborts the extraction.
func (c *Crawler) extractInto(ctx context.Context, id string, kind notion.Kind, ownerID string, depth int, visited map[string]struct{}, expiresAt time.Time, leaves *[]FileLeaf) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, ok := visited[id]; ok {
		return nil
	}
	visited[id] = struct{}{}

	children, err := c.fetchChildren(ctx, id, kind)
	if err != nil {
		c.logger.Warn("failed to list children for file extraction",
			zap.String("id", id),
			zap.Error(err))
		return nil
	}

	descents := 0
	for _, child := range children {
		if leaf, ok := ExtractFileLeaf(child, ownerID, expiresAt); ok {
			*leaves = append(*leaves, leaf)
			continue
		}
		if child.ID == "" || !child.HasChildren || child.IsChildPage() || child.IsChildDatabase() {
			continue
		}
		if depth >= c.config.MaxDepth || descents >= c.config.MaxChildren {
			continue
		}
		descents++
		if err := c.extractInto(ctx, child.ID, notion.KindBlock, ownerID, depth+1, visited, expiresAt, leaves); err != nil {
			return err
		}
	}
	return nil
}
