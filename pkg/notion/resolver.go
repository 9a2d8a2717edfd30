package notion

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/3leaps/pagecrate/pkg/cache"
)

// Resolution is the result of classifying an identifier. Exactly one of
// Page, Database, or Block is non-nil for the matching kind.
type Resolution struct {
	ID   string
	Kind Kind

	Page     *Page
	Database *Database
	Block    *Block
}

// CreatedTime returns the entity's creation time, zero if unknown.
func (r *Resolution) CreatedTime() time.Time {
	switch r.Kind {
	case KindPage:
		return r.Page.CreatedTime
	case KindDatabase:
		return r.Database.CreatedTime
	case KindBlock:
		return r.Block.CreatedTime
	}
	return time.Time{}
}

// LastEditedTime returns the entity's last-edited time, zero if unknown.
func (r *Resolution) LastEditedTime() time.Time {
	switch r.Kind {
	case KindPage:
		return r.Page.LastEditedTime
	case KindDatabase:
		return r.Database.LastEditedTime
	case KindBlock:
		return r.Block.LastEditedTime
	}
	return time.Time{}
}

// URL returns the entity's canonical source URL, empty if unknown.
func (r *Resolution) URL() string {
	switch r.Kind {
	case KindPage:
		return r.Page.URL
	case KindDatabase:
		return r.Database.URL
	}
	return ""
}

// Resolver classifies opaque identifiers by probing the upstream source.
//
// The id format alone cannot determine the kind, so the resolver attempts
// retrieval as page, then database, then block, in that fixed order, and
// caches the first success. All three probes failing yields
// ErrUnresolvable.
type Resolver struct {
	source Source
	cache  *cache.Cache[string, *Resolution]
	ttl    time.Duration
	logger *zap.Logger
}

// NewResolver creates a resolver that caches classifications for ttl.
func NewResolver(source Source, ttl time.Duration, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		source: source,
		cache:  cache.New[string, *Resolution](),
		ttl:    ttl,
		logger: logger,
	}
}

// Resolve normalizes raw and classifies it. The returned resolution is
// shared with the cache and must not be mutated.
func (r *Resolver) Resolve(ctx context.Context, raw string) (*Resolution, error) {
	id, err := NormalizeID(raw)
	if err != nil {
		return nil, err
	}

	if res, ok := r.cache.Get(id); ok {
		return res, nil
	}

	if page, err := r.source.RetrievePage(ctx, id); err == nil {
		res := &Resolution{ID: id, Kind: KindPage, Page: page}
		r.cache.Put(id, res, r.ttl)
		return res, nil
	} else if ctx.Err() != nil {
		return nil, ctx.Err()
	} else {
		r.logger.Debug("not a page", zap.String("id", id), zap.Error(err))
	}

	if db, err := r.source.RetrieveDatabase(ctx, id); err == nil {
		res := &Resolution{ID: id, Kind: KindDatabase, Database: db}
		r.cache.Put(id, res, r.ttl)
		return res, nil
	} else if ctx.Err() != nil {
		return nil, ctx.Err()
	} else {
		r.logger.Debug("not a database", zap.String("id", id), zap.Error(err))
	}

	if block, err := r.source.RetrieveBlock(ctx, id); err == nil {
		res := &Resolution{ID: id, Kind: KindBlock, Block: block}
		r.cache.Put(id, res, r.ttl)
		return res, nil
	} else if ctx.Err() != nil {
		return nil, ctx.Err()
	} else {
		r.logger.Debug("not a block", zap.String("id", id), zap.Error(err))
	}

	return nil, ErrUnresolvable
}
