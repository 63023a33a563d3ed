package catalog

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/p-n-ai/pai-assess/internal/platform/cache"
)

const defaultCacheKey = "assess:catalog:subjects"

// JSONStore is the subset of cache.Cache used by CachedSource.
type JSONStore interface {
	GetJSON(ctx context.Context, key string, v any) error
	SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error
}

// CachedSource keeps the result of another source in Redis so restarts do not
// hit the curriculum service again until the entry expires. Cache failures are
// logged and otherwise ignored.
type CachedSource struct {
	src   Source
	store JSONStore
	key   string
	ttl   time.Duration
}

// NewCachedSource wraps src with a cache.
func NewCachedSource(src Source, store JSONStore, ttl time.Duration) *CachedSource {
	return &CachedSource{
		src:   src,
		store: store,
		key:   defaultCacheKey,
		ttl:   ttl,
	}
}

func (c *CachedSource) Name() string { return "cached:" + c.src.Name() }

func (c *CachedSource) Fetch(ctx context.Context) (SubjectTable, error) {
	if table, ok := c.get(ctx); ok {
		return table, nil
	}

	table, err := c.src.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.store.SetJSON(ctx, c.key, table.Entries(), c.ttl); err != nil {
		slog.Warn("catalog cache write failed", "key", c.key, "error", err)
	}
	return table, nil
}

func (c *CachedSource) get(ctx context.Context) (SubjectTable, bool) {
	var entries []ClassSubjects
	if err := c.store.GetJSON(ctx, c.key, &entries); err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			slog.Warn("catalog cache read failed", "key", c.key, "error", err)
		}
		return nil, false
	}
	if len(entries) == 0 {
		return nil, false
	}
	return NewSubjectTable(entries), true
}
