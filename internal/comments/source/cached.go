package source

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/222wcnm/bilibili-comments-mcp/internal/comments/entity"
	"github.com/222wcnm/bilibili-comments-mcp/internal/pkg/pkgcache"
	"github.com/222wcnm/bilibili-comments-mcp/internal/pkg/pkgmetrics"
)

// Cached is a read-through cache in front of a Client. Keys cover every
// request parameter, so a hit is an exact repeat of an earlier fetch and a
// stale page can only be as old as the configured ttl.
type Cached struct {
	next    *Client
	cache   pkgcache.Cache
	ttl     time.Duration
	metrics *pkgmetrics.Registry
}

func NewCached(next *Client, cache pkgcache.Cache, ttl time.Duration, metrics *pkgmetrics.Registry) *Cached {
	return &Cached{next: next, cache: cache, ttl: ttl, metrics: metrics}
}

func (c *Cached) View(ctx context.Context, aid int64) (entity.Video, error) {
	key := fmt.Sprintf("bilimcp:view:%d", aid)

	var video entity.Video
	if c.lookup(ctx, key, &video) {
		return video, nil
	}

	video, err := c.next.View(ctx, aid)
	if err != nil {
		return entity.Video{}, err
	}
	c.store(ctx, key, video)
	return video, nil
}

func (c *Cached) FetchPage(ctx context.Context, aid int64, page, size int, sort entity.Sort) (entity.CommentPage, error) {
	key := fmt.Sprintf("bilimcp:page:%d:%d:%d:%s", aid, page, size, sort)

	var cached entity.CommentPage
	if c.lookup(ctx, key, &cached) {
		return cached, nil
	}

	fetched, err := c.next.FetchPage(ctx, aid, page, size, sort)
	if err != nil {
		return entity.CommentPage{}, err
	}
	c.store(ctx, key, fetched)
	return fetched, nil
}

func (c *Cached) Replies(ctx context.Context, aid, root int64, limit int) ([]entity.Comment, error) {
	key := fmt.Sprintf("bilimcp:replies:%d:%d:%d", aid, root, limit)

	var cached []entity.Comment
	if c.lookup(ctx, key, &cached) {
		return cached, nil
	}

	fetched, err := c.next.Replies(ctx, aid, root, limit)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, fetched)
	return fetched, nil
}

func (c *Cached) lookup(ctx context.Context, key string, out any) bool {
	raw, ok := c.cache.Get(ctx, key)
	if ok {
		if err := json.Unmarshal(raw, out); err != nil {
			slog.WarnContext(ctx, "dropping undecodable cache entry", "key", key, "error", err)
			ok = false
		}
	}
	if c.metrics != nil {
		if ok {
			c.metrics.CacheHits.WithLabelValues(c.cache.Name()).Inc()
		} else {
			c.metrics.CacheMisses.WithLabelValues(c.cache.Name()).Inc()
		}
	}
	return ok
}

func (c *Cached) store(ctx context.Context, key string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	c.cache.Set(ctx, key, raw, c.ttl)
}
