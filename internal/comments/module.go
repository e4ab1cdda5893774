package comments

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/robfig/cron/v3"

	"github.com/222wcnm/bilibili-comments-mcp/internal/comments/inbound"
	"github.com/222wcnm/bilibili-comments-mcp/internal/comments/render"
	"github.com/222wcnm/bilibili-comments-mcp/internal/comments/source"
	"github.com/222wcnm/bilibili-comments-mcp/internal/comments/usecase"
	"github.com/222wcnm/bilibili-comments-mcp/internal/pkg/pkgcache"
	"github.com/222wcnm/bilibili-comments-mcp/internal/pkg/pkgconfig"
	"github.com/222wcnm/bilibili-comments-mcp/internal/pkg/pkgerror"
	"github.com/222wcnm/bilibili-comments-mcp/internal/pkg/pkgmetrics"
	"github.com/222wcnm/bilibili-comments-mcp/internal/pkg/pkgrouter"
)

type Dependency struct {
	Config  pkgconfig.Config
	MCP     *server.MCPServer
	Router  *pkgrouter.Router // nil in stdio mode
	Cron    *cron.Cron
	Metrics *pkgmetrics.Registry
	Context context.Context
}

func New(dep Dependency) (func(context.Context) error, error) {
	cfg := dep.Config
	if !cfg.GetBool("modules.comments.enabled") {
		slog.Info("comments module disabled")
		return func(context.Context) error { return nil }, nil
	}

	client := source.NewClient(source.Config{
		BaseURL:    cfg.GetString("api.base_url"),
		Timeout:    cfg.GetDuration("api.timeout"),
		UserAgent:  cfg.GetString("api.user_agent"),
		Credential: cfg.GetString("api.credential"),
		WBIEnabled: cfg.GetBool("api.wbi.enabled"),
		WBIKeyTTL:  cfg.GetDuration("api.wbi.key_ttl"),
		Metrics:    dep.Metrics,
	})

	var src usecase.Source = client
	cache := newCache(dep)
	if cache != nil {
		src = source.NewCached(client, cache, cfg.GetDuration("cache.ttl"), dep.Metrics)
	}

	ucDep := usecase.Dependency{
		Source:      src,
		Renderer:    render.NewMarkdown(),
		Concurrency: int(cfg.GetInt("fetch.concurrency")),
	}
	if dep.Metrics != nil {
		ucDep.PoolHooks = pkgmetrics.PoolHooks(dep.Metrics, "replies")
	}
	uc := usecase.New(ucDep)

	inbound.RegisterMCPTool(dep.MCP, uc, int(cfg.GetInt("fetch.page_size")))

	if dep.Cron != nil && cfg.GetBool("api.wbi.enabled") {
		spec := cfg.GetString("api.wbi.refresh_cron")
		if _, err := dep.Cron.AddFunc(spec, func() { refreshKeys(client) }); err != nil {
			return nil, err
		}
	}

	if dep.Router != nil {
		dep.Router.GET("/readyz", func(ctx context.Context, r *http.Request) (any, error) {
			if err := client.Ready(ctx); err != nil {
				return nil, err
			}
			return map[string]string{"status": "ready"}, nil
		})
	}

	return func(ctx context.Context) error {
		var errs error
		if cache != nil {
			errs = errors.Join(errs, cache.Close())
		}
		return errors.Join(errs, client.Close())
	}, nil
}

// newCache picks the cache backend from config. A Redis that cannot be
// reached downgrades to the in-memory cache so the tool keeps working.
func newCache(dep Dependency) pkgcache.Cache {
	cfg := dep.Config
	if !cfg.GetBool("cache.enabled") {
		return nil
	}

	address := cfg.GetString("cache.redis.address")
	if address == "" {
		return pkgcache.NewMemory(nil)
	}

	root := dep.Context
	if root == nil {
		root = context.Background()
	}
	ctx, cancel := context.WithTimeout(root, 5*time.Second)
	defer cancel()

	redis, err := pkgcache.NewRedis(ctx, address,
		cfg.GetString("cache.redis.password"),
		int(cfg.GetInt("cache.redis.db")),
	)
	if err != nil {
		slog.Warn("redis unreachable, using in-memory cache", "address", address, "error", err)
		return pkgcache.NewMemory(nil)
	}
	return redis
}

func refreshKeys(client *source.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := client.RefreshWBIKeys(ctx); err != nil {
		var perr *pkgerror.Error
		if errors.As(err, &perr) {
			slog.Error("scheduled wbi key refresh failed", "error", perr.String())
			return
		}
		slog.Error("scheduled wbi key refresh failed", "error", err)
	}
}
