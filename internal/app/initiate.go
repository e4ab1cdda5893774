package app

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"github.com/rs/cors"

	"github.com/222wcnm/bilibili-comments-mcp/internal/pkg/pkgconfig"
	"github.com/222wcnm/bilibili-comments-mcp/internal/pkg/pkglog"
	"github.com/222wcnm/bilibili-comments-mcp/internal/pkg/pkgmcp"
	"github.com/222wcnm/bilibili-comments-mcp/internal/pkg/pkgmetrics"
	"github.com/222wcnm/bilibili-comments-mcp/internal/pkg/pkgrouter"
	"github.com/222wcnm/bilibili-comments-mcp/internal/pkg/pkguid"
)

func (a *App) initConfig() {
	path := os.Getenv("BILI_MCP_CONFIG")
	if path == "" {
		path = "./config/config.yaml"
	}

	cfg, err := pkgconfig.NewViper(path)
	if err != nil {
		slog.Error("failed to init config", "error", err)
		os.Exit(1)
	}

	//nolint:errcheck,gosec // ignore error
	os.Setenv("TZ", cfg.GetString("tz"))

	pkglog.InitLogging(cfg.GetString("log.level"))

	a.config = cfg
}

func (a *App) initLibraries() {
	a.uuid = pkguid.NewUUID()

	sf, err := pkguid.NewSnowflake()
	if err != nil {
		slog.Error("failed to init snowflake", "error", err)
		os.Exit(1)
	}
	a.snowflake = sf

	a.registry = prometheus.NewRegistry()
	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	a.metrics = pkgmetrics.NewRegistry(a.registry)

	a.scheduler = cron.New()
}

func (a *App) initMCPServer() {
	a.mcpServer = server.NewMCPServer(name, version,
		server.WithRecovery(),
		server.WithToolHandlerMiddleware(pkgmcp.ToolMiddleware(a.snowflake, a.metrics)),
		server.WithInstructions("Fetches and renders Bilibili video comments. Pass a BV id, an av number, or a bare aid to get_video_comments."),
	)
}

// initHTTPServer builds the HTTP surface for serve mode: the MCP endpoint,
// the Prometheus scrape endpoint, and the probe routes. Stdio mode skips
// all of it.
func (a *App) initHTTPServer() {
	if a.config.GetString("server.mode") != "http" {
		return
	}

	a.router = pkgrouter.NewRouter(a.uuid)

	streamable := server.NewStreamableHTTPServer(a.mcpServer)
	for _, method := range []string{http.MethodPost, http.MethodGet, http.MethodDelete} {
		a.router.Handle(method, "/mcp", streamable)
	}

	a.router.Handle(http.MethodGet, "/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Mcp-Session-Id"},
		AllowCredentials: true,
	})

	a.httpServer = &http.Server{
		Addr:              a.config.GetString("server.address.http"),
		Handler:           corsHandler.Handler(a.router),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func (a *App) initClosers() {
	if a.closerFn == nil {
		a.closerFn = map[string]func(context.Context) error{}
	}

	if a.httpServer != nil {
		a.closerFn["HTTP Server"] = func(ctx context.Context) error {
			return a.httpServer.Shutdown(ctx)
		}
	}
	a.closerFn["Scheduler"] = func(ctx context.Context) error {
		select {
		case <-a.scheduler.Stop().Done():
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	a.closerFn["Config"] = func(context.Context) error {
		return a.config.Close()
	}
}
