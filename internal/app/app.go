package app

import (
	"context"
	"net/http"

	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"

	"github.com/222wcnm/bilibili-comments-mcp/internal/pkg/pkgconfig"
	"github.com/222wcnm/bilibili-comments-mcp/internal/pkg/pkglog"
	"github.com/222wcnm/bilibili-comments-mcp/internal/pkg/pkgmetrics"
	"github.com/222wcnm/bilibili-comments-mcp/internal/pkg/pkgrouter"
	"github.com/222wcnm/bilibili-comments-mcp/internal/pkg/pkguid"
)

const name = "bilibili-comments-mcp"

// version is set through ldflags on release builds.
var version = "dev"

type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// configuration
	config pkgconfig.Config

	// libraries
	uuid      pkguid.StringID
	snowflake pkguid.NumberID
	registry  *prometheus.Registry
	metrics   *pkgmetrics.Registry
	scheduler *cron.Cron

	// server
	mcpServer  *server.MCPServer
	router     *pkgrouter.Router
	httpServer *http.Server

	//
	closerFn map[string]func(context.Context) error
}

func New() *App {
	pkglog.InitLogging("info")

	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:    ctx,
		cancel: cancel,
	}

	app.initConfig()
	app.initLibraries()
	app.initMCPServer()
	app.initHTTPServer()
	app.initModules()
	app.initClosers()

	return app
}
