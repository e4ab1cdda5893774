package app

import (
	"context"
	"log/slog"
	"os"

	"github.com/222wcnm/bilibili-comments-mcp/internal/comments"
)

func (a *App) initModules() {
	closer, err := comments.New(comments.Dependency{
		Config:  a.config,
		MCP:     a.mcpServer,
		Router:  a.router,
		Cron:    a.scheduler,
		Metrics: a.metrics,
		Context: a.ctx,
	})
	if err != nil {
		slog.Error("failed to init module comments", "error", err)
		os.Exit(1)
	}
	if closer != nil {
		if a.closerFn == nil {
			a.closerFn = map[string]func(context.Context) error{}
		}
		a.closerFn["Comments"] = closer
	}
}
