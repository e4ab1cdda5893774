package pkgmcp

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/222wcnm/bilibili-comments-mcp/internal/pkg/pkglog"
	"github.com/222wcnm/bilibili-comments-mcp/internal/pkg/pkgmetrics"
	"github.com/222wcnm/bilibili-comments-mcp/internal/pkg/pkguid"
)

// ToolMiddleware tags every tool invocation with a correlation ID and
// records a log line and metrics around the handler. It is the tool-side
// counterpart of the HTTP middleware chain.
func ToolMiddleware(id pkguid.NumberID, metrics *pkgmetrics.Registry) server.ToolHandlerMiddleware {
	return func(next server.ToolHandlerFunc) server.ToolHandlerFunc {
		return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			if id != nil {
				ctx = pkglog.SetCorrelationID(ctx, strconv.FormatInt(id.Generate(), 10))
			}

			tool := req.Params.Name
			start := time.Now()
			slog.InfoContext(ctx, "incoming tool call", "tool", tool)

			res, err := next(ctx, req)

			outcome := "ok"
			if err != nil || (res != nil && res.IsError) {
				outcome = "error"
			}
			if metrics != nil {
				metrics.ToolInvocations.WithLabelValues(tool, outcome).Inc()
				metrics.ToolDuration.WithLabelValues(tool).Observe(time.Since(start).Seconds())
			}

			slog.InfoContext(ctx, "tool call finished",
				"tool", tool,
				"outcome", outcome,
				"latency_ms", time.Since(start).Milliseconds(),
			)
			return res, err
		}
	}
}
