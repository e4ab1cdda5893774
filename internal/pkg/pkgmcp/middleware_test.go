package pkgmcp

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/222wcnm/bilibili-comments-mcp/internal/pkg/pkglog"
	"github.com/222wcnm/bilibili-comments-mcp/internal/pkg/pkgmetrics"
)

type fixedID struct {
	n int64
}

func (f fixedID) Generate() int64 {
	return f.n
}

func callRequest(tool string) mcp.CallToolRequest {
	return mcp.CallToolRequest{Params: mcp.CallToolParams{Name: tool}}
}

func TestToolMiddlewareTagsAndCounts(t *testing.T) {
	metrics := pkgmetrics.NewRegistry(prometheus.NewRegistry())

	var gotCID string
	next := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		gotCID = pkglog.GetCorrelationID(ctx)
		return mcp.NewToolResultText("fine"), nil
	}

	res, err := ToolMiddleware(fixedID{n: 42}, metrics)(next)(context.Background(), callRequest("get_video_comments"))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if res.IsError {
		t.Fatal("handler returned an error result")
	}

	if gotCID != "42" {
		t.Errorf("correlation id = %q, want %q", gotCID, "42")
	}
	if got := testutil.ToFloat64(metrics.ToolInvocations.WithLabelValues("get_video_comments", "ok")); got != 1 {
		t.Errorf("ok invocations = %v, want 1", got)
	}
	if got := testutil.ToFloat64(metrics.ToolInvocations.WithLabelValues("get_video_comments", "error")); got != 0 {
		t.Errorf("error invocations = %v, want 0", got)
	}
}

func TestToolMiddlewareCountsErrorResults(t *testing.T) {
	metrics := pkgmetrics.NewRegistry(prometheus.NewRegistry())

	next := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultError("video not found or no longer visible"), nil
	}

	res, err := ToolMiddleware(fixedID{n: 7}, metrics)(next)(context.Background(), callRequest("get_video_comments"))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if !res.IsError {
		t.Fatal("expected an error result")
	}
	if got := testutil.ToFloat64(metrics.ToolInvocations.WithLabelValues("get_video_comments", "error")); got != 1 {
		t.Errorf("error invocations = %v, want 1", got)
	}
}

func TestToolMiddlewareNilDependencies(t *testing.T) {
	next := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText("fine"), nil
	}

	res, err := ToolMiddleware(nil, nil)(next)(context.Background(), callRequest("get_video_comments"))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if res.IsError {
		t.Fatal("handler returned an error result")
	}
}
