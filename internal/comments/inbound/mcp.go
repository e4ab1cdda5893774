package inbound

import (
	"context"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/222wcnm/bilibili-comments-mcp/internal/comments/usecase"
	"github.com/222wcnm/bilibili-comments-mcp/internal/pkg/pkgerror"
)

type uc interface {
	FetchComments(ctx context.Context, in usecase.FetchInput) (usecase.FetchResult, error)
}

const toolName = "get_video_comments"

// RegisterMCPTool registers the comments tool on the MCP server. The default
// page size is part of the published tool schema, so deployments can tune how
// much a no-argument call returns; out-of-range values fall back to 20.
func RegisterMCPTool(s *server.MCPServer, uc uc, defaultPageSize int) {
	if defaultPageSize < 1 || defaultPageSize > 49 {
		defaultPageSize = 20
	}
	end := &MCPEndpoint{uc: uc, pageSize: defaultPageSize}

	s.AddTool(commentsTool(defaultPageSize), end.GetVideoComments)
}

func commentsTool(defaultPageSize int) mcp.Tool {
	return mcp.NewTool(toolName,
		mcp.WithDescription("Fetch one page of comments for a Bilibili video and render them as a Markdown report."),
		mcp.WithString("video_id",
			mcp.Required(),
			mcp.Description("Video identifier: a BV id (BV1xx411c7mD), an av number (av170001), or bare aid digits."),
		),
		mcp.WithNumber("page",
			mcp.DefaultNumber(1),
			mcp.Min(1),
			mcp.Description("1-based page of top-level comments."),
		),
		mcp.WithNumber("page_size",
			mcp.DefaultNumber(float64(defaultPageSize)),
			mcp.Min(1),
			mcp.Max(49),
			mcp.Description("Top-level comments per page."),
		),
		mcp.WithString("sort",
			mcp.DefaultString("like"),
			mcp.Enum("like", "time"),
			mcp.Description("Comment order: like puts the hottest first, time the newest."),
		),
		mcp.WithBoolean("include_replies",
			mcp.DefaultBool(false),
			mcp.Description("Also fetch the reply thread under each comment."),
		),
		mcp.WithNumber("reply_limit",
			mcp.DefaultNumber(10),
			mcp.Min(1),
			mcp.Max(20),
			mcp.Description("Maximum replies fetched per comment."),
		),
	)
}

type MCPEndpoint struct {
	uc       uc
	pageSize int
}

func (e *MCPEndpoint) GetVideoComments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	videoID, err := req.RequireString("video_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	in := usecase.FetchInput{
		VideoID:        videoID,
		Page:           req.GetInt("page", 1),
		PageSize:       req.GetInt("page_size", e.pageSize),
		Sort:           req.GetString("sort", "like"),
		IncludeReplies: req.GetBool("include_replies", false),
		ReplyLimit:     req.GetInt("reply_limit", 10),
	}

	result, err := e.uc.FetchComments(ctx, in)
	if err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(result.Report), nil
}

// toolError turns a usecase error into a tool result the model can act on.
// Validation and upstream messages are written for that audience; anything
// else stays generic so internals do not leak into the conversation.
func toolError(err error) *mcp.CallToolResult {
	var perr *pkgerror.Error
	if !errors.As(err, &perr) {
		return mcp.NewToolResultError("internal error while fetching comments")
	}

	switch perr.Type() {
	case pkgerror.TypeValidation:
		return mcp.NewToolResultError(perr.Error())
	case pkgerror.TypeUpstream:
		return mcp.NewToolResultError(perr.Msg())
	default:
		return mcp.NewToolResultError("internal error while fetching comments")
	}
}
