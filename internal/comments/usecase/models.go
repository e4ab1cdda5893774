package usecase

import (
	"github.com/222wcnm/bilibili-comments-mcp/internal/comments/entity"
)

// FetchInput carries the tool arguments after transport decoding. Zero
// values for sort and the numeric fields are filled by the transport layer
// defaults, not here.
type FetchInput struct {
	VideoID        string
	Page           int
	PageSize       int
	Sort           string
	IncludeReplies bool
	ReplyLimit     int
}

// FetchResult pairs the assembled thread with its rendered report.
type FetchResult struct {
	Thread entity.Thread
	Report string
}
