package source

import (
	"encoding/json"
	"fmt"

	"github.com/222wcnm/bilibili-comments-mcp/internal/comments/entity"
	"github.com/222wcnm/bilibili-comments-mcp/internal/pkg/pkgerror"
)

// envelope is the wrapper every web API response comes in. Data stays raw
// until the endpoint-specific shape is known.
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Upstream error codes worth distinguishing. Anything else maps to a
// generic unavailable error carrying the upstream message.
const (
	codeNotFound       = -404
	codeUnauthorized   = -101
	codeRiskControl    = -412
	codeVideoGone      = 62002
	codeCommentsClosed = 12002
	codeCommentsHidden = 12061
)

func mapAPIError(code int, message string) error {
	switch code {
	case codeNotFound, codeVideoGone:
		return pkgerror.NewUpstream("video not found or no longer visible", pkgerror.CodeNotFound)
	case codeRiskControl:
		return pkgerror.NewUpstream("request rejected by upstream risk control, retry later", pkgerror.CodeRateLimited)
	case codeCommentsClosed, codeCommentsHidden:
		return pkgerror.NewUpstream("comments are closed for this video", pkgerror.CodeCommentsClosed)
	case codeUnauthorized:
		return pkgerror.NewUpstream("credential is missing or expired", pkgerror.CodeUnauthorized)
	default:
		return pkgerror.NewUpstream(fmt.Sprintf("upstream error %d: %s", code, message), pkgerror.CodeUnavailable)
	}
}

type viewData struct {
	Aid   int64  `json:"aid"`
	BVid  string `json:"bvid"`
	Title string `json:"title"`
	Owner struct {
		Mid  int64  `json:"mid"`
		Name string `json:"name"`
	} `json:"owner"`
	Stat struct {
		Reply int64 `json:"reply"`
	} `json:"stat"`
}

func (v viewData) toEntity() entity.Video {
	return entity.Video{
		Aid:        v.Aid,
		BVid:       v.BVid,
		Title:      v.Title,
		Owner:      v.Owner.Name,
		ReplyCount: v.Stat.Reply,
	}
}

// replyData covers both the main comment listing and the nested reply
// listing; the latter simply has no upper block.
type replyData struct {
	Page struct {
		Num    int   `json:"num"`
		Size   int   `json:"size"`
		Count  int64 `json:"count"`
		Acount int64 `json:"acount"`
	} `json:"page"`
	Upper struct {
		Top *replyItem `json:"top"`
	} `json:"upper"`
	Replies []replyItem `json:"replies"`
}

type replyItem struct {
	Rpid   int64 `json:"rpid"`
	Mid    int64 `json:"mid"`
	Root   int64 `json:"root"`
	Parent int64 `json:"parent"`
	Rcount int64 `json:"rcount"`
	Like   int64 `json:"like"`
	Ctime  int64 `json:"ctime"`
	Member struct {
		Uname string `json:"uname"`
		Level struct {
			CurrentLevel int `json:"current_level"`
		} `json:"level_info"`
	} `json:"member"`
	Content struct {
		Message string `json:"message"`
	} `json:"content"`
}

func (r replyItem) toEntity() entity.Comment {
	return entity.Comment{
		ID:     r.Rpid,
		Root:   r.Root,
		Parent: r.Parent,
		Author: entity.Author{
			Mid:   r.Mid,
			Name:  r.Member.Uname,
			Level: r.Member.Level.CurrentLevel,
		},
		Message:    r.Content.Message,
		Likes:      r.Like,
		CreatedAt:  r.Ctime,
		ReplyCount: r.Rcount,
	}
}

func (d replyData) toPage() entity.CommentPage {
	page := entity.CommentPage{
		Info: entity.PageInfo{
			Num:      d.Page.Num,
			Size:     d.Page.Size,
			Count:    d.Page.Count,
			AllCount: d.Page.Acount,
		},
		Comments: make([]entity.Comment, 0, len(d.Replies)),
	}
	if d.Upper.Top != nil {
		pinned := d.Upper.Top.toEntity()
		page.Pinned = &pinned
	}
	for _, item := range d.Replies {
		page.Comments = append(page.Comments, item.toEntity())
	}
	return page
}

func (d replyData) toComments() []entity.Comment {
	comments := make([]entity.Comment, 0, len(d.Replies))
	for _, item := range d.Replies {
		comments = append(comments, item.toEntity())
	}
	return comments
}
