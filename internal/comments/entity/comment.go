package entity

// Sort selects the order the upstream API returns top-level comments in.
type Sort string

const (
	SortLike Sort = "like"
	SortTime Sort = "time"
)

// Video is the subject of a comment fetch.
type Video struct {
	Aid        int64
	BVid       string
	Title      string
	Owner      string
	ReplyCount int64
}

// Author is the poster of one comment.
type Author struct {
	Mid   int64
	Name  string
	Level int
}

// Comment is a single comment. Top-level comments carry their fetched
// replies nested in Replies; reply comments have Root and Parent set.
type Comment struct {
	ID        int64
	Root      int64
	Parent    int64
	Author    Author
	Message   string
	Likes     int64
	CreatedAt int64 // unix seconds

	// ReplyCount is the total the upstream reports; Replies holds at most
	// the configured reply limit of them.
	ReplyCount int64
	Replies    []Comment

	// RepliesFailed marks a comment whose reply fetch failed. The comment
	// itself still renders.
	RepliesFailed bool
}

// PageInfo describes one page of top-level comments as reported upstream.
type PageInfo struct {
	Num   int
	Size  int
	Count int64 // top-level comments on the video

	// AllCount includes nested replies.
	AllCount int64
}

// CommentPage is one page of top-level comments, with the pinned comment
// (when the uploader set one) carried separately.
type CommentPage struct {
	Info     PageInfo
	Pinned   *Comment
	Comments []Comment
}

// Thread is the assembled result of one fetch.
type Thread struct {
	Video     Video
	Sort      Sort
	Page      CommentPage
	FetchedAt int64 // unix seconds
}
