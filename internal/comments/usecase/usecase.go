package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/222wcnm/bilibili-comments-mcp/internal/comments/entity"
	"github.com/222wcnm/bilibili-comments-mcp/internal/pkg/pkgerror"
	"github.com/222wcnm/bilibili-comments-mcp/internal/pkg/pkgpool"
)

const (
	maxPageSize   = 49
	maxReplyLimit = 20

	defaultConcurrency = 5
)

// Source fetches video and comment data from the upstream API.
type Source interface {
	View(ctx context.Context, aid int64) (entity.Video, error)
	FetchPage(ctx context.Context, aid int64, page, size int, sort entity.Sort) (entity.CommentPage, error)
	Replies(ctx context.Context, aid, root int64, limit int) ([]entity.Comment, error)
}

// Renderer turns an assembled thread into the report text.
type Renderer interface {
	Render(thread entity.Thread) (string, error)
}

type Clock interface {
	Now() time.Time
}

type Dependency struct {
	Source      Source
	Renderer    Renderer
	Clock       Clock
	Concurrency int
	PoolHooks   pkgpool.Hooks
}

type Usecase struct {
	source      Source
	renderer    Renderer
	clock       Clock
	concurrency int
	poolHooks   pkgpool.Hooks
}

func New(dep Dependency) *Usecase {
	clock := dep.Clock
	if clock == nil {
		clock = realClock{}
	}

	concurrency := dep.Concurrency
	if concurrency < 1 {
		concurrency = defaultConcurrency
	}

	return &Usecase{
		source:      dep.Source,
		renderer:    dep.Renderer,
		clock:       clock,
		concurrency: concurrency,
		poolHooks:   dep.PoolHooks,
	}
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

// FetchComments resolves the video, fetches one page of its comments, and
// renders the result. With IncludeReplies set it also pulls the reply
// threads, bounded by the configured concurrency.
func (u *Usecase) FetchComments(ctx context.Context, in FetchInput) (FetchResult, error) {
	if u.source == nil || u.renderer == nil {
		return FetchResult{}, pkgerror.NewServer(errors.New("missing dependency"))
	}

	aid, err := entity.ParseVideoID(in.VideoID)
	if err != nil {
		return FetchResult{}, pkgerror.NewInvalidFormat(err.Error())
	}
	sort, err := validate(in)
	if err != nil {
		return FetchResult{}, err
	}

	start := u.clock.Now()

	g, gctx := errgroup.WithContext(ctx)
	var video entity.Video
	var page entity.CommentPage
	g.Go(func() error {
		v, err := u.source.View(gctx, aid)
		video = v
		return err
	})
	g.Go(func() error {
		p, err := u.source.FetchPage(gctx, aid, in.Page, in.PageSize, sort)
		page = p
		return err
	})
	if err := g.Wait(); err != nil {
		return FetchResult{}, normalizeErr(err)
	}

	if in.IncludeReplies {
		if err := u.attachReplies(ctx, aid, &page, in.ReplyLimit); err != nil {
			return FetchResult{}, err
		}
	}

	thread := entity.Thread{
		Video:     video,
		Sort:      sort,
		Page:      page,
		FetchedAt: u.clock.Now().Unix(),
	}

	report, err := u.renderer.Render(thread)
	if err != nil {
		return FetchResult{}, pkgerror.NewServer(err)
	}

	slog.InfoContext(ctx, "comments fetched",
		"aid", aid,
		"page", in.Page,
		"comments", len(page.Comments),
		"latency_ms", u.clock.Now().Sub(start).Milliseconds(),
	)

	return FetchResult{Thread: thread, Report: report}, nil
}

func validate(in FetchInput) (entity.Sort, error) {
	if in.Page < 1 {
		return "", pkgerror.NewInvalidInput(errors.New("page must be at least 1"))
	}
	if in.PageSize < 1 || in.PageSize > maxPageSize {
		return "", pkgerror.NewInvalidInput(fmt.Errorf("page_size must be between 1 and %d", maxPageSize))
	}

	var sort entity.Sort
	switch in.Sort {
	case "", string(entity.SortLike):
		sort = entity.SortLike
	case string(entity.SortTime):
		sort = entity.SortTime
	default:
		return "", pkgerror.NewInvalidInput(errors.New("sort must be like or time"))
	}

	if in.IncludeReplies && (in.ReplyLimit < 1 || in.ReplyLimit > maxReplyLimit) {
		return "", pkgerror.NewInvalidInput(fmt.Errorf("reply_limit must be between 1 and %d", maxReplyLimit))
	}
	return sort, nil
}

// attachReplies fans one fetch per commented thread out through a bounded
// pool. A failed fetch only marks its comment; the page still renders.
func (u *Usecase) attachReplies(ctx context.Context, aid int64, page *entity.CommentPage, limit int) error {
	targets := make([]*entity.Comment, 0, len(page.Comments)+1)
	if page.Pinned != nil {
		targets = append(targets, page.Pinned)
	}
	for i := range page.Comments {
		targets = append(targets, &page.Comments[i])
	}

	type pending struct {
		comment *entity.Comment
		future  *pkgpool.Future[[]entity.Comment]
	}

	pool := pkgpool.NewPool[[]entity.Comment](u.concurrency, pkgpool.WithHooks(u.poolHooks))
	futures := make([]pending, 0, len(targets))
	for _, comment := range targets {
		if comment.ReplyCount <= 0 {
			continue
		}
		root := comment.ID
		futures = append(futures, pending{
			comment: comment,
			future: pool.Schedule(ctx, func(ctx context.Context) ([]entity.Comment, error) {
				return u.source.Replies(ctx, aid, root, limit)
			}),
		})
	}

	for _, p := range futures {
		replies, err := p.future.Wait(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return pkgerror.NewTimeout(ctx.Err())
			}
			slog.WarnContext(ctx, "reply fetch failed", "aid", aid, "root", p.comment.ID, "error", err)
			p.comment.RepliesFailed = true
			continue
		}
		p.comment.Replies = replies
	}
	return nil
}

func normalizeErr(err error) error {
	var perr *pkgerror.Error
	if errors.As(err, &perr) {
		return perr
	}
	return pkgerror.NewServer(err)
}
