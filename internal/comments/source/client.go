package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/222wcnm/bilibili-comments-mcp/internal/comments/entity"
	"github.com/222wcnm/bilibili-comments-mcp/internal/pkg/pkgerror"
	"github.com/222wcnm/bilibili-comments-mcp/internal/pkg/pkgmetrics"
)

const (
	navPath        = "/x/web-interface/nav"
	viewPath       = "/x/web-interface/view"
	replyPath      = "/x/v2/reply"
	replyReplyPath = "/x/v2/reply/reply"

	// commentAreaVideo is the oid type of the video comment area.
	commentAreaVideo = "1"

	referer = "https://www.bilibili.com"
)

// Config carries the wiring for a Client. Metrics may be nil, in which case
// requests are not instrumented.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	UserAgent  string
	Credential string
	WBIEnabled bool
	WBIKeyTTL  time.Duration
	Metrics    *pkgmetrics.Registry
}

// Client talks to the Bilibili web API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	credential string
	signing    bool
	keys       *keyring
	refresh    singleflight.Group
	metrics    *pkgmetrics.Registry
}

func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		userAgent:  cfg.UserAgent,
		credential: cfg.Credential,
		signing:    cfg.WBIEnabled,
		keys:       newKeyring(cfg.WBIKeyTTL),
		metrics:    cfg.Metrics,
	}
}

// View fetches the video metadata for an aid.
func (c *Client) View(ctx context.Context, aid int64) (entity.Video, error) {
	query := url.Values{}
	query.Set("aid", strconv.FormatInt(aid, 10))

	var data viewData
	if err := c.get(ctx, "view", viewPath, query, &data); err != nil {
		return entity.Video{}, err
	}
	return data.toEntity(), nil
}

// FetchPage fetches one page of top-level comments.
func (c *Client) FetchPage(ctx context.Context, aid int64, page, size int, sort entity.Sort) (entity.CommentPage, error) {
	query := url.Values{}
	query.Set("type", commentAreaVideo)
	query.Set("oid", strconv.FormatInt(aid, 10))
	query.Set("pn", strconv.Itoa(page))
	query.Set("ps", strconv.Itoa(size))
	query.Set("sort", sortParam(sort))

	var data replyData
	if err := c.get(ctx, "reply", replyPath, query, &data); err != nil {
		return entity.CommentPage{}, err
	}
	return data.toPage(), nil
}

// Replies fetches up to limit replies nested under the comment root.
func (c *Client) Replies(ctx context.Context, aid, root int64, limit int) ([]entity.Comment, error) {
	query := url.Values{}
	query.Set("type", commentAreaVideo)
	query.Set("oid", strconv.FormatInt(aid, 10))
	query.Set("root", strconv.FormatInt(root, 10))
	query.Set("pn", "1")
	query.Set("ps", strconv.Itoa(limit))

	var data replyData
	if err := c.get(ctx, "reply_reply", replyReplyPath, query, &data); err != nil {
		return nil, err
	}
	return data.toComments(), nil
}

// The upstream sort parameter: 0 is by time, 1 is by like count.
func sortParam(sort entity.Sort) string {
	if sort == entity.SortTime {
		return "0"
	}
	return "1"
}

// RefreshWBIKeys fetches the current signing keys regardless of freshness.
// The scheduler calls this shortly after the daily rotation.
func (c *Client) RefreshWBIKeys(ctx context.Context) error {
	if !c.signing {
		return nil
	}
	_, err, _ := c.refresh.Do("wbi", func() (any, error) {
		return nil, c.fetchWBIKeys(ctx)
	})
	return err
}

// Ready reports whether the client can sign requests, refreshing the keys
// when they are stale. With signing disabled it always succeeds.
func (c *Client) Ready(ctx context.Context) error {
	if !c.signing {
		return nil
	}
	_, err := c.signingKey(ctx)
	return err
}

// Close releases pooled connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

func (c *Client) signingKey(ctx context.Context) (string, error) {
	if key, fresh := c.keys.current(time.Now()); fresh {
		return key, nil
	}
	_, err, _ := c.refresh.Do("wbi", func() (any, error) {
		if _, fresh := c.keys.current(time.Now()); fresh {
			return nil, nil
		}
		return nil, c.fetchWBIKeys(ctx)
	})
	if err != nil {
		return "", err
	}
	key, _ := c.keys.current(time.Now())
	if key == "" {
		return "", pkgerror.NewUpstream("signing keys unavailable", pkgerror.CodeUnavailable)
	}
	return key, nil
}

// fetchWBIKeys pulls the key pair off the nav endpoint. Nav answers with
// code -101 when no credential is set but still includes the keys, so that
// code is not treated as an error here.
func (c *Client) fetchWBIKeys(ctx context.Context) error {
	env, err := c.do(ctx, "nav", navPath, nil)
	if err != nil {
		return err
	}
	if env.Code != 0 && env.Code != codeUnauthorized {
		return mapAPIError(env.Code, env.Message)
	}

	var data struct {
		WbiImg struct {
			ImgURL string `json:"img_url"`
			SubURL string `json:"sub_url"`
		} `json:"wbi_img"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return pkgerror.NewUpstream("malformed nav response", pkgerror.CodeUnavailable)
	}

	imgKey := keyFromURL(data.WbiImg.ImgURL)
	subKey := keyFromURL(data.WbiImg.SubURL)
	if imgKey == "" || subKey == "" {
		return pkgerror.NewUpstream("nav response carried no signing keys", pkgerror.CodeUnavailable)
	}

	c.keys.set(imgKey, subKey, time.Now())
	slog.InfoContext(ctx, "wbi signing keys refreshed")
	return nil
}

// get performs a signed API request and decodes the data block into out.
func (c *Client) get(ctx context.Context, endpoint, path string, query url.Values, out any) error {
	if c.signing {
		key, err := c.signingKey(ctx)
		if err != nil {
			return err
		}
		query = signQuery(query, key, time.Now())
	}

	env, err := c.do(ctx, endpoint, path, query)
	if err != nil {
		return err
	}
	if env.Code != 0 {
		return mapAPIError(env.Code, env.Message)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		slog.WarnContext(ctx, "undecodable api payload", "endpoint", endpoint, "error", err)
		return pkgerror.NewUpstream("malformed upstream response", pkgerror.CodeUnavailable)
	}
	return nil
}

func (c *Client) do(ctx context.Context, endpoint, path string, query url.Values) (*envelope, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, pkgerror.NewServer(err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Referer", referer)
	if c.credential != "" {
		req.Header.Set("Cookie", "SESSDATA="+c.credential)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe(endpoint, "transport_error", start)
		slog.WarnContext(ctx, "api request failed", "endpoint", endpoint, "error", err)
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, pkgerror.NewTimeout(err)
		}
		return nil, pkgerror.NewUpstream("could not reach the API", pkgerror.CodeUnavailable)
	}
	defer resp.Body.Close() //nolint:errcheck
	c.observe(endpoint, strconv.Itoa(resp.StatusCode), start)

	switch {
	case resp.StatusCode == http.StatusPreconditionFailed:
		// Risk control rejects at the HTTP layer with a non-JSON body.
		return nil, pkgerror.NewUpstream("request rejected by upstream risk control, retry later", pkgerror.CodeRateLimited)
	case resp.StatusCode != http.StatusOK:
		return nil, pkgerror.NewUpstream(fmt.Sprintf("unexpected upstream status %d", resp.StatusCode), pkgerror.CodeUnavailable)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		slog.WarnContext(ctx, "undecodable api response", "endpoint", endpoint, "error", err)
		return nil, pkgerror.NewUpstream("malformed upstream response", pkgerror.CodeUnavailable)
	}
	return &env, nil
}

func (c *Client) observe(endpoint, status string, start time.Time) {
	if c.metrics == nil {
		return
	}
	c.metrics.APIRequests.WithLabelValues(endpoint, status).Inc()
	c.metrics.APIRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}
