package pkgrouter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/222wcnm/bilibili-comments-mcp/internal/pkg/pkgerror"
)

type fixedGenerator struct{}

func (fixedGenerator) Generate() string { return "cid-fixed" }

func TestChainOrder(t *testing.T) {
	order := make([]string, 0, 3)

	mw := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}), mw("mw1"), mw("mw2"))

	req := httptest.NewRequest(http.MethodGet, "http://example.com", nil)
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	if !reflect.DeepEqual(order, []string{"mw1", "mw2", "handler"}) {
		t.Fatalf("unexpected order: %#v", order)
	}
}

func TestRouterEndpointSuccessEnvelope(t *testing.T) {
	ro := NewRouter(fixedGenerator{})
	ro.GET("/ok", func(ctx context.Context, r *http.Request) (any, error) {
		return map[string]string{"name": "value"}, nil
	})

	req := httptest.NewRequest(http.MethodGet, "http://example.com/ok", nil)
	rec := httptest.NewRecorder()
	ro.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body struct {
		Message string            `json:"message"`
		Data    map[string]string `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if body.Data["name"] != "value" {
		t.Fatalf("expected data payload, got %#v", body.Data)
	}
	if body.Message == "" {
		t.Fatalf("expected default message")
	}
}

func TestRouterEndpointErrorMapping(t *testing.T) {
	ro := NewRouter(fixedGenerator{})
	ro.GET("/fail", func(ctx context.Context, r *http.Request) (any, error) {
		return nil, pkgerror.NewUpstream("comments are closed for this video", pkgerror.CodeCommentsClosed)
	})

	req := httptest.NewRequest(http.MethodGet, "http://example.com/fail", nil)
	rec := httptest.NewRecorder()
	ro.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}

	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if body.Message != "comments are closed for this video" {
		t.Fatalf("unexpected message: %q", body.Message)
	}
}

func TestRouterUnknownErrorMapsToInternal(t *testing.T) {
	ro := NewRouter(fixedGenerator{})
	ro.GET("/boom", func(ctx context.Context, r *http.Request) (any, error) {
		return nil, context.DeadlineExceeded
	})

	req := httptest.NewRequest(http.MethodGet, "http://example.com/boom", nil)
	rec := httptest.NewRecorder()
	ro.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestRouterRecoversPanic(t *testing.T) {
	ro := NewRouter(fixedGenerator{})
	ro.GET("/panic", func(ctx context.Context, r *http.Request) (any, error) {
		panic("boom")
	})

	req := httptest.NewRequest(http.MethodGet, "http://example.com/panic", nil)
	rec := httptest.NewRecorder()
	ro.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 after panic, got %d", rec.Code)
	}
}

func TestRouterHealth(t *testing.T) {
	ro := NewRouter(fixedGenerator{})

	req := httptest.NewRequest(http.MethodGet, "http://example.com/health", nil)
	rec := httptest.NewRecorder()
	ro.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
