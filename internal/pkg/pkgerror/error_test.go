package pkgerror

import (
	"errors"
	"net/http"
	"strings"
	"testing"
)

func TestTypeString(t *testing.T) {
	if got := TypeValidation.String(); got != "ERROR_TYPE_VALIDATION" {
		t.Fatalf("unexpected validation string: %q", got)
	}
	if got := TypeUpstream.String(); got != "ERROR_TYPE_UPSTREAM" {
		t.Fatalf("unexpected upstream string: %q", got)
	}
	if got := TypeServer.String(); got != "ERROR_TYPE_SERVER" {
		t.Fatalf("unexpected server string: %q", got)
	}
	if got := Type(99).String(); got != "ERROR_TYPE_UNKNOWN" {
		t.Fatalf("unexpected unknown type string: %q", got)
	}
}

func TestCodeString(t *testing.T) {
	if got := CodeInvalidFormat.String(); got != "ERROR_CODE_INVALID_FORMAT" {
		t.Fatalf("unexpected invalid format string: %q", got)
	}
	if got := CodeRateLimited.String(); got != "ERROR_CODE_RATE_LIMITED" {
		t.Fatalf("unexpected rate limited string: %q", got)
	}
	if got := CodeCommentsClosed.String(); got != "ERROR_CODE_COMMENTS_CLOSED" {
		t.Fatalf("unexpected comments closed string: %q", got)
	}
	if got := CodeInternal.String(); got != "ERROR_CODE_INTERNAL" {
		t.Fatalf("unexpected internal string: %q", got)
	}
	if got := Code(99).String(); got != "ERROR_CODE_INTERNAL" {
		t.Fatalf("unexpected default code string: %q", got)
	}
}

func TestErrorHelpers(t *testing.T) {
	root := errors.New("boom")
	err := NewServer(root)
	gerr, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *Error, got %T", err)
	}
	if !errors.Is(err, root) {
		t.Fatalf("expected wrapped error")
	}
	if got := gerr.Msg(); got != "Internal server error" {
		t.Fatalf("unexpected msg: %q", got)
	}
	if got := gerr.Type(); got != TypeServer {
		t.Fatalf("unexpected type: %v", got)
	}
	if got := gerr.Code(); got != CodeInternal {
		t.Fatalf("unexpected code: %v", got)
	}
	if got := gerr.Error(); got != "boom" {
		t.Fatalf("unexpected error string: %q", got)
	}
	if got := gerr.StatusCode(); got != http.StatusInternalServerError {
		t.Fatalf("unexpected status: %d", got)
	}
}

func TestUpstreamAndValidationErrors(t *testing.T) {
	up := NewUpstream("comments are closed for this video", CodeCommentsClosed).(*Error)
	if got := up.Error(); got != "comments are closed for this video" {
		t.Fatalf("unexpected upstream error: %q", got)
	}
	if got := up.StatusCode(); got != http.StatusForbidden {
		t.Fatalf("unexpected upstream status: %d", got)
	}

	limited := NewUpstream("rejected by risk control", CodeRateLimited).(*Error)
	if got := limited.StatusCode(); got != http.StatusTooManyRequests {
		t.Fatalf("unexpected rate limited status: %d", got)
	}

	root := errors.New("bad")
	invalidInput := NewInvalidInput(root)
	if got := invalidInput.Error(); got != "bad" {
		t.Fatalf("unexpected invalid input error: %q", got)
	}
	if !errors.Is(invalidInput, root) {
		t.Fatalf("expected invalid input to wrap error")
	}

	invalidFormat := NewInvalidFormat("not a valid video id").(*Error)
	if got := invalidFormat.Error(); got != "not a valid video id" {
		t.Fatalf("unexpected invalid format error: %q", got)
	}
	if got := invalidFormat.StatusCode(); got != http.StatusBadRequest {
		t.Fatalf("unexpected invalid format status: %d", got)
	}
}

func TestTimeoutError(t *testing.T) {
	root := errors.New("context deadline exceeded")
	err := NewTimeout(root).(*Error)
	if got := err.Code(); got != CodeTimeout {
		t.Fatalf("unexpected code: %v", got)
	}
	if got := err.StatusCode(); got != http.StatusGatewayTimeout {
		t.Fatalf("unexpected timeout status: %d", got)
	}
	if !errors.Is(err, root) {
		t.Fatalf("expected timeout to wrap error")
	}
}

func TestErrorFallbackMessages(t *testing.T) {
	validation := new(nil, "", TypeValidation, CodeInternal).(*Error)
	if got := validation.Error(); got != "Validation violation" {
		t.Fatalf("unexpected validation fallback: %q", got)
	}

	upstream := new(nil, "", TypeUpstream, CodeInternal).(*Error)
	if got := upstream.Error(); got != "Upstream API error" {
		t.Fatalf("unexpected upstream fallback: %q", got)
	}

	server := new(nil, "", TypeServer, CodeInternal).(*Error)
	if got := server.Error(); got != "Internal error" {
		t.Fatalf("unexpected server fallback: %q", got)
	}
}

func TestErrorStringIncludesDetails(t *testing.T) {
	err := NewUpstream("message", CodeUnavailable).(*Error)
	str := err.String()
	if !strings.Contains(str, "ERROR_TYPE_UPSTREAM") {
		t.Fatalf("expected error type in string: %q", str)
	}
	if !strings.Contains(str, "ERROR_CODE_UNAVAILABLE") {
		t.Fatalf("expected error code in string: %q", str)
	}
	if !strings.Contains(str, "message") {
		t.Fatalf("expected message in string: %q", str)
	}
}
