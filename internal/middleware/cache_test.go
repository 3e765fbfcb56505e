package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/sury19/ExamPaperPortal/internal/config"
)

func TestPurgeCacheWithoutRedis(t *testing.T) {
	// Handlers purge unconditionally after writes; without Redis this
	// must be a silent no-op, like the cache middleware itself.
	if err := PurgeCache(context.Background(), nil, config.CacheConfig{Enabled: true, Prefix: "cache"}); err != nil {
		t.Errorf("nil client purge returned %v", err)
	}
	if err := PurgeCache(context.Background(), nil, config.CacheConfig{}); err != nil {
		t.Errorf("disabled purge returned %v", err)
	}
}

func TestRedisCacheDisabledPassesThrough(t *testing.T) {
	mw := NewRedisCache(config.CacheConfig{}, nil)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/papers/public/all", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	err := mw(func(c echo.Context) error {
		called = true
		return c.String(http.StatusOK, "[]")
	})(c)
	if err != nil {
		t.Fatalf("middleware error: %v", err)
	}
	if !called {
		t.Fatal("next handler not called with cache disabled")
	}
	if rec.Header().Get("X-Cache") != "" {
		t.Error("pass-through middleware set cache headers")
	}
}

func TestDecodePayloadRejectsTruncatedInput(t *testing.T) {
	for _, bs := range [][]byte{nil, {1, 2, 3}, {0, 0, 0, 200, 0, 0, 0, 99}} {
		if _, _, _, ok := decodePayload(bs); ok {
			t.Errorf("decodePayload(%v) accepted malformed input", bs)
		}
	}
}

func TestEncodeDecodePayloadRoundTrip(t *testing.T) {
	hdr := http.Header{"Content-Type": {"application/json"}}
	body := []byte(`[{"id":1}]`)
	bs, err := encodePayload(http.StatusOK, hdr, body)
	if err != nil {
		t.Fatalf("encodePayload: %v", err)
	}
	status, gotHdr, gotBody, ok := decodePayload(bs)
	if !ok {
		t.Fatal("decodePayload rejected its own encoding")
	}
	if status != http.StatusOK {
		t.Errorf("status = %d, want 200", status)
	}
	if gotHdr.Get("Content-Type") != "application/json" {
		t.Errorf("header = %v", gotHdr)
	}
	if string(gotBody) != string(body) {
		t.Errorf("body = %q", gotBody)
	}
}
