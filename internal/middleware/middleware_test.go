package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/amalgamator/amalgamator/internal/config"
	"github.com/amalgamator/amalgamator/internal/utils"
)

func doAuth(t *testing.T, header string) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	ok := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	if err := JWTAuth("test-secret")(ok)(c); err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}
	return rec, c
}

func TestJWTAuthMissingHeader(t *testing.T) {
	rec, _ := doAuth(t, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "unauthorized") {
		t.Errorf("body %q missing error kind", rec.Body.String())
	}
}

func TestJWTAuthGarbageToken(t *testing.T) {
	rec, _ := doAuth(t, "Bearer not.a.jwt")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestJWTAuthWrongSecret(t *testing.T) {
	at, err := utils.NewAccessToken("other-secret", 5, "MEMBER", 5)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	rec, _ := doAuth(t, "Bearer "+at.Token)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestJWTAuthValidToken(t *testing.T) {
	at, err := utils.NewAccessToken("test-secret", 5, "ADMIN", 5)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	rec, c := doAuth(t, "Bearer "+at.Token)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if uid, ok := c.Get("user_id").(float64); !ok || uid != 5 {
		t.Errorf("user_id = %v, want 5", c.Get("user_id"))
	}
	if role, _ := c.Get("role").(string); role != "ADMIN" {
		t.Errorf("role = %v, want ADMIN", c.Get("role"))
	}
}

func TestRequireRole(t *testing.T) {
	cases := []struct {
		role    interface{}
		allowed []string
		want    int
	}{
		{"MEMBER", []string{"MEMBER", "ADMIN"}, http.StatusOK},
		{"ADMIN", []string{"ADMIN"}, http.StatusOK},
		{"MEMBER", []string{"ADMIN"}, http.StatusForbidden},
		{nil, []string{"MEMBER"}, http.StatusForbidden},
		{42, []string{"MEMBER"}, http.StatusForbidden},
	}
	e := echo.New()
	ok := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if tc.role != nil {
			c.Set("role", tc.role)
		}
		if err := RequireRole(tc.allowed...)(ok)(c); err != nil {
			t.Fatalf("middleware returned error: %v", err)
		}
		if rec.Code != tc.want {
			t.Errorf("role=%v allowed=%v: status = %d, want %d", tc.role, tc.allowed, rec.Code, tc.want)
		}
	}
}

func TestBuildRateKeyStrategies(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/amalgamations", nil)
	req.Header.Set("X-Real-IP", "10.0.0.9")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/amalgamations")
	c.Set("user_id", float64(7))

	cases := []struct {
		strategy string
		want     string
	}{
		{"ip", "rl:ip:10.0.0.9"},
		{"user", "rl:user:7"},
		{"route", "rl:route:GET /v1/amalgamations"},
		{"ip_user", "rl:ip:10.0.0.9:user:7"},
		{"ip_route", "rl:ip:10.0.0.9:route:GET /v1/amalgamations"},
		{"user_route", "rl:user:7:route:GET /v1/amalgamations"},
		{"anything_else", "rl:ip:10.0.0.9:user:7:route:GET /v1/amalgamations"},
	}
	for _, tc := range cases {
		cfg := config.RateLimitConfig{Prefix: "rl", KeyStrategy: tc.strategy}
		if got := buildRateKey(cfg, c); got != tc.want {
			t.Errorf("strategy %q: key = %q, want %q", tc.strategy, got, tc.want)
		}
	}
}

func TestCurrentUserIDAnonymous(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	if got := currentUserID(c); got != "anon" {
		t.Errorf("currentUserID = %q, want anon", got)
	}
}

func TestCacheKeyStrategies(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/data/hierarchical?x=1", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/v1/data/hierarchical")

	keys := map[string]string{}
	for _, strategy := range []string{"route", "method_route", "method_route_query", "route_query"} {
		cfg := config.CacheConfig{Prefix: "cache", KeyStrategy: strategy}
		key := cacheKeyFrom(cfg, c)
		if !strings.HasPrefix(key, "cache:") {
			t.Errorf("strategy %q: key %q missing prefix", strategy, key)
		}
		if len(key) != len("cache:")+40 { // sha1 hex
			t.Errorf("strategy %q: key %q has unexpected length", strategy, key)
		}
		keys[strategy] = key
	}
	if keys["route"] == keys["route_query"] {
		t.Error("query must contribute to the route_query key")
	}

	// Same strategy and request must produce the same key.
	cfg := config.CacheConfig{Prefix: "cache", KeyStrategy: "route_query"}
	if cacheKeyFrom(cfg, c) != keys["route_query"] {
		t.Error("key is not stable across calls")
	}
}

func TestCachePayloadRoundTrip(t *testing.T) {
	hdr := http.Header{"Content-Type": {"application/json"}}
	body := []byte(`[{"source":"roget"}]`)
	payload, err := encodePayload(http.StatusOK, hdr, body)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	status, gotHdr, gotBody, ok := decodePayload(payload)
	if !ok {
		t.Fatal("decode rejected its own encoding")
	}
	if status != http.StatusOK {
		t.Errorf("status = %d, want 200", status)
	}
	if gotHdr.Get("Content-Type") != "application/json" {
		t.Errorf("header = %v", gotHdr)
	}
	if string(gotBody) != string(body) {
		t.Errorf("body = %q, want %q", gotBody, body)
	}

	for _, junk := range [][]byte{nil, []byte("short"), []byte("\x00\x00\x00\xc8\xff\xff\xff\xff")} {
		if _, _, _, ok := decodePayload(junk); ok {
			t.Errorf("decode accepted junk %q", junk)
		}
	}
}

func TestAsInt64(t *testing.T) {
	cases := []struct {
		in   interface{}
		want int64
	}{
		{int64(9), 9},
		{int32(8), 8},
		{7, 7},
		{float64(6), 6},
		{"5", 5},
		{"nope", 0},
		{nil, 0},
	}
	for _, tc := range cases {
		if got := asInt64(tc.in); got != tc.want {
			t.Errorf("asInt64(%v) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
