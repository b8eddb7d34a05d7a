package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestParseID(t *testing.T) {
	cases := []struct {
		raw  string
		want uint64
		ok   bool
	}{
		{"1", 1, true},
		{"42", 42, true},
		{"0", 0, false},
		{"", 0, false},
		{"abc", 0, false},
		{"-1", 0, false},
		{"1.5", 0, false},
		{"18446744073709551616", 0, false}, // uint64 overflow
	}
	for _, tc := range cases {
		got, ok := parseID(tc.raw)
		if got != tc.want || ok != tc.ok {
			t.Errorf("parseID(%q) = (%d, %v), want (%d, %v)", tc.raw, got, ok, tc.want, tc.ok)
		}
	}
}

func TestFailEnvelope(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	if err := fail(c, http.StatusNotFound, kindNotFound, "amalgamation not found"); err != nil {
		t.Fatalf("fail returned error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if body["error"] != "not_found" || body["message"] != "amalgamation not found" {
		t.Errorf("body = %v", body)
	}
}

func TestGetUserID(t *testing.T) {
	e := echo.New()
	newCtx := func(v interface{}) echo.Context {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
		if v != nil {
			c.Set("user_id", v)
		}
		return c
	}

	if id, err := getUserID(newCtx(float64(12))); err != nil || id != 12 {
		t.Errorf("float64 claim: (%d, %v), want (12, nil)", id, err)
	}
	if id, err := getUserID(newCtx(uint64(3))); err != nil || id != 3 {
		t.Errorf("uint64 claim: (%d, %v), want (3, nil)", id, err)
	}
	if id, err := getUserID(newCtx("9")); err != nil || id != 9 {
		t.Errorf("string claim: (%d, %v), want (9, nil)", id, err)
	}
	if _, err := getUserID(newCtx(nil)); err == nil {
		t.Error("missing claim: expected error")
	}
	if _, err := getUserID(newCtx("oops")); err == nil {
		t.Error("bad string claim: expected error")
	}
}
