package resolver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if q := r.URL.Query().Get("q"); q != "lofi beats" {
			t.Errorf("q = %q", q)
		}
		if l := r.URL.Query().Get("limit"); l != "24" {
			t.Errorf("limit = %q", l)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items":[{"id":"dQw4w9WgXcQ","type":"video","title":"never gonna"}]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, 2*time.Second)
	items, err := c.Search(context.Background(), "lofi beats", 24)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(items) != 1 || items[0].ID != "dQw4w9WgXcQ" {
		t.Fatalf("items = %+v", items)
	}
}

func TestSearchErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(srv.URL, 2*time.Second)
	if _, err := c.Search(context.Background(), "x", 5); err == nil {
		t.Fatal("expected error on non-200")
	}
}

func TestResolve(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/resolve/dQw4w9WgXcQ" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"videoId":"dQw4w9WgXcQ","url":"https://cdn.example/stream","quality":"720p"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, 2*time.Second)
	res, err := c.Resolve(context.Background(), "dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.URL != "https://cdn.example/stream" {
		t.Fatalf("url = %q", res.URL)
	}
}

func TestExtractVideoID(t *testing.T) {
	cases := map[string]string{
		"dQw4w9WgXcQ": "dQw4w9WgXcQ",
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ":       "dQw4w9WgXcQ",
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42s": "dQw4w9WgXcQ",
		"https://youtu.be/dQw4w9WgXcQ":                      "dQw4w9WgXcQ",
		"https://www.youtube.com/embed/dQw4w9WgXcQ":         "dQw4w9WgXcQ",
		"not a link":                                        "",
		"https://example.com/":                              "",
	}
	for in, want := range cases {
		if got := ExtractVideoID(in); got != want {
			t.Errorf("ExtractVideoID(%q) = %q, want %q", in, got, want)
		}
	}
}
