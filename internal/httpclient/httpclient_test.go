package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestFetchDone(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("payload"))
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "artifact.bin")
	c := New(nil)
	var progressed bool
	outcome, err := c.Fetch(context.Background(), srv.URL, dest, Options{
		Progress: func(downloaded, total int64) { progressed = true },
	})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if outcome != Done {
		t.Errorf("expected Done, got %v", outcome)
	}
	if !progressed {
		t.Error("expected progress callback to fire")
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read dest: %v", err)
	}
	if string(data) != "payload" {
		t.Errorf("unexpected content %q", data)
	}
}

func TestFetchNotModified(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("If-None-Match") == "etag-1" {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Write([]byte("payload"))
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "artifact.bin")
	c := New(nil)
	outcome, err := c.Fetch(context.Background(), srv.URL, dest, Options{ConditionalETag: "etag-1"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if outcome != NotModified {
		t.Errorf("expected NotModified, got %v", outcome)
	}
}

func Test4xxIsTerminal(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "artifact.bin")
	c := New(nil).WithMaxRetries(3)
	outcome, err := c.Fetch(context.Background(), srv.URL, dest, Options{})
	if err == nil {
		t.Fatal("expected error for 404")
	}
	if outcome != Failed {
		t.Errorf("expected Failed, got %v", outcome)
	}
	if attempts != 1 {
		t.Errorf("expected exactly one attempt for a terminal 4xx, got %d", attempts)
	}
}

func Test5xxRetries(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("payload"))
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "artifact.bin")
	c := New(nil).WithMaxRetries(5)
	outcome, err := c.Fetch(context.Background(), srv.URL, dest, Options{})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if outcome != Done {
		t.Errorf("expected Done after retries, got %v", outcome)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}
