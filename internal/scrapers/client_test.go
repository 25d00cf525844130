package scrapers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHTTPClientGet(t *testing.T) {
	var gotAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAgent = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))
	defer server.Close()

	client := NewHTTPClient("serptrack-test/1.0", 5*time.Second)
	body, status, err := client.Get(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if status != http.StatusTeapot {
		t.Errorf("Expected status 418, got %d", status)
	}
	if string(body) != "short and stout" {
		t.Errorf("Unexpected body: %q", body)
	}
	if gotAgent != "serptrack-test/1.0" {
		t.Errorf("Expected configured user agent, got %q", gotAgent)
	}
}

func TestHTTPClientContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer server.Close()

	client := NewHTTPClient("test-agent", 30*time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, _, err := client.Get(ctx, server.URL)
	if err == nil {
		t.Fatal("Expected error when the context deadline passes")
	}
}
