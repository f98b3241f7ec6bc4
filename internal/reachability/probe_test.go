package reachability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestProber_Reachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("expected HEAD request, got %s", r.Method)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := NewProber(DefaultTimeout)
	if !p.Reachable(context.Background(), srv.URL) {
		t.Error("expected URL to be reachable")
	}
}

func TestProber_Unreachable404(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	p := NewProber(DefaultTimeout)
	if p.Reachable(context.Background(), srv.URL) {
		t.Error("expected 404 URL to be unreachable")
	}
}

func TestProber_EmptyURL(t *testing.T) {
	p := NewProber(DefaultTimeout)
	if p.Reachable(context.Background(), "") {
		t.Error("expected empty URL to be unreachable")
	}
}

func TestProber_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(50 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := NewProber(5 * time.Millisecond)
	if p.Reachable(context.Background(), srv.URL) {
		t.Error("expected slow URL to time out as unreachable")
	}
}
