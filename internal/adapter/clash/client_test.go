package clash

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestPlayer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.EscapedPath() != "/v1/players/%2329YOY8UJQ" {
			t.Errorf("unexpected path %s", r.URL.EscapedPath())
		}
		if r.Header.Get("Authorization") != "Bearer token" {
			t.Errorf("missing bearer token")
		}
		_, _ = w.Write([]byte(`{"tag":"#29YOY8UJQ","trophies":4200}`))
	}))
	defer srv.Close()

	body, err := New(srv.URL+"/v1", "token").Player(context.Background(), "#29YOY8UJQ")
	if err != nil {
		t.Fatalf("Player failed: %v", err)
	}
	if string(body) != `{"tag":"#29YOY8UJQ","trophies":4200}` {
		t.Errorf("body = %s", body)
	}
}

func TestPlayerErrors(t *testing.T) {
	if _, err := New("http://unused", "").Player(context.Background(), "#X"); !errors.Is(err, ErrNoToken) {
		t.Errorf("expected ErrNoToken, got %v", err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"reason":"accessDenied.invalidIp"}`))
	}))
	defer srv.Close()

	if _, err := New(srv.URL, "token").Player(context.Background(), "#X"); !errors.Is(err, ErrUpstream) {
		t.Errorf("expected ErrUpstream, got %v", err)
	}
}
