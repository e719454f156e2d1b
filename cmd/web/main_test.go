package main

import (
	"bytes"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSSHCommand(t *testing.T) {
	tests := []struct {
		host, port, want string
	}{
		{"swarm.example", "2222", "ssh -p 2222 swarm.example"},
		{"swarm.example", "22", "ssh swarm.example"},
		{"swarm.example", "", "ssh swarm.example"},
	}
	for _, tt := range tests {
		if got := sshCommand(tt.host, tt.port); got != tt.want {
			t.Errorf("sshCommand(%q, %q) = %q, want %q", tt.host, tt.port, got, tt.want)
		}
	}
}

func get(t *testing.T, srv *httptest.Server, path string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(srv.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return resp, body
}

func TestRoutes(t *testing.T) {
	mux, err := newMux(page{
		SSHCommand:  "ssh -p 2222 swarm.example",
		SpectateURL: "wss://swarm.example/ws",
	})
	if err != nil {
		t.Fatalf("newMux: %v", err)
	}
	srv := httptest.NewServer(mux)
	defer srv.Close()

	resp, body := get(t, srv, "/")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET / = %d", resp.StatusCode)
	}
	for _, want := range []string{"ssh -p 2222 swarm.example", "wss://swarm.example/ws", "/qr.png"} {
		if !strings.Contains(string(body), want) {
			t.Errorf("page missing %q", want)
		}
	}

	resp, body = get(t, srv, "/qr.png")
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("qr content type = %q", ct)
	}
	if _, err := png.Decode(bytes.NewReader(body)); err != nil {
		t.Errorf("qr is not a PNG: %v", err)
	}

	if resp, _ := get(t, srv, "/missing"); resp.StatusCode != http.StatusNotFound {
		t.Errorf("GET /missing = %d, want 404", resp.StatusCode)
	}
}

func TestPageHidesLiveViewWithoutStream(t *testing.T) {
	mux, err := newMux(page{SSHCommand: "ssh swarm.example"})
	if err != nil {
		t.Fatalf("newMux: %v", err)
	}
	srv := httptest.NewServer(mux)
	defer srv.Close()

	_, body := get(t, srv, "/")
	if strings.Contains(string(body), `id="live"`) {
		t.Error("live view rendered without a stream URL")
	}
}
