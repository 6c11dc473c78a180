package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"bizbooks/pkg/config"

	"go.uber.org/zap"
)

func newTestVisionService(srv *httptest.Server, token string) *VisionService {
	return &VisionService{
		config:      &config.GigaChatConfig{APIKey: "key", Scope: "GIGACHAT_API_PERS"},
		logger:      zap.NewNop(),
		httpClient:  srv.Client(),
		baseURL:     srv.URL,
		oauthURL:    srv.URL + "/oauth",
		accessToken: token,
	}
}

func TestUploadFileRefreshesExpiredToken(t *testing.T) {
	oauthCalls := 0

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth", func(w http.ResponseWriter, r *http.Request) {
		oauthCalls++
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "fresh",
			"expires_in":   1800,
		})
	})
	mux.HandleFunc("/files", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer fresh" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"id": "file-1"})
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	svc := newTestVisionService(srv, "stale")

	fileID, err := svc.uploadFile(context.Background(), []byte("doc"), MimePNG, "scan.png")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fileID != "file-1" {
		t.Errorf("file id = %q", fileID)
	}
	if oauthCalls != 1 {
		t.Errorf("oauth calls = %d, want 1", oauthCalls)
	}
	if svc.currentToken() != "fresh" {
		t.Errorf("cached token = %q, want fresh", svc.currentToken())
	}

	// The refreshed token serves subsequent calls without another OAuth trip.
	if _, err := svc.uploadFile(context.Background(), []byte("doc"), MimePNG, "scan.png"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if oauthCalls != 1 {
		t.Errorf("oauth calls after reuse = %d, want 1", oauthCalls)
	}
}

func TestUploadFileDoesNotRefreshOnOtherFailures(t *testing.T) {
	oauthCalls := 0

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth", func(w http.ResponseWriter, r *http.Request) {
		oauthCalls++
	})
	mux.HandleFunc("/files", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	svc := newTestVisionService(srv, "stale")

	_, err := svc.uploadFile(context.Background(), []byte("doc"), MimePNG, "scan.png")
	var upstreamErr *UpstreamError
	if !errors.As(err, &upstreamErr) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if upstreamErr.Status != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", upstreamErr.Status)
	}
	if oauthCalls != 0 {
		t.Errorf("oauth calls = %d, want 0: only 401 should refresh", oauthCalls)
	}
}

func TestVisionCompletionRefreshesExpiredToken(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"access_token": "fresh"})
	})
	mux.HandleFunc("/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer fresh" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": `{"transactions":[]}`}},
			},
		})
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	svc := newTestVisionService(srv, "stale")

	text, err := svc.visionCompletion(context.Background(), "file-1", "extract")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != `{"transactions":[]}` {
		t.Errorf("text = %q", text)
	}
}
