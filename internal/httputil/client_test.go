package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/AulusHZP/LabProjetoDeSoftware/internal/logging"
)

// =============================================================================
// Client Tests
// =============================================================================

func newTestClient(url string, tokens TokenSource) *Client {
	return New(Config{BaseURL: url, Tokens: tokens, Logger: logging.Discard()})
}

func TestNew_Defaults(t *testing.T) {
	client := New(Config{BaseURL: "http://localhost:8080/"})

	if client.BaseURL() != "http://localhost:8080" {
		t.Errorf("BaseURL() = %s, want trailing slash trimmed", client.BaseURL())
	}
	if client.httpClient.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", client.httpClient.Timeout)
	}
}

func TestClient_GetDecodesJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("Method = %s, want GET", r.Method)
		}
		if r.URL.Path != "/students/1" {
			t.Errorf("Path = %s, want /students/1", r.URL.Path)
		}
		WriteJSON(w, http.StatusOK, map[string]interface{}{"id": "1", "coinBalance": 40})
	}))
	defer server.Close()

	var out struct {
		ID          string `json:"id"`
		CoinBalance int64  `json:"coinBalance"`
	}
	if err := newTestClient(server.URL, nil).Get(context.Background(), "/students/1", &out); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if out.ID != "1" || out.CoinBalance != 40 {
		t.Errorf("decoded = %+v", out)
	}
}

func TestClient_AttachesBearerToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer abc" {
			t.Errorf("Authorization = %q, want Bearer abc", got)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("Content-Type = %q, want application/json", got)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	if err := newTestClient(server.URL, StaticToken("abc")).Post(context.Background(), "/x", map[string]string{"k": "v"}, nil); err != nil {
		t.Fatalf("Post() error = %v", err)
	}
}

func TestClient_OmitsEmptyToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "" {
			t.Errorf("Authorization = %q, want empty", got)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	if _, err := newTestClient(server.URL, StaticToken("")).Do(context.Background(), http.MethodGet, "/x", nil); err != nil {
		t.Fatalf("Do() error = %v", err)
	}
}

func TestClient_NoJSONContentReturnsNil(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"no content", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) }},
		{"text body", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/plain")
			_, _ = w.Write([]byte("ok"))
		}},
		{"empty json", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			raw, err := newTestClient(server.URL, nil).Do(context.Background(), http.MethodDelete, "/x", nil)
			if err != nil {
				t.Fatalf("Do() error = %v", err)
			}
			if raw != nil {
				t.Errorf("Do() = %s, want nil", raw)
			}
		})
	}
}

func TestClient_ErrorStatusSurfacesMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"email": "must be a valid email"})
	}))
	defer server.Close()

	_, err := newTestClient(server.URL, nil).Do(context.Background(), http.MethodPost, "/students/register", map[string]string{})
	if err == nil {
		t.Fatal("Do() expected error")
	}
	if err.Error() != "must be a valid email" {
		t.Errorf("Error() = %q, want %q", err.Error(), "must be a valid email")
	}
	var apiErr *Error
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusBadRequest {
		t.Errorf("error = %#v, want *Error with 400", err)
	}
	if StatusCode(err) != http.StatusBadRequest {
		t.Errorf("StatusCode() = %d, want 400", StatusCode(err))
	}
}

func TestClient_NetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := newTestClient(url, nil).Do(context.Background(), http.MethodGet, "/x", nil)
	if err == nil {
		t.Fatal("Do() expected error for closed server")
	}
	if StatusCode(err) != 0 {
		t.Errorf("StatusCode() = %d, want 0", StatusCode(err))
	}
}

func TestClient_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = w.Write([]byte("{not json"))
	}))
	defer server.Close()

	if _, err := newTestClient(server.URL, nil).Do(context.Background(), http.MethodGet, "/x", nil); err == nil {
		t.Fatal("Do() expected error for malformed JSON")
	}
}
