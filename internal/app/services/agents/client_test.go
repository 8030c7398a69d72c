package agents

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClientComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Fatalf("path: got %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Fatalf("authorization: got %q", got)
		}

		var req apiRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Model != "gpt-4" {
			t.Fatalf("model: got %q", req.Model)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" || req.Messages[1].Role != "user" {
			t.Fatalf("unexpected messages %+v", req.Messages)
		}

		json.NewEncoder(w).Encode(apiResponse{
			Choices: []apiChoice{{Message: apiMessage{Role: "assistant", Content: "hello traveller"}}},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key", "gpt-4")
	reply, err := c.Complete(context.Background(), "be helpful", "hi")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply != "hello traveller" {
		t.Fatalf("reply: got %q", reply)
	}
}

func TestClientCompleteErrors(t *testing.T) {
	t.Run("non-200", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, `{"error":"quota exceeded"}`, http.StatusTooManyRequests)
		}))
		defer srv.Close()

		c := NewClient(srv.URL, "k", "m")
		if _, err := c.Complete(context.Background(), "s", "u"); err == nil {
			t.Fatal("expected error for non-200 response")
		}
	})

	t.Run("empty-choices", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			json.NewEncoder(w).Encode(apiResponse{})
		}))
		defer srv.Close()

		c := NewClient(srv.URL, "k", "m")
		if _, err := c.Complete(context.Background(), "s", "u"); err == nil {
			t.Fatal("expected error for empty choices")
		}
	})
}
