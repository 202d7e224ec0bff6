package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
)

func TestCompleteNotConfigured(t *testing.T) {
	c := NewOpenAIClient("", "gpt-4", zerolog.Nop())
	if _, err := c.Complete(context.Background(), nil); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("Expected ErrNotConfigured, got %v", err)
	}
}

func TestComplete(t *testing.T) {
	var got struct {
		Model     string `json:"model"`
		MaxTokens int    `json:"max_tokens"`
		Messages  []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"chatcmpl-1","object":"chat.completion","model":"gpt-4-0613",
			"choices":[{"index":0,"message":{"role":"assistant","content":"{\"name\":\"Thorin\"}"},"finish_reason":"stop"}],
			"usage":{"prompt_tokens":20,"completion_tokens":12,"total_tokens":32}}`))
	}))
	defer srv.Close()

	c := NewOpenAIClientWithBaseURL("sk-test", srv.URL+"/v1", "gpt-4", zerolog.Nop())
	out, err := c.Complete(context.Background(), []Message{
		{Role: RoleSystem, Content: "You are a game master."},
		{Role: RoleUser, Content: "Create an NPC."},
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}

	if out.Content != `{"name":"Thorin"}` || out.TokensUsed != 32 || out.Model != "gpt-4-0613" {
		t.Errorf("Unexpected completion: %+v", out)
	}
	if got.Model != "gpt-4" || got.MaxTokens != defaultMaxTokens || len(got.Messages) != 2 || got.Messages[0].Role != RoleSystem {
		t.Errorf("Unexpected request: %+v", got)
	}
}

func TestCompleteProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"rate limited","type":"rate_limit_error"}}`))
	}))
	defer srv.Close()

	c := NewOpenAIClientWithBaseURL("sk-test", srv.URL+"/v1", "gpt-4", zerolog.Nop())
	if _, err := c.Complete(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}); err == nil {
		t.Fatal("Expected error from provider")
	}
}
