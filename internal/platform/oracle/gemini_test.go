package oracle

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newGeminiTestServer(t *testing.T, status int, response interface{}) (*httptest.Server, *GeminiClient) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(response)
	}))
	t.Cleanup(srv.Close)

	client := NewGeminiClient("test-key", "gemini-1.5-pro", 5*time.Second)
	client.BaseURL = srv.URL
	return srv, client
}

func TestGeminiClient_Analyze(t *testing.T) {
	_, client := newGeminiTestServer(t, http.StatusOK, geminiResponse{
		Candidates: []geminiCandidate{
			{Content: geminiContent{Role: "model", Parts: []geminiPart{{Text: `{"possible_conditions":[]}`}}}},
		},
	})

	out, err := client.Analyze(context.Background(), "analyze this")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != `{"possible_conditions":[]}` {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestGeminiClient_Analyze_HTTPError(t *testing.T) {
	_, client := newGeminiTestServer(t, http.StatusInternalServerError, map[string]string{"error": "boom"})

	_, err := client.Analyze(context.Background(), "analyze this")
	if err == nil {
		t.Fatal("expected error for 500 response")
	}
	if !strings.Contains(err.Error(), "500") {
		t.Errorf("expected status code in error, got %v", err)
	}
}

func TestGeminiClient_Analyze_APIError(t *testing.T) {
	resp := geminiResponse{}
	resp.Error = &struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	}{Code: 429, Message: "quota exceeded", Status: "RESOURCE_EXHAUSTED"}
	_, client := newGeminiTestServer(t, http.StatusOK, resp)

	_, err := client.Analyze(context.Background(), "analyze this")
	if err == nil || !strings.Contains(err.Error(), "quota exceeded") {
		t.Errorf("expected API error surfaced, got %v", err)
	}
}

func TestGeminiClient_Analyze_EmptyCandidates(t *testing.T) {
	_, client := newGeminiTestServer(t, http.StatusOK, geminiResponse{})

	_, err := client.Analyze(context.Background(), "analyze this")
	if err == nil || !strings.Contains(err.Error(), "empty response") {
		t.Errorf("expected empty response error, got %v", err)
	}
}

func TestNewGeminiClient_Defaults(t *testing.T) {
	c := NewGeminiClient("k", "", 0)
	if c.Model != "gemini-1.5-pro" {
		t.Errorf("expected default model, got %s", c.Model)
	}
	if c.HTTP.Timeout != 30*time.Second {
		t.Errorf("expected default timeout, got %s", c.HTTP.Timeout)
	}
}
