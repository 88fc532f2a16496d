package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

type geminiStub struct {
	mu       sync.Mutex
	requests []string // model names in call order
	bodies   []string
	respond  func(model string) (int, string)
}

func (s *geminiStub) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Path looks like /{model}:generateContent
		model := strings.TrimPrefix(strings.Split(r.URL.Path, ":")[0], "/")
		body, _ := io.ReadAll(r.Body)

		s.mu.Lock()
		s.requests = append(s.requests, model)
		s.bodies = append(s.bodies, string(body))
		s.mu.Unlock()

		status, text := s.respond(model)
		w.WriteHeader(status)
		if status == http.StatusOK {
			resp := map[string]any{
				"candidates": []any{
					map[string]any{
						"content": map[string]any{
							"parts": []any{map[string]any{"text": text}},
						},
					},
				},
				"usageMetadata": map[string]any{
					"promptTokenCount":     10,
					"candidatesTokenCount": 20,
					"totalTokenCount":      30,
				},
			}
			json.NewEncoder(w).Encode(resp)
		} else {
			fmt.Fprintf(w, `{"error":{"code":%d,"message":"boom"}}`, status)
		}
	}
}

func newStubClient(t *testing.T, stub *geminiStub) *GeminiClient {
	t.Helper()
	server := httptest.NewServer(stub.handler())
	t.Cleanup(server.Close)

	client := NewGeminiClient("test-key", Limits{MinText: 10, MinMultimodal: 50})
	client.baseURL = server.URL
	return client
}

func TestGenerateSuccess(t *testing.T) {
	stub := &geminiStub{respond: func(string) (int, string) {
		return http.StatusOK, "this is a sufficiently long answer"
	}}
	client := newStubClient(t, stub)

	res := client.Generate(context.Background(), &Request{
		SystemPrompt: "You are helpful.",
		UserPrompt:   "Say something.",
		Model:        "gemini-2.5-pro",
	})

	if !res.Success {
		t.Fatalf("expected success, got error %q", res.Meta.Error)
	}
	if res.Content != "this is a sufficiently long answer" {
		t.Fatalf("content = %q", res.Content)
	}
	if res.Meta.Model != "gemini-2.5-pro" || res.Meta.Fallback {
		t.Fatalf("meta = %+v", res.Meta)
	}
	if res.Meta.TotalTokens != 30 {
		t.Fatalf("tokens = %d", res.Meta.TotalTokens)
	}
	if len(stub.requests) != 1 {
		t.Fatalf("expected 1 call, got %d", len(stub.requests))
	}
}

func TestGenerateInsufficientContentFails(t *testing.T) {
	// A model with no paired sibling: no fallback, below-minimum output is
	// a failure even though the vendor call raised no error.
	stub := &geminiStub{respond: func(string) (int, string) {
		return http.StatusOK, "short"
	}}
	client := newStubClient(t, stub)

	res := client.Generate(context.Background(), &Request{
		UserPrompt: "hi",
		Model:      "gemini-1.5-pro",
	})

	if res.Success {
		t.Fatal("expected failure for below-minimum content")
	}
	if res.Content != "" {
		t.Fatalf("failed call must not carry content, got %q", res.Content)
	}
	if !strings.Contains(res.Meta.Error, "insufficient content") {
		t.Fatalf("error = %q", res.Meta.Error)
	}
	if len(stub.requests) != 1 {
		t.Fatalf("expected no fallback for unpaired model, got %d calls", len(stub.requests))
	}
}

func TestGenerateTransientErrorTriggersSingleFallback(t *testing.T) {
	stub := &geminiStub{respond: func(model string) (int, string) {
		if model == "gemini-2.5-pro" {
			return http.StatusInternalServerError, ""
		}
		return http.StatusOK, "fallback model produced this answer"
	}}
	client := newStubClient(t, stub)

	res := client.Generate(context.Background(), &Request{
		UserPrompt: "hi",
		Model:      "gemini-2.5-pro",
	})

	if !res.Success {
		t.Fatalf("expected fallback success, got %q", res.Meta.Error)
	}
	if res.Meta.Model != "gemini-2.5-flash" || !res.Meta.Fallback {
		t.Fatalf("meta = %+v", res.Meta)
	}
	if got := stub.requests; len(got) != 2 || got[0] != "gemini-2.5-pro" || got[1] != "gemini-2.5-flash" {
		t.Fatalf("requests = %v", got)
	}
}

func TestGenerateInsufficientContentTriggersFallback(t *testing.T) {
	stub := &geminiStub{respond: func(model string) (int, string) {
		if model == "gemini-2.5-flash" {
			return http.StatusOK, "x"
		}
		return http.StatusOK, "the pro model answered at length here"
	}}
	client := newStubClient(t, stub)

	// Secondary fails validation, retries once against the primary.
	res := client.Generate(context.Background(), &Request{
		UserPrompt: "hi",
		Model:      "gemini-2.5-flash",
	})

	if !res.Success || res.Meta.Model != "gemini-2.5-pro" {
		t.Fatalf("meta = %+v, error = %q", res.Meta, res.Meta.Error)
	}
	if len(stub.requests) != 2 {
		t.Fatalf("expected exactly one retry, got %d calls", len(stub.requests))
	}
}

func TestGenerateBothAttemptsFail(t *testing.T) {
	stub := &geminiStub{respond: func(string) (int, string) {
		return http.StatusServiceUnavailable, ""
	}}
	client := newStubClient(t, stub)

	res := client.Generate(context.Background(), &Request{
		UserPrompt: "hi",
		Model:      "gemini-2.5-pro",
	})

	if res.Success {
		t.Fatal("expected failure")
	}
	if !strings.Contains(res.Meta.Error, "primary model failed:") || !strings.Contains(res.Meta.Error, "fallback failed:") {
		t.Fatalf("error should concatenate both reasons, got %q", res.Meta.Error)
	}
	if len(stub.requests) != 2 {
		t.Fatalf("no fallback-of-fallback allowed, got %d calls", len(stub.requests))
	}
}

func TestGenerateAuthErrorDoesNotFallBack(t *testing.T) {
	stub := &geminiStub{respond: func(string) (int, string) {
		return http.StatusUnauthorized, ""
	}}
	client := newStubClient(t, stub)

	res := client.Generate(context.Background(), &Request{
		UserPrompt: "hi",
		Model:      "gemini-2.5-pro",
	})

	if res.Success {
		t.Fatal("expected failure")
	}
	if !strings.HasPrefix(res.Meta.Error, "UNAUTHORIZED:") {
		t.Fatalf("error = %q", res.Meta.Error)
	}
	if len(stub.requests) != 1 {
		t.Fatalf("auth errors must not trigger fallback, got %d calls", len(stub.requests))
	}
}

func TestFastPathOnlyForSupportedModels(t *testing.T) {
	stub := &geminiStub{respond: func(string) (int, string) {
		return http.StatusOK, "a perfectly acceptable long response"
	}}
	client := newStubClient(t, stub)

	client.Generate(context.Background(), &Request{UserPrompt: "hi", Model: "gemini-2.5-flash", FastPath: true})
	client.Generate(context.Background(), &Request{UserPrompt: "hi", Model: "gemini-2.5-pro", FastPath: true})

	if !strings.Contains(stub.bodies[0], "thinkingBudget") {
		t.Fatal("flash fast path should set a zero thinking budget")
	}
	if strings.Contains(stub.bodies[1], "thinkingBudget") {
		t.Fatal("pro must silently ignore the fast-path flag")
	}
}

func TestUsageTracking(t *testing.T) {
	stub := &geminiStub{respond: func(string) (int, string) {
		return http.StatusOK, "a perfectly acceptable long response"
	}}
	client := newStubClient(t, stub)

	client.Generate(context.Background(), &Request{UserPrompt: "hi", Model: "gemini-2.5-pro"})
	client.Generate(context.Background(), &Request{UserPrompt: "hi", Model: "gemini-2.5-pro"})

	usage := client.Usage()
	if usage.RequestCount != 2 || usage.TotalTokens != 60 {
		t.Fatalf("usage = %+v", usage)
	}
}
