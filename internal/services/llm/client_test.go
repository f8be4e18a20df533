package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"dubsync/internal/services"
)

func completionServer(t *testing.T, handler func(w http.ResponseWriter, r *http.Request, body chatRequest)) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatalf("read body: %v", err)
		}
		var body chatRequest
		if err := json.Unmarshal(raw, &body); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		handler(w, r, body)
	}))
	t.Cleanup(server.Close)
	return server
}

func writeContent(t *testing.T, w http.ResponseWriter, content string) {
	t.Helper()
	payload := map[string]any{
		"choices": []any{
			map[string]any{"message": map[string]any{"content": content}},
		},
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		t.Fatalf("encode response: %v", err)
	}
}

func TestTranslateSendsLanguageAndParsesPayload(t *testing.T) {
	server := completionServer(t, func(w http.ResponseWriter, r *http.Request, body chatRequest) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Fatalf("unexpected auth header %q", got)
		}
		for _, header := range []string{"HTTP-Referer", "X-Title"} {
			if got := r.Header.Get(header); got != "" {
				t.Fatalf("unexpected %s header %q", header, got)
			}
		}
		if body.Model != "gemini-2.0-flash" {
			t.Fatalf("unexpected model %q", body.Model)
		}
		if body.ResponseFormat["type"] != "json_object" {
			t.Fatalf("expected json response format, got %v", body.ResponseFormat)
		}
		if len(body.Messages) != 2 || !strings.Contains(body.Messages[1].Content, "Target language: Spanish") {
			t.Fatalf("unexpected messages %+v", body.Messages)
		}
		writeContent(t, w, "```json\n{\"translation\": \"hola mundo\"}\n```")
	})

	client := NewClient(Config{APIKey: "test-key", BaseURL: server.URL, Model: "gemini-2.0-flash"})
	got, err := client.Translate(context.Background(), "hello world", "Spanish")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if got != "hola mundo" {
		t.Fatalf("unexpected translation %q", got)
	}
}

func TestTranslateEmptyTranslationIsError(t *testing.T) {
	server := completionServer(t, func(w http.ResponseWriter, _ *http.Request, _ chatRequest) {
		writeContent(t, w, `{"translation": "  "}`)
	})
	client := NewClient(Config{APIKey: "k", BaseURL: server.URL, Model: "m"})
	_, err := client.Translate(context.Background(), "hello", "German")
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}

func TestTranslateValidatesInput(t *testing.T) {
	client := NewClient(Config{APIKey: "k", Model: "m"})
	if _, err := client.Translate(context.Background(), " ", "German"); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := client.Translate(context.Background(), "hello", ""); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCompleteJSONRequiresAPIKey(t *testing.T) {
	client := NewClient(Config{Model: "m"})
	if _, err := client.CompleteJSON(context.Background(), "sys", "user"); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestNewClientDefaultsToGeminiEndpoint(t *testing.T) {
	client := NewClient(Config{APIKey: "k"})
	if client.cfg.BaseURL != DefaultBaseURL {
		t.Fatalf("unexpected base url %q", client.cfg.BaseURL)
	}
	if client.retryMaxAttempts != 1 {
		t.Fatalf("expected single attempt by default, got %d", client.retryMaxAttempts)
	}
}

func TestClientHealthCheck(t *testing.T) {
	server := completionServer(t, func(w http.ResponseWriter, _ *http.Request, _ chatRequest) {
		writeContent(t, w, `{"ok":true}`)
	})
	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "demo-model"})
	if err := client.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck returned error: %v", err)
	}
}

func TestClientDoesNotRetryByDefault(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"quota"}}`))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "k", BaseURL: server.URL, Model: "m"})
	_, err := client.Translate(context.Background(), "hello", "French")
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient error, got %v", err)
	}
	if !strings.Contains(err.Error(), "http 429") {
		t.Fatalf("expected status in error, got %v", err)
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("expected exactly one attempt, got %d", calls)
	}
}

func TestClientRetriesWhenEnabled(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Header().Set("Retry-After", "3")
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		writeContent(t, w, `{"translation":"bonjour"}`)
	}))
	defer server.Close()

	var slept []time.Duration
	client := NewClient(
		Config{APIKey: "k", BaseURL: server.URL, Model: "m"},
		WithRetryMaxAttempts(3),
		WithRetryBackoff(time.Second, 2*time.Second),
		WithSleeper(func(d time.Duration) { slept = append(slept, d) }),
	)
	got, err := client.Translate(context.Background(), "hello", "French")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if got != "bonjour" {
		t.Fatalf("unexpected translation %q", got)
	}
	if len(slept) != 1 || slept[0] != 2*time.Second {
		t.Fatalf("expected one capped Retry-After sleep, got %v", slept)
	}
}

func TestClientDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "bad", BaseURL: server.URL, Model: "m"}, WithRetryMaxAttempts(4), WithSleeper(func(time.Duration) {}))
	if err := client.HealthCheck(context.Background()); !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("expected a single attempt for 401, got %d", calls)
	}
}

func TestEmptyContentReportsFinishReason(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":""},"finish_reason":"SAFETY"}]}`))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "k", BaseURL: server.URL, Model: "m"})
	_, err := client.CompleteJSON(context.Background(), "sys", "user")
	if err == nil || !strings.Contains(err.Error(), `finish_reason="SAFETY"`) {
		t.Fatalf("expected finish reason in error, got %v", err)
	}
}

func TestBackoffDelayDoublesAndCaps(t *testing.T) {
	client := NewClient(Config{}, WithRetryBackoff(time.Second, 5*time.Second))
	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 5 * time.Second, 5 * time.Second}
	for i, expected := range want {
		if got := client.backoffDelay(i + 1); got != expected {
			t.Fatalf("backoffDelay(%d) = %v, want %v", i+1, got, expected)
		}
	}
}

func TestDecodeLLMJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"plain", `{"translation":"a"}`, "a", false},
		{"fenced", "```json\n{\"translation\":\"b\"}\n```", "b", false},
		{"prose", `Sure! {"translation":"c"} Hope that helps.`, "c", false},
		{"empty", "  ", "", true},
		{"garbage", "not json", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var payload translationPayload
			err := DecodeLLMJSON(tt.input, &payload)
			if (err != nil) != tt.wantErr {
				t.Fatalf("DecodeLLMJSON error = %v, wantErr %v", err, tt.wantErr)
			}
			if payload.Translation != tt.want {
				t.Fatalf("translation = %q, want %q", payload.Translation, tt.want)
			}
		})
	}
}

func TestParseRetryAfter(t *testing.T) {
	if d, ok := parseRetryAfter("7"); !ok || d != 7*time.Second {
		t.Fatalf("unexpected parse %v %v", d, ok)
	}
	if _, ok := parseRetryAfter("-1"); ok {
		t.Fatal("negative values must be rejected")
	}
	if _, ok := parseRetryAfter(""); ok {
		t.Fatal("empty values must be rejected")
	}
}
