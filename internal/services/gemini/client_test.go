package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"dubsync/internal/services"
)

// fakeGemini emulates the Files and generateContent endpoints.
type fakeGemini struct {
	t *testing.T

	mu            sync.Mutex
	states        []string // successive states returned by GET; last one repeats
	gets          int
	uploaded      []byte
	deleted       []string
	generateBody  generateRequest
	transcript    string
	generateCode  int
	missingHeader bool
	server        *httptest.Server
}

func newFakeGemini(t *testing.T, states ...string) *fakeGemini {
	t.Helper()
	f := &fakeGemini{t: t, states: states, transcript: "hello world"}
	f.server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeGemini) handle(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if r.Header.Get("x-goog-api-key") != "test-key" {
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `{"error":{"code":403,"message":"bad key","status":"PERMISSION_DENIED"}}`)
		return
	}

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/upload/v1beta/files":
		if r.Header.Get("X-Goog-Upload-Protocol") != "resumable" || r.Header.Get("X-Goog-Upload-Command") != "start" {
			f.t.Errorf("unexpected upload start headers %v", r.Header)
		}
		if r.Header.Get("X-Goog-Upload-Header-Content-Type") != "audio/mpeg" {
			f.t.Errorf("unexpected content type %q", r.Header.Get("X-Goog-Upload-Header-Content-Type"))
		}
		if !f.missingHeader {
			w.Header().Set("X-Goog-Upload-URL", f.server.URL+"/upload-session/1")
		}
	case r.Method == http.MethodPost && r.URL.Path == "/upload-session/1":
		if r.Header.Get("X-Goog-Upload-Command") != "upload, finalize" || r.Header.Get("X-Goog-Upload-Offset") != "0" {
			f.t.Errorf("unexpected finalize headers %v", r.Header)
		}
		f.uploaded, _ = io.ReadAll(r.Body)
		writeJSON(w, fileEnvelope{File: File{Name: "files/abc", MimeType: "audio/mpeg", URI: "https://files/abc", State: StateProcessing}})
	case r.Method == http.MethodGet && r.URL.Path == "/v1beta/files/abc":
		state := f.states[min(f.gets, len(f.states)-1)]
		f.gets++
		file := File{Name: "files/abc", MimeType: "audio/mpeg", URI: "https://files/abc", State: state}
		if state == StateFailed {
			file.Error = &struct {
				Code    int    `json:"code"`
				Message string `json:"message"`
			}{Code: 3, Message: "unsupported audio"}
		}
		writeJSON(w, file)
	case r.Method == http.MethodPost && r.URL.Path == "/v1beta/models/gemini-test:generateContent":
		if err := json.NewDecoder(r.Body).Decode(&f.generateBody); err != nil {
			f.t.Errorf("decode generate body: %v", err)
		}
		if f.generateCode != 0 {
			w.WriteHeader(f.generateCode)
			_, _ = io.WriteString(w, `{"error":{"code":429,"message":"quota exhausted","status":"RESOURCE_EXHAUSTED"}}`)
			return
		}
		writeJSON(w, map[string]any{
			"candidates": []any{map[string]any{
				"content":      map[string]any{"parts": []any{map[string]any{"text": "  " + f.transcript + "\n"}}},
				"finishReason": "STOP",
			}},
		})
	case r.Method == http.MethodDelete && r.URL.Path == "/v1beta/files/abc":
		f.deleted = append(f.deleted, "files/abc")
		_, _ = io.WriteString(w, "{}")
	case r.Method == http.MethodGet && r.URL.Path == "/v1beta/models/gemini-test":
		writeJSON(w, map[string]string{"name": "models/gemini-test"})
	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/v1beta/models/"):
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error":{"code":404,"message":"model not found","status":"NOT_FOUND"}}`)
	default:
		f.t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		w.WriteHeader(http.StatusNotFound)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func (f *fakeGemini) client(pollTimeout time.Duration) *Client {
	return NewClient(Config{
		APIKey:          "test-key",
		BaseURL:         f.server.URL,
		Model:           "models/gemini-test",
		PollInterval:    time.Millisecond,
		PollMaxInterval: 4 * time.Millisecond,
		PollTimeout:     pollTimeout,
	}, nil)
}

func writeAudio(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "original_audio.mp3")
	if err := os.WriteFile(path, []byte("ID3-audio"), 0o644); err != nil {
		t.Fatalf("write audio: %v", err)
	}
	return path
}

func TestTranscribeUploadsPollsGeneratesAndDeletes(t *testing.T) {
	fake := newFakeGemini(t, StateProcessing, StateProcessing, StateActive)
	client := fake.client(time.Second)

	text, err := client.Transcribe(context.Background(), writeAudio(t))
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if text != "hello world" {
		t.Fatalf("unexpected transcript %q", text)
	}
	if string(fake.uploaded) != "ID3-audio" {
		t.Fatalf("unexpected upload body %q", fake.uploaded)
	}
	if fake.gets != 3 {
		t.Fatalf("expected 3 polls, got %d", fake.gets)
	}
	parts := fake.generateBody.Contents[0].Parts
	if parts[0].Text != DefaultPrompt || parts[1].FileData == nil || parts[1].FileData.FileURI != "https://files/abc" {
		t.Fatalf("unexpected generate parts %+v", parts)
	}
	if len(fake.deleted) != 1 {
		t.Fatalf("expected uploaded file to be deleted, got %v", fake.deleted)
	}
}

func TestTranscribeFailedFileIsError(t *testing.T) {
	fake := newFakeGemini(t, StateProcessing, StateFailed)
	_, err := fake.client(time.Second).Transcribe(context.Background(), writeAudio(t))
	if !errors.Is(err, services.ErrExternalTool) || !strings.Contains(err.Error(), "unsupported audio") {
		t.Fatalf("expected external tool error with reason, got %v", err)
	}
	if len(fake.deleted) != 1 {
		t.Fatalf("expected cleanup after failure, got %v", fake.deleted)
	}
}

func TestTranscribePollTimeout(t *testing.T) {
	fake := newFakeGemini(t, StateProcessing)
	started := time.Now()
	_, err := fake.client(30 * time.Millisecond).Transcribe(context.Background(), writeAudio(t))
	if !errors.Is(err, services.ErrTimeout) {
		t.Fatalf("expected timeout error, got %v", err)
	}
	if !strings.Contains(err.Error(), "still PROCESSING") {
		t.Fatalf("expected state in error, got %v", err)
	}
	if elapsed := time.Since(started); elapsed > 5*time.Second {
		t.Fatalf("poll did not respect timeout, took %s", elapsed)
	}
	if len(fake.deleted) != 1 {
		t.Fatalf("expected cleanup after timeout, got %v", fake.deleted)
	}
}

func TestTranscribeGenerateQuotaIsTransient(t *testing.T) {
	fake := newFakeGemini(t, StateActive)
	fake.generateCode = http.StatusTooManyRequests
	_, err := fake.client(time.Second).Transcribe(context.Background(), writeAudio(t))
	if !errors.Is(err, services.ErrTransient) || !strings.Contains(err.Error(), "RESOURCE_EXHAUSTED: quota exhausted") {
		t.Fatalf("expected transient quota error, got %v", err)
	}
}

func TestTranscribeMissingUploadURL(t *testing.T) {
	fake := newFakeGemini(t, StateActive)
	fake.missingHeader = true
	_, err := fake.client(time.Second).Transcribe(context.Background(), writeAudio(t))
	if err == nil || !strings.Contains(err.Error(), "X-Goog-Upload-URL") {
		t.Fatalf("expected missing upload url error, got %v", err)
	}
	if len(fake.deleted) != 0 {
		t.Fatalf("nothing was uploaded, expected no delete, got %v", fake.deleted)
	}
}

func TestTranscribeBadKeyReportsStatus(t *testing.T) {
	fake := newFakeGemini(t, StateActive)
	client := NewClient(Config{APIKey: "wrong", BaseURL: fake.server.URL, Model: "gemini-test"}, nil)
	_, err := client.Transcribe(context.Background(), writeAudio(t))
	if !errors.Is(err, services.ErrExternalTool) || !strings.Contains(err.Error(), "http 403") {
		t.Fatalf("expected 403 external tool error, got %v", err)
	}
}

func TestTranscribeValidatesInputs(t *testing.T) {
	client := NewClient(Config{Model: "gemini-test"}, nil)
	if _, err := client.Transcribe(context.Background(), "a.mp3"); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	client = NewClient(Config{APIKey: "k", Model: "gemini-test"}, nil)
	if _, err := client.Transcribe(context.Background(), filepath.Join(t.TempDir(), "missing.mp3")); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestNewClientDefaults(t *testing.T) {
	client := NewClient(Config{Model: "models/gemini-1.5-pro-latest", PollInterval: 20 * time.Second}, nil)
	if client.cfg.BaseURL != DefaultBaseURL {
		t.Fatalf("unexpected base url %q", client.cfg.BaseURL)
	}
	if client.cfg.Model != "gemini-1.5-pro-latest" {
		t.Fatalf("expected models/ prefix stripped, got %q", client.cfg.Model)
	}
	if client.cfg.PollMaxInterval != 20*time.Second {
		t.Fatalf("max interval must not be below the interval, got %s", client.cfg.PollMaxInterval)
	}
	if client.cfg.PollTimeout != defaultPollTimeout {
		t.Fatalf("unexpected poll timeout %s", client.cfg.PollTimeout)
	}
}

func TestMimeType(t *testing.T) {
	tests := map[string]string{
		"a.mp3":  "audio/mpeg",
		"b.WAV":  "audio/wav",
		"c.m4a":  "audio/mp4",
		"d.bin":  "application/octet-stream",
		"noext":  "application/octet-stream",
		"e.flac": "audio/flac",
	}
	for input, want := range tests {
		if got := MimeType(input); got != want {
			t.Errorf("MimeType(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestHealthCheck(t *testing.T) {
	fake := newFakeGemini(t, StateActive)
	if err := fake.client(time.Second).HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck: %v", err)
	}

	missing := NewClient(Config{APIKey: "test-key", BaseURL: fake.server.URL, Model: "gemini-gone"}, nil)
	if err := missing.HealthCheck(context.Background()); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found for unknown model, got %v", err)
	}

	unkeyed := NewClient(Config{BaseURL: fake.server.URL, Model: "gemini-test"}, nil)
	if err := unkeyed.HealthCheck(context.Background()); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error without key, got %v", err)
	}
}
