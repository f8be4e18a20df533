package preflight

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"dubsync/internal/testsupport"
)

// newGoogleServer answers the health endpoints of all three APIs. Requests
// carrying any key other than good-key are rejected.
func newGoogleServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get("x-goog-api-key")
		if bearer := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "); bearer != "" {
			key = bearer
		}
		if key != "good-key" {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"error":{"code":403,"message":"API key not valid","status":"PERMISSION_DENIED"}}`))
			return
		}
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/v1beta/openai/chat/completions":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"choices": []map[string]any{{"message": map[string]string{"content": `{"ok":true}`}}},
			})
		case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/v1beta/models/"):
			_, _ = w.Write([]byte(`{"name":"models/test"}`))
		case r.Method == http.MethodGet && r.URL.Path == "/v1/voices":
			_, _ = w.Write([]byte(`{"voices":[{"name":"tr-TR-Standard-A","languageCodes":["tr-TR"]}]}`))
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if !strings.Contains(result.Detail, "does not exist") {
		t.Fatalf("unexpected detail %q", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestServiceChecks(t *testing.T) {
	srv := newGoogleServer(t)

	tests := []struct {
		name   string
		key    string
		passed bool
	}{
		{name: "valid key", key: "good-key", passed: true},
		{name: "rejected key", key: "bad-key", passed: false},
		{name: "missing key", key: "", passed: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testsupport.NewConfig(t, testsupport.WithServiceURL(srv.URL), testsupport.WithAPIKey(tt.key))
			results := []Result{
				CheckTranscription(context.Background(), cfg.Gemini),
				CheckLLM(context.Background(), "Translation LLM", cfg.Translation),
				CheckSpeech(context.Background(), cfg.TTS),
			}
			for _, r := range results {
				if r.Passed != tt.passed {
					t.Errorf("%s: passed=%v, want %v (%s)", r.Name, r.Passed, tt.passed, r.Detail)
				}
				if tt.key == "" && r.Detail != "API key missing" {
					t.Errorf("%s: unexpected detail %q", r.Name, r.Detail)
				}
			}
		})
	}
}

func TestCheckTools(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	cfg.Tools.FFprobe = "clearly-not-present-ffprobe"

	results := CheckTools(context.Background(), cfg)
	if len(results) != 3 {
		t.Fatalf("expected 3 tool results, got %d", len(results))
	}
	if !results[0].Passed || !strings.Contains(results[0].Detail, "yt-dlp version test") {
		t.Fatalf("expected yt-dlp with version, got %+v", results[0])
	}
	if results[2].Passed {
		t.Fatalf("expected missing ffprobe to fail, got %+v", results[2])
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	if results := RunAll(context.Background(), nil, Options{}); results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll_Offline(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())

	results := RunAll(context.Background(), cfg, Options{Offline: true})
	// two directories and three tools
	if len(results) != 5 {
		t.Fatalf("expected 5 results, got %d", len(results))
	}
	if !AllPassed(results) {
		t.Fatalf("expected all checks to pass, got %+v", results)
	}
}

func TestRunAll_Online(t *testing.T) {
	srv := newGoogleServer(t)
	cfg := testsupport.NewConfig(t,
		testsupport.WithStubbedBinaries(),
		testsupport.WithServiceURL(srv.URL),
		testsupport.WithAPIKey("good-key"),
	)

	results := RunAll(context.Background(), cfg, Options{})
	if len(results) != 8 {
		t.Fatalf("expected 8 results, got %d", len(results))
	}
	if !AllPassed(results) {
		t.Fatalf("expected all checks to pass, got %+v", results)
	}
}

func TestAllPassedIgnoresOptionalFailures(t *testing.T) {
	results := []Result{{Name: "a", Passed: true}, {Name: "b", Optional: true}}
	if !AllPassed(results) {
		t.Fatal("optional failure must not fail the run")
	}
	results = append(results, Result{Name: "c"})
	if AllPassed(results) {
		t.Fatal("required failure must fail the run")
	}
}
