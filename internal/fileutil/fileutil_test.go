package fileutil

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestRequireFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.mp4")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{name: "regular file", path: file},
		{name: "blank", path: "  ", wantErr: true},
		{name: "directory", path: dir, wantErr: true},
		{name: "missing", path: filepath.Join(dir, "missing.mp4"), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := RequireFile(tt.path); (err != nil) != tt.wantErr {
				t.Fatalf("RequireFile(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
		})
	}
}

func TestNonEmptySize(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.mp3")
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NonEmptySize(empty); !errors.Is(err, ErrEmptyFile) {
		t.Fatalf("expected ErrEmptyFile, got %v", err)
	}

	full := filepath.Join(dir, "full.mp3")
	if err := os.WriteFile(full, []byte("abc"), 0o644); err != nil {
		t.Fatal(err)
	}
	size, err := NonEmptySize(full)
	if err != nil || size != 3 {
		t.Fatalf("expected size 3, got %d (%v)", size, err)
	}
}

func TestPromote(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "dubbed_video.mp4")
	tmp := TempSibling(target)
	if filepath.Ext(tmp) != ".mp4" || filepath.Dir(tmp) != dir {
		t.Fatalf("unexpected temp sibling %q", tmp)
	}

	if err := os.WriteFile(tmp, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := Promote(tmp, target); !errors.Is(err, ErrEmptyFile) {
		t.Fatalf("expected empty temp to be rejected, got %v", err)
	}
	if _, err := os.Stat(tmp); !os.IsNotExist(err) {
		t.Fatal("rejected temp file should be removed")
	}

	if err := os.WriteFile(tmp, []byte("video"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := Promote(tmp, target); err != nil {
		t.Fatalf("Promote: %v", err)
	}
	got, err := os.ReadFile(target)
	if err != nil || string(got) != "video" {
		t.Fatalf("unexpected target content %q (%v)", got, err)
	}
}

func TestWriteAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dubbed_audio.mp3")
	if err := WriteAtomic(path, []byte("first")); err != nil {
		t.Fatalf("WriteAtomic: %v", err)
	}
	if err := WriteAtomic(path, []byte("second")); err != nil {
		t.Fatalf("WriteAtomic overwrite: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil || string(got) != "second" {
		t.Fatalf("unexpected content %q (%v)", got, err)
	}
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the final file, found %d entries", len(entries))
	}
}
