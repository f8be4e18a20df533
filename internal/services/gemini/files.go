package gemini

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"dubsync/internal/logging"
	"dubsync/internal/services"
)

// File states reported by the Files API.
const (
	StateProcessing = "PROCESSING"
	StateActive     = "ACTIVE"
	StateFailed     = "FAILED"
)

// File is the Files API resource.
type File struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	MimeType    string `json:"mimeType"`
	SizeBytes   string `json:"sizeBytes"`
	URI         string `json:"uri"`
	State       string `json:"state"`
	Error       *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

type fileEnvelope struct {
	File File `json:"file"`
}

var audioMimeTypes = map[string]string{
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".m4a":  "audio/mp4",
	".aac":  "audio/aac",
	".flac": "audio/flac",
	".ogg":  "audio/ogg",
}

// MimeType guesses the upload content type from the file extension.
func MimeType(path string) string {
	if mt, ok := audioMimeTypes[strings.ToLower(filepath.Ext(path))]; ok {
		return mt
	}
	return "application/octet-stream"
}

// Upload sends path to the Files API using the resumable protocol.
func (c *Client) Upload(ctx context.Context, path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, services.Wrap(services.ErrValidation, "gemini", "upload", "read audio", err)
	}
	if len(data) == 0 {
		return File{}, services.Wrap(services.ErrValidation, "gemini", "upload", path+" is empty", nil)
	}
	mimeType := MimeType(path)

	start := map[string]any{"file": map[string]string{"display_name": filepath.Base(path)}}
	req, err := newJSONRequest(ctx, http.MethodPost, c.endpoint("/upload/v1beta/files"), start)
	if err != nil {
		return File{}, err
	}
	req.Header.Set("X-Goog-Upload-Protocol", "resumable")
	req.Header.Set("X-Goog-Upload-Command", "start")
	req.Header.Set("X-Goog-Upload-Header-Content-Length", strconv.Itoa(len(data)))
	req.Header.Set("X-Goog-Upload-Header-Content-Type", mimeType)
	header, err := c.do(req, "upload start", nil)
	if err != nil {
		return File{}, err
	}
	uploadURL := strings.TrimSpace(header.Get("X-Goog-Upload-URL"))
	if uploadURL == "" {
		return File{}, services.Wrap(services.ErrExternalTool, "gemini", "upload start", "response missing X-Goog-Upload-URL", nil)
	}

	req, err = http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, bytes.NewReader(data))
	if err != nil {
		return File{}, fmt.Errorf("upload: new request: %w", err)
	}
	req.ContentLength = int64(len(data))
	req.Header.Set("X-Goog-Upload-Offset", "0")
	req.Header.Set("X-Goog-Upload-Command", "upload, finalize")
	var envelope fileEnvelope
	if _, err := c.do(req, "upload", &envelope); err != nil {
		return File{}, err
	}
	if envelope.File.Name == "" {
		return File{}, services.Wrap(services.ErrExternalTool, "gemini", "upload", "response missing file name", nil)
	}

	c.logger.Info("audio uploaded",
		logging.String(logging.FieldEventType, "gemini_upload_complete"),
		logging.String("file_name", envelope.File.Name),
		logging.String("state", envelope.File.State),
		logging.Int("size_bytes", len(data)),
	)
	return envelope.File, nil
}

// GetFile fetches the current metadata for name (e.g. "files/abc").
func (c *Client) GetFile(ctx context.Context, name string) (File, error) {
	var file File
	if _, err := c.doJSON(ctx, "get file", http.MethodGet, c.endpoint("/v1beta/"+name), nil, &file); err != nil {
		return File{}, err
	}
	return file, nil
}

// DeleteFile removes an uploaded file.
func (c *Client) DeleteFile(ctx context.Context, name string) error {
	_, err := c.doJSON(ctx, "delete file", http.MethodDelete, c.endpoint("/v1beta/"+name), nil, nil)
	return err
}

func newJSONRequest(ctx context.Context, method, url string, body any) (*http.Request, error) {
	encoded, err := jsonBytes(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}
