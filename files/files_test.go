package files_test

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/adamwoolhether/genai/client"
	"github.com/adamwoolhether/genai/files"
	"github.com/adamwoolhether/genai/internal/download"
	"github.com/adamwoolhether/genai/request"
)

type uploadPart struct {
	contentType string
	body        string
}

type captured struct {
	method string
	path   string
	query  string
	header http.Header
	parts  []uploadPart
}

// newServer records the last request, splitting multipart bodies into parts.
func newServer(t *testing.T, status int, resp string) (*httptest.Server, *captured) {
	t.Helper()

	var c captured
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.method = r.Method
		c.path = r.URL.EscapedPath()
		c.query = r.URL.RawQuery
		c.header = r.Header.Clone()
		c.parts = nil

		if mt, params, err := mime.ParseMediaType(r.Header.Get("Content-Type")); err == nil && mt == "multipart/related" {
			mr := multipart.NewReader(r.Body, params["boundary"])
			for {
				p, err := mr.NextPart()
				if errors.Is(err, io.EOF) {
					break
				}
				if err != nil {
					t.Errorf("reading part: %v", err)
					break
				}
				b, err := io.ReadAll(p)
				if err != nil {
					t.Errorf("reading part body: %v", err)
				}
				c.parts = append(c.parts, uploadPart{contentType: p.Header.Get("Content-Type"), body: string(b)})
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, resp)
	}))
	t.Cleanup(ts.Close)

	return ts, &c
}

func TestManager_Upload(t *testing.T) {
	ts, got := newServer(t, http.StatusOK, `{"file":{"name":"files/abc","mimeType":"text/plain","sizeBytes":"5","uri":"https://example.com/files/abc","state":"ACTIVE"}}`)
	m := files.NewManager("key", request.WithBaseURL(ts.URL))

	resp, err := m.Upload(t.Context(), strings.NewReader("hello"), files.Metadata{
		Name:        "abc",
		DisplayName: "greeting",
		MIMEType:    "text/plain",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	exp := files.File{
		Name:      "files/abc",
		MIMEType:  "text/plain",
		SizeBytes: 5,
		URI:       "https://example.com/files/abc",
		State:     files.StateActive,
	}
	if diff := cmp.Diff(exp, resp.File); diff != "" {
		t.Errorf("file mismatch (-want +got):\n%s", diff)
	}

	if got.method != http.MethodPost {
		t.Errorf("method = %q, want %q", got.method, http.MethodPost)
	}
	if got.path != "/upload/v1beta/files" {
		t.Errorf("path = %q", got.path)
	}
	if got.header.Get("X-Goog-Upload-Protocol") != "multipart" {
		t.Errorf("upload protocol = %q", got.header.Get("X-Goog-Upload-Protocol"))
	}
	if got.header.Get("X-Goog-Api-Key") != "key" {
		t.Errorf("api key header = %q", got.header.Get("X-Goog-Api-Key"))
	}

	if len(got.parts) != 2 {
		t.Fatalf("expected 2 parts, got %d", len(got.parts))
	}

	if got.parts[0].contentType != "application/json; charset=utf-8" {
		t.Errorf("metadata content type = %q", got.parts[0].contentType)
	}
	var meta map[string]any
	if err := json.Unmarshal([]byte(got.parts[0].body), &meta); err != nil {
		t.Fatalf("decoding metadata part: %v", err)
	}
	expMeta := map[string]any{
		"file": map[string]any{
			"name":        "files/abc",
			"displayName": "greeting",
			"mimeType":    "text/plain",
		},
	}
	if diff := cmp.Diff(expMeta, meta); diff != "" {
		t.Errorf("metadata mismatch (-want +got):\n%s", diff)
	}

	exp1 := uploadPart{contentType: "text/plain", body: "hello"}
	if diff := cmp.Diff(exp1, got.parts[1], cmp.AllowUnexported(uploadPart{})); diff != "" {
		t.Errorf("file part mismatch (-want +got):\n%s", diff)
	}
}

func TestManager_UploadMissingMIMEType(t *testing.T) {
	m := files.NewManager("key", request.WithBaseURL("http://unused.invalid"))

	_, err := m.Upload(t.Context(), strings.NewReader("x"), files.Metadata{})
	if !errors.Is(err, request.ErrInvalidInput) {
		t.Errorf("exp err %v; got: %v", request.ErrInvalidInput, err)
	}
}

func TestManager_UploadFile(t *testing.T) {
	ts, got := newServer(t, http.StatusOK, `{"file":{"name":"files/x"}}`)
	m := files.NewManager("key", request.WithBaseURL(ts.URL))

	path := filepath.Join(t.TempDir(), "page.html")
	if err := os.WriteFile(path, []byte("<!DOCTYPE html><html><body>hi</body></html>"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := m.UploadFile(t.Context(), path, files.Metadata{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(got.parts) != 2 {
		t.Fatalf("expected 2 parts, got %d", len(got.parts))
	}
	if got.parts[1].contentType != "text/html; charset=utf-8" {
		t.Errorf("detected content type = %q", got.parts[1].contentType)
	}

	if _, err := m.UploadFile(t.Context(), filepath.Join(t.TempDir(), "missing"), files.Metadata{MIMEType: "text/plain"}); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestManager_List(t *testing.T) {
	ts, got := newServer(t, http.StatusOK, `{"files":[{"name":"files/a"},{"name":"files/b","state":"PROCESSING"}],"nextPageToken":"n"}`)
	m := files.NewManager("key", request.WithBaseURL(ts.URL))

	resp, err := m.List(t.Context(), files.ListParams{PageSize: 10, PageToken: "p"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(resp.Files) != 2 || resp.Files[1].State != files.StateProcessing || resp.NextPageToken != "n" {
		t.Errorf("unexpected response: %+v", resp)
	}
	if got.path != "/v1beta/files" || got.query != "pageSize=10&pageToken=p" {
		t.Errorf("path = %q query = %q", got.path, got.query)
	}

	if _, err := m.List(t.Context(), files.ListParams{PageSize: -1}); !errors.Is(err, request.ErrInvalidInput) {
		t.Errorf("exp err %v; got: %v", request.ErrInvalidInput, err)
	}
}

func TestManager_GetAndDelete(t *testing.T) {
	ts, got := newServer(t, http.StatusOK, `{"name":"files/abc","videoMetadata":{"videoDuration":"12s"}}`)
	m := files.NewManager("key", request.WithBaseURL(ts.URL))

	f, err := m.Get(t.Context(), "files/abc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.VideoMetadata == nil || f.VideoMetadata.VideoDuration != "12s" {
		t.Errorf("unexpected file: %+v", f)
	}
	if got.method != http.MethodGet || got.path != "/v1beta/files/abc" {
		t.Errorf("method = %q path = %q", got.method, got.path)
	}

	if err := m.Delete(t.Context(), "abc"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.method != http.MethodDelete || got.path != "/v1beta/files/abc" {
		t.Errorf("method = %q path = %q", got.method, got.path)
	}

	for _, id := range []string{"", "files/"} {
		if _, err := m.Get(t.Context(), id); !errors.Is(err, request.ErrInvalidInput) {
			t.Errorf("id %q: exp err %v; got: %v", id, request.ErrInvalidInput, err)
		}
	}
}

func TestManager_AuthFailure(t *testing.T) {
	ts, _ := newServer(t, http.StatusForbidden, `{"error":{"code":403,"message":"API key not valid"}}`)
	m := files.NewManager("bad", request.WithBaseURL(ts.URL))

	_, err := m.Get(t.Context(), "abc")
	if !errors.Is(err, client.ErrAuthFailure) {
		t.Errorf("exp err %v; got: %v", client.ErrAuthFailure, err)
	}
}

func TestManager_Download(t *testing.T) {
	const contents = "generated image bytes"

	var gotPath, gotQuery string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = io.WriteString(w, contents)
	}))
	t.Cleanup(ts.Close)

	m := files.NewManager("key", request.WithBaseURL(ts.URL))
	dest := filepath.Join(t.TempDir(), "out.bin")

	sum := sha256.Sum256([]byte(contents))
	if err := m.Download(t.Context(), "files/abc", dest, files.DownloadParams{SHA256: hex.EncodeToString(sum[:])}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotPath != "/download/v1beta/files/abc:download" || gotQuery != "alt=media" {
		t.Errorf("path = %q query = %q", gotPath, gotQuery)
	}

	b, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != contents {
		t.Errorf("content = %q, want %q", b, contents)
	}

	b64 := base64.StdEncoding.EncodeToString(sum[:])
	if err := m.Download(t.Context(), "abc", filepath.Join(t.TempDir(), "b64"), files.DownloadParams{SHA256: b64}); err != nil {
		t.Errorf("base64 digest: unexpected error: %v", err)
	}

	err = m.Download(t.Context(), "abc", filepath.Join(t.TempDir(), "bad"), files.DownloadParams{SHA256: "00"})
	if !errors.Is(err, download.ErrChecksumMismatch) {
		t.Errorf("exp err %v; got: %v", download.ErrChecksumMismatch, err)
	}

	if err := m.Download(t.Context(), "abc", "", files.DownloadParams{}); !errors.Is(err, request.ErrInvalidInput) {
		t.Errorf("exp err %v; got: %v", request.ErrInvalidInput, err)
	}
}

func TestManager_DownloadSkipExisting(t *testing.T) {
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = io.WriteString(w, "new")
	}))
	t.Cleanup(ts.Close)

	m := files.NewManager("key", request.WithBaseURL(ts.URL))
	dest := filepath.Join(t.TempDir(), "out.txt")
	if err := os.WriteFile(dest, []byte("old"), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := m.Download(t.Context(), "abc", dest, files.DownloadParams{SkipExisting: true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := hits.Load(); n != 0 {
		t.Errorf("server hit %d times, want 0", n)
	}
	if got, _ := os.ReadFile(dest); string(got) != "old" {
		t.Errorf("content = %q, want %q", got, "old")
	}

	if err := m.Download(t.Context(), "abc", dest, files.DownloadParams{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := hits.Load(); n != 1 {
		t.Errorf("server hit %d times, want 1", n)
	}
	if got, _ := os.ReadFile(dest); string(got) != "new" {
		t.Errorf("content = %q, want %q", got, "new")
	}
}
