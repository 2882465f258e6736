// Package files uploads and manages files referenced from prompts.
package files

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/adamwoolhether/genai/client"
	"github.com/adamwoolhether/genai/internal/download"
	"github.com/adamwoolhether/genai/internal/validate"
	"github.com/adamwoolhether/genai/request"
)

const idPrefix = "files/"

// Manager uploads, downloads, lists, reads and deletes files.
type Manager struct {
	apiKey string
	opts   []request.Option
}

// NewManager returns a Manager authenticating with apiKey. opts apply to
// every call and may be extended per call.
func NewManager(apiKey string, opts ...request.Option) *Manager {
	return &Manager{
		apiKey: apiKey,
		opts:   opts,
	}
}

// Upload streams data as a multipart/related upload described by meta.
func (m *Manager) Upload(ctx context.Context, data io.Reader, meta Metadata, opts ...request.Option) (UploadResponse, error) {
	if err := validate.Struct(meta); err != nil {
		return UploadResponse{}, request.NewInputError(err, "invalid file metadata")
	}

	if meta.Name != "" && !strings.Contains(meta.Name, "/") {
		meta.Name = idPrefix + meta.Name
	}

	u, h, ro, err := m.prepare(request.TaskUpload, "", opts)
	if err != nil {
		return UploadResponse{}, err
	}

	boundary := strings.ReplaceAll(uuid.NewString(), "-", "")

	pr, pw := io.Pipe()
	defer pr.Close()

	mw := multipart.NewWriter(pw)
	if err := mw.SetBoundary(boundary); err != nil {
		return UploadResponse{}, fmt.Errorf("setting multipart boundary: %w", err)
	}

	go func() {
		pw.CloseWithError(writeUpload(mw, data, meta))
	}()

	h.Set("X-Goog-Upload-Protocol", "multipart")
	h.Set("Content-Type", "multipart/related; boundary="+boundary)

	resp, err := request.Dispatch(ctx, u, h, pr, ro.Fetch)
	if err != nil {
		return UploadResponse{}, fmt.Errorf("file upload: %w", err)
	}

	var out UploadResponse
	if err := client.DecodeJSON(resp, &out); err != nil {
		return UploadResponse{}, fmt.Errorf("file upload: %w", err)
	}

	return out, nil
}

// UploadFile uploads the file at path. An empty meta.MIMEType is detected
// from the file contents.
func (m *Manager) UploadFile(ctx context.Context, path string, meta Metadata, opts ...request.Option) (UploadResponse, error) {
	if meta.MIMEType == "" {
		mt, err := mimetype.DetectFile(path)
		if err != nil {
			return UploadResponse{}, fmt.Errorf("detecting mime type: %w", err)
		}
		meta.MIMEType = mt.String()
	}

	f, err := os.Open(path)
	if err != nil {
		return UploadResponse{}, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	return m.Upload(ctx, f, meta, opts...)
}

// List returns one page of files.
func (m *Manager) List(ctx context.Context, params ListParams, opts ...request.Option) (ListResponse, error) {
	if err := validate.Struct(params); err != nil {
		return ListResponse{}, request.NewInputError(err, "invalid list params")
	}

	u, h, ro, err := m.prepare(request.TaskList, "", opts)
	if err != nil {
		return ListResponse{}, err
	}
	if params.PageSize > 0 {
		u.AppendParam("pageSize", strconv.Itoa(params.PageSize))
	}
	if params.PageToken != "" {
		u.AppendParam("pageToken", params.PageToken)
	}

	var out ListResponse
	if err := m.send(ctx, u, h, ro, &out); err != nil {
		return ListResponse{}, err
	}

	return out, nil
}

// Get reads file metadata by id, either "files/{id}" or "{id}".
func (m *Manager) Get(ctx context.Context, fileID string, opts ...request.Option) (File, error) {
	id, err := parseFileID(fileID)
	if err != nil {
		return File{}, err
	}

	u, h, ro, err := m.prepare(request.TaskGet, id, opts)
	if err != nil {
		return File{}, err
	}

	var out File
	if err := m.send(ctx, u, h, ro, &out); err != nil {
		return File{}, err
	}

	return out, nil
}

// Delete removes a file.
func (m *Manager) Delete(ctx context.Context, fileID string, opts ...request.Option) error {
	id, err := parseFileID(fileID)
	if err != nil {
		return err
	}

	u, h, ro, err := m.prepare(request.TaskDelete, id, opts)
	if err != nil {
		return err
	}

	return m.send(ctx, u, h, ro, nil)
}

// DownloadParams controls how [Manager.Download] writes to disk.
type DownloadParams struct {
	// SHA256 is the expected digest of the contents, hex or base64 as in
	// File.SHA256Hash. Empty skips the check.
	SHA256       string
	Progress     bool
	// SkipExisting returns before any request is sent when destPath
	// already exists.
	SkipExisting bool
	Logger       *slog.Logger
}

// Download streams the contents of a file to destPath. The file is written
// to a temp file first and only renamed into place once complete.
func (m *Manager) Download(ctx context.Context, fileID, destPath string, params DownloadParams, opts ...request.Option) error {
	id, err := parseFileID(fileID)
	if err != nil {
		return err
	}
	if destPath == "" {
		return request.NewInputError(nil, "destination path must not be empty")
	}

	log := params.Logger
	if log == nil {
		log = slog.Default()
	}

	if params.SkipExisting {
		if _, err := os.Stat(destPath); err == nil {
			log.Info("skipping existing file", "file", idPrefix+id, "path", destPath)
			return nil
		}
	}

	var dlOpts []download.Option
	if params.SHA256 != "" {
		dlOpts = append(dlOpts, download.WithChecksum(sha256.New(), sha256Hex(params.SHA256)))
	}
	if params.Progress {
		dlOpts = append(dlOpts, download.WithProgress())
	}

	u, h, ro, err := m.prepare(request.TaskDownload, id+":download", opts)
	if err != nil {
		return err
	}
	u.AppendParam("alt", "media")

	resp, err := request.Dispatch(ctx, u, h, nil, ro.Fetch)
	if err != nil {
		return fmt.Errorf("file download: %w", err)
	}
	defer resp.Body.Close()

	if err := download.Save(ctx, resp.Body, resp.ContentLength, destPath, log, dlOpts...); err != nil {
		return fmt.Errorf("file download: %w", err)
	}

	return nil
}

// prepare resolves the options and builds the URL and headers for task.
func (m *Manager) prepare(task request.Task, id string, callOpts []request.Option) (*request.URL, http.Header, request.Options, error) {
	opts, err := request.NewOptions(slices.Concat(m.opts, callOpts)...)
	if err != nil {
		return nil, nil, request.Options{}, err
	}

	u, err := request.NewFilesURL(task, m.apiKey, opts)
	if err != nil {
		return nil, nil, request.Options{}, err
	}
	if id != "" {
		u.AppendPath(id)
	}

	h, err := request.Headers(u)
	if err != nil {
		return nil, nil, request.Options{}, err
	}

	return u, h, opts, nil
}

func (m *Manager) send(ctx context.Context, u *request.URL, h http.Header, opts request.Options, dest any) error {
	resp, err := request.Dispatch(ctx, u, h, nil, opts.Fetch)
	if err != nil {
		return fmt.Errorf("file %s: %w", u.Task, err)
	}

	if err := client.DecodeJSON(resp, dest); err != nil {
		return fmt.Errorf("file %s: %w", u.Task, err)
	}

	return nil
}

// writeUpload writes the metadata part followed by the file part.
func writeUpload(mw *multipart.Writer, data io.Reader, meta Metadata) error {
	metaPart, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"application/json; charset=utf-8"},
	})
	if err != nil {
		return fmt.Errorf("creating metadata part: %w", err)
	}

	if err := json.NewEncoder(metaPart).Encode(struct {
		File Metadata `json:"file"`
	}{File: meta}); err != nil {
		return fmt.Errorf("encoding metadata: %w", err)
	}

	filePart, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type": {meta.MIMEType},
	})
	if err != nil {
		return fmt.Errorf("creating file part: %w", err)
	}

	if _, err := io.Copy(filePart, data); err != nil {
		return fmt.Errorf("copying file data: %w", err)
	}

	return mw.Close()
}

// sha256Hex accepts a digest as hex or as the base64 form the API reports
// in File.SHA256Hash and returns it as hex.
func sha256Hex(sum string) string {
	if len(sum) == hex.EncodedLen(sha256.Size) {
		return sum
	}

	raw, err := base64.StdEncoding.DecodeString(sum)
	if err != nil {
		return sum
	}

	switch {
	case len(raw) == sha256.Size:
		return hex.EncodeToString(raw)
	case len(raw) == hex.EncodedLen(sha256.Size):
		return string(raw)
	}

	return sum
}

func parseFileID(fileID string) (string, error) {
	id := strings.TrimPrefix(fileID, idPrefix)
	if id == "" {
		return "", request.NewInputError(nil, "invalid fileId %q: must be in the format %q or %q", fileID, idPrefix+"filename", "filename")
	}

	return id, nil
}
