package emulator

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"slices"
	"strings"

	"github.com/adamwoolhether/genai/files"
	"github.com/adamwoolhether/genai/internal/validate"
	"github.com/adamwoolhether/genai/internal/web"
	"github.com/adamwoolhether/genai/internal/web/errs"
)

const filePrefix = "files/"

func (e *Emulator) uploadFile(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if p := r.Header.Get("X-Goog-Upload-Protocol"); p != "multipart" {
		return errs.Newf(http.StatusBadRequest, "unsupported upload protocol %q", p)
	}

	meta, data, err := readUpload(w, r)
	if err != nil {
		return err
	}

	id := newID()
	if meta.Name != "" {
		id = strings.TrimPrefix(meta.Name, filePrefix)
		if id == "" || strings.Contains(id, "/") {
			return errs.Newf(http.StatusBadRequest, "invalid file name %q", meta.Name)
		}
	}

	now := e.now().UTC()
	expire := now.Add(fileRetention)
	sum := sha256.Sum256(data)

	version, _ := web.Param(r, "version")
	f := files.File{
		Name:           filePrefix + id,
		DisplayName:    meta.DisplayName,
		MIMEType:       meta.MIMEType,
		SizeBytes:      int64(len(data)),
		CreateTime:     &now,
		UpdateTime:     &now,
		ExpirationTime: &expire,
		SHA256Hash:     base64.StdEncoding.EncodeToString(sum[:]),
		URI:            fmt.Sprintf("http://%s/%s/%s%s", r.Host, version, filePrefix, id),
		State:          files.StateActive,
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.expireFiles()
	if _, ok := e.files[id]; ok {
		return errs.Newf(http.StatusConflict, "file %s%s already exists", filePrefix, id)
	}
	e.files[id] = &storedFile{meta: f, data: data}
	e.fOrder = append(e.fOrder, id)

	return web.RespondJSON(ctx, w, http.StatusOK, files.UploadResponse{File: f})
}

func (e *Emulator) listFiles(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	offset, size, err := pageParams(r)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.expireFiles()
	ids, next, err := page(e.fOrder, offset, size)
	if err != nil {
		return err
	}

	resp := files.ListResponse{NextPageToken: next}
	for _, id := range ids {
		resp.Files = append(resp.Files, e.files[id].meta)
	}

	return web.RespondJSON(ctx, w, http.StatusOK, resp)
}

func (e *Emulator) getFile(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	id, err := web.Param(r, "id")
	if err != nil {
		return errs.New(http.StatusBadRequest, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	sf, err := e.lookupFile(id)
	if err != nil {
		return err
	}

	return web.RespondJSON(ctx, w, http.StatusOK, sf.meta)
}

func (e *Emulator) deleteFile(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	id, err := web.Param(r, "id")
	if err != nil {
		return errs.New(http.StatusBadRequest, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.lookupFile(id); err != nil {
		return err
	}
	delete(e.files, id)
	e.fOrder = slices.DeleteFunc(e.fOrder, func(s string) bool { return s == id })

	return web.RespondJSON(ctx, w, http.StatusOK, struct{}{})
}

func (e *Emulator) downloadFile(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	param, err := web.Param(r, "id")
	if err != nil {
		return errs.New(http.StatusBadRequest, err)
	}

	id, ok := strings.CutSuffix(param, ":download")
	if !ok {
		return errs.Newf(http.StatusBadRequest, "expected %s%s:download", filePrefix, param)
	}
	if alt := r.URL.Query().Get("alt"); alt != "media" {
		return errs.Newf(http.StatusBadRequest, "unsupported alt %q", alt)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	sf, err := e.lookupFile(id)
	if err != nil {
		return err
	}

	return web.RespondBytes(ctx, w, sf.meta.MIMEType, sf.data)
}

// lookupFile returns the live file with id. e.mu must be held.
func (e *Emulator) lookupFile(id string) (*storedFile, error) {
	e.expireFiles()

	sf, ok := e.files[id]
	if !ok {
		return nil, errs.Newf(http.StatusNotFound, "File %s%s not found.", filePrefix, id)
	}

	return sf, nil
}

// expireFiles drops files past their expiration time. e.mu must be held.
func (e *Emulator) expireFiles() {
	now := e.now()
	e.fOrder = slices.DeleteFunc(e.fOrder, func(id string) bool {
		exp := e.files[id].meta.ExpirationTime
		if exp != nil && !exp.After(now) {
			delete(e.files, id)
			return true
		}
		return false
	})
}

// readUpload parses a multipart/related body holding the JSON metadata
// part followed by the file contents.
func readUpload(w http.ResponseWriter, r *http.Request) (files.Metadata, []byte, error) {
	mediaType, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "multipart/related" || params["boundary"] == "" {
		return files.Metadata{}, nil, errs.Newf(http.StatusBadRequest, "expected multipart/related content with a boundary")
	}

	mr := multipart.NewReader(http.MaxBytesReader(w, r.Body, maxUploadSize), params["boundary"])

	metaPart, err := mr.NextPart()
	if err != nil {
		return files.Metadata{}, nil, uploadErr("reading metadata part", err)
	}

	var body struct {
		File files.Metadata `json:"file"`
	}
	if err := json.NewDecoder(metaPart).Decode(&body); err != nil {
		return files.Metadata{}, nil, errs.Newf(http.StatusBadRequest, "decoding metadata: %s", err)
	}
	if err := validate.Struct(body.File); err != nil {
		return files.Metadata{}, nil, err
	}

	filePart, err := mr.NextPart()
	if err != nil {
		return files.Metadata{}, nil, uploadErr("reading file part", err)
	}

	data, err := io.ReadAll(filePart)
	if err != nil {
		return files.Metadata{}, nil, uploadErr("reading file contents", err)
	}

	return body.File, data, nil
}

func uploadErr(what string, err error) error {
	if _, ok := errors.AsType[*http.MaxBytesError](err); ok {
		return errs.Newf(http.StatusRequestEntityTooLarge, "upload exceeds %d bytes", maxUploadSize)
	}

	return errs.Newf(http.StatusBadRequest, "%s: %s", what, err)
}
