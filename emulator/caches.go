package emulator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/adamwoolhether/genai/cache"
	"github.com/adamwoolhether/genai/internal/validate"
	"github.com/adamwoolhether/genai/internal/web"
	"github.com/adamwoolhether/genai/internal/web/errs"
)

const cachePrefix = "cachedContents/"

type createCacheRequest struct {
	Model             string          `json:"model" validate:"required"`
	DisplayName       string          `json:"displayName"`
	SystemInstruction *cache.Content  `json:"systemInstruction"`
	Contents          []cache.Content `json:"contents"`
	Tools             json.RawMessage `json:"tools"`
	ToolConfig        json.RawMessage `json:"toolConfig"`
	TTL               string          `json:"ttl" validate:"omitempty,excluded_with=ExpireTime"`
	ExpireTime        *time.Time      `json:"expireTime"`
}

type updateCacheRequest struct {
	TTL        string     `json:"ttl"`
	ExpireTime *time.Time `json:"expireTime"`
}

type listCachesResponse struct {
	CachedContents []cache.CachedContent `json:"cachedContents"`
	NextPageToken  string                `json:"nextPageToken,omitempty"`
}

func (e *Emulator) createCache(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var req createCacheRequest
	if err := web.Decode(r, &req); err != nil {
		return badRequest(err)
	}

	if !strings.Contains(req.Model, "/") {
		return errs.Newf(http.StatusBadRequest, "model %q must be in the format models/{model}", req.Model)
	}

	now := e.now().UTC()
	expire := now.Add(defaultCacheTTL)
	switch {
	case req.TTL != "":
		ttl, err := parseDuration(req.TTL)
		if err != nil {
			return errs.New(http.StatusBadRequest, err)
		}
		expire = now.Add(ttl)
	case req.ExpireTime != nil:
		if !req.ExpireTime.After(now) {
			return errs.Newf(http.StatusBadRequest, "expireTime %s is in the past", req.ExpireTime.Format(time.RFC3339))
		}
		expire = req.ExpireTime.UTC()
	}

	id := newID()
	cc := cache.CachedContent{
		Name:              cachePrefix + id,
		DisplayName:       req.DisplayName,
		Model:             req.Model,
		SystemInstruction: req.SystemInstruction,
		Contents:          req.Contents,
		Tools:             req.Tools,
		ToolConfig:        req.ToolConfig,
		CreateTime:        &now,
		UpdateTime:        &now,
		ExpireTime:        &expire,
		UsageMetadata:     &cache.UsageMetadata{TotalTokenCount: countTokens(req.SystemInstruction, req.Contents)},
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.caches[id] = &cc
	e.cOrder = append(e.cOrder, id)

	return web.RespondJSON(ctx, w, http.StatusOK, cc)
}

func (e *Emulator) listCaches(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	offset, size, err := pageParams(r)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.expireCaches()
	ids, next, err := page(e.cOrder, offset, size)
	if err != nil {
		return err
	}

	resp := listCachesResponse{NextPageToken: next}
	for _, id := range ids {
		resp.CachedContents = append(resp.CachedContents, *e.caches[id])
	}

	return web.RespondJSON(ctx, w, http.StatusOK, resp)
}

func (e *Emulator) getCache(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	cc, err := e.lookupCache(r)
	if err != nil {
		return err
	}

	return web.RespondJSON(ctx, w, http.StatusOK, *cc)
}

func (e *Emulator) updateCache(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var req updateCacheRequest
	if err := web.Decode(r, &req); err != nil {
		return badRequest(err)
	}

	mask, err := updateMask(r, req)
	if err != nil {
		return err
	}

	now := e.now().UTC()
	var expire time.Time
	switch {
	case slices.Contains(mask, "ttl"):
		ttl, err := parseDuration(req.TTL)
		if err != nil {
			return errs.New(http.StatusBadRequest, err)
		}
		expire = now.Add(ttl)
	case slices.Contains(mask, "expire_time"):
		if req.ExpireTime == nil || !req.ExpireTime.After(now) {
			return errs.Newf(http.StatusBadRequest, "expireTime must be set and in the future")
		}
		expire = req.ExpireTime.UTC()
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	cc, err := e.lookupCache(r)
	if err != nil {
		return err
	}
	cc.ExpireTime = &expire
	cc.UpdateTime = &now

	return web.RespondJSON(ctx, w, http.StatusOK, *cc)
}

func (e *Emulator) deleteCache(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.lookupCache(r); err != nil {
		return err
	}

	id := r.PathValue("id")
	delete(e.caches, id)
	e.cOrder = slices.DeleteFunc(e.cOrder, func(s string) bool { return s == id })

	return web.RespondJSON(ctx, w, http.StatusOK, struct{}{})
}

// lookupCache returns the live cached content named in the path. e.mu must be held.
func (e *Emulator) lookupCache(r *http.Request) (*cache.CachedContent, error) {
	e.expireCaches()

	id, err := web.Param(r, "id")
	if err != nil {
		return nil, errs.New(http.StatusBadRequest, err)
	}

	cc, ok := e.caches[id]
	if !ok {
		return nil, errs.Newf(http.StatusNotFound, "CachedContent not found (or permission denied): %s%s", cachePrefix, id)
	}

	return cc, nil
}

// expireCaches drops cached contents past their expire time. e.mu must be held.
func (e *Emulator) expireCaches() {
	now := e.now()
	e.cOrder = slices.DeleteFunc(e.cOrder, func(id string) bool {
		cc := e.caches[id]
		if cc.ExpireTime != nil && !cc.ExpireTime.After(now) {
			delete(e.caches, id)
			return true
		}
		return false
	})
}

// updateMask returns the snake_case fields to update. Without an
// update_mask query parameter the set fields of req are used.
func updateMask(r *http.Request, req updateCacheRequest) ([]string, error) {
	var mask []string
	if raw := r.URL.Query().Get("update_mask"); raw != "" {
		mask = strings.Split(raw, ",")
	} else {
		if req.TTL != "" {
			mask = append(mask, "ttl")
		}
		if req.ExpireTime != nil {
			mask = append(mask, "expire_time")
		}
	}

	if len(mask) == 0 {
		return nil, errs.Newf(http.StatusBadRequest, "update_mask must name ttl or expire_time")
	}
	for _, field := range mask {
		if field != "ttl" && field != "expire_time" {
			return nil, errs.Newf(http.StatusBadRequest, "field %q cannot be updated", field)
		}
	}

	return mask, nil
}

// parseDuration parses a protobuf duration such as "90s" or "1.5s".
func parseDuration(s string) (time.Duration, error) {
	secs, ok := strings.CutSuffix(s, "s")
	if !ok {
		return 0, fmt.Errorf("invalid duration %q: must end in \"s\"", s)
	}

	f, err := strconv.ParseFloat(secs, 64)
	if err != nil || f <= 0 {
		return 0, fmt.Errorf("invalid duration %q: must be a positive number of seconds", s)
	}

	return time.Duration(f * float64(time.Second)), nil
}

// countTokens approximates a token count as the number of whitespace
// separated words in all text parts.
func countTokens(system *cache.Content, contents []cache.Content) int {
	var n int
	count := func(c cache.Content) {
		for _, p := range c.Parts {
			n += len(strings.Fields(p.Text))
		}
	}

	if system != nil {
		count(*system)
	}
	for _, c := range contents {
		count(c)
	}

	return n
}

// pageParams reads pageSize and pageToken. The token is the offset of the
// next item.
func pageParams(r *http.Request) (offset, size int, err error) {
	size, err = web.QueryInt(r, "pageSize", defaultPageSize)
	if err != nil || size < 0 {
		return 0, 0, errs.Newf(http.StatusBadRequest, "invalid pageSize %q", r.URL.Query().Get("pageSize"))
	}
	if size == 0 {
		size = defaultPageSize
	}
	size = min(size, maxPageSize)

	if tok := r.URL.Query().Get("pageToken"); tok != "" {
		offset, err = strconv.Atoi(tok)
		if err != nil || offset < 0 {
			return 0, 0, errs.Newf(http.StatusBadRequest, "invalid pageToken %q", tok)
		}
	}

	return offset, size, nil
}

// page returns the ids of order in the window starting at offset and the
// token of the window after it. An offset past the end is rejected.
func page(order []string, offset, size int) ([]string, string, error) {
	if offset > len(order) {
		return nil, "", errs.Newf(http.StatusBadRequest, "invalid pageToken %q", strconv.Itoa(offset))
	}

	end := offset + min(size, len(order)-offset)
	var next string
	if end < len(order) {
		next = strconv.Itoa(end)
	}

	return order[offset:end], next, nil
}

// badRequest reports a decode or validation failure with status 400.
// Validation errors are left for the errors middleware.
func badRequest(err error) error {
	if _, ok := errors.AsType[validate.FieldErrors](err); ok {
		return err
	}

	return errs.New(http.StatusBadRequest, err)
}
