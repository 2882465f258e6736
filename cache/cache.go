// Package cache manages cached content resources: large prompt prefixes
// stored server-side and referenced by name from generation calls.
package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/adamwoolhether/genai/client"
	"github.com/adamwoolhether/genai/internal/validate"
	"github.com/adamwoolhether/genai/request"
)

const namePrefix = "cachedContents/"

// Manager creates, lists, reads, updates and deletes cached content.
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

// Create uploads a new cached content.
func (m *Manager) Create(ctx context.Context, params CreateParams, opts ...request.Option) (CachedContent, error) {
	if err := validate.Struct(params); err != nil {
		return CachedContent{}, request.NewInputError(err, "invalid cached content")
	}

	body := wireContent{
		Model:             params.Model,
		DisplayName:       params.DisplayName,
		SystemInstruction: params.SystemInstruction,
		Contents:          params.Contents,
		Tools:             params.Tools,
		ToolConfig:        params.ToolConfig,
		TTL:               formatTTL(params.TTL),
		ExpireTime:        params.ExpireTime,
	}

	if !strings.Contains(body.Model, "/") {
		body.Model = "models/" + body.Model
	}

	if body.SystemInstruction != nil && body.SystemInstruction.Role == "" {
		si := *body.SystemInstruction
		si.Role = "system"
		body.SystemInstruction = &si
	}

	var cc CachedContent
	if err := m.do(ctx, request.TaskCreate, "", nil, body, &cc, opts); err != nil {
		return CachedContent{}, err
	}

	return cc, nil
}

// List returns one page of cached contents.
func (m *Manager) List(ctx context.Context, params ListParams, opts ...request.Option) (ListResponse, error) {
	if err := validate.Struct(params); err != nil {
		return ListResponse{}, request.NewInputError(err, "invalid list params")
	}

	query := func(u *request.URL) {
		if params.PageSize > 0 {
			u.AppendParam("pageSize", strconv.Itoa(params.PageSize))
		}
		if params.PageToken != "" {
			u.AppendParam("pageToken", params.PageToken)
		}
	}

	var resp ListResponse
	if err := m.do(ctx, request.TaskList, "", query, nil, &resp, opts); err != nil {
		return ListResponse{}, err
	}

	return resp, nil
}

// Get reads a cached content by name, either "cachedContents/{id}" or "{id}".
func (m *Manager) Get(ctx context.Context, name string, opts ...request.Option) (CachedContent, error) {
	id, err := parseName(name)
	if err != nil {
		return CachedContent{}, err
	}

	var cc CachedContent
	if err := m.do(ctx, request.TaskGet, id, nil, nil, &cc, opts); err != nil {
		return CachedContent{}, err
	}

	return cc, nil
}

// Update changes the expiration of a cached content.
func (m *Manager) Update(ctx context.Context, name string, params UpdateParams, opts ...request.Option) (CachedContent, error) {
	id, err := parseName(name)
	if err != nil {
		return CachedContent{}, err
	}

	if err := validate.Struct(params); err != nil {
		return CachedContent{}, request.NewInputError(err, "invalid update params")
	}

	body := wireContent{
		TTL:        formatTTL(params.CachedContent.TTL),
		ExpireTime: params.CachedContent.ExpireTime,
	}

	query := func(u *request.URL) {
		if len(params.UpdateMask) == 0 {
			return
		}
		mask := make([]string, len(params.UpdateMask))
		for i, field := range params.UpdateMask {
			mask[i] = camelToSnake(field)
		}
		u.AppendParam("update_mask", strings.Join(mask, ","))
	}

	var cc CachedContent
	if err := m.do(ctx, request.TaskUpdate, id, query, body, &cc, opts); err != nil {
		return CachedContent{}, err
	}

	return cc, nil
}

// Delete removes a cached content.
func (m *Manager) Delete(ctx context.Context, name string, opts ...request.Option) error {
	id, err := parseName(name)
	if err != nil {
		return err
	}

	return m.do(ctx, request.TaskDelete, id, nil, nil, nil, opts)
}

// do builds the URL and headers for task, sends body as JSON when non-nil
// and decodes the response into dest.
func (m *Manager) do(ctx context.Context, task request.Task, id string, query func(*request.URL), body, dest any, callOpts []request.Option) error {
	opts, err := request.NewOptions(slices.Concat(m.opts, callOpts)...)
	if err != nil {
		return err
	}

	u, err := request.NewCachedContentURL(task, m.apiKey, opts)
	if err != nil {
		return err
	}
	if id != "" {
		u.AppendPath(id)
	}
	if query != nil {
		query(u)
	}

	h, err := request.Headers(u)
	if err != nil {
		return err
	}

	var payload io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request payload: %w", err)
		}
		payload = bytes.NewReader(b)
		if h.Get("Content-Type") == "" {
			h.Set("Content-Type", "application/json")
		}
	}

	resp, err := request.Dispatch(ctx, u, h, payload, opts.Fetch)
	if err != nil {
		return fmt.Errorf("cached content %s: %w", task, err)
	}

	if err := client.DecodeJSON(resp, dest); err != nil {
		return fmt.Errorf("cached content %s: %w", task, err)
	}

	return nil
}

func parseName(name string) (string, error) {
	id := strings.TrimPrefix(name, namePrefix)
	if id == "" {
		return "", request.NewInputError(nil, "invalid name %q: must be in the format %q or %q", name, namePrefix+"name", "name")
	}

	return id, nil
}

// formatTTL renders d as a protobuf duration string, "" for zero.
func formatTTL(d time.Duration) string {
	if d <= 0 {
		return ""
	}

	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64) + "s"
}

// camelToSnake converts an update mask entry such as "expireTime" to "expire_time".
func camelToSnake(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsUpper(r) {
			b.WriteByte('_')
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}

	return b.String()
}
