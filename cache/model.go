package cache

import (
	"encoding/json"
	"time"
)

// Blob is inline binary data.
type Blob struct {
	MIMEType string `json:"mimeType"`
	Data     []byte `json:"data"`
}

// FileData references a file uploaded through the files API.
type FileData struct {
	MIMEType string `json:"mimeType,omitempty"`
	FileURI  string `json:"fileUri"`
}

// Part is one piece of a Content. Exactly one field is expected to be set.
type Part struct {
	Text       string    `json:"text,omitempty"`
	InlineData *Blob     `json:"inlineData,omitempty"`
	FileData   *FileData `json:"fileData,omitempty"`
}

// Content is a role-tagged list of parts.
type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

// Text returns a single-part text Content for role.
func Text(role, text string) *Content {
	return &Content{Role: role, Parts: []Part{{Text: text}}}
}

// UsageMetadata reports the size of cached content.
type UsageMetadata struct {
	TotalTokenCount int `json:"totalTokenCount"`
}

// CachedContent is a cached content resource as returned by the API.
type CachedContent struct {
	Name              string          `json:"name,omitempty"`
	DisplayName       string          `json:"displayName,omitempty"`
	Model             string          `json:"model,omitempty"`
	SystemInstruction *Content        `json:"systemInstruction,omitempty"`
	Contents          []Content       `json:"contents,omitempty"`
	Tools             json.RawMessage `json:"tools,omitempty"`
	ToolConfig        json.RawMessage `json:"toolConfig,omitempty"`
	CreateTime        *time.Time      `json:"createTime,omitempty"`
	UpdateTime        *time.Time      `json:"updateTime,omitempty"`
	ExpireTime        *time.Time      `json:"expireTime,omitempty"`
	TTL               string          `json:"ttl,omitempty"`
	UsageMetadata     *UsageMetadata  `json:"usageMetadata,omitempty"`
}

// CreateParams describes a new cached content. TTL and ExpireTime are
// mutually exclusive.
type CreateParams struct {
	Model             string          `json:"model" validate:"required"`
	DisplayName       string          `json:"displayName"`
	SystemInstruction *Content        `json:"systemInstruction"`
	Contents          []Content       `json:"contents"`
	Tools             json.RawMessage `json:"tools"`
	ToolConfig        json.RawMessage `json:"toolConfig"`
	TTL               time.Duration   `json:"ttl" validate:"omitempty,gt=0,excluded_with=ExpireTime"`
	ExpireTime        *time.Time      `json:"expireTime"`
}

// UpdateContent holds the mutable fields of a cached content.
type UpdateContent struct {
	TTL        time.Duration `json:"ttl" validate:"omitempty,gt=0,excluded_with=ExpireTime"`
	ExpireTime *time.Time    `json:"expireTime"`
}

// UpdateParams describes an update. UpdateMask names the fields to change
// in camelCase, for example "ttl" or "expireTime".
type UpdateParams struct {
	CachedContent UpdateContent `json:"cachedContent"`
	UpdateMask    []string      `json:"updateMask"`
}

// ListParams pages through cached contents.
type ListParams struct {
	PageSize  int    `json:"pageSize" validate:"gte=0"`
	PageToken string `json:"pageToken"`
}

// ListResponse is one page of cached contents.
type ListResponse struct {
	CachedContents []CachedContent `json:"cachedContents"`
	NextPageToken  string          `json:"nextPageToken,omitempty"`
}

// wireContent is the JSON body sent on create and update.
type wireContent struct {
	Model             string          `json:"model,omitempty"`
	DisplayName       string          `json:"displayName,omitempty"`
	SystemInstruction *Content        `json:"systemInstruction,omitempty"`
	Contents          []Content       `json:"contents,omitempty"`
	Tools             json.RawMessage `json:"tools,omitempty"`
	ToolConfig        json.RawMessage `json:"toolConfig,omitempty"`
	TTL               string          `json:"ttl,omitempty"`
	ExpireTime        *time.Time      `json:"expireTime,omitempty"`
}
