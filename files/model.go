package files

import (
	"encoding/json"
	"time"
)

// State is the processing state of an uploaded file.
type State string

const (
	StateUnspecified State = "STATE_UNSPECIFIED"
	StateProcessing  State = "PROCESSING"
	StateActive      State = "ACTIVE"
	StateFailed      State = "FAILED"
)

// Status describes a processing failure.
type Status struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Details []json.RawMessage `json:"details,omitempty"`
}

// VideoMetadata is populated for video files once processed.
type VideoMetadata struct {
	VideoDuration string `json:"videoDuration"`
}

// File is the metadata of an uploaded file.
type File struct {
	Name           string         `json:"name"`
	DisplayName    string         `json:"displayName,omitempty"`
	MIMEType       string         `json:"mimeType"`
	SizeBytes      int64          `json:"sizeBytes,string,omitempty"`
	CreateTime     *time.Time     `json:"createTime,omitempty"`
	UpdateTime     *time.Time     `json:"updateTime,omitempty"`
	ExpirationTime *time.Time     `json:"expirationTime,omitempty"`
	SHA256Hash     string         `json:"sha256Hash,omitempty"`
	URI            string         `json:"uri"`
	State          State          `json:"state,omitempty"`
	Error          *Status        `json:"error,omitempty"`
	VideoMetadata  *VideoMetadata `json:"videoMetadata,omitempty"`
}

// Metadata describes a file being uploaded. Name is optional; without a
// "files/" prefix one is added.
type Metadata struct {
	Name        string `json:"name,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	MIMEType    string `json:"mimeType" validate:"required"`
}

// UploadResponse is returned by an upload.
type UploadResponse struct {
	File File `json:"file"`
}

// ListParams pages through uploaded files.
type ListParams struct {
	PageSize  int    `json:"pageSize" validate:"gte=0"`
	PageToken string `json:"pageToken"`
}

// ListResponse is one page of files.
type ListResponse struct {
	Files         []File `json:"files"`
	NextPageToken string `json:"nextPageToken,omitempty"`
}
