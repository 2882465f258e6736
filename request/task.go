package request

import "net/http"

// Task identifies the intent of a call against a server resource. It
// selects the HTTP method and, for files, the URL shape.
type Task int

const (
	TaskUpload Task = iota + 1
	TaskList
	TaskGet
	TaskDelete
	TaskUpdate
	TaskCreate
	TaskDownload
)

// Method returns the HTTP method for t, or "" for an unknown task.
func (t Task) Method() string {
	switch t {
	case TaskUpload, TaskCreate:
		return http.MethodPost
	case TaskList, TaskGet, TaskDownload:
		return http.MethodGet
	case TaskDelete:
		return http.MethodDelete
	case TaskUpdate:
		return http.MethodPatch
	default:
		return ""
	}
}

func (t Task) String() string {
	switch t {
	case TaskUpload:
		return "upload"
	case TaskList:
		return "list"
	case TaskGet:
		return "get"
	case TaskDelete:
		return "delete"
	case TaskUpdate:
		return "update"
	case TaskCreate:
		return "create"
	case TaskDownload:
		return "download"
	default:
		return "unknown"
	}
}
