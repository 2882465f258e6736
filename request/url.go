package request

import (
	"fmt"
	"net/url"
)

// URL is the target of a single call against a server resource. It is
// built by [NewCachedContentURL] or [NewFilesURL] and then extended with
// [URL.AppendPath] and [URL.AppendParam].
type URL struct {
	Task    Task
	APIKey  string
	Options Options

	u *url.URL
}

// NewCachedContentURL returns {baseURL}/{apiVersion}/cachedContents.
func NewCachedContentURL(task Task, apiKey string, opts Options) (*URL, error) {
	if task.Method() == "" {
		return nil, NewInputError(ErrUnknownTask, "task %d", int(task))
	}

	raw := fmt.Sprintf("%s/%s/cachedContents", opts.baseURL(), opts.apiVersion())

	return newURL(task, apiKey, opts, raw)
}

// NewFilesURL returns {baseURL}/{apiVersion}/files. [TaskUpload] and
// [TaskDownload] insert "/upload" or "/download" before the version.
func NewFilesURL(task Task, apiKey string, opts Options) (*URL, error) {
	if task.Method() == "" {
		return nil, NewInputError(ErrUnknownTask, "task %d", int(task))
	}

	raw := opts.baseURL()
	switch task {
	case TaskUpload:
		raw += "/upload"
	case TaskDownload:
		raw += "/download"
	}
	raw += fmt.Sprintf("/%s/files", opts.apiVersion())

	return newURL(task, apiKey, opts, raw)
}

func newURL(task Task, apiKey string, opts Options, raw string) (*URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	if !u.IsAbs() || u.Host == "" {
		return nil, fmt.Errorf("%w: %q is not absolute", ErrInvalidURL, raw)
	}

	return &URL{
		Task:    task,
		APIKey:  apiKey,
		Options: opts,
		u:       u,
	}, nil
}

// AppendPath adds one path segment. The segment is escaped when rendered.
func (u *URL) AppendPath(segment string) {
	u.u.Path += "/" + segment
	u.u.RawPath = ""
}

// AppendParam adds a query parameter. Repeated keys are kept in order.
func (u *URL) AppendParam(key, value string) {
	pair := url.QueryEscape(key) + "=" + url.QueryEscape(value)
	if u.u.RawQuery == "" {
		u.u.RawQuery = pair
		return
	}
	u.u.RawQuery += "&" + pair
}

// String renders the absolute URL.
func (u *URL) String() string {
	return u.u.String()
}
