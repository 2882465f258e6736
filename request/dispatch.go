package request

import (
	"context"
	"io"
	"net/http"

	"github.com/adamwoolhether/genai/abort"
	"github.com/adamwoolhether/genai/client"
)

// Dispatch sends one request for u with headers h and an optional body
// through fetch, defaulting to [client.Fetch]. The method comes from u's
// task, and a cancellation signal is attached when u's options configure a
// timeout or a signal. The fetch result is returned unchanged.
func Dispatch(ctx context.Context, u *URL, h http.Header, body io.Reader, fetch client.FetchFunc) (*http.Response, error) {
	if fetch == nil {
		fetch = client.Fetch
	}

	ri := client.RequestInit{
		Method: u.Task.Method(),
		Header: h,
	}
	if body != nil {
		ri.Body = body
	}

	sig := abort.New(u.Options.Timeout, u.Options.Signal)
	if sig != nil {
		ri.Signal = sig
	}

	resp, err := fetch(ctx, u.String(), ri)
	if err != nil && sig != nil {
		sig.Release()
	}

	return resp, err
}
