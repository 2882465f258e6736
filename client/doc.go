// Package client provides the transport that carries requests built by
// [github.com/adamwoolhether/genai/request] to the API.
//
// # Building a Client
//
// Use [Build] to create a [Client] with functional options:
//
//	c, err := client.Build(
//		client.WithTimeout(2 * time.Minute),
//		client.WithThrottle(5, 2),
//		client.WithLogger(logger),
//	)
//
// # Fetching
//
// [Client.Fetch] satisfies [FetchFunc]. It binds the request to the
// cancellation signal carried in [RequestInit], rejects non-2xx responses
// with an [UnexpectedStatusError] and reports cancellations as an
// [AbortError]:
//
//	resp, err := c.Fetch(ctx, u.String(), client.RequestInit{
//		Method: http.MethodGet,
//		Header: h,
//	})
//	if err != nil { ... }
//	err = client.DecodeJSON(resp, &out)
//
// The package level [Fetch] uses a default client and is what the request
// package falls back to when no fetch func is configured.
package client
