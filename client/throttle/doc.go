// Package throttle provides an [http.RoundTripper] that paces requests to
// the API with a token bucket from [golang.org/x/time/rate], so a single
// process stays inside its requests-per-second quota instead of collecting
// 429 responses.
//
// # Usage
//
// Wrap an existing transport with [NewRoundTripper]:
//
//	rt, err := throttle.NewRoundTripper(
//		throttle.Config{RPS: 5, Burst: 2},
//		func() *slog.Logger { return slog.Default() },
//		http.DefaultTransport,
//	)
//	httpClient := &http.Client{Transport: rt}
//
// When the bucket is empty, requests block until a token becomes available
// or the request context is cancelled.
package throttle
