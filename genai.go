// Package genai is the entry point for managing server-side resources of
// the Gemini Generative Language API: cached content and uploaded files.
//
//	c, err := genai.NewClient(client.WithThrottle(5, 2))
//	if err != nil { ... }
//
//	caches := genai.NewCacheManager(apiKey, request.WithFetch(c.Fetch))
//	cc, err := caches.Create(ctx, cache.CreateParams{Model: "gemini-1.5-flash-001", TTL: time.Hour})
package genai

import (
	"github.com/adamwoolhether/genai/cache"
	"github.com/adamwoolhether/genai/client"
	"github.com/adamwoolhether/genai/files"
	"github.com/adamwoolhether/genai/request"
)

// NewClient instantiates a new *client.Client with the provided options.
// If not specified, a fresh http.Client over http.DefaultTransport is used.
func NewClient(opts ...client.Option) (*client.Client, error) {
	return client.Build(opts...)
}

// NewCacheManager returns a manager for cached content authenticated with apiKey.
func NewCacheManager(apiKey string, opts ...request.Option) *cache.Manager {
	return cache.NewManager(apiKey, opts...)
}

// NewFileManager returns a manager for uploaded files authenticated with apiKey.
func NewFileManager(apiKey string, opts ...request.Option) *files.Manager {
	return files.NewManager(apiKey, opts...)
}
