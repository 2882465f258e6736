// Package client exposes the transport used to send requests built by
// package request to the Generative Language API.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/adamwoolhether/genai/abort"
	"github.com/adamwoolhether/genai/client/throttle"
)

// Client wraps the std-lib *http.Client.
// It sets a default *http.Client and transport, which
// can be customized via optional funcs.
type Client struct {
	c      *http.Client
	logger *slog.Logger
	tracer trace.Tracer
}

// RequestInit describes a single outgoing call: the method, the headers,
// an optional body and an optional cancellation signal.
type RequestInit struct {
	Method string
	Header http.Header
	Body   io.Reader
	Signal *abort.Signal
}

// FetchFunc sends ri to rawURL and returns the raw response.
// [Client.Fetch] and the package level [Fetch] satisfy it.
type FetchFunc func(ctx context.Context, rawURL string, ri RequestInit) (*http.Response, error)

var defaultClient = sync.OnceValue(func() *Client {
	c, _ := Build()
	return c
})

// Fetch sends the request using a lazily built default [Client].
func Fetch(ctx context.Context, rawURL string, ri RequestInit) (*http.Response, error) {
	return defaultClient().Fetch(ctx, rawURL, ri)
}

// Build creates a *Client configured with the given options.
func Build(optFns ...Option) (*Client, error) {
	client := &Client{
		c:      &http.Client{},
		logger: slog.Default(),
		tracer: noop.NewTracerProvider().Tracer("no-op tracer"),
	}

	var opts options
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return nil, fmt.Errorf("applying client option: %w", err)
		}
	}

	if opts.client != nil {
		cpy := *opts.client
		client.c = &cpy
	}

	if opts.logger != nil {
		client.logger = opts.logger
	}

	if opts.tracer != nil {
		client.tracer = opts.tracer
	}

	if opts.timeout != nil {
		client.c.Timeout = *opts.timeout
	}

	if opts.noFollowRedirects {
		client.c.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	var transport http.RoundTripper
	switch {
	case opts.rt != nil:
		transport = opts.rt
	case opts.client != nil && opts.client.Transport != nil:
		transport = opts.client.Transport
	default:
		transport = http.DefaultTransport
	}
	if opts.userAgent != "" {
		transport = userAgent{value: opts.userAgent, base: transport}
	}
	if opts.throttle != nil {
		rt, err := throttle.NewRoundTripper(*opts.throttle, func() *slog.Logger { return client.logger }, transport)
		if err != nil {
			return nil, fmt.Errorf("configuring throttle: %w", err)
		}
		transport = rt
	}
	client.c.Transport = transport

	return client, nil
}

// Fetch sends ri to rawURL. A non-2xx response is drained, closed and
// returned as an *UnexpectedStatusError. When ri carries a signal, the
// request is cancelled as soon as it fires and the signal is released once
// the returned response body is closed.
func (c *Client) Fetch(ctx context.Context, rawURL string, ri RequestInit) (*http.Response, error) {
	release := func() {}
	if ri.Signal != nil {
		var cancel context.CancelFunc
		ctx, cancel = ri.Signal.Bind(ctx)
		release = func() {
			cancel()
			ri.Signal.Release()
		}
	}

	ctx, span := c.tracer.Start(ctx, "genai.fetch", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, ri.Method, rawURL, ri.Body)
	if err != nil {
		release()
		return nil, fmt.Errorf("instantiating request: %w", err)
	}

	if ri.Header != nil {
		req.Header = ri.Header.Clone()
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	span.SetAttributes(
		attribute.String("http.request.method", req.Method),
		attribute.String("url.path", req.URL.Path),
	)

	start := time.Now()
	c.logger.Debug("fetch started", "method", req.Method, "path", req.URL.Path)

	resp, err := c.c.Do(req)
	if err != nil {
		release()
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")

		if ctx.Err() != nil {
			return nil, &AbortError{URL: redact(rawURL), Err: context.Cause(ctx)}
		}

		return nil, fmt.Errorf("%w from %s: %w", ErrFetch, redact(rawURL), err)
	}

	c.logger.Debug("fetch completed", "method", req.Method, "path", req.URL.Path, "statusCode", resp.StatusCode, "since", time.Since(start).String())
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer release()
		span.SetStatus(codes.Error, resp.Status)

		return nil, c.statusError(rawURL, resp)
	}

	resp.Body = &releaseBody{ReadCloser: resp.Body, release: release}

	return resp, nil
}

// statusError builds an *UnexpectedStatusError and disposes of the body.
func (c *Client) statusError(rawURL string, resp *http.Response) error {
	defer c.closeBody(resp.Body)

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxErrBodySize))
	if err != nil {
		b = []byte("unable to read body")
	}

	statusErr := &UnexpectedStatusError{
		URL:        redact(rawURL),
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       string(b),
		Err:        ErrUnexpectedStatusCode,
	}

	var apiErr apiErrorEnvelope
	if json.Unmarshal(b, &apiErr) == nil && apiErr.Error != nil {
		statusErr.Message = apiErr.Error.Message
		statusErr.Details = apiErr.Error.Details
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		statusErr.Err = errors.Join(ErrUnexpectedStatusCode, ErrAuthFailure)
	}

	return statusErr
}

func (c *Client) closeBody(body io.ReadCloser) {
	if _, err := io.Copy(io.Discard, body); err != nil {
		c.logger.Error("failed to discard unused body", "error", err)
	}
	if err := body.Close(); err != nil {
		c.logger.Error("failed to close response body", "error", err)
	}
}

// DecodeJSON decodes resp's body into dest, then drains and closes it.
// A nil dest discards the body.
func DecodeJSON(resp *http.Response, dest any) error {
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if dest == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decoding body: %w", err)
	}

	return nil
}

// redact strips query values, which may carry page tokens, from logged URLs.
func redact(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "<invalid url>"
	}
	u.RawQuery = ""

	return u.String()
}

// releaseBody releases request resources once the caller is done with the body.
type releaseBody struct {
	io.ReadCloser
	once    sync.Once
	release func()
}

func (b *releaseBody) Close() error {
	err := b.ReadCloser.Close()
	b.once.Do(b.release)

	return err
}
