package fetcher

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/nao1215/sitemaps/internal/metrics"
)

const (
	// MaxAttempts is the number of redirects HTTPFetcher follows before it
	// gives up with a *MaxRedirectError.
	MaxAttempts = 10

	// DefaultMaxBodySize is the largest body, compressed or inflated, that
	// HTTPFetcher reads. 50MiB is the protocol limit for one sitemap file.
	DefaultMaxBodySize int64 = 50 * 1024 * 1024

	// DefaultUserAgent is sent when no other User-Agent is configured.
	DefaultUserAgent = "sitemaps/1.0 (+https://github.com/nao1215/sitemaps)"
)

// Fetcher retrieves the body of the document at uri.
// Implementations must be safe to call repeatedly, and safe for concurrent
// use if they are shared between concurrent traversals.
type Fetcher interface {
	Fetch(ctx context.Context, uri string) ([]byte, error)
}

// FetchFunc adapts an ordinary function to the Fetcher interface.
type FetchFunc func(ctx context.Context, uri string) ([]byte, error)

// Fetch calls f(ctx, uri).
func (f FetchFunc) Fetch(ctx context.Context, uri string) ([]byte, error) {
	return f(ctx, uri)
}

// HTTPFetcher is the default Fetcher.
type HTTPFetcher struct {
	// client performs single requests without following redirects.
	client HTTPDoer

	// userAgent is sent with every request.
	userAgent string

	// headers are extra request headers (e.g. Authorization).
	headers map[string]string

	// maxBodySize bounds the raw and the inflated body.
	maxBodySize int64

	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option configures an HTTPFetcher.
type Option func(*HTTPFetcher)

// WithHTTPClient sets the client used for single requests.
// The client must not follow redirects itself.
func WithHTTPClient(client HTTPDoer) Option {
	return func(f *HTTPFetcher) {
		if client != nil {
			f.client = client
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *HTTPFetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithHeaders adds request headers sent with every request.
func WithHeaders(headers map[string]string) Option {
	return func(f *HTTPFetcher) {
		for k, v := range headers {
			f.headers[k] = v
		}
	}
}

// WithMaxBodySize sets the body size limit. Values <= 0 keep the default.
func WithMaxBodySize(size int64) Option {
	return func(f *HTTPFetcher) {
		if size > 0 {
			f.maxBodySize = size
		}
	}
}

// WithLogger sets the logger for request tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(f *HTTPFetcher) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithMetrics records fetch outcomes in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(f *HTTPFetcher) {
		f.metrics = m
	}
}

// NewHTTPFetcher creates an HTTPFetcher. Without WithHTTPClient it uses a
// non-redirecting client with no timeout and direct connections.
func NewHTTPFetcher(opts ...Option) *HTTPFetcher {
	f := &HTTPFetcher{
		userAgent:   DefaultUserAgent,
		headers:     make(map[string]string),
		maxBodySize: DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(f)
	}

	if f.client == nil {
		// Cannot fail without a proxy address.
		f.client, _ = NewHTTPClient(ClientOptions{}) //nolint:errcheck
	}
	if f.logger == nil {
		f.logger = slog.Default()
	}
	return f
}

// Fetch retrieves uri, following redirects and inflating ".gz" bodies that
// arrive without a Content-Encoding header.
func (f *HTTPFetcher) Fetch(ctx context.Context, uri string) ([]byte, error) {
	current, err := NormalizeURI(uri)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	body, outcome, err := f.follow(ctx, current)
	if f.metrics != nil {
		f.metrics.FetchRequests.WithLabelValues(outcome).Inc()
		f.metrics.FetchDuration.Observe(time.Since(start).Seconds())
	}
	return body, err
}

// follow runs the bounded redirect loop. It returns the metrics outcome label
// alongside the result.
func (f *HTTPFetcher) follow(ctx context.Context, current *url.URL) ([]byte, string, error) {
	for attempts := 0; attempts < MaxAttempts; {
		resp, err := f.get(ctx, current)
		if err != nil {
			return nil, metrics.OutcomeTransportFail, err
		}

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			body, err := f.readBody(resp, current)
			if err != nil {
				return nil, metrics.OutcomeTransportFail, err
			}
			return body, metrics.OutcomeSuccess, nil

		case resp.StatusCode >= 300 && resp.StatusCode < 400:
			location := resp.Header.Get("Location")
			drain(resp)

			next, err := resolveLocation(current, location)
			if err != nil {
				f.logger.Debug("redirect without usable location",
					"url", current.String(),
					"status", resp.StatusCode,
					"location", location,
				)
				return nil, metrics.OutcomeStatusError, &FetchError{URI: current.String()}
			}

			f.logger.Debug("following redirect",
				"from", current.String(),
				"to", next.String(),
				"status", resp.StatusCode,
				"attempt", attempts+1,
			)
			if f.metrics != nil {
				f.metrics.Redirects.Inc()
			}
			current = next
			attempts++

		default:
			drain(resp)
			return nil, metrics.OutcomeStatusError, &FetchError{URI: current.String(), StatusCode: resp.StatusCode}
		}
	}

	return nil, metrics.OutcomeTooManyHops, &MaxRedirectError{URI: current.String(), Attempts: MaxAttempts}
}

// get issues one GET request.
func (f *HTTPFetcher) get(ctx context.Context, u *url.URL) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidURI, err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/xml,text/xml,text/plain;q=0.9,*/*;q=0.8")
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}

	f.logger.Debug("fetching", "url", u.String())
	return f.client.Do(req)
}

// readBody reads a 2xx body and inflates it when the path says gzip but the
// server did not declare an encoding.
func (f *HTTPFetcher) readBody(resp *http.Response, u *url.URL) ([]byte, error) {
	defer resp.Body.Close()

	body, err := f.readLimited(resp.Body, u)
	if err != nil {
		return nil, fmt.Errorf("failed to read body of %s: %w", u, err)
	}

	// net/http strips Content-Encoding after decoding a gzip response it
	// negotiated itself; Uncompressed covers that case.
	if resp.Header.Get("Content-Encoding") != "" || resp.Uncompressed || !hasGzipSuffix(u) {
		return body, nil
	}

	zr, err := gzip.NewReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to inflate %s: %w", u, err)
	}
	defer zr.Close()

	inflated, err := f.readLimited(zr, u)
	if err != nil {
		return nil, fmt.Errorf("failed to inflate %s: %w", u, err)
	}

	f.logger.Debug("inflated gzip body",
		"url", u.String(),
		"compressed", len(body),
		"inflated", len(inflated),
	)
	if f.metrics != nil {
		f.metrics.Inflated.Inc()
	}
	return inflated, nil
}

// readLimited reads r to the end and fails with ErrBodyTooLarge when it
// holds more than maxBodySize bytes.
func (f *HTTPFetcher) readLimited(r io.Reader, u *url.URL) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, f.maxBodySize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > f.maxBodySize {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrBodyTooLarge, u, f.maxBodySize)
	}
	return data, nil
}

// resolveLocation resolves a Location header value against the URI that
// returned it.
func resolveLocation(current *url.URL, location string) (*url.URL, error) {
	if location == "" {
		return nil, fmt.Errorf("%w: empty location", ErrInvalidURI)
	}
	ref, err := url.Parse(location)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidURI, err)
	}
	if ref.IsAbs() {
		return ref, nil
	}
	return current.ResolveReference(ref), nil
}

// drain discards what is left of a body so the connection can be reused.
func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024)) //nolint:errcheck
	_ = resp.Body.Close()
}
