package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/nao1215/sitemaps/internal/fetcher"
	"github.com/nao1215/sitemaps/internal/metrics"
	"github.com/nao1215/sitemaps/internal/model"
	"github.com/nao1215/sitemaps/internal/sitemap"
)

// Filter decides whether an entry is kept. Rejected entries do not count
// toward the entry cap.
type Filter func(model.Entry) bool

// acceptAll is the default Filter.
func acceptAll(model.Entry) bool { return true }

// Traverser resolves a sitemap tree into a flat, bounded list of entries.
// A Traverser holds only configuration, so one value may serve concurrent
// Traverse and Discover calls as long as its Fetcher is safe for concurrent
// use.
type Traverser struct {
	// fetcher retrieves raw document bodies.
	fetcher fetcher.Fetcher

	// maxEntries caps Result.Entries. 0 means no cap.
	maxEntries int

	// filter selects the entries that are kept.
	filter Filter

	logger  *slog.Logger
	metrics *metrics.Metrics
}

// TraverserOption configures a Traverser.
type TraverserOption func(*Traverser)

// WithMaxEntries caps the number of entries a traversal returns.
// n <= 0 removes the cap.
func WithMaxEntries(n int) TraverserOption {
	return func(t *Traverser) {
		if n < 0 {
			n = 0
		}
		t.maxEntries = n
	}
}

// WithFetcher replaces the default HTTPFetcher.
func WithFetcher(f fetcher.Fetcher) TraverserOption {
	return func(t *Traverser) {
		if f != nil {
			t.fetcher = f
		}
	}
}

// WithFilter sets the entry filter. nil keeps every entry.
func WithFilter(filter Filter) TraverserOption {
	return func(t *Traverser) {
		if filter != nil {
			t.filter = filter
		}
	}
}

// WithLogger sets the logger for traversal progress.
func WithLogger(logger *slog.Logger) TraverserOption {
	return func(t *Traverser) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithMetrics records parsed documents and accepted entries in m.
func WithMetrics(m *metrics.Metrics) TraverserOption {
	return func(t *Traverser) {
		t.metrics = m
	}
}

// NewTraverser creates a Traverser. Without options it fetches with a
// default HTTPFetcher, keeps every entry and has no cap.
func NewTraverser(opts ...TraverserOption) *Traverser {
	t := &Traverser{
		filter: acceptAll,
	}
	for _, opt := range opts {
		opt(t)
	}

	if t.logger == nil {
		t.logger = slog.Default()
	}
	if t.fetcher == nil {
		t.fetcher = fetcher.NewHTTPFetcher(fetcher.WithLogger(t.logger), fetcher.WithMetrics(t.metrics))
	}
	return t
}

// Traverse fetches the document at root and, when it is an index, every
// document below it, depth-first and in document order.
//
// The result's Sitemaps holds the direct children of an index root and
// nothing deeper. Entries holds the accepted entries, stopping at the cap;
// once the cap is reached the remaining documents are not fetched.
// Any fetch or parse error aborts the traversal.
func (t *Traverser) Traverse(ctx context.Context, root string) (*model.Result, error) {
	w := &walk{
		Traverser: t,
		result:    model.NewResult(),
		ancestors: make(map[string]bool),
	}
	if err := w.visit(ctx, root, true); err != nil {
		return nil, err
	}

	t.logger.Debug("traversal finished",
		"root", root,
		"entries", len(w.result.Entries),
		"sitemaps", len(w.result.Sitemaps),
	)
	return w.result, nil
}

// walk is the state of one Traverse call.
type walk struct {
	*Traverser

	result *model.Result

	// ancestors holds the normalized URLs of the documents on the current
	// recursion path. A reference to one of them is a cycle.
	ancestors map[string]bool
}

// full reports whether the cap has been reached.
func (w *walk) full() bool {
	return w.maxEntries > 0 && len(w.result.Entries) >= w.maxEntries
}

// visit fetches and parses one document and merges it into the result.
func (w *walk) visit(ctx context.Context, uri string, isRoot bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := normalizeURL(uri)
	if w.ancestors[key] {
		w.logger.Debug("skipping sitemap that references itself", "url", uri)
		return nil
	}
	w.ancestors[key] = true
	defer delete(w.ancestors, key)

	body, err := w.fetcher.Fetch(ctx, uri)
	if err != nil {
		return fmt.Errorf("failed to fetch sitemap %s: %w", uri, err)
	}

	doc, err := sitemap.Parse(body)
	if err != nil {
		return fmt.Errorf("failed to parse sitemap %s: %w", uri, err)
	}
	if w.metrics != nil {
		w.metrics.Documents.WithLabelValues(doc.Kind.String()).Inc()
	}

	w.logger.Debug("parsed sitemap",
		"url", uri,
		"kind", doc.Kind.String(),
		"entries", len(doc.Entries),
		"sitemaps", len(doc.Sitemaps),
	)

	switch doc.Kind {
	case sitemap.KindListing:
		w.collect(doc.Entries)
		return nil

	case sitemap.KindIndex:
		if isRoot {
			w.result.Sitemaps = append(w.result.Sitemaps, doc.Sitemaps...)
		}
		for i, ref := range doc.Sitemaps {
			if w.full() {
				w.logger.Info("entry limit reached, skipping remaining sitemaps",
					"index", uri,
					"skipped", len(doc.Sitemaps)-i,
					"limit", w.maxEntries,
				)
				return nil
			}
			if err := w.visit(ctx, ref.Loc(), false); err != nil {
				return err
			}
		}
		return nil

	default:
		return fmt.Errorf("unexpected sitemap kind %v for %s", doc.Kind, uri)
	}
}

// collect appends accepted entries until the cap is reached.
func (w *walk) collect(entries []model.Entry) {
	for _, e := range entries {
		if w.full() {
			return
		}
		if !w.filter(e) {
			continue
		}
		w.result.Entries = append(w.result.Entries, e)
		if w.metrics != nil {
			w.metrics.Entries.Inc()
		}
	}
}

// normalizeURL builds the cycle-detection key for a document URL.
// Scheme and host are case-insensitive and the fragment never reaches the
// server.
func normalizeURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return raw
	}

	u.Fragment = ""
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	if u.Path == "" {
		u.Path = "/"
	}
	return u.String()
}
