package sitemap

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/net/html/charset"

	"github.com/nao1215/sitemaps/internal/model"
)

// Kind identifies the root element of a document.
type Kind int

const (
	// KindListing is a <urlset> document of page entries.
	KindListing Kind = iota + 1

	// KindIndex is a <sitemapindex> document of child sitemap references.
	KindIndex
)

// String returns the root element name.
func (k Kind) String() string {
	switch k {
	case KindListing:
		return "urlset"
	case KindIndex:
		return "sitemapindex"
	default:
		return "unknown"
	}
}

// Document is the parsed form of one sitemap file.
// Entries is populated only for KindListing, Sitemaps only for KindIndex.
type Document struct {
	Kind     Kind
	Entries  []model.Entry
	Sitemaps []model.SitemapReference
}

// urlSet and sitemapIndex mirror the protocol schema. Tags carry no
// namespace so documents with or without xmlns decode the same way.
type urlSet struct {
	URLs []urlItem `xml:"url"`
}

type urlItem struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

type sitemapIndex struct {
	Sitemaps []sitemapItem `xml:"sitemap"`
}

type sitemapItem struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod"`
}

// Parse decodes data into a Document.
func Parse(data []byte) (*Document, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = charset.NewReaderLabel

	root, err := rootElement(dec)
	if err != nil {
		return nil, err
	}

	switch root.Name.Local {
	case "urlset":
		var set urlSet
		if err := dec.DecodeElement(&set, &root); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedDocument, err)
		}
		doc := &Document{Kind: KindListing, Entries: make([]model.Entry, 0, len(set.URLs))}
		for _, item := range set.URLs {
			if entry, ok := parseEntry(item); ok {
				doc.Entries = append(doc.Entries, entry)
			}
		}
		return doc, nil

	case "sitemapindex":
		var index sitemapIndex
		if err := dec.DecodeElement(&index, &root); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedDocument, err)
		}
		doc := &Document{Kind: KindIndex, Sitemaps: make([]model.SitemapReference, 0, len(index.Sitemaps))}
		for _, item := range index.Sitemaps {
			if ref, ok := parseReference(item); ok {
				doc.Sitemaps = append(doc.Sitemaps, ref)
			}
		}
		return doc, nil

	default:
		return nil, fmt.Errorf("%w: <%s>", ErrUnknownRoot, root.Name.Local)
	}
}

// rootElement advances dec to the first start element, skipping the prolog.
func rootElement(dec *xml.Decoder) (xml.StartElement, error) {
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return xml.StartElement{}, fmt.Errorf("%w: no root element", ErrMalformedDocument)
		}
		if err != nil {
			return xml.StartElement{}, fmt.Errorf("%w: %w", ErrMalformedDocument, err)
		}
		if start, ok := tok.(xml.StartElement); ok {
			return start, nil
		}
	}
}

// parseEntry converts one <url> item. ok is false when the location is
// unusable; the other fields are dropped individually.
func parseEntry(item urlItem) (model.Entry, bool) {
	loc, ok := parseLocation(item.Loc)
	if !ok {
		return model.Entry{}, false
	}

	freq, _ := model.ParseChangeFrequency(item.ChangeFreq)
	return model.NewEntry(loc, parseTime(item.LastMod), freq, parsePriority(item.Priority)), true
}

// parseReference converts one <sitemap> item.
func parseReference(item sitemapItem) (model.SitemapReference, bool) {
	loc, ok := parseLocation(item.Loc)
	if !ok {
		return model.SitemapReference{}, false
	}
	return model.NewSitemapReference(loc, parseTime(item.LastMod)), true
}

// parseLocation accepts absolute http(s) URLs with a host and no embedded
// whitespace.
func parseLocation(s string) (*url.URL, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.IndexFunc(s, unicode.IsSpace) >= 0 {
		return nil, false
	}

	u, err := url.Parse(s)
	if err != nil {
		return nil, false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, false
	}
	if u.Host == "" {
		return nil, false
	}
	return u, true
}

// parsePriority returns nil for missing, non-numeric or out-of-range values.
func parsePriority(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	p, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(p) || p < 0 || p > 1 {
		return nil
	}
	return &p
}

// w3cLayouts are the W3C datetime profiles allowed in <lastmod>, longest
// first. time.Parse accepts fractional seconds after the seconds field.
var w3cLayouts = []string{
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
	"2006-01",
	"2006",
}

// parseTime returns nil when s matches none of the W3C datetime profiles.
// Zone-less values are UTC.
func parseTime(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range w3cLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
