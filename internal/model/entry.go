package model

import (
	"encoding/json"
	"fmt"
	"net/url"
	"time"
)

// Entry is one <url> item of a listing document.
// Entries are values: the fields are unexported and only readable through
// accessors, so an Entry cannot change once the parser has built it.
type Entry struct {
	location        *url.URL
	lastModified    *time.Time
	changeFrequency ChangeFrequency
	priority        *float64
}

// NewEntry builds an Entry. lastModified and priority may be nil.
// The location, timestamp and priority are copied.
func NewEntry(location *url.URL, lastModified *time.Time, changeFrequency ChangeFrequency, priority *float64) Entry {
	return Entry{
		location:        cloneURL(location),
		lastModified:    cloneTime(lastModified),
		changeFrequency: changeFrequency,
		priority:        cloneFloat(priority),
	}
}

// Location returns a copy of the entry's <loc>.
func (e Entry) Location() *url.URL { return cloneURL(e.location) }

// Loc returns the entry's <loc> as a string.
func (e Entry) Loc() string {
	if e.location == nil {
		return ""
	}
	return e.location.String()
}

// LastModified returns the <lastmod> timestamp and whether it was present.
func (e Entry) LastModified() (time.Time, bool) {
	if e.lastModified == nil {
		return time.Time{}, false
	}
	return *e.lastModified, true
}

// ChangeFrequency returns the <changefreq> hint (ChangeFrequencyUnset if absent).
func (e Entry) ChangeFrequency() ChangeFrequency { return e.changeFrequency }

// Priority returns the <priority> value and whether it was present.
func (e Entry) Priority() (float64, bool) {
	if e.priority == nil {
		return 0, false
	}
	return *e.priority, true
}

// Equal reports whether e and other carry the same values in every field.
func (e Entry) Equal(other Entry) bool {
	return e.Loc() == other.Loc() &&
		equalTime(e.lastModified, other.lastModified) &&
		e.changeFrequency == other.changeFrequency &&
		equalFloat(e.priority, other.priority)
}

// String implements fmt.Stringer for log and test output.
func (e Entry) String() string {
	s := e.Loc()
	if t, ok := e.LastModified(); ok {
		s += " lastmod=" + t.Format(time.RFC3339)
	}
	if e.changeFrequency.IsSet() {
		s += " changefreq=" + e.changeFrequency.String()
	}
	if p, ok := e.Priority(); ok {
		s += fmt.Sprintf(" priority=%.1f", p)
	}
	return s
}

// entryJSON is the serialized form of Entry.
type entryJSON struct {
	Loc             string          `json:"loc"`
	LastModified    *time.Time      `json:"lastmod,omitempty"`
	ChangeFrequency ChangeFrequency `json:"changefreq,omitempty"`
	Priority        *float64        `json:"priority,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (e Entry) MarshalJSON() ([]byte, error) {
	return json.Marshal(entryJSON{
		Loc:             e.Loc(),
		LastModified:    e.lastModified,
		ChangeFrequency: e.changeFrequency,
		Priority:        e.priority,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var raw entryJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	loc, err := url.Parse(raw.Loc)
	if err != nil {
		return fmt.Errorf("invalid entry location %q: %w", raw.Loc, err)
	}
	*e = NewEntry(loc, raw.LastModified, raw.ChangeFrequency, raw.Priority)
	return nil
}

// SitemapReference is one <sitemap> item of an index document.
type SitemapReference struct {
	location     *url.URL
	lastModified *time.Time
}

// NewSitemapReference builds a SitemapReference. lastModified may be nil.
func NewSitemapReference(location *url.URL, lastModified *time.Time) SitemapReference {
	return SitemapReference{
		location:     cloneURL(location),
		lastModified: cloneTime(lastModified),
	}
}

// Location returns a copy of the referenced sitemap's <loc>.
func (r SitemapReference) Location() *url.URL { return cloneURL(r.location) }

// Loc returns the referenced sitemap's <loc> as a string.
func (r SitemapReference) Loc() string {
	if r.location == nil {
		return ""
	}
	return r.location.String()
}

// LastModified returns the <lastmod> timestamp and whether it was present.
func (r SitemapReference) LastModified() (time.Time, bool) {
	if r.lastModified == nil {
		return time.Time{}, false
	}
	return *r.lastModified, true
}

// Equal reports whether r and other carry the same values in every field.
func (r SitemapReference) Equal(other SitemapReference) bool {
	return r.Loc() == other.Loc() && equalTime(r.lastModified, other.lastModified)
}

// String implements fmt.Stringer.
func (r SitemapReference) String() string {
	if t, ok := r.LastModified(); ok {
		return r.Loc() + " lastmod=" + t.Format(time.RFC3339)
	}
	return r.Loc()
}

type sitemapReferenceJSON struct {
	Loc          string     `json:"loc"`
	LastModified *time.Time `json:"lastmod,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (r SitemapReference) MarshalJSON() ([]byte, error) {
	return json.Marshal(sitemapReferenceJSON{Loc: r.Loc(), LastModified: r.lastModified})
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *SitemapReference) UnmarshalJSON(data []byte) error {
	var raw sitemapReferenceJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	loc, err := url.Parse(raw.Loc)
	if err != nil {
		return fmt.Errorf("invalid sitemap location %q: %w", raw.Loc, err)
	}
	*r = NewSitemapReference(loc, raw.LastModified)
	return nil
}

func cloneURL(u *url.URL) *url.URL {
	if u == nil {
		return nil
	}
	c := *u
	if u.User != nil {
		user := *u.User
		c.User = &user
	}
	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	c := *f
	return &c
}

func equalTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

func equalFloat(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
