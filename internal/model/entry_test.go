package model

import (
	"encoding/json"
	"net/url"
	"testing"
	"time"
)

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("failed to parse %q: %v", raw, err)
	}
	return u
}

// TestEntryEqual tests structural equality of entries.
func TestEntryEqual(t *testing.T) {
	t.Parallel()

	lastmod := time.Date(2005, 1, 1, 0, 0, 0, 0, time.UTC)
	priority := 0.8

	t.Run("same fields are equal", func(t *testing.T) {
		t.Parallel()

		a := NewEntry(mustURL(t, "http://www.example.com/"), &lastmod, ChangeFrequencyMonthly, &priority)
		b := NewEntry(mustURL(t, "http://www.example.com/"), &lastmod, ChangeFrequencyMonthly, &priority)
		if !a.Equal(b) {
			t.Errorf("expected %v to equal %v", a, b)
		}
	})

	t.Run("same instant in another zone is equal", func(t *testing.T) {
		t.Parallel()

		other := lastmod.In(time.FixedZone("MST", -7*60*60))
		a := NewEntry(mustURL(t, "http://www.example.com/"), &lastmod, ChangeFrequencyUnset, nil)
		b := NewEntry(mustURL(t, "http://www.example.com/"), &other, ChangeFrequencyUnset, nil)
		if !a.Equal(b) {
			t.Error("expected entries with the same instant to be equal")
		}
	})

	t.Run("missing and present priority differ", func(t *testing.T) {
		t.Parallel()

		a := NewEntry(mustURL(t, "http://www.example.com/"), nil, ChangeFrequencyUnset, nil)
		b := NewEntry(mustURL(t, "http://www.example.com/"), nil, ChangeFrequencyUnset, &priority)
		if a.Equal(b) {
			t.Error("expected entries to differ")
		}
	})

	t.Run("different location differs", func(t *testing.T) {
		t.Parallel()

		a := NewEntry(mustURL(t, "http://www.example.com/a"), nil, ChangeFrequencyUnset, nil)
		b := NewEntry(mustURL(t, "http://www.example.com/b"), nil, ChangeFrequencyUnset, nil)
		if a.Equal(b) {
			t.Error("expected entries to differ")
		}
	})
}

// TestEntryIsolation tests that an Entry does not alias its inputs.
func TestEntryIsolation(t *testing.T) {
	t.Parallel()

	loc := mustURL(t, "http://www.example.com/page")
	priority := 0.5
	entry := NewEntry(loc, nil, ChangeFrequencyWeekly, &priority)

	loc.Path = "/changed"
	priority = 1.0

	if entry.Loc() != "http://www.example.com/page" {
		t.Errorf("location changed through caller's pointer: %s", entry.Loc())
	}
	if p, _ := entry.Priority(); p != 0.5 {
		t.Errorf("priority changed through caller's pointer: %v", p)
	}

	returned := entry.Location()
	returned.Host = "evil.example.com"
	if entry.Loc() != "http://www.example.com/page" {
		t.Errorf("location changed through accessor: %s", entry.Loc())
	}
}

// TestEntryAccessors tests optional field accessors.
func TestEntryAccessors(t *testing.T) {
	t.Parallel()

	entry := NewEntry(mustURL(t, "http://www.example.com/"), nil, ChangeFrequencyUnset, nil)

	if _, ok := entry.LastModified(); ok {
		t.Error("expected no lastmod")
	}
	if _, ok := entry.Priority(); ok {
		t.Error("expected no priority")
	}
	if entry.ChangeFrequency().IsSet() {
		t.Error("expected unset change frequency")
	}
}

// TestEntryJSON tests JSON encoding used by reports and the database.
func TestEntryJSON(t *testing.T) {
	t.Parallel()

	lastmod := time.Date(2004, 12, 23, 18, 0, 15, 0, time.UTC)
	priority := 0.3
	entry := NewEntry(mustURL(t, "http://www.example.com/c?item=74&desc="), &lastmod, ChangeFrequencyWeekly, &priority)

	data, err := json.Marshal(entry)
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}

	want := `{"loc":"http://www.example.com/c?item=74&desc=","lastmod":"2004-12-23T18:00:15Z","changefreq":"weekly","priority":0.3}`
	if string(data) != want {
		t.Errorf("got %s, want %s", data, want)
	}

	var decoded Entry
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if !decoded.Equal(entry) {
		t.Errorf("decoded %v, want %v", decoded, entry)
	}

	bare, err := json.Marshal(NewEntry(mustURL(t, "http://www.example.com/"), nil, ChangeFrequencyUnset, nil))
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}
	if string(bare) != `{"loc":"http://www.example.com/"}` {
		t.Errorf("expected optional fields to be omitted, got %s", bare)
	}
}

// TestSitemapReferenceEqual tests structural equality of references.
func TestSitemapReferenceEqual(t *testing.T) {
	t.Parallel()

	lastmod := time.Date(2004, 10, 1, 18, 23, 17, 0, time.UTC)
	a := NewSitemapReference(mustURL(t, "http://www.example.com/sitemap1.xml.gz"), &lastmod)
	b := NewSitemapReference(mustURL(t, "http://www.example.com/sitemap1.xml.gz"), &lastmod)
	c := NewSitemapReference(mustURL(t, "http://www.example.com/sitemap1.xml.gz"), nil)

	if !a.Equal(b) {
		t.Error("expected equal references")
	}
	if a.Equal(c) {
		t.Error("expected references with different lastmod to differ")
	}
}
