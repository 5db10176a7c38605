package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ChangeFrequency is the <changefreq> hint of a sitemap entry.
// The zero value means the entry did not carry a (valid) hint.
type ChangeFrequency int

const (
	// ChangeFrequencyUnset indicates the entry has no change frequency.
	ChangeFrequencyUnset ChangeFrequency = iota

	// ChangeFrequencyAlways is used for documents that change on every access.
	ChangeFrequencyAlways

	// ChangeFrequencyHourly indicates hourly changes.
	ChangeFrequencyHourly

	// ChangeFrequencyDaily indicates daily changes.
	ChangeFrequencyDaily

	// ChangeFrequencyWeekly indicates weekly changes.
	ChangeFrequencyWeekly

	// ChangeFrequencyMonthly indicates monthly changes.
	ChangeFrequencyMonthly

	// ChangeFrequencyYearly indicates yearly changes.
	ChangeFrequencyYearly

	// ChangeFrequencyNever is used for archived URLs.
	ChangeFrequencyNever
)

// ChangeFrequencies lists every valid (set) change frequency in protocol order.
var ChangeFrequencies = []ChangeFrequency{
	ChangeFrequencyAlways,
	ChangeFrequencyHourly,
	ChangeFrequencyDaily,
	ChangeFrequencyWeekly,
	ChangeFrequencyMonthly,
	ChangeFrequencyYearly,
	ChangeFrequencyNever,
}

// String returns the protocol keyword, or an empty string when unset.
func (c ChangeFrequency) String() string {
	switch c {
	case ChangeFrequencyAlways:
		return "always"
	case ChangeFrequencyHourly:
		return "hourly"
	case ChangeFrequencyDaily:
		return "daily"
	case ChangeFrequencyWeekly:
		return "weekly"
	case ChangeFrequencyMonthly:
		return "monthly"
	case ChangeFrequencyYearly:
		return "yearly"
	case ChangeFrequencyNever:
		return "never"
	default:
		return ""
	}
}

// IsSet reports whether c holds one of the protocol keywords.
func (c ChangeFrequency) IsSet() bool {
	return c >= ChangeFrequencyAlways && c <= ChangeFrequencyNever
}

// ParseChangeFrequency converts a <changefreq> text into a ChangeFrequency.
// Matching ignores case and surrounding whitespace. The boolean is false
// for unknown keywords.
func ParseChangeFrequency(s string) (ChangeFrequency, bool) {
	keyword := strings.ToLower(strings.TrimSpace(s))
	for _, c := range ChangeFrequencies {
		if c.String() == keyword {
			return c, true
		}
	}
	return ChangeFrequencyUnset, false
}

// MarshalJSON encodes the frequency as its keyword, or null when unset.
func (c ChangeFrequency) MarshalJSON() ([]byte, error) {
	if !c.IsSet() {
		return []byte("null"), nil
	}
	return json.Marshal(c.String())
}

// UnmarshalJSON decodes a keyword or null.
func (c *ChangeFrequency) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*c = ChangeFrequencyUnset
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, ok := ParseChangeFrequency(s)
	if !ok {
		return fmt.Errorf("unknown change frequency %q", s)
	}
	*c = parsed
	return nil
}
