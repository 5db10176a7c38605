package config

import (
	"net/url"
	"strings"
)

// SiteConfig holds the overrides for a single host.
type SiteConfig struct {
	// Headers are extra HTTP headers sent with every request for this site,
	// e.g. an Authorization header for a protected staging sitemap.
	Headers map[string]string `yaml:"headers,omitempty"`

	// UserAgent overrides the global User-Agent.
	UserAgent string `yaml:"userAgent,omitempty"`

	// MaxEntries overrides the global entry cap. Zero keeps the global value.
	MaxEntries int `yaml:"maxEntries,omitempty"`

	// Include are glob patterns an entry path must match.
	Include []string `yaml:"include,omitempty"`

	// Exclude are glob patterns that drop matching entry paths.
	Exclude []string `yaml:"exclude,omitempty"`
}

// File represents the structure of the .sitemaps configuration file.
type File struct {
	// Sites maps host names (e.g. "www.example.com") to their overrides.
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults applies to all sites unless overridden per site.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns the configuration for target merged over the
// defaults. target may be a bare host or a URL; only its host is used for
// the lookup.
func (cf *File) GetSiteConfig(target string) SiteConfig {
	result := cf.Defaults
	if len(cf.Defaults.Headers) > 0 {
		result.Headers = make(map[string]string, len(cf.Defaults.Headers))
		for k, v := range cf.Defaults.Headers {
			result.Headers[k] = v
		}
	}

	siteConfig, ok := cf.Sites[SiteKey(target)]
	if !ok {
		return result
	}

	if siteConfig.UserAgent != "" {
		result.UserAgent = siteConfig.UserAgent
	}
	if siteConfig.MaxEntries != 0 {
		result.MaxEntries = siteConfig.MaxEntries
	}
	if len(siteConfig.Headers) > 0 {
		if result.Headers == nil {
			result.Headers = make(map[string]string)
		}
		for k, v := range siteConfig.Headers {
			result.Headers[k] = v
		}
	}
	if len(siteConfig.Include) > 0 {
		result.Include = siteConfig.Include
	}
	if len(siteConfig.Exclude) > 0 {
		result.Exclude = siteConfig.Exclude
	}
	return result
}

// SiteKey returns the lowercase host of target, which may be a bare host,
// a host with a path or a full URL.
func SiteKey(target string) string {
	s := strings.TrimSpace(target)
	if !strings.Contains(s, "://") {
		s = "http://" + s
	}
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return strings.ToLower(strings.TrimSpace(target))
	}
	return strings.ToLower(u.Hostname())
}
