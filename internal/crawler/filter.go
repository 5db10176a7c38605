package crawler

import (
	"path/filepath"
	"strings"

	"github.com/nao1215/sitemaps/internal/model"
)

// PatternFilter builds a Filter from glob patterns over the entry's URL path.
//
// An entry is rejected when its path matches any exclude pattern. When
// include patterns are given, the path must also match at least one of them.
// With no patterns at all every entry is kept.
func PatternFilter(include, exclude []string) Filter {
	if len(include) == 0 && len(exclude) == 0 {
		return acceptAll
	}

	return func(e model.Entry) bool {
		path := "/"
		if u := e.Location(); u != nil && u.Path != "" {
			path = u.Path
		}

		for _, pattern := range exclude {
			if matchPattern(pattern, path) {
				return false
			}
		}

		if len(include) == 0 {
			return true
		}
		for _, pattern := range include {
			if matchPattern(pattern, path) {
				return true
			}
		}
		return false
	}
}

// matchPattern checks if a path matches a glob pattern.
// Patterns can use:
//   - * to match any sequence of non-separator characters
//   - ? to match any single character
//   - a trailing /* to match everything below a prefix
//
// Examples:
//   - "/blog/*" matches "/blog/post", "/blog/2024/post"
//   - "*.pdf" matches "/docs/file.pdf"
//   - "/api/v?" matches "/api/v1", "/api/v2"
func matchPattern(pattern, path string) bool {
	if prefix, ok := strings.CutSuffix(pattern, "/*"); ok {
		if strings.HasPrefix(path, prefix+"/") || path == prefix {
			return true
		}
	}

	if ext, ok := strings.CutPrefix(pattern, "*"); ok && strings.HasPrefix(ext, ".") {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}

	matched, err := filepath.Match(pattern, path)
	if err != nil {
		return false
	}
	if matched {
		return true
	}

	// Segment-less patterns like "index*" also match the last path element.
	if strings.Contains(pattern, "*") && !strings.Contains(pattern, "/") {
		matched, err := filepath.Match(pattern, filepath.Base(path))
		if err == nil && matched {
			return true
		}
	}

	return false
}
