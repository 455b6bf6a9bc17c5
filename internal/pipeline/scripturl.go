package pipeline

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// ResolveScriptURL turns a script reference into something a page loaded
// from a temp file can fetch. URLs pass through; local paths become
// absolute file:// URLs.
func ResolveScriptURL(ref string) (string, error) {
	if ref == "" || isURL(ref) {
		return ref, nil
	}

	abs, err := filepath.Abs(ref)
	if err != nil {
		return "", fmt.Errorf("resolving script path %q: %w", ref, err)
	}
	return pathToFileURL(abs), nil
}

// isURL reports whether ref already names a fetchable location.
func isURL(ref string) bool {
	return strings.HasPrefix(ref, "http://") ||
		strings.HasPrefix(ref, "https://") ||
		strings.HasPrefix(ref, "file://") ||
		strings.HasPrefix(ref, "data:") ||
		strings.HasPrefix(ref, "//")
}

// pathToFileURL converts an absolute path to a file:// URL.
// Handles both Unix and Windows paths correctly.
func pathToFileURL(absPath string) string {
	// filepath.ToSlash handles Windows backslashes
	p := filepath.ToSlash(absPath)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	u := url.URL{
		Scheme: "file",
		Path:   p,
	}
	return u.String()
}
