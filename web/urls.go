package web

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/ShoshinNikita/rthumb/pkg/misc"
)

// URLBuilder converts paths into urls that can be used by clients.
type URLBuilder struct {
	// publicURL is optional. Without it urls are relative to the server root.
	publicURL string
}

func NewURLBuilder(publicURL string) (*URLBuilder, error) {
	if publicURL == "" {
		return &URLBuilder{}, nil
	}

	u, err := url.Parse(publicURL)
	if err != nil {
		return nil, fmt.Errorf("invalid public url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("public url %q must be absolute", publicURL)
	}
	return &URLBuilder{
		publicURL: strings.TrimRight(u.String(), "/"),
	}, nil
}

// BuildURL escapes the path and joins it with the public url. Only the path of
// absolute urls is escaped, their origin is kept as is.
func (b *URLBuilder) BuildURL(path string) string {
	if origin, rest, ok := splitAbsoluteURL(path); ok {
		return origin + escapePath(rest)
	}
	return b.publicURL + escapePath(misc.EnsurePrefix(path, "/"))
}

// splitAbsoluteURL splits an absolute url ("https://host/path" or "//host/path") into
// the origin and the path. The path is not parsed, so it can contain any characters.
func splitAbsoluteURL(s string) (origin, path string, ok bool) {
	var start int
	switch {
	case strings.HasPrefix(s, "//"):
		start = len("//")
	default:
		i := strings.Index(s, "://")
		if i <= 0 {
			return "", "", false
		}
		start = i + len("://")
	}

	end := len(s)
	if i := strings.IndexByte(s[start:], '/'); i != -1 {
		end = start + i
	}
	if end == start {
		return "", "", false
	}

	origin = s[:end]
	if !strings.HasPrefix(origin, "//") {
		u, err := url.Parse(origin)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return "", "", false
		}
	}
	return origin, s[end:], true
}

func escapePath(path string) string {
	parts := strings.Split(path, "/")
	for i := range parts {
		parts[i] = url.PathEscape(parts[i])
	}
	return strings.Join(parts, "/")
}
