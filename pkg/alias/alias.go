// Package alias resolves path aliases like "@uploads/images" into real paths or URLs.
package alias

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

var ErrUnknownAlias = errors.New("unknown alias")

// maxDepth limits the number of nested aliases. It also protects from cycles.
const maxDepth = 10

// Resolver replaces alias prefixes with their values. An alias is a path segment
// prefix that starts with '@', for example, "@frontend/web". Values can contain
// other aliases.
//
// Resolver is immutable and safe for concurrent use.
type Resolver struct {
	aliases map[string]string
	// names are sorted by length in descending order, so the longest alias wins.
	names []string
}

func New(aliases map[string]string) (*Resolver, error) {
	for name := range aliases {
		if !strings.HasPrefix(name, "@") {
			return nil, fmt.Errorf("alias %q must start with '@'", name)
		}
		if name == "@" || strings.HasSuffix(name, "/") {
			return nil, fmt.Errorf("invalid alias %q", name)
		}
	}

	names := slices.Collect(maps.Keys(aliases))
	slices.SortFunc(names, func(a, b string) int {
		if len(a) != len(b) {
			return len(b) - len(a)
		}
		return strings.Compare(a, b)
	})

	return &Resolver{
		aliases: maps.Clone(aliases),
		names:   names,
	}, nil
}

// Resolve returns the path with the alias replaced by its value. Paths that don't
// start with '@' are returned as is.
func (r *Resolver) Resolve(path string) (string, error) {
	original := path
	for range maxDepth {
		if !strings.HasPrefix(path, "@") {
			return path, nil
		}

		name, ok := r.match(path)
		if !ok {
			return "", fmt.Errorf("%w: %q", ErrUnknownAlias, original)
		}
		path = r.aliases[name] + path[len(name):]
	}
	return "", fmt.Errorf("couldn't resolve %q: too many nested aliases", original)
}

// match returns the longest alias that matches whole path segments.
func (r *Resolver) match(path string) (string, bool) {
	for _, name := range r.names {
		if path == name || strings.HasPrefix(path, name+"/") {
			return name, true
		}
	}
	return "", false
}
