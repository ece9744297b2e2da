package catalog

import (
	"net/url"
	"path/filepath"
	"strings"
)

// Resolver turns the relative media paths stored in the catalog into
// fetchable locations. With a remote base every path segment is
// percent-encoded; with a local base the path is joined on the
// filesystem. The core never assumes where resources live.
type Resolver struct {
	base   string
	remote bool
}

// NewResolver creates a resolver for the given base, which is either
// an http(s) URL prefix or a local directory.
func NewResolver(base string) *Resolver {
	return &Resolver{
		base:   strings.TrimRight(base, "/"),
		remote: strings.HasPrefix(base, "http://") || strings.HasPrefix(base, "https://"),
	}
}

// Remote reports whether resolved locations are URLs.
func (r *Resolver) Remote() bool { return r.remote }

// Resolve maps a relative catalog path to a URL or local path.
// Absolute URLs pass through untouched.
func (r *Resolver) Resolve(relative string) string {
	if strings.HasPrefix(relative, "http://") || strings.HasPrefix(relative, "https://") {
		return relative
	}
	if !r.remote {
		return filepath.Join(r.base, filepath.FromSlash(relative))
	}
	u := r.base
	for _, seg := range strings.Split(strings.TrimLeft(relative, "/"), "/") {
		u += "/" + url.PathEscape(seg)
	}
	return u
}
