// Package intercept implements the pattern-matched request/response
// transformer chain that wraps every dispatch. Entries run in registration
// order; an entry may rewrite the outgoing request, replace the incoming
// response, or short-circuit by never calling next.
package intercept

import (
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/lumodev/lumo/response"
)

// Next invokes the remainder of the chain, terminating in the actual
// dispatch call.
type Next func(req *http.Request) (*response.Response, error)

type Handler func(req *http.Request, next Next) (*response.Response, error)

type Entry struct {
	pattern string
	re      *regexp.Regexp
	fn      Handler
}

// Registry holds interceptor entries. A Registry attached to a scope is
// request-local; the process-wide fallback registry (used when no scope is
// active) is shared mutable state and registrations there are visible to
// all subsequent calls.
type Registry struct {
	mu      sync.Mutex
	entries []*Entry
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Use registers fn for URLs matching pattern and returns a handle for
// removal. Pattern semantics: exact path match; "*" matches a single
// top-level segment; "**" matches everything; a trailing "/**" matches any
// path sharing the prefix.
func (r *Registry) Use(pattern string, fn Handler) *Entry {
	e := &Entry{pattern: pattern, fn: fn}
	r.mu.Lock()
	r.entries = append(r.entries, e)
	r.mu.Unlock()
	return e
}

// UseRegexp registers fn for URLs whose full string matches re.
func (r *Registry) UseRegexp(re *regexp.Regexp, fn Handler) *Entry {
	e := &Entry{re: re, fn: fn}
	r.mu.Lock()
	r.entries = append(r.entries, e)
	r.mu.Unlock()
	return e
}

// Remove unregisters by identity. Removing an entry twice is a no-op.
func (r *Registry) Remove(target *Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.entries {
		if e == target {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			return
		}
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// ForURL returns the entries matching u, in registration order.
func (r *Registry) ForURL(u *url.URL) []*Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []*Entry
	for _, e := range r.entries {
		if e.matches(u) {
			matched = append(matched, e)
		}
	}
	return matched
}

func (e *Entry) matches(u *url.URL) bool {
	if e.re != nil {
		return e.re.MatchString(u.String())
	}
	return matchPattern(e.pattern, u.Path)
}

func matchPattern(pattern, path string) bool {
	if pattern == path {
		return true
	}
	if pattern == "**" {
		return true
	}
	p := strings.TrimPrefix(pattern, "/")
	target := strings.TrimPrefix(path, "/")
	ok, err := doublestar.Match(p, target)
	if err != nil {
		return false
	}
	return ok
}

// Compose folds entries (in order) around final: entry i receives a next
// that invokes entry i+1, terminating in final.
func Compose(entries []*Entry, final Next) Next {
	next := final
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		inner := next
		next = func(req *http.Request) (*response.Response, error) {
			return e.fn(req, inner)
		}
	}
	return next
}
