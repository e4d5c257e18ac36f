package router

import (
	"strings"

	"github.com/lumodev/lumo/chain"
)

// Match is the result of a successful lookup. Middleware is ordered
// root-to-leaf (outermost first). Constructed fresh per lookup.
type Match struct {
	Handler    chain.Handler
	Middleware []chain.Middleware
	Params     map[string]string
	Path       string
}

// StripTrailingSlash normalizes a request path: the trailing slash is
// removed except at the root.
func StripTrailingSlash(p string) string {
	if len(p) > 1 && p[len(p)-1] == '/' {
		return p[:len(p)-1]
	}
	return p
}

// ParseSegments splits a path into its non-empty segments.
func ParseSegments(p string) []string {
	var segs []string
	for _, s := range strings.Split(p, "/") {
		if s != "" {
			segs = append(segs, s)
		}
	}
	return segs
}

// Match finds the best handler for path and method. Priority at every
// level: static child, then dynamic child, then transparent route groups
// (no segment consumed), then catch-all. A miss returns nil; not-found is
// a normal outcome, not an error.
func (n *Node) Match(path, method string) *Match {
	path = StripTrailingSlash(path)
	segs := ParseSegments(path)
	params := make(map[string]string)

	m := matchNode(n, segs, 0, method, params)
	if m == nil {
		return nil
	}
	m.Path = path
	return m
}

// matchNode returns a full downstream match from node at segment index
// idx, or nil. Each level prepends its own middleware to the downstream
// stack, preserving ancestor-first ordering.
func matchNode(node *Node, segs []string, idx int, method string, params map[string]string) *Match {
	if idx == len(segs) {
		if h := node.Handler(method); h != nil {
			return &Match{
				Handler:    h,
				Middleware: append([]chain.Middleware{}, node.middleware...),
				Params:     copyParams(params),
			}
		}
		// A group's own index route can still satisfy this position.
		for _, child := range node.orderedChildren() {
			if !child.IsGroup {
				continue
			}
			if m := matchNode(child, segs, idx, method, params); m != nil {
				return prependMiddleware(node, m)
			}
		}
		return nil
	}

	seg := segs[idx]

	// (1) Exact static child.
	if child := node.children[seg]; child != nil && !child.IsDynamic && !child.IsGroup {
		if m := matchNode(child, segs, idx+1, method, params); m != nil {
			return prependMiddleware(node, m)
		}
	}

	// (2) Single dynamic-parameter children, with backtracking.
	for _, child := range node.orderedChildren() {
		if !child.IsDynamic || child.IsCatchAll {
			continue
		}
		prev, had := params[child.ParamName]
		params[child.ParamName] = seg
		m := matchNode(child, segs, idx+1, method, params)
		if had {
			params[child.ParamName] = prev
		} else {
			delete(params, child.ParamName)
		}
		if m != nil {
			return prependMiddleware(node, m)
		}
	}

	// (3) Transparent route groups, without consuming a segment.
	for _, child := range node.orderedChildren() {
		if !child.IsGroup {
			continue
		}
		if m := matchNode(child, segs, idx, method, params); m != nil {
			return prependMiddleware(node, m)
		}
	}

	// (4) Catch-all: needs at least one remaining segment, captures the
	// rest as one joined value, and must itself own a handler for the
	// method. No descent past a catch-all.
	for _, child := range node.orderedChildren() {
		if !child.IsCatchAll {
			continue
		}
		h := child.Handler(method)
		if h == nil {
			continue
		}
		p := copyParams(params)
		p[child.ParamName] = strings.Join(segs[idx:], "/")
		m := &Match{
			Handler:    h,
			Middleware: append([]chain.Middleware{}, child.middleware...),
			Params:     p,
		}
		return prependMiddleware(node, m)
	}

	return nil
}

func prependMiddleware(node *Node, m *Match) *Match {
	if len(node.middleware) > 0 {
		stack := make([]chain.Middleware, 0, len(node.middleware)+len(m.Middleware))
		stack = append(stack, node.middleware...)
		stack = append(stack, m.Middleware...)
		m.Middleware = stack
	}
	return m
}

func copyParams(params map[string]string) map[string]string {
	out := make(map[string]string, len(params))
	for k, v := range params {
		out[k] = v
	}
	return out
}
