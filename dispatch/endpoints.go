package dispatch

import (
	"context"
	"sort"

	"github.com/lumodev/lumo/response"
)

// Endpoint names a callable API surface up front: a method and a target
// resolved like any string target. Endpoint sets are declared explicitly at
// configuration time, so the full call surface of an app is enumerable.
type Endpoint struct {
	Method string
	Target string
}

// CallFunc invokes one bound endpoint.
type CallFunc func(ctx context.Context, opts *CallOptions) (*response.Response, error)

// Endpoints is a bound name-to-call map.
type Endpoints map[string]CallFunc

// BindEndpoints builds the call map once from defs. Each bound function
// applies the endpoint's method unless the per-call options override it.
func (c *Client) BindEndpoints(defs map[string]Endpoint) Endpoints {
	bound := make(Endpoints, len(defs))
	for name, def := range defs {
		def := def
		bound[name] = func(ctx context.Context, opts *CallOptions) (*response.Response, error) {
			return c.Call(ctx, def, opts)
		}
	}
	return bound
}

// Names lists the bound endpoint names in sorted order.
func (e Endpoints) Names() []string {
	names := make([]string, 0, len(e))
	for name := range e {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Call invokes the named endpoint, or fails with ErrNotFound for unknown
// names.
func (e Endpoints) Call(ctx context.Context, name string, opts *CallOptions) (*response.Response, error) {
	fn, ok := e[name]
	if !ok {
		return nil, notFoundError("endpoint:" + name)
	}
	return fn(ctx, opts)
}
