package chain

import (
	"net/http"

	"github.com/lumodev/lumo/response"
)

type (
	// Response is the raw response type flowing through the stack.
	Response = response.Response
	Params   = map[string]string
)

// NewResponse builds a synthesized response for local handlers.
func NewResponse(status int, header http.Header, body []byte) *Response {
	return response.New(status, header, body)
}

// Ctx is the per-request context seen by middleware and handlers. The
// key/value bag is the sanctioned middleware-to-handler channel: writes are
// visible to every downstream stage because the bag is shared, never
// copied. A Ctx belongs to a single request flow and is not safe for
// concurrent mutation.
type Ctx struct {
	req    *http.Request
	params Params
	bag    map[string]any
}

func NewCtx(r *http.Request, params Params) *Ctx {
	if params == nil {
		params = make(Params)
	}
	return &Ctx{req: r, params: params, bag: make(map[string]any)}
}

// Request returns the request view. Callers must not mutate it.
func (c *Ctx) Request() *http.Request {
	return c.req
}

func (c *Ctx) Params() Params {
	return c.params
}

func (c *Ctx) Param(key string) string {
	return c.params[key]
}

// Get reads an arbitrary key from the request bag.
func (c *Ctx) Get(key string) (any, bool) {
	v, ok := c.bag[key]
	return v, ok
}

// Set writes an arbitrary key into the request bag. Keys need no schema;
// late additions are expected.
func (c *Ctx) Set(key string, value any) {
	c.bag[key] = value
}
