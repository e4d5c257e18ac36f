// Package chain executes a middleware stack around a handler using the
// onion model: middleware i receives a next continuation invoking
// middleware i+1, terminating in the handler. Per-stage wall-clock timing
// is reported in a single Server-Timing header on the final response.
package chain

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// TimingHeader carries one `stage;dur=<ms>` entry per executed stage,
// innermost (handler) first.
const TimingHeader = "Server-Timing"

// Result is a handler's structured return value. Handlers never panic or
// return Go errors; abnormal outcomes are expressed via Status and Error.
type Result struct {
	Status  int
	Data    any
	Error   string
	Headers map[string]string
}

// Handler runs a matched route. See Result for the outcome contract.
type Handler func(c *Ctx) *Result

// Next invokes the remainder of the stack.
type Next func() (*Response, error)

// Middleware may call next and transform the result, decline to call next
// and return its own response (short-circuit), or mutate the shared Ctx
// bag before calling next.
type Middleware func(c *Ctx, next Next) (*Response, error)

// Run executes mws (outermost first) around h. The Ctx bag is shared down
// the stack, not copied.
func Run(c *Ctx, mws []Middleware, h Handler) (*Response, error) {
	timings := make([]stageTiming, 0, len(mws)+1)

	next := func() (*Response, error) {
		start := time.Now()
		res, err := runHandler(c, h)
		timings = append(timings, stageTiming{name: "handler", dur: time.Since(start)})
		return res, err
	}

	for i := len(mws) - 1; i >= 0; i-- {
		mw := mws[i]
		name := fmt.Sprintf("mw%d", i)
		inner := next
		next = func() (*Response, error) {
			start := time.Now()
			res, err := mw(c, inner)
			timings = append(timings, stageTiming{name: name, dur: time.Since(start)})
			return res, err
		}
	}

	res, err := next()
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, fmt.Errorf("chain: stack produced no response")
	}
	res.Header().Set(TimingHeader, formatTimings(timings))
	return res, nil
}

type stageTiming struct {
	name string
	dur  time.Duration
}

func formatTimings(timings []stageTiming) string {
	var b strings.Builder
	for i, t := range timings {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s;dur=%.3f", t.name, float64(t.dur)/float64(time.Millisecond))
	}
	return b.String()
}

// runHandler serializes a handler's Result into a concrete response: JSON
// body when Data is present, otherwise Error text.
func runHandler(c *Ctx, h Handler) (*Response, error) {
	result := h(c)
	if result == nil {
		return nil, fmt.Errorf("chain: handler returned nil result")
	}

	status := result.Status
	if status == 0 {
		status = http.StatusOK
	}

	header := make(http.Header)
	for k, v := range result.Headers {
		header.Set(k, v)
	}

	var body []byte
	switch {
	case result.Data != nil:
		encoded, err := json.Marshal(result.Data)
		if err != nil {
			return nil, fmt.Errorf("chain: encode handler data: %w", err)
		}
		body = encoded
		if header.Get("Content-Type") == "" {
			header.Set("Content-Type", "application/json")
		}
	case result.Error != "":
		body = []byte(result.Error)
		if header.Get("Content-Type") == "" {
			header.Set("Content-Type", "text/plain; charset=utf-8")
		}
	}

	return NewResponse(status, header, body), nil
}
