// Package response wraps HTTP responses so the body can be read any number
// of times. The raw body is buffered exactly once; decoded reads go through
// that buffer unless a payload override has been set with SetData, in which
// case the override wins for every subsequent read, including on clones.
package response

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
)

type Response struct {
	raw *http.Response

	bodyOnce *sync.Once
	body     []byte
	bodyErr  error

	mu          sync.Mutex
	override    any
	hasOverride bool
}

// Wrap takes ownership of raw's body. The body is drained and closed on the
// first read, not at Wrap time.
func Wrap(raw *http.Response) *Response {
	return &Response{raw: raw, bodyOnce: &sync.Once{}}
}

// New builds a synthesized response, used for local dispatch where no real
// HTTP exchange occurs.
func New(status int, header http.Header, body []byte) *Response {
	if header == nil {
		header = make(http.Header)
	}
	raw := &http.Response{
		StatusCode: status,
		Status:     fmt.Sprintf("%d %s", status, http.StatusText(status)),
		Header:     header,
		Body:       io.NopCloser(bytes.NewReader(body)),
	}
	return Wrap(raw)
}

// FromData builds a synthesized 200 response whose decoded payload is data.
// The raw body is the JSON form of data; used when hydration short-circuits
// a network call.
func FromData(data any) *Response {
	body, err := json.Marshal(data)
	if err != nil {
		body = nil
	}
	header := make(http.Header)
	header.Set("Content-Type", "application/json")
	r := New(http.StatusOK, header, body)
	r.SetData(data)
	return r
}

func (r *Response) Status() int {
	return r.raw.StatusCode
}

func (r *Response) StatusText() string {
	return http.StatusText(r.raw.StatusCode)
}

func (r *Response) Header() http.Header {
	return r.raw.Header
}

// OK reports whether the status is in the 2xx range.
func (r *Response) OK() bool {
	return r.raw.StatusCode >= 200 && r.raw.StatusCode < 300
}

// Bytes returns the raw body, buffering it on first call. Subsequent calls
// return the same buffer.
func (r *Response) Bytes() ([]byte, error) {
	r.bodyOnce.Do(func() {
		if r.raw.Body == nil {
			return
		}
		defer r.raw.Body.Close()
		r.body, r.bodyErr = io.ReadAll(r.raw.Body)
	})
	return r.body, r.bodyErr
}

func (r *Response) Text() (string, error) {
	b, err := r.Bytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Data returns the decoded payload: the SetData override when present,
// otherwise the body decoded as JSON.
func (r *Response) Data() (any, error) {
	r.mu.Lock()
	if r.hasOverride {
		v := r.override
		r.mu.Unlock()
		return v, nil
	}
	r.mu.Unlock()

	b, err := r.Bytes()
	if err != nil {
		return nil, err
	}
	if len(b) == 0 {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, fmt.Errorf("response: decode body: %w", err)
	}
	return v, nil
}

// JSON decodes the payload into v. With an override set, the override is
// round-tripped through JSON so typed destinations still work.
func (r *Response) JSON(v any) error {
	r.mu.Lock()
	hasOverride := r.hasOverride
	override := r.override
	r.mu.Unlock()

	if hasOverride {
		b, err := json.Marshal(override)
		if err != nil {
			return fmt.Errorf("response: encode override: %w", err)
		}
		return json.Unmarshal(b, v)
	}

	b, err := r.Bytes()
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

// SetData overrides the decoded payload. The raw bytes are untouched.
func (r *Response) SetData(v any) {
	r.mu.Lock()
	r.override = v
	r.hasOverride = true
	r.mu.Unlock()
}

// Clone shares the buffered body with the original (buffering it first if
// needed) and carries the payload override forward.
func (r *Response) Clone() *Response {
	_, _ = r.Bytes()

	r.mu.Lock()
	defer r.mu.Unlock()

	rawCopy := *r.raw
	rawCopy.Header = r.raw.Header.Clone()
	rawCopy.Body = nil

	clone := &Response{
		raw:         &rawCopy,
		bodyOnce:    r.bodyOnce,
		body:        r.body,
		bodyErr:     r.bodyErr,
		override:    r.override,
		hasOverride: r.hasOverride,
	}
	return clone
}

// IsJSON reports whether the content type indicates a JSON body.
func (r *Response) IsJSON() bool {
	ct := r.raw.Header.Get("Content-Type")
	return strings.Contains(ct, "application/json") || strings.Contains(ct, "+json")
}
