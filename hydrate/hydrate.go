// Package hydrate carries server-fetched payloads into the first client
// render. During SSR, dispatched responses are collected per scope under
// deterministic resource identifiers; the collected map is injected into
// the outgoing HTML as JSON script tags. On the client, reading an entry
// consumes it, so stale data can never satisfy a second request.
package hydrate

import (
	"context"
	"strconv"
	"strings"

	"github.com/lumodev/lumo/scope"
)

// IDPrefix is the stable prefix of every resource identifier.
const IDPrefix = "lumo-ssr-"

// ordinalSep joins the URL-derived key with the per-scope ordinal. It is
// outside the encoder's alphabet, so prefix matching stays unambiguous.
const ordinalSep = "_"

type Entry struct {
	ID   string `json:"id"`
	Data any    `json:"data"`
}

// DataMap is the serializable form of a scope's collected responses.
type DataMap map[string]Entry

// BaseResourceID derives the scope-independent identifier for path+query.
// This is what the client computes when matching server-rendered markup.
func BaseResourceID(path, query string) string {
	key := path
	if query != "" {
		key += "?" + query
	}
	return IDPrefix + encodeKey(key)
}

// ResourceID returns the identifier for this call. With an active scope a
// per-scope ordinal is appended, so the same logical resource requested
// twice in one request yields two distinct identifiers. Without a scope
// the identifier is deterministic from the URL alone.
func ResourceID(ctx context.Context, path, query string) string {
	base := BaseResourceID(path, query)
	if s := scope.FromContext(ctx); s != nil {
		return base + ordinalSep + strconv.Itoa(s.NextOrdinal())
	}
	return base
}

// encodeKey maps a URL key onto an alphanumeric-safe form usable as an
// HTML element id.
func encodeKey(key string) string {
	var b strings.Builder
	b.Grow(len(key))
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	return b.String()
}

// Inject records data under id in the current scope's response map. With
// no active scope this is a silent no-op: collection is opportunistic.
func Inject(ctx context.Context, id string, data any) {
	if s := scope.FromContext(ctx); s != nil {
		s.PutResponse(id, data)
	}
}

// Snapshot copies the current scope's collected responses into their
// serializable form. Returns an empty map when no scope is active.
func Snapshot(ctx context.Context) DataMap {
	out := make(DataMap)
	s := scope.FromContext(ctx)
	if s == nil {
		return out
	}
	for id, data := range s.Responses() {
		out[id] = Entry{ID: id, Data: data}
	}
	return out
}
