package hydrate

import (
	"encoding/json"
	"io"
	"sort"
	"strings"
	"sync"

	"golang.org/x/net/html"
)

// ClientCache holds hydration entries on the consuming side, primed once
// from server-rendered markup. Reads are one-time: a consumed entry is
// removed, so a second request for the same identifier misses and falls
// through to a live fetch.
type ClientCache struct {
	mu      sync.Mutex
	entries map[string]any
}

func NewClientCache() *ClientCache {
	return &ClientCache{entries: make(map[string]any)}
}

// Prime loads entries from a DataMap (typically ExtractFromHTML output).
func (cc *ClientCache) Prime(data DataMap) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	for id, e := range data {
		cc.entries[id] = e.Data
	}
}

// Put stores a single entry.
func (cc *ClientCache) Put(id string, data any) {
	cc.mu.Lock()
	cc.entries[id] = data
	cc.mu.Unlock()
}

// Consume removes and returns the entry for base. Server-generated ids
// carry a per-scope ordinal suffix the client cannot reproduce, so an
// exact match is tried first and then the lowest ordinal-suffixed variant.
func (cc *ClientCache) Consume(base string) (any, bool) {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	if data, ok := cc.entries[base]; ok {
		delete(cc.entries, base)
		return data, true
	}

	prefix := base + ordinalSep
	var candidates []string
	for id := range cc.entries {
		if strings.HasPrefix(id, prefix) {
			candidates = append(candidates, id)
		}
	}
	if len(candidates) == 0 {
		return nil, false
	}
	sort.Strings(candidates)
	id := candidates[0]
	data := cc.entries[id]
	delete(cc.entries, id)
	return data, true
}

func (cc *ClientCache) Len() int {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return len(cc.entries)
}

// ExtractFromHTML parses server-rendered markup and recovers every
// hydration script tag (type="application/json" with an id carrying the
// resource prefix). A tag whose body fails to parse is skipped; degraded
// markup must not poison the whole cache.
func ExtractFromHTML(r io.Reader) (DataMap, error) {
	out := make(DataMap)

	z := html.NewTokenizer(r)
	inTarget := false
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if z.Err() == io.EOF {
				return out, nil
			}
			return out, z.Err()

		case html.StartTagToken:
			tok := z.Token()
			if tok.Data != "script" {
				continue
			}
			var id, typ string
			for _, attr := range tok.Attr {
				switch attr.Key {
				case "id":
					id = attr.Val
				case "type":
					typ = attr.Val
				}
			}
			if typ == "application/json" && strings.HasPrefix(id, IDPrefix) {
				inTarget = true
			}

		case html.TextToken:
			if !inTarget {
				continue
			}
			var entry Entry
			if err := json.Unmarshal(z.Text(), &entry); err == nil && entry.ID != "" {
				out[entry.ID] = entry
			}

		case html.EndTagToken:
			inTarget = false
		}
	}
}
