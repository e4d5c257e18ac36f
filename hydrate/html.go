package hydrate

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/lumodev/lumo/kit/htmlutil"
)

// InjectIntoHTML serializes each entry as a JSON script tag keyed by its
// identifier and inserts the batch immediately before </head> when
// present, else before </body>, else appended at the very end. The JSON
// encoder escapes <, >, and & (< etc.), which blocks script-tag
// breakout from attacker-controlled payload strings.
func InjectIntoHTML(doc string, data DataMap) (string, error) {
	if len(data) == 0 {
		return doc, nil
	}

	ids := make([]string, 0, len(data))
	for id := range data {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var tags strings.Builder
	for _, id := range ids {
		payload, err := json.Marshal(data[id])
		if err != nil {
			return "", fmt.Errorf("hydrate: encode entry %q: %w", id, err)
		}
		el := htmlutil.Element{
			Tag: "script",
			AttributesKnownSafe: map[string]string{
				"type": "application/json",
			},
			Attributes: map[string]string{
				"id": id,
			},
			DangerousInnerHTML: string(payload),
		}
		if err := htmlutil.RenderElementToBuilder(&el, &tags); err != nil {
			return "", fmt.Errorf("hydrate: render entry %q: %w", id, err)
		}
		tags.WriteString("\n")
	}

	return insertBeforeClose(doc, tags.String()), nil
}

func insertBeforeClose(doc, insert string) string {
	for _, closer := range []string{"</head>", "</body>"} {
		if idx := lastIndexFold(doc, closer); idx >= 0 {
			return doc[:idx] + insert + doc[idx:]
		}
	}
	return doc + insert
}

// lastIndexFold is strings.LastIndex with ASCII case folding, since
// "</HEAD>" is valid HTML.
func lastIndexFold(s, sub string) int {
	lower := strings.ToLower(s)
	return strings.LastIndex(lower, strings.ToLower(sub))
}
