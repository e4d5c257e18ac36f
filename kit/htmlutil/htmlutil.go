// Package htmlutil renders escaped HTML elements. Attribute values and text
// content are escaped by default; callers opt out explicitly via the
// KnownSafe/Dangerous fields.
package htmlutil

import (
	"fmt"
	"html/template"
	"slices"
	"sort"
	"strings"
)

type Element struct {
	Tag                 string            `json:"tag,omitempty"`
	Attributes          map[string]string `json:"attributes,omitempty"`
	AttributesKnownSafe map[string]string `json:"attributesKnownSafe,omitempty"`
	TextContent         string            `json:"textContent,omitempty"`
	DangerousInnerHTML  string            `json:"dangerousInnerHTML,omitempty"`
	SelfClosing         bool              `json:"-"`
}

// see https://html.spec.whatwg.org/multipage/syntax.html#void-elements
var voidTags = []string{
	"area", "base", "br", "col", "embed", "hr", "img",
	"input", "link", "meta", "source", "track", "wbr",
}

func RenderElement(el *Element) (template.HTML, error) {
	var b strings.Builder
	if err := RenderElementToBuilder(el, &b); err != nil {
		return "", err
	}
	return template.HTML(b.String()), nil
}

func RenderElementToBuilder(el *Element, b *strings.Builder) error {
	tag := template.HTMLEscapeString(el.Tag)
	if tag == "" {
		return fmt.Errorf("htmlutil: element has no tag")
	}

	b.WriteString("<")
	b.WriteString(tag)

	attrs := escapedAttributes(el)
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteString(" ")
		b.WriteString(k)
		b.WriteString(`="`)
		b.WriteString(attrs[k])
		b.WriteString(`"`)
	}

	if slices.Contains(voidTags, tag) || el.SelfClosing {
		b.WriteString(" />")
		return nil
	}

	b.WriteString(">")
	b.WriteString(innerHTML(el))
	b.WriteString("</")
	b.WriteString(tag)
	b.WriteString(">")
	return nil
}

func escapedAttributes(el *Element) map[string]string {
	attrs := make(map[string]string, len(el.Attributes)+len(el.AttributesKnownSafe))
	for k, v := range el.Attributes {
		attrs[template.HTMLEscapeString(k)] = template.HTMLEscapeString(v)
	}
	for k, v := range el.AttributesKnownSafe {
		attrs[template.HTMLEscapeString(k)] = v
	}
	return attrs
}

func innerHTML(el *Element) string {
	if el.DangerousInnerHTML != "" {
		return el.DangerousInnerHTML
	}
	if el.TextContent != "" {
		return template.HTMLEscapeString(el.TextContent)
	}
	return ""
}
