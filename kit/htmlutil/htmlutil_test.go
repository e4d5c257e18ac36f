package htmlutil

import (
	"strings"
	"testing"
)

func render(t *testing.T, el *Element) string {
	t.Helper()
	out, err := RenderElement(el)
	if err != nil {
		t.Fatalf("RenderElement failed: %v", err)
	}
	return string(out)
}

func TestRenderElement(t *testing.T) {
	t.Run("BasicElement", func(t *testing.T) {
		got := render(t, &Element{Tag: "div", TextContent: "hello"})
		if got != "<div>hello</div>" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("AttributesSortedAndEscaped", func(t *testing.T) {
		got := render(t, &Element{
			Tag: "script",
			Attributes: map[string]string{
				"id": `x"y`,
			},
			AttributesKnownSafe: map[string]string{
				"type": "application/json",
			},
		})
		want := `<script id="x&#34;y" type="application/json"></script>`
		if got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("TextContentEscaped", func(t *testing.T) {
		got := render(t, &Element{Tag: "p", TextContent: "<b>&"})
		if strings.Contains(got, "<b>") {
			t.Errorf("text content not escaped: %q", got)
		}
	})

	t.Run("DangerousInnerHTMLVerbatim", func(t *testing.T) {
		got := render(t, &Element{Tag: "script", DangerousInnerHTML: `{"a":1}`})
		if got != `<script>{"a":1}</script>` {
			t.Errorf("got %q", got)
		}
	})

	t.Run("VoidTag", func(t *testing.T) {
		got := render(t, &Element{Tag: "meta", Attributes: map[string]string{"charset": "utf-8"}})
		if got != `<meta charset="utf-8" />` {
			t.Errorf("got %q", got)
		}
	})

	t.Run("SelfClosing", func(t *testing.T) {
		got := render(t, &Element{Tag: "custom-el", SelfClosing: true})
		if got != "<custom-el />" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("MissingTag", func(t *testing.T) {
		if _, err := RenderElement(&Element{}); err == nil {
			t.Error("expected error for missing tag")
		}
	})
}
