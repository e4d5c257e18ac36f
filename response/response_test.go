package response

import (
	"bytes"
	"net/http"
	"testing"
)

// countingBody counts reads so buffer-once behavior is observable.
type countingBody struct {
	*bytes.Reader
	closed int
}

func (b *countingBody) Close() error {
	b.closed++
	return nil
}

func rawResponse(status int, contentType, body string) (*http.Response, *countingBody) {
	cb := &countingBody{Reader: bytes.NewReader([]byte(body))}
	header := make(http.Header)
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}
	return &http.Response{
		StatusCode: status,
		Header:     header,
		Body:       cb,
	}, cb
}

func TestBufferOnce(t *testing.T) {
	raw, cb := rawResponse(200, "text/plain", "hello")
	res := Wrap(raw)

	first, err := res.Bytes()
	if err != nil {
		t.Fatalf("Bytes failed: %v", err)
	}
	second, err := res.Bytes()
	if err != nil {
		t.Fatalf("Bytes failed: %v", err)
	}
	if string(first) != "hello" || string(second) != "hello" {
		t.Errorf("Expected stable body, got %q then %q", first, second)
	}
	if cb.closed != 1 {
		t.Errorf("Expected body closed exactly once, got %d", cb.closed)
	}

	text, err := res.Text()
	if err != nil {
		t.Fatalf("Text failed: %v", err)
	}
	if text != "hello" {
		t.Errorf("Text = %q, want 'hello'", text)
	}
}

func TestDataAndOverride(t *testing.T) {
	t.Run("DecodesJSONBody", func(t *testing.T) {
		raw, _ := rawResponse(200, "application/json", `{"n":1}`)
		res := Wrap(raw)
		data, err := res.Data()
		if err != nil {
			t.Fatalf("Data failed: %v", err)
		}
		m, ok := data.(map[string]any)
		if !ok || m["n"] != float64(1) {
			t.Errorf("Unexpected decoded payload: %#v", data)
		}
	})

	t.Run("OverrideWins", func(t *testing.T) {
		raw, _ := rawResponse(200, "application/json", `{"n":1}`)
		res := Wrap(raw)
		res.SetData(map[string]any{"n": float64(2)})

		data, err := res.Data()
		if err != nil {
			t.Fatalf("Data failed: %v", err)
		}
		if data.(map[string]any)["n"] != float64(2) {
			t.Errorf("Expected override payload, got %#v", data)
		}

		// Raw bytes are untouched by the override.
		b, _ := res.Bytes()
		if string(b) != `{"n":1}` {
			t.Errorf("Raw body changed: %q", b)
		}
	})

	t.Run("OverrideSurvivesClone", func(t *testing.T) {
		raw, _ := rawResponse(200, "application/json", `{"n":1}`)
		res := Wrap(raw)
		res.SetData("replaced")

		clone := res.Clone()
		data, err := clone.Data()
		if err != nil {
			t.Fatalf("Data failed: %v", err)
		}
		if data != "replaced" {
			t.Errorf("Expected override on clone, got %#v", data)
		}
	})

	t.Run("JSONRoundTripsOverride", func(t *testing.T) {
		raw, _ := rawResponse(200, "application/json", `{}`)
		res := Wrap(raw)
		res.SetData(map[string]any{"name": "ada"})

		var dst struct {
			Name string `json:"name"`
		}
		if err := res.JSON(&dst); err != nil {
			t.Fatalf("JSON failed: %v", err)
		}
		if dst.Name != "ada" {
			t.Errorf("Expected typed decode of override, got %q", dst.Name)
		}
	})

	t.Run("EmptyBodyIsNilData", func(t *testing.T) {
		raw, _ := rawResponse(204, "", "")
		res := Wrap(raw)
		data, err := res.Data()
		if err != nil {
			t.Fatalf("Data failed: %v", err)
		}
		if data != nil {
			t.Errorf("Expected nil, got %#v", data)
		}
	})
}

func TestCloneSharesBuffer(t *testing.T) {
	raw, cb := rawResponse(200, "text/plain", "shared")
	res := Wrap(raw)
	clone := res.Clone()

	a, _ := res.Bytes()
	b, _ := clone.Bytes()
	if string(a) != "shared" || string(b) != "shared" {
		t.Errorf("Expected shared body, got %q / %q", a, b)
	}
	if cb.closed != 1 {
		t.Errorf("Clone must not re-read the raw body, closed %d times", cb.closed)
	}

	// Headers are independent after the clone.
	clone.Header().Set("X-Only-Clone", "1")
	if res.Header().Get("X-Only-Clone") != "" {
		t.Error("Clone header write leaked into the original")
	}
}

func TestStatusHelpers(t *testing.T) {
	cases := []struct {
		status int
		ok     bool
	}{
		{200, true},
		{204, true},
		{299, true},
		{300, false},
		{404, false},
		{500, false},
	}
	for _, tc := range cases {
		raw, _ := rawResponse(tc.status, "", "")
		res := Wrap(raw)
		if res.OK() != tc.ok {
			t.Errorf("OK() for %d = %v, want %v", tc.status, res.OK(), tc.ok)
		}
		if res.Status() != tc.status {
			t.Errorf("Status() = %d, want %d", res.Status(), tc.status)
		}
	}
}

func TestIsJSON(t *testing.T) {
	cases := []struct {
		contentType string
		want        bool
	}{
		{"application/json", true},
		{"application/json; charset=utf-8", true},
		{"application/problem+json", true},
		{"text/html", false},
		{"", false},
	}
	for _, tc := range cases {
		raw, _ := rawResponse(200, tc.contentType, "")
		if got := Wrap(raw).IsJSON(); got != tc.want {
			t.Errorf("IsJSON(%q) = %v, want %v", tc.contentType, got, tc.want)
		}
	}
}

func TestFromData(t *testing.T) {
	res := FromData(map[string]any{"k": "v"})
	if !res.OK() {
		t.Errorf("Expected 200, got %d", res.Status())
	}
	if !res.IsJSON() {
		t.Error("Expected JSON content type")
	}
	data, err := res.Data()
	if err != nil {
		t.Fatalf("Data failed: %v", err)
	}
	if data.(map[string]any)["k"] != "v" {
		t.Errorf("Unexpected payload: %#v", data)
	}

	body, err := res.Text()
	if err != nil {
		t.Fatalf("Text failed: %v", err)
	}
	if body != `{"k":"v"}` {
		t.Errorf("Unexpected raw body: %q", body)
	}
}
