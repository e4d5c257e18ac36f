package dispatch

import (
	"net/url"
	"testing"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		target any
		want   Kind
	}{
		{"https://example.com/api", KindAbsolute},
		{"http://example.com", KindAbsolute},
		{"/api/users", KindSiteAbsolute},
		{"api/users", KindSiteAbsolute},
		{"./sibling", KindSiteRelative},
		{"../up", KindSiteRelative},
		{&url.URL{Path: "/x"}, KindPassthrough},
		{42, KindPassthrough},
	}
	for _, tc := range cases {
		if got := Classify(tc.target); got != tc.want {
			t.Errorf("Classify(%v) = %v, want %v", tc.target, got, tc.want)
		}
	}
}

func TestResolveTarget(t *testing.T) {
	loc, _ := url.Parse("https://example.com/docs/guide")

	cases := []struct {
		name   string
		target string
		origin string
		loc    *url.URL
		want   string
	}{
		{"Absolute", "https://api.example.com/v1", "https://example.com", nil, "https://api.example.com/v1"},
		{"SiteAbsolute", "/api/users?page=2", "https://example.com", nil, "https://example.com/api/users?page=2"},
		{"SiteAbsoluteNoOrigin", "/api/users", "", nil, "/api/users"},
		{"BarePathGetsSlash", "api/users", "https://example.com", nil, "https://example.com/api/users"},
		{"RelativeToLocation", "./intro", "https://example.com", loc, "https://example.com/docs/intro"},
		{"RelativeUp", "../other", "https://example.com", loc, "https://example.com/other"},
		{"RelativeFallsBackToOrigin", "./intro", "https://example.com", nil, "https://example.com/intro"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			u, err := ResolveTarget(tc.target, tc.origin, tc.loc)
			if err != nil {
				t.Fatalf("ResolveTarget failed: %v", err)
			}
			if u.String() != tc.want {
				t.Errorf("Resolved %q, want %q", u.String(), tc.want)
			}
		})
	}

	t.Run("RelativeWithNothingFails", func(t *testing.T) {
		if _, err := ResolveTarget("./x", "", nil); err == nil {
			t.Error("Expected error resolving relative target with no base")
		}
	})
}
