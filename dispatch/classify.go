package dispatch

import (
	"fmt"
	"net/url"
	"strings"
)

// Kind partitions call targets by how their URL is resolved.
type Kind int

const (
	// KindAbsolute targets carry an explicit scheme and are used as-is.
	KindAbsolute Kind = iota
	// KindSiteAbsolute targets start with "/" and resolve against the
	// configured origin.
	KindSiteAbsolute
	// KindSiteRelative targets start with "." and resolve against the
	// current location.
	KindSiteRelative
	// KindPassthrough targets are non-string values returned unchanged.
	KindPassthrough
)

func (k Kind) String() string {
	switch k {
	case KindAbsolute:
		return "absolute"
	case KindSiteAbsolute:
		return "site-absolute"
	case KindSiteRelative:
		return "site-relative"
	default:
		return "passthrough"
	}
}

// Classify reports how a target will be resolved. Non-string targets are
// passed through untouched so pre-built URL and Endpoint values survive.
func Classify(target any) Kind {
	s, ok := target.(string)
	if !ok {
		return KindPassthrough
	}
	switch {
	case hasScheme(s):
		return KindAbsolute
	case strings.HasPrefix(s, "/"):
		return KindSiteAbsolute
	case strings.HasPrefix(s, "."):
		return KindSiteRelative
	default:
		// Bare paths are treated as site-absolute with the slash implied.
		return KindSiteAbsolute
	}
}

func hasScheme(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// ResolveTarget turns a string target into a concrete URL. Site-absolute
// targets attach to origin when one is configured and stay path-only
// otherwise, which is what local dispatch wants. Site-relative targets
// need a location to resolve against; origin serves as the root fallback.
func ResolveTarget(target, origin string, location *url.URL) (*url.URL, error) {
	switch Classify(target) {
	case KindAbsolute:
		u, err := url.Parse(target)
		if err != nil {
			return nil, fmt.Errorf("dispatch: parse target %q: %w", target, err)
		}
		return u, nil
	case KindSiteRelative:
		base := location
		if base == nil {
			if origin == "" {
				return nil, fmt.Errorf("dispatch: relative target %q without location or origin", target)
			}
			b, err := url.Parse(origin)
			if err != nil {
				return nil, fmt.Errorf("dispatch: parse origin %q: %w", origin, err)
			}
			b.Path = "/"
			base = b
		}
		u, err := base.Parse(target)
		if err != nil {
			return nil, fmt.Errorf("dispatch: resolve target %q: %w", target, err)
		}
		return u, nil
	default:
		if !strings.HasPrefix(target, "/") {
			target = "/" + target
		}
		if origin == "" {
			u, err := url.Parse(target)
			if err != nil {
				return nil, fmt.Errorf("dispatch: parse target %q: %w", target, err)
			}
			return u, nil
		}
		b, err := url.Parse(origin)
		if err != nil {
			return nil, fmt.Errorf("dispatch: parse origin %q: %w", origin, err)
		}
		u, err := b.Parse(target)
		if err != nil {
			return nil, fmt.Errorf("dispatch: resolve target %q: %w", target, err)
		}
		return u, nil
	}
}
