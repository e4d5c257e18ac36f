package router

import "strings"

// Segment is the classification of one literal path segment. Derived
// purely from the segment text; immutable.
type Segment struct {
	Normalized string
	ParamName  string
	IsDynamic  bool
	IsCatchAll bool
}

// ParseSegment classifies seg: "[...name]" is catch-all with parameter
// name, "[name]" is a single dynamic parameter, anything else is static
// and returned unchanged.
func ParseSegment(seg string) Segment {
	if len(seg) > 2 && seg[0] == '[' && seg[len(seg)-1] == ']' {
		inner := seg[1 : len(seg)-1]
		if rest, ok := strings.CutPrefix(inner, "..."); ok {
			if rest != "" {
				return Segment{Normalized: seg, ParamName: rest, IsDynamic: true, IsCatchAll: true}
			}
		} else {
			return Segment{Normalized: seg, ParamName: inner, IsDynamic: true}
		}
	}
	return Segment{Normalized: seg}
}

// isGroupName reports whether a directory name like "(admin)" denotes a
// route group, which contributes no path segment to matching.
func isGroupName(name string) bool {
	return len(name) > 2 && name[0] == '(' && name[len(name)-1] == ')'
}
