package domain

import "sort"

// Room is one generated content unit: per-category selected attributes plus
// derived feature strings. Rooms are immutable once generated; a re-roll
// replaces the whole value.
type Room struct {
	ID         int
	Theme      string
	Attributes map[string]string
	Features   []string
}

// Attribute returns the selected entry name for a category.
func (r Room) Attribute(category string) (string, bool) {
	value, ok := r.Attributes[category]
	return value, ok
}

// Categories returns the room's attribute categories in sorted order, for
// stable rendering.
func (r Room) Categories() []string {
	out := make([]string, 0, len(r.Attributes))
	for category := range r.Attributes {
		out = append(out, category)
	}
	sort.Strings(out)
	return out
}

// HasFeature reports whether the room derived the named feature.
func (r Room) HasFeature(name string) bool {
	for _, feature := range r.Features {
		if feature == name {
			return true
		}
	}
	return false
}
