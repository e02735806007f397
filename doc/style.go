package doc

import "sort"

// Style is a piece of formatting metadata carried by characters.
type Style string

const (
	Normie Style = "Normie"
	Bold   Style = "Bold"
	Italic Style = "Italic"
	Link   Style = "Link"
)

// StyleSet is a set of styles, kept sorted.
type StyleSet []Style

// NewStyleSet returns a sorted set without duplicates.
func NewStyleSet(styles ...Style) StyleSet {
	seen := make(map[Style]bool, len(styles))
	set := StyleSet{}
	for _, s := range styles {
		if !seen[s] {
			seen[s] = true
			set = append(set, s)
		}
	}
	sort.Slice(set, func(i, j int) bool { return set[i] < set[j] })
	return set
}

// Contains reports whether s is in the set.
func (set StyleSet) Contains(s Style) bool {
	for _, style := range set {
		if style == s {
			return true
		}
	}
	return false
}

// StyleMap maps styles to their value. Flag styles have an empty value.
type StyleMap map[Style]string

// Equal reports whether two maps hold the same styles and values.
// A nil map equals an empty one.
func (m StyleMap) Equal(other StyleMap) bool {
	if len(m) != len(other) {
		return false
	}
	for k, v := range m {
		ov, ok := other[k]
		if !ok || ov != v {
			return false
		}
	}
	return true
}

// Remove returns a copy of m without the styles in set.
func (m StyleMap) Remove(set StyleSet) StyleMap {
	out := StyleMap{}
	for k, v := range m {
		if !set.Contains(k) {
			out[k] = v
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Merge returns a copy of m with the entries of other set over it.
func (m StyleMap) Merge(other StyleMap) StyleMap {
	out := StyleMap{}
	for k, v := range m {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
