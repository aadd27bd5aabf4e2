package target

import "sort"

// FeatureSet is an unordered set of CPU feature names.
type FeatureSet map[string]struct{}

// NewFeatureSet builds a set from the given feature names.
func NewFeatureSet(names ...string) FeatureSet {
	s := make(FeatureSet, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

// Has reports whether the set contains the given feature.
func (s FeatureSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Add inserts the given feature names into the set.
func (s FeatureSet) Add(names ...string) {
	for _, n := range names {
		s[n] = struct{}{}
	}
}

// SubsetOf reports whether every feature in s is also in other.
func (s FeatureSet) SubsetOf(other FeatureSet) bool {
	for n := range s {
		if _, ok := other[n]; !ok {
			return false
		}
	}
	return true
}

// Equal reports whether both sets contain exactly the same features.
func (s FeatureSet) Equal(other FeatureSet) bool {
	return len(s) == len(other) && s.SubsetOf(other)
}

// Sorted returns the features as a sorted slice.
func (s FeatureSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for n := range s {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
