package match

import "fmt"

// Region is a half-open byte range [Start, End) within a buffer snapshot.
type Region struct {
	Start int
	End   int
}

// Len returns the number of bytes covered by the region.
func (r Region) Len() int {
	if r.End < r.Start {
		return 0
	}
	return r.End - r.Start
}

// IsEmpty returns true if the region covers no bytes.
func (r Region) IsEmpty() bool {
	return r.Len() == 0
}

// Contains returns true if offset lies within the region.
func (r Region) Contains(offset int) bool {
	return offset >= r.Start && offset < r.End
}

// Overlaps returns true if the two regions share at least one byte.
func (r Region) Overlaps(other Region) bool {
	return r.Start < other.End && other.Start < r.End
}

// Text returns the substring of text covered by the region.
// Returns "" if the region does not fit inside text.
func (r Region) Text(text string) string {
	if r.Start < 0 || r.End > len(text) || r.Start > r.End {
		return ""
	}
	return text[r.Start:r.End]
}

// String returns the region as "start-end".
func (r Region) String() string {
	return fmt.Sprintf("%d-%d", r.Start, r.End)
}

// Clone returns a copy of regions that shares no memory with the input.
func Clone(regions []Region) []Region {
	if regions == nil {
		return nil
	}
	out := make([]Region, len(regions))
	copy(out, regions)
	return out
}

// Ordered returns true if regions are sorted by start offset and do not
// overlap. Find always returns ordered regions.
func Ordered(regions []Region) bool {
	for i := 1; i < len(regions); i++ {
		if regions[i].Start < regions[i-1].End {
			return false
		}
	}
	return true
}
