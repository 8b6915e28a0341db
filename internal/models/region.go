package models

// Span is a half-open interval [Start, Stop) along one axis
type Span struct {
	Start int
	Stop  int
}

// Len returns the number of indices covered by the span
func (s Span) Len() int {
	if s.Stop < s.Start {
		return 0
	}
	return s.Stop - s.Start
}

// Region is a rectangular sub-area of the Y/X plane of a stack
type Region struct {
	Y Span
	X Span
}

// Area returns the number of pixels covered by the region
func (r Region) Area() int {
	return r.Y.Len() * r.X.Len()
}
