package bootstrap

import "bgbootstrap/internal/models"

// Grid partitions the Y/X plane of a stack into non-overlapping regions.
// Rows split the Y axis and Cols split the X axis.
type Grid struct {
	Rows []models.Span
	Cols []models.Span
}

// Shape returns the number of rows and columns of the grid
func (g Grid) Shape() (rows, cols int) {
	return len(g.Rows), len(g.Cols)
}

// Cell returns the region at (row, col)
func (g Grid) Cell(row, col int) models.Region {
	return models.Region{Y: g.Rows[row], X: g.Cols[col]}
}

// ComputeSegments splits [0, length) into division contiguous spans of
// floor(length/division) indices. The last span always stops at length and
// absorbs the remainder, so it can be wider than the others. When length is
// smaller than division the leading spans are empty.
func ComputeSegments(length, division int) []models.Span {
	if division < 1 {
		division = 1
	}
	seg := length / division

	spans := make([]models.Span, division)
	for i := range spans {
		spans[i] = models.Span{Start: i * seg, Stop: min((i+1)*seg, length)}
	}
	spans[division-1].Stop = length
	return spans
}

// ComputeGrid returns the grid for a (height, width) plane
func ComputeGrid(height, width, division int) Grid {
	return Grid{
		Rows: ComputeSegments(height, division),
		Cols: ComputeSegments(width, division),
	}
}
