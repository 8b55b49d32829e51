package entity

// WinPattern - three cells forming a line, one bit per cell index.
type WinPattern uint16

// WinPatterns - rows, columns, diagonals; scanned in this order.
var WinPatterns = [8]WinPattern{
	PatternOf(0, 1, 2),
	PatternOf(3, 4, 5),
	PatternOf(6, 7, 8),
	PatternOf(0, 3, 6),
	PatternOf(1, 4, 7),
	PatternOf(2, 5, 8),
	PatternOf(0, 4, 8),
	PatternOf(2, 4, 6),
}

func PatternOf(cells ...int) WinPattern {
	var pattern WinPattern
	for _, cell := range cells {
		pattern |= 1 << cell
	}

	return pattern
}

// Cells - returns the indices covered by the pattern in ascending order.
func (that WinPattern) Cells() []int {
	cells := make([]int, 0, 3)
	for i := range BoardSize {
		if that.Has(i) {
			cells = append(cells, i)
		}
	}

	return cells
}

func (that WinPattern) Has(index int) bool {
	return index >= 0 && index < BoardSize && that&(1<<index) != 0
}

// IsValid - reports whether the mask is one of the eight winning lines.
func (that WinPattern) IsValid() bool {
	for _, pattern := range WinPatterns {
		if pattern == that {
			return true
		}
	}

	return false
}
