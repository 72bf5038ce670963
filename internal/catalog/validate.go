package catalog

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"unicode/utf8"
)

const (
	GridSize     = 5
	MinCartelaID = 1
	MaxCartelaID = 210
	MaxNameLen   = 50
)

var ErrInvalid = errors.New("invalid_catalog_entry")

// ValidationError names the rejected field and carries the cashier-facing message.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return ErrInvalid }

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

type columnRange struct {
	letter   string
	min, max int
}

var columns = [GridSize]columnRange{
	{"B", 1, 15},
	{"I", 16, 30},
	{"N", 31, 45},
	{"G", 46, 60},
	{"O", 61, 75},
}

// ValidateCartelaPattern checks a 5x5 card: free centre, column ranges, no repeats.
// Zero cells elsewhere are blanks still being filled in.
func ValidateCartelaPattern(p [][]int) error {
	if len(p) != GridSize {
		return invalid("pattern", "Pattern must have %d rows", GridSize)
	}
	for _, row := range p {
		if len(row) != GridSize {
			return invalid("pattern", "Pattern rows must have %d cells", GridSize)
		}
	}
	if p[2][2] != 0 {
		return invalid("pattern", "Center cell must be free space (0)")
	}
	seen := map[int]bool{}
	for i := 0; i < GridSize; i++ {
		for j := 0; j < GridSize; j++ {
			cell := p[i][j]
			if (i == 2 && j == 2) || cell == 0 {
				continue
			}
			col := columns[j]
			if cell < col.min || cell > col.max {
				return invalid("pattern", "%s column must contain numbers %d-%d, found %d", col.letter, col.min, col.max, cell)
			}
			if seen[cell] {
				return invalid("pattern", "Number %d appears more than once", cell)
			}
			seen[cell] = true
		}
	}
	return nil
}

// ValidateCartelaID checks range and that id is not taken by another card.
func ValidateCartelaID(id int, taken []int) error {
	if id < MinCartelaID || id > MaxCartelaID {
		return invalid("cartelaId", "Cartela ID must be between %d and %d", MinCartelaID, MaxCartelaID)
	}
	if slices.Contains(taken, id) {
		return invalid("cartelaId", "Cartela ID already exists")
	}
	return nil
}

// NextAvailableID returns the lowest free id, or 1 when every id is taken.
func NextAvailableID(taken []int) int {
	for id := MinCartelaID; id <= MaxCartelaID; id++ {
		if !slices.Contains(taken, id) {
			return id
		}
	}
	return MinCartelaID
}

// GeneratePattern deals a random valid card.
func GeneratePattern(r *rand.Rand) [][]int {
	grid := make([][]int, GridSize)
	for i := range grid {
		grid[i] = make([]int, GridSize)
	}
	for j, col := range columns {
		nums := make([]int, 0, col.max-col.min+1)
		for n := col.min; n <= col.max; n++ {
			nums = append(nums, n)
		}
		r.Shuffle(len(nums), func(a, b int) { nums[a], nums[b] = nums[b], nums[a] })
		for i := 0; i < GridSize; i++ {
			grid[i][j] = nums[i]
		}
	}
	grid[2][2] = 0
	return grid
}

// ValidateWinPattern requires the centre plus at least one other cell.
func ValidateWinPattern(p [][]bool) error {
	if len(p) != GridSize {
		return invalid("pattern", "Pattern must have %d rows", GridSize)
	}
	others := 0
	for i, row := range p {
		if len(row) != GridSize {
			return invalid("pattern", "Pattern rows must have %d cells", GridSize)
		}
		for j, on := range row {
			if on && !(i == 2 && j == 2) {
				others++
			}
		}
	}
	if !p[2][2] {
		return invalid("pattern", "Center cell must be free space (selected)")
	}
	if others == 0 {
		return invalid("pattern", "Please select at least one cell besides the center")
	}
	return nil
}

func ValidatePatternName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return invalid("name", "Please enter a pattern name")
	}
	if utf8.RuneCountInString(name) > MaxNameLen {
		return invalid("name", "Pattern name must be less than %d characters", MaxNameLen)
	}
	return nil
}
