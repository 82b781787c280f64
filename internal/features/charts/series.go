package charts

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/samber/lo"
)

var (
	ErrEmptySeries     = errors.New("series has no points")
	ErrSeriesMismatch  = errors.New("series do not share x values")
	ErrValueOutOfRange = errors.New("series value outside 0..100")
	ErrYearsNotOrdered = errors.New("series years are not strictly increasing")
)

// Point is one year's value, in percent.
type Point struct {
	Year  int
	Value float64
}

// Series is one plotted line.
type Series struct {
	Name   string
	Points []Point
}

// Years returns the x values.
func (s Series) Years() []int {
	return lo.Map(s.Points, func(p Point, _ int) int { return p.Year })
}

// Last returns the final point. The series must not be empty.
func (s Series) Last() Point {
	return s.Points[len(s.Points)-1]
}

// Validate checks a single series on its own.
func (s Series) Validate() error {
	if len(s.Points) == 0 {
		return fmt.Errorf("%q: %w", s.Name, ErrEmptySeries)
	}
	for i, p := range s.Points {
		if !(p.Value >= 0 && p.Value <= 100) {
			return fmt.Errorf("%q at %d = %v: %w", s.Name, p.Year, p.Value, ErrValueOutOfRange)
		}
		if i > 0 && p.Year <= s.Points[i-1].Year {
			return fmt.Errorf("%q at index %d: %w", s.Name, i, ErrYearsNotOrdered)
		}
	}
	return nil
}

// ValidatePair checks both series and that they line up point for point.
func ValidatePair(a, b Series) error {
	if err := a.Validate(); err != nil {
		return err
	}
	if err := b.Validate(); err != nil {
		return err
	}
	if len(a.Points) != len(b.Points) {
		return fmt.Errorf("%q has %d points, %q has %d: %w",
			a.Name, len(a.Points), b.Name, len(b.Points), ErrSeriesMismatch)
	}
	for i := range a.Points {
		if a.Points[i].Year != b.Points[i].Year {
			return fmt.Errorf("index %d: %q is %d, %q is %d: %w",
				i, a.Name, a.Points[i].Year, b.Name, b.Points[i].Year, ErrSeriesMismatch)
		}
	}
	return nil
}

// formatPercent renders 81 as "81%" and 12.5 as "12.5%".
func formatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "%"
}
