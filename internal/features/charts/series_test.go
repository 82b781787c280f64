package charts

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAutomationGap_Dataset(t *testing.T) {
	a, b := AutomationGap()

	require.Equal(t, "AI adoption in testing", a.Name)
	require.Equal(t, "Maintenance burden reduction", b.Name)
	require.Equal(t, []int{2018, 2019, 2020, 2021, 2022, 2023, 2024, 2025}, a.Years())
	require.Equal(t, a.Years(), b.Years())
	require.Equal(t, Point{Year: 2025, Value: 81}, a.Last())
	require.Equal(t, Point{Year: 2025, Value: 18}, b.Last())
	require.NoError(t, ValidatePair(a, b))
}

func TestValidatePair(t *testing.T) {
	years := []int{2018, 2019, 2020}
	good := newSeries("good", years, []float64{1, 2, 3})

	tests := []struct {
		name string
		a, b Series
		want error
	}{
		{"ok", good, newSeries("other", years, []float64{0, 0, 100}), nil},
		{"empty", good, Series{Name: "empty"}, ErrEmptySeries},
		{"short", good, newSeries("short", years[:2], []float64{1, 2}), ErrSeriesMismatch},
		{"long", newSeries("long", []int{2018, 2019, 2020, 2021}, []float64{1, 2, 3, 4}), good, ErrSeriesMismatch},
		{"other years", good, newSeries("later", []int{2019, 2020, 2021}, []float64{1, 2, 3}), ErrSeriesMismatch},
		{"negative", good, newSeries("neg", years, []float64{1, -1, 3}), ErrValueOutOfRange},
		{"NaN", good, newSeries("nan", years, []float64{1, math.NaN(), 3}), ErrValueOutOfRange},
		{"infinite", good, newSeries("inf", years, []float64{1, math.Inf(1), 3}), ErrValueOutOfRange},
		{"over 100", newSeries("big", years, []float64{1, 101, 3}), good, ErrValueOutOfRange},
		{"unordered", good, newSeries("swap", []int{2018, 2020, 2019}, []float64{1, 2, 3}), ErrYearsNotOrdered},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePair(tt.a, tt.b)
			if tt.want == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.want)
			require.True(t, IsInputError(err))
		})
	}
}

func TestValidatePair_MessageNamesBothSeries(t *testing.T) {
	a, b := AutomationGap()
	b.Points = b.Points[:7]

	err := ValidatePair(a, b)
	require.EqualError(t, err,
		`"AI adoption in testing" has 8 points, "Maintenance burden reduction" has 7: series do not share x values`)
}

func TestFormatPercent(t *testing.T) {
	require.Equal(t, "81%", formatPercent(81))
	require.Equal(t, "0%", formatPercent(0))
	require.Equal(t, "12.5%", formatPercent(12.5))
}
