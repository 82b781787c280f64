package charts

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultStyle(t *testing.T) {
	style := DefaultStyle()
	require.NoError(t, style.Validate())

	w, h := style.PixelSize()
	require.Equal(t, 2400, w)
	require.Equal(t, 1650, h)
	require.Equal(t, "assets/charts/testing-times-ai-gap.png", style.OutputPath)
	require.Equal(t, MarkerCircle, style.Series[0].Marker)
	require.Equal(t, MarkerSquare, style.Series[1].Marker)
	require.Equal(t, PlaceAbove, style.Series[0].Label.Placement)
	require.Equal(t, PlaceBelow, style.Series[1].Label.Placement)
}

func TestDefaultStyle_IndependentCopies(t *testing.T) {
	a := DefaultStyle()
	a.YTicks[0] = 5
	a.Margins.Left = 0.5

	b := DefaultStyle()
	require.Equal(t, 0.0, b.YTicks[0])
	require.Equal(t, 0.10, b.Margins.Left)
}

func TestStyleValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*StyleConfig)
		errMsg string
	}{
		{"zero width", func(s *StyleConfig) { s.WidthIn = 0 }, "canvas size"},
		{"zero dpi", func(s *StyleConfig) { s.DPI = 0 }, "dpi"},
		{"empty x range", func(s *StyleConfig) { s.XMax = s.XMin }, "axis range"},
		{"inverted y range", func(s *StyleConfig) { s.YMin, s.YMax = 100, 0 }, "axis range"},
		{"no output", func(s *StyleConfig) { s.OutputPath = "" }, "output path"},
		{"crossed margins", func(s *StyleConfig) { s.Margins.Left = 0.9 }, "margins"},
		{"margin past edge", func(s *StyleConfig) { s.Margins.Top = 1.2 }, "margins"},
		{"short hex", func(s *StyleConfig) { s.Background = "#fff" }, "background color"},
		{"named color", func(s *StyleConfig) { s.Masthead.Color = "red" }, "masthead color"},
		{"bad end label color", func(s *StyleConfig) { s.EndLabel.Color = "#12" }, "end label color"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			style := DefaultStyle()
			tt.mutate(&style)
			err := style.Validate()
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestStyleValidate_NilMarginsAllowed(t *testing.T) {
	style := DefaultStyle()
	style.Margins = nil
	require.NoError(t, style.Validate())
}

func TestStyleValidate_ReportsFirstBadColorInOrder(t *testing.T) {
	style := DefaultStyle()
	style.Background = "bad"
	style.Series[1].Color = "bad"
	style.Source.Color = "bad"

	for range 20 {
		err := style.Validate()
		require.EqualError(t, err, `background color "bad" is not #rrggbb`)
	}
}
