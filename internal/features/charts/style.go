package charts

import (
	"fmt"
	"regexp"
)

// Sizes are in points (1/72 inch) unless the field says otherwise.
// Canvas-relative positions are fractions of the canvas measured from
// the bottom-left corner.

type MarkerShape int

const (
	MarkerCircle MarkerShape = iota
	MarkerSquare
)

// Placement says which side of the line an inline label goes.
// It is chosen by hand per series, not computed.
type Placement int

const (
	PlaceAbove Placement = iota
	PlaceBelow
)

type TextStyle struct {
	Size  float64
	Bold  bool
	Color string // end and inline labels fall back to the series color when empty
}

// InlineLabel is a series caption drawn near the line.
type InlineLabel struct {
	Text      string  // may contain "\n"
	AnchorX   float64 // data units
	AnchorY   float64 // data units
	Offset    float64 // points away from the anchor, always positive
	Placement Placement
}

type SeriesStyle struct {
	Color      string
	LineWidth  float64
	Marker     MarkerShape
	MarkerSize float64 // diameter or side
	Label      InlineLabel
}

// Margins are the plot area edges as canvas fractions.
type Margins struct {
	Top, Bottom, Left, Right float64
}

// CanvasText is text placed in canvas-relative coordinates, baseline at Y, left aligned.
type CanvasText struct {
	Text string
	X, Y float64
	TextStyle
}

// CanvasRect is a filled rectangle in canvas-relative coordinates.
type CanvasRect struct {
	X, Y, W, H float64
	Color      string
}

// StyleConfig holds every visual parameter of a render. Values are copied
// into the renderer; nothing reads style from package state.
type StyleConfig struct {
	WidthIn, HeightIn float64
	DPI               float64
	Background        string

	Series [2]SeriesStyle

	EndLabel       TextStyle
	EndLabelOffset float64

	GridColor string
	GridWidth float64

	SpineColor string
	SpineWidth float64

	YMin, YMax float64
	YTicks     []float64
	XMin, XMax float64

	TickLabel      TextStyle
	TickPad        float64
	XTickLength    float64
	XTickWidth     float64
	XTickColor     string
	YTickLength    float64
	InlineLabel    TextStyle
	LineSpacing    float64
	TightLayoutPad float64

	// Margins replaces the tight layout when set.
	Margins *Margins

	Masthead CanvasRect
	Title    CanvasText
	Subtitle CanvasText
	Source   CanvasText

	OutputPath string
}

// DefaultStyle is the house style for "The automation gap".
func DefaultStyle() StyleConfig {
	const (
		blue   = "#17648d"
		maroon = "#843844"
	)
	return StyleConfig{
		WidthIn:    8,
		HeightIn:   5.5,
		DPI:        300,
		Background: "#f1f0e9",

		Series: [2]SeriesStyle{
			{
				Color:      blue,
				LineWidth:  2.5,
				Marker:     MarkerCircle,
				MarkerSize: 6,
				Label: InlineLabel{
					Text:      "AI adoption\nin testing",
					AnchorX:   2023,
					AnchorY:   68,
					Offset:    15,
					Placement: PlaceAbove,
				},
			},
			{
				Color:      maroon,
				LineWidth:  2.5,
				Marker:     MarkerSquare,
				MarkerSize: 6,
				Label: InlineLabel{
					Text:      "Maintenance\nburden reduction",
					AnchorX:   2023,
					AnchorY:   14,
					Offset:    25,
					Placement: PlaceBelow,
				},
			},
		},

		EndLabel:       TextStyle{Size: 11, Bold: true},
		EndLabelOffset: 10,

		GridColor: "#cccccc",
		GridWidth: 0.5,

		SpineColor: "#666666",
		SpineWidth: 0.5,

		YMin:   0,
		YMax:   100,
		YTicks: []float64{0, 20, 40, 60, 80, 100},
		XMin:   2017.5,
		XMax:   2026,

		TickLabel:      TextStyle{Size: 10, Color: "#333333"},
		TickPad:        3.5,
		XTickLength:    3,
		XTickWidth:     0.8,
		XTickColor:     "#666666",
		YTickLength:    0,
		InlineLabel:    TextStyle{Size: 9},
		LineSpacing:    1.2,
		TightLayoutPad: 1.08,

		Margins: &Margins{Top: 0.78, Bottom: 0.12, Left: 0.10, Right: 0.88},

		Masthead: CanvasRect{X: 0, Y: 0.96, W: 1, H: 0.04, Color: "#e3120b"},
		Title: CanvasText{
			Text: "The automation gap", X: 0.10, Y: 0.90,
			TextStyle: TextStyle{Size: 16, Bold: true, Color: "#1a1a1a"},
		},
		Subtitle: CanvasText{
			Text: "AI adoption in testing vs. maintenance burden reduction, %", X: 0.10, Y: 0.85,
			TextStyle: TextStyle{Size: 11, Color: "#666666"},
		},
		Source: CanvasText{
			Text: "Sources: Tricentis Research; TestGuild Automation Survey 2018-2025", X: 0.10, Y: 0.03,
			TextStyle: TextStyle{Size: 8, Color: "#888888"},
		},

		OutputPath: "assets/charts/testing-times-ai-gap.png",
	}
}

// PixelSize is the canvas size in pixels at the configured DPI.
func (s StyleConfig) PixelSize() (int, int) {
	return int(s.WidthIn*s.DPI + 0.5), int(s.HeightIn*s.DPI + 0.5)
}

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Validate rejects styles the renderer cannot draw sensibly.
func (s StyleConfig) Validate() error {
	if s.WidthIn <= 0 || s.HeightIn <= 0 {
		return fmt.Errorf("canvas size must be positive, got %vx%v", s.WidthIn, s.HeightIn)
	}
	if s.DPI <= 0 {
		return fmt.Errorf("dpi must be positive, got %v", s.DPI)
	}
	if s.XMax <= s.XMin || s.YMax <= s.YMin {
		return fmt.Errorf("axis range is empty: x [%v, %v], y [%v, %v]", s.XMin, s.XMax, s.YMin, s.YMax)
	}
	if s.OutputPath == "" {
		return fmt.Errorf("output path is empty")
	}
	if m := s.Margins; m != nil {
		if !(0 <= m.Left && m.Left < m.Right && m.Right <= 1) || !(0 <= m.Bottom && m.Bottom < m.Top && m.Top <= 1) {
			return fmt.Errorf("invalid margins %+v", *m)
		}
	}

	colors := []struct {
		name, value string
		optional    bool
	}{
		{"background", s.Background, false},
		{"grid", s.GridColor, false},
		{"spine", s.SpineColor, false},
		{"tick label", s.TickLabel.Color, false},
		{"x tick", s.XTickColor, false},
		{"series 0", s.Series[0].Color, false},
		{"series 1", s.Series[1].Color, false},
		{"end label", s.EndLabel.Color, true},
		{"inline label", s.InlineLabel.Color, true},
		{"masthead", s.Masthead.Color, false},
		{"title", s.Title.Color, false},
		{"subtitle", s.Subtitle.Color, false},
		{"source", s.Source.Color, false},
	}
	for _, c := range colors {
		if c.optional && c.value == "" {
			continue
		}
		if !hexColor.MatchString(c.value) {
			return fmt.Errorf("%s color %q is not #rrggbb", c.name, c.value)
		}
	}
	return nil
}
