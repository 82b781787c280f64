package charts

import (
	"strconv"
	"strings"

	"github.com/fogleman/gg"
	"github.com/samber/lo"
)

// TextRole tags text elements so a scene can be inspected without OCR.
type TextRole string

const (
	RoleEndLabel    TextRole = "end-label"
	RoleYTick       TextRole = "y-tick"
	RoleXTick       TextRole = "x-tick"
	RoleInlineLabel TextRole = "inline-label"
	RoleTitle       TextRole = "title"
	RoleSubtitle    TextRole = "subtitle"
	RoleSource      TextRole = "source"
)

type HAlign int

const (
	HLeft HAlign = iota
	HCenter
	HRight
)

// Element is one drawing step. Elements paint in scene order.
type Element interface {
	draw(dc *gg.Context, faces *faceCache)
}

// Rect is a filled rectangle.
type Rect struct {
	Box   Box
	Color string
}

// Line is a single stroked segment.
type Line struct {
	X1, Y1, X2, Y2 float64
	Width          float64
	Color          string
}

// Polyline is a connected series line, clipped to Clip.
type Polyline struct {
	Points [][2]float64
	Width  float64
	Color  string
	Clip   Box
}

// Markers are filled point markers, clipped to Clip.
type Markers struct {
	Points [][2]float64
	Shape  MarkerShape
	Size   float64 // pixels
	Color  string
	Clip   Box
}

// Text is one line of text with its baseline at Y.
type Text struct {
	Role  TextRole
	Text  string
	X, Y  float64
	Align HAlign
	Size  float64 // points
	Bold  bool
	Color string
}

// Scene is the composed chart, ready to rasterize.
type Scene struct {
	Width, Height int
	DPI           float64
	Plot          Box
	Elements      []Element
}

func (s *Scene) add(e ...Element) {
	s.Elements = append(s.Elements, e...)
}

// Texts returns the strings of all text elements with the given role, in draw order.
func (s *Scene) Texts(role TextRole) []string {
	var out []string
	for _, e := range s.Elements {
		if t, ok := e.(Text); ok && t.Role == role {
			out = append(out, t.Text)
		}
	}
	return out
}

// compose lays the chart out. Series must already be validated.
func compose(series [2]Series, style StyleConfig, faces *faceCache) *Scene {
	w, h := style.PixelSize()
	width, height := float64(w), float64(h)

	tickFace := faces.face(style.TickLabel.Size, style.TickLabel.Bold)
	tickMetrics := metricsOf(tickFace)

	yLabels := lo.Map(style.YTicks, func(v float64, _ int) string {
		return strconv.FormatFloat(v, 'f', -1, 64)
	})
	years := series[0].Years()
	xLabels := lo.Map(years, func(y int, _ int) string { return strconv.Itoa(y) })

	// Tight pass first; an explicit override wins.
	margins := tightMargins(style, tickExtents{
		yLabelWidth:  lo.Max(lo.Map(yLabels, func(s string, _ int) float64 { return measure(tickFace, s) })),
		xLabelHeight: tickMetrics.ascent + tickMetrics.descent,
		xLabelHalf:   lo.Max(lo.Map(xLabels, func(s string, _ int) float64 { return measure(tickFace, s) })) / 2,
	})
	if style.Margins != nil {
		margins = *style.Margins
	}

	plot := plotBoxFromMargins(margins, width, height)
	l := newLayout(style, plot)

	scene := &Scene{Width: w, Height: h, DPI: style.DPI, Plot: plot}

	// background, canvas and plot area
	scene.add(
		Rect{Box: Box{Right: width, Bottom: height}, Color: style.Background},
		Rect{Box: plot, Color: style.Background},
	)

	// horizontal gridlines under the data
	for _, v := range style.YTicks {
		y := l.dataY(v)
		scene.add(Line{X1: plot.Left, Y1: y, X2: plot.Right, Y2: y, Width: l.pt(style.GridWidth), Color: style.GridColor})
	}

	// series lines and markers
	for i, s := range series {
		ss := style.Series[i]
		pts := lo.Map(s.Points, func(p Point, _ int) [2]float64 {
			return [2]float64{l.dataX(float64(p.Year)), l.dataY(p.Value)}
		})
		scene.add(
			Polyline{Points: pts, Width: l.pt(ss.LineWidth), Color: ss.Color, Clip: plot},
			Markers{Points: pts, Shape: ss.Marker, Size: l.pt(ss.MarkerSize), Color: ss.Color, Clip: plot},
		)
	}

	// bottom spine only
	scene.add(Line{X1: plot.Left, Y1: plot.Bottom, X2: plot.Right, Y2: plot.Bottom, Width: l.pt(style.SpineWidth), Color: style.SpineColor})

	// end-of-line values
	endFace := faces.face(style.EndLabel.Size, style.EndLabel.Bold)
	for i, s := range series {
		last := s.Last()
		scene.add(Text{
			Role:  RoleEndLabel,
			Text:  formatPercent(last.Value),
			X:     l.dataX(float64(last.Year)) + l.pt(style.EndLabelOffset),
			Y:     baselineFor(l.dataY(last.Value), VCenter, metricsOf(endFace)),
			Align: HLeft,
			Size:  style.EndLabel.Size,
			Bold:  style.EndLabel.Bold,
			Color: colorOr(style.EndLabel.Color, style.Series[i].Color),
		})
	}

	// ticks and tick labels
	yLabelX := plot.Left - l.pt(style.YTickLength+style.TickPad)
	for i, v := range style.YTicks {
		scene.add(Text{
			Role:  RoleYTick,
			Text:  yLabels[i],
			X:     yLabelX,
			Y:     baselineFor(l.dataY(v), VCenter, tickMetrics),
			Align: HRight,
			Size:  style.TickLabel.Size,
			Bold:  style.TickLabel.Bold,
			Color: style.TickLabel.Color,
		})
	}

	tickLen := l.pt(style.XTickLength)
	xLabelTop := plot.Bottom + tickLen + l.pt(style.TickPad)
	for i, year := range years {
		x := l.dataX(float64(year))
		if tickLen > 0 {
			scene.add(Line{X1: x, Y1: plot.Bottom, X2: x, Y2: plot.Bottom + tickLen, Width: l.pt(style.XTickWidth), Color: style.XTickColor})
		}
		scene.add(Text{
			Role:  RoleXTick,
			Text:  xLabels[i],
			X:     x,
			Y:     baselineFor(xLabelTop, VTop, tickMetrics),
			Align: HCenter,
			Size:  style.TickLabel.Size,
			Bold:  style.TickLabel.Bold,
			Color: style.TickLabel.Color,
		})
	}

	// inline labels, direction fixed per series
	inlineMetrics := metricsOf(faces.face(style.InlineLabel.Size, style.InlineLabel.Bold))
	for i := range series {
		ss := style.Series[i]
		label := ss.Label
		if label.Text == "" {
			continue
		}
		x := l.dataX(label.AnchorX)
		y := l.dataY(label.AnchorY)
		align := VBottom
		if label.Placement == PlaceBelow {
			y += l.pt(label.Offset)
			align = VTop
		} else {
			y -= l.pt(label.Offset)
		}

		lines := strings.Split(label.Text, "\n")
		for j, baseline := range blockBaselines(y, align, len(lines), style.LineSpacing, inlineMetrics) {
			scene.add(Text{
				Role:  RoleInlineLabel,
				Text:  lines[j],
				X:     x,
				Y:     baseline,
				Align: HCenter,
				Size:  style.InlineLabel.Size,
				Bold:  style.InlineLabel.Bold,
				Color: colorOr(style.InlineLabel.Color, ss.Color),
			})
		}
	}

	// masthead bar, canvas-relative
	m := style.Masthead
	if m.W > 0 && m.H > 0 {
		left, bottom := l.canvas(m.X, m.Y)
		right, top := l.canvas(m.X+m.W, m.Y+m.H)
		scene.add(Rect{Box: Box{Left: left, Top: top, Right: right, Bottom: bottom}, Color: m.Color})
	}

	// title block and source, canvas-relative
	for _, ct := range []struct {
		role TextRole
		text CanvasText
	}{
		{RoleTitle, style.Title},
		{RoleSubtitle, style.Subtitle},
		{RoleSource, style.Source},
	} {
		if ct.text.Text == "" {
			continue
		}
		x, y := l.canvas(ct.text.X, ct.text.Y)
		scene.add(Text{
			Role:  ct.role,
			Text:  ct.text.Text,
			X:     x,
			Y:     y,
			Align: HLeft,
			Size:  ct.text.Size,
			Bold:  ct.text.Bold,
			Color: ct.text.Color,
		})
	}

	return scene
}

// colorOr returns c, or fallback when c is empty.
func colorOr(c, fallback string) string {
	if c == "" {
		return fallback
	}
	return c
}
