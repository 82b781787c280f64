package charts

import (
	"golang.org/x/image/font"
)

// Box is a pixel rectangle, origin top-left.
type Box struct {
	Left, Top, Right, Bottom float64
}

func (b Box) Width() float64  { return b.Right - b.Left }
func (b Box) Height() float64 { return b.Bottom - b.Top }

// layout maps data, point and canvas-fraction coordinates to pixels.
type layout struct {
	width, height float64
	dpi           float64
	plot          Box
	style         StyleConfig
}

func newLayout(style StyleConfig, plot Box) *layout {
	w, h := style.PixelSize()
	return &layout{
		width:  float64(w),
		height: float64(h),
		dpi:    style.DPI,
		plot:   plot,
		style:  style,
	}
}

// pt converts points to pixels.
func (l *layout) pt(points float64) float64 {
	return points * l.dpi / 72
}

func (l *layout) dataX(x float64) float64 {
	s := l.style
	return l.plot.Left + (x-s.XMin)/(s.XMax-s.XMin)*l.plot.Width()
}

func (l *layout) dataY(y float64) float64 {
	s := l.style
	return l.plot.Bottom - (y-s.YMin)/(s.YMax-s.YMin)*l.plot.Height()
}

// canvas converts a bottom-left canvas fraction to pixels.
func (l *layout) canvas(fx, fy float64) (float64, float64) {
	return fx * l.width, (1 - fy) * l.height
}

// plotBoxFromMargins turns canvas-fraction margins into the plot box.
func plotBoxFromMargins(m Margins, width, height float64) Box {
	return Box{
		Left:   m.Left * width,
		Right:  m.Right * width,
		Top:    (1 - m.Top) * height,
		Bottom: (1 - m.Bottom) * height,
	}
}

// tickExtents is what the tight pass needs to know about the axis decorations, in pixels.
type tickExtents struct {
	yLabelWidth  float64 // widest y tick label
	xLabelHeight float64
	xLabelHalf   float64 // half of the widest x tick label, spills past the plot edges
}

// tightMargins fits the plot box to the tick decorations with a uniform pad.
// It only looks at the axes, so it reserves no header space.
func tightMargins(style StyleConfig, ext tickExtents) Margins {
	w, h := style.PixelSize()
	width, height := float64(w), float64(h)
	toPx := func(points float64) float64 { return points * style.DPI / 72 }

	pad := toPx(style.TightLayoutPad * style.TickLabel.Size)
	left := pad + ext.yLabelWidth + toPx(style.YTickLength+style.TickPad)
	bottom := pad + ext.xLabelHeight + toPx(style.XTickLength+style.TickPad)
	right := pad + ext.xLabelHalf
	top := pad

	return Margins{
		Left:   left / width,
		Right:  1 - right/width,
		Bottom: bottom / height,
		Top:    1 - top/height,
	}
}

// textMetrics in pixels for one face.
type textMetrics struct {
	ascent, descent, height float64
}

func metricsOf(face font.Face) textMetrics {
	m := face.Metrics()
	return textMetrics{
		ascent:  fixedToFloat(m.Ascent),
		descent: fixedToFloat(m.Descent),
		height:  fixedToFloat(m.Height),
	}
}

func measure(face font.Face, s string) float64 {
	return fixedToFloat(font.MeasureString(face, s))
}

func fixedToFloat[T ~int32](v T) float64 {
	return float64(v) / 64
}

// VAlign is where the y coordinate sits relative to a line of text.
type VAlign int

const (
	VBaseline VAlign = iota
	VTop
	VCenter
	VBottom
)

// baselineFor converts an aligned y into a baseline y for one line.
func baselineFor(y float64, align VAlign, m textMetrics) float64 {
	switch align {
	case VTop:
		return y + m.ascent
	case VCenter:
		return y + (m.ascent-m.descent)/2
	case VBottom:
		return y - m.descent
	default:
		return y
	}
}

// blockBaselines lays out n lines as one block aligned at y.
func blockBaselines(y float64, align VAlign, n int, spacing float64, m textMetrics) []float64 {
	step := m.height * spacing
	blockHeight := m.ascent + m.descent + float64(n-1)*step

	var first float64
	switch align {
	case VTop:
		first = y + m.ascent
	case VBottom:
		first = y - blockHeight + m.ascent
	case VCenter:
		first = y - blockHeight/2 + m.ascent
	default:
		first = y
	}

	out := make([]float64, n)
	for i := range out {
		out[i] = first + float64(i)*step
	}
	return out
}
