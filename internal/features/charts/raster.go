package charts

import (
	"bytes"
	"context"
	"fmt"

	"github.com/fogleman/gg"
)

// surface is the drawing context for one render. Close releases it and
// every face it handed out; call it on all paths.
type surface struct {
	dc    *gg.Context
	faces *faceCache
}

func acquireSurface(width, height int, faces *faceCache) *surface {
	return &surface{dc: gg.NewContext(width, height), faces: faces}
}

func (s *surface) Close() error {
	s.dc = nil
	return s.faces.Close()
}

// rasterize paints the scene and returns PNG bytes with DPI metadata.
func (s *surface) rasterize(ctx context.Context, scene *Scene) ([]byte, error) {
	for _, e := range scene.Elements {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		e.draw(s.dc, s.faces)
	}

	var buf bytes.Buffer
	if err := s.dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode chart: %w", err)
	}
	return withDPI(buf.Bytes(), scene.DPI)
}

func (r Rect) draw(dc *gg.Context, _ *faceCache) {
	dc.SetHexColor(r.Color)
	dc.DrawRectangle(r.Box.Left, r.Box.Top, r.Box.Width(), r.Box.Height())
	dc.Fill()
}

func (l Line) draw(dc *gg.Context, _ *faceCache) {
	dc.SetHexColor(l.Color)
	dc.SetLineWidth(l.Width)
	dc.SetLineCap(gg.LineCapButt)
	dc.DrawLine(l.X1, l.Y1, l.X2, l.Y2)
	dc.Stroke()
}

func clipTo(dc *gg.Context, b Box) {
	dc.DrawRectangle(b.Left, b.Top, b.Width(), b.Height())
	dc.Clip()
}

func (p Polyline) draw(dc *gg.Context, _ *faceCache) {
	if len(p.Points) < 2 {
		return
	}
	dc.Push()
	defer dc.Pop()
	clipTo(dc, p.Clip)

	dc.SetHexColor(p.Color)
	dc.SetLineWidth(p.Width)
	dc.SetLineJoin(gg.LineJoinRound)
	dc.SetLineCap(gg.LineCapSquare)
	dc.MoveTo(p.Points[0][0], p.Points[0][1])
	for _, pt := range p.Points[1:] {
		dc.LineTo(pt[0], pt[1])
	}
	dc.Stroke()
	dc.ResetClip()
}

func (m Markers) draw(dc *gg.Context, _ *faceCache) {
	dc.Push()
	defer dc.Pop()
	clipTo(dc, m.Clip)

	dc.SetHexColor(m.Color)
	half := m.Size / 2
	for _, pt := range m.Points {
		switch m.Shape {
		case MarkerSquare:
			dc.DrawRectangle(pt[0]-half, pt[1]-half, m.Size, m.Size)
		default:
			dc.DrawCircle(pt[0], pt[1], half)
		}
		dc.Fill()
	}
	dc.ResetClip()
}

func (t Text) draw(dc *gg.Context, faces *faceCache) {
	dc.SetFontFace(faces.face(t.Size, t.Bold))
	dc.SetHexColor(t.Color)

	var ax float64
	switch t.Align {
	case HCenter:
		ax = 0.5
	case HRight:
		ax = 1
	}
	// ay = 0 keeps Y on the baseline
	dc.DrawStringAnchored(t.Text, t.X, t.Y, ax, 0)
}
