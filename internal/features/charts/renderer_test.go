package charts

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	iofs "io/fs"
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"

	storage "blog-charts/internal/infra/fs"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func newTestRenderer(t *testing.T, fs afero.Fs) *Renderer {
	t.Helper()
	fonts, err := EmbeddedFonts()
	require.NoError(t, err)
	return NewRenderer(storage.NewStore(fs, false), fonts)
}

func styleAt(path string) StyleConfig {
	style := DefaultStyle()
	style.OutputPath = path
	return style
}

func decodePNG(t *testing.T, path string) (image.Image, []byte) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return img, data
}

func pixel(img image.Image, x, y int) color.NRGBA {
	return color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
}

func TestRender_AutomationGap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "testing-times-ai-gap.png")
	r := newTestRenderer(t, afero.NewOsFs())

	res, err := r.RenderAutomationGap(context.Background(), styleAt(path))
	require.NoError(t, err)

	require.Equal(t, path, res.Path)
	require.Equal(t, 2400, res.Width)
	require.Equal(t, 1650, res.Height)
	require.Positive(t, res.Size)

	img, data := decodePNG(t, path)
	require.Equal(t, image.Rect(0, 0, 2400, 1650), img.Bounds())
	require.Equal(t, int64(len(data)), res.Size)

	dpi, err := DPIOf(data)
	require.NoError(t, err)
	require.Equal(t, 300.0, dpi)

	// opaque background in the empty bottom-left corner
	require.Equal(t, color.NRGBA{0xf1, 0xf0, 0xe9, 0xff}, pixel(img, 5, 1645))
	// masthead bar across the top edge
	require.Equal(t, color.NRGBA{0xe3, 0x12, 0x0b, 0xff}, pixel(img, 1200, 10))
	require.Equal(t, color.NRGBA{0xe3, 0x12, 0x0b, 0xff}, pixel(img, 2395, 60))
	// just below the bar is background again
	require.Equal(t, color.NRGBA{0xf1, 0xf0, 0xe9, 0xff}, pixel(img, 2395, 70))
}

func TestRender_SceneText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chart.png")
	res, err := newTestRenderer(t, afero.NewOsFs()).RenderAutomationGap(context.Background(), styleAt(path))
	require.NoError(t, err)

	s := res.Scene
	require.Equal(t, []string{"81%", "18%"}, s.Texts(RoleEndLabel))
	require.Equal(t, []string{"0", "20", "40", "60", "80", "100"}, s.Texts(RoleYTick))
	require.Equal(t, []string{"2018", "2019", "2020", "2021", "2022", "2023", "2024", "2025"}, s.Texts(RoleXTick))
	require.Equal(t, []string{"AI adoption", "in testing", "Maintenance", "burden reduction"}, s.Texts(RoleInlineLabel))
	require.Equal(t, []string{"The automation gap"}, s.Texts(RoleTitle))
	require.Equal(t, []string{"AI adoption in testing vs. maintenance burden reduction, %"}, s.Texts(RoleSubtitle))
	require.Equal(t, []string{"Sources: Tricentis Research; TestGuild Automation Survey 2018-2025"}, s.Texts(RoleSource))
}

func TestRender_PlotBoxFollowsMarginOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chart.png")
	res, err := newTestRenderer(t, afero.NewOsFs()).RenderAutomationGap(context.Background(), styleAt(path))
	require.NoError(t, err)

	plot := res.Scene.Plot
	require.InDelta(t, 240, plot.Left, 1e-9)
	require.InDelta(t, 2112, plot.Right, 1e-9)
	require.InDelta(t, 363, plot.Top, 1e-9)
	require.InDelta(t, 1452, plot.Bottom, 1e-9)
}

func TestRender_MismatchedSeriesWritesNothing(t *testing.T) {
	a, b := AutomationGap()
	shifted := Series{Name: b.Name}
	for _, p := range b.Points {
		shifted.Points = append(shifted.Points, Point{Year: p.Year + 1, Value: p.Value})
	}

	tests := []struct {
		name string
		a, b Series
	}{
		{"8 vs 7 points", a, Series{Name: b.Name, Points: b.Points[:7]}},
		{"different years", a, shifted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "chart.png")

			_, err := newTestRenderer(t, afero.NewOsFs()).Render(context.Background(), tt.a, tt.b, styleAt(path))
			require.ErrorIs(t, err, ErrSeriesMismatch)
			require.True(t, IsInputError(err))

			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			require.Empty(t, entries)
		})
	}
}

func TestRender_NonFiniteValueFailsBeforeDrawing(t *testing.T) {
	years := []int{2018, 2019}
	a := newSeries("a", years, []float64{1, math.NaN()})
	b := newSeries("b", years, []float64{1, 2})

	mem := afero.NewMemMapFs()
	_, err := newTestRenderer(t, mem).Render(context.Background(), a, b, styleAt("chart.png"))
	require.ErrorIs(t, err, ErrValueOutOfRange)
	require.True(t, IsInputError(err))

	exists, _ := afero.Exists(mem, "chart.png")
	require.False(t, exists)
}

func TestRender_YTicksFixedRegardlessOfData(t *testing.T) {
	years := []int{2018, 2019, 2020}
	a := newSeries("low", years, []float64{1, 2, 3})
	b := newSeries("lower", years, []float64{0, 0.5, 1})

	mem := afero.NewMemMapFs()
	res, err := newTestRenderer(t, mem).Render(context.Background(), a, b, styleAt("chart.png"))
	require.NoError(t, err)

	require.Equal(t, []string{"0", "20", "40", "60", "80", "100"}, res.Scene.Texts(RoleYTick))
	require.Equal(t, []string{"3%", "1%"}, res.Scene.Texts(RoleEndLabel))
}

func TestRender_Deterministic(t *testing.T) {
	dir := t.TempDir()
	r := newTestRenderer(t, afero.NewOsFs())

	first, err := r.RenderAutomationGap(context.Background(), styleAt(filepath.Join(dir, "a.png")))
	require.NoError(t, err)
	second, err := r.RenderAutomationGap(context.Background(), styleAt(filepath.Join(dir, "b.png")))
	require.NoError(t, err)

	require.Equal(t, first.Size, second.Size)
	imgA, _ := decodePNG(t, first.Path)
	imgB, _ := decodePNG(t, second.Path)
	require.Equal(t, imgA.Bounds(), imgB.Bounds())
}

func TestRender_RerunOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chart.png")
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0644))

	res, err := newTestRenderer(t, afero.NewOsFs()).RenderAutomationGap(context.Background(), styleAt(path))
	require.NoError(t, err)

	img, _ := decodePNG(t, path)
	require.Equal(t, res.Width, img.Bounds().Dx())
}

func TestRender_FilesystemErrors(t *testing.T) {
	t.Run("missing directory", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "assets", "charts", "chart.png")
		_, err := newTestRenderer(t, afero.NewOsFs()).RenderAutomationGap(context.Background(), styleAt(path))
		require.ErrorIs(t, err, iofs.ErrNotExist)
		require.False(t, IsInputError(err))
	})

	t.Run("read-only filesystem", func(t *testing.T) {
		base := afero.NewMemMapFs()
		require.NoError(t, base.MkdirAll("assets/charts", 0755))
		r := newTestRenderer(t, afero.NewReadOnlyFs(base))

		_, err := r.RenderAutomationGap(context.Background(), styleAt("assets/charts/chart.png"))
		require.ErrorIs(t, err, iofs.ErrPermission)

		exists, _ := afero.Exists(base, "assets/charts/chart.png")
		require.False(t, exists)
	})
}

func TestRender_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	mem := afero.NewMemMapFs()
	_, err := newTestRenderer(t, mem).RenderAutomationGap(ctx, styleAt("chart.png"))
	require.ErrorIs(t, err, context.Canceled)

	exists, _ := afero.Exists(mem, "chart.png")
	require.False(t, exists)
}

func TestRender_ConcurrentStyles(t *testing.T) {
	r := newTestRenderer(t, afero.NewMemMapFs())

	small := styleAt("small.png")
	small.DPI = 100
	small.Background = "#ffffff"
	large := styleAt("large.png")

	var wg sync.WaitGroup
	results := make([]*Result, 2)
	errs := make([]error, 2)
	for i, style := range []StyleConfig{small, large} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = r.RenderAutomationGap(context.Background(), style)
		}()
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	require.Equal(t, [2]int{800, 550}, [2]int{results[0].Width, results[0].Height})
	require.Equal(t, [2]int{2400, 1650}, [2]int{results[1].Width, results[1].Height})

	// the default style value was not touched by the other render
	require.Equal(t, "#f1f0e9", DefaultStyle().Background)
}

func TestRender_InvalidStyle(t *testing.T) {
	style := styleAt("chart.png")
	style.Series[0].Color = "blue"

	_, err := newTestRenderer(t, afero.NewMemMapFs()).RenderAutomationGap(context.Background(), style)
	require.Error(t, err)
	require.Contains(t, err.Error(), "series 0 color")
}
