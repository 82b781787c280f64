package charts

// Chart rendering: validate input, compose the scene, rasterize with gg,
// write the PNG in one step. Nothing touches the filesystem before the
// input is known to be good.

import (
	"context"
	"errors"
	"fmt"
	"time"

	storage "blog-charts/internal/infra/fs"
	log "blog-charts/internal/infra/log"

	"go.uber.org/zap"
)

// Result describes a written chart.
type Result struct {
	Path     string
	Width    int
	Height   int
	DPI      float64
	Size     int64
	Scene    *Scene
	Duration time.Duration
}

// Renderer draws charts into a Store. It keeps no per-render state, so one
// Renderer can serve concurrent calls with different styles.
type Renderer struct {
	store *storage.Store
	fonts *Fonts
}

func NewRenderer(store *storage.Store, fonts *Fonts) *Renderer {
	return &Renderer{store: store, fonts: fonts}
}

// Render draws a and b with style and writes the PNG to style.OutputPath.
func (r *Renderer) Render(ctx context.Context, a, b Series, style StyleConfig) (res *Result, err error) {
	start := time.Now()

	if err := ValidatePair(a, b); err != nil {
		return nil, fmt.Errorf("invalid chart data: %w", err)
	}
	if err := style.Validate(); err != nil {
		return nil, fmt.Errorf("invalid chart style: %w", err)
	}

	faces := r.fonts.newFaceCache(style.DPI)
	scene := compose([2]Series{a, b}, style, faces)

	surf := acquireSurface(scene.Width, scene.Height, faces)
	defer func() {
		if cerr := surf.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to release drawing surface: %w", cerr)
		}
	}()

	data, err := surf.rasterize(ctx, scene)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := r.store.WriteFile(style.OutputPath, data); err != nil {
		log.LogError("Failed to save chart", zap.String("path", style.OutputPath), zap.Error(err))
		return nil, fmt.Errorf("failed to save chart: %w", err)
	}

	size, err := r.store.Verify(style.OutputPath)
	if err != nil {
		return nil, err
	}

	res = &Result{
		Path:     style.OutputPath,
		Width:    scene.Width,
		Height:   scene.Height,
		DPI:      style.DPI,
		Size:     size,
		Scene:    scene,
		Duration: time.Since(start),
	}

	log.LogInfo("Chart rendered",
		zap.String("path", res.Path),
		zap.Int("width", res.Width),
		zap.Int("height", res.Height),
		zap.Float64("dpi", res.DPI),
		zap.Int64("fileSize", res.Size),
		zap.Int("elements", len(scene.Elements)),
		zap.String("font", r.fonts.Source))

	return res, nil
}

// RenderAutomationGap renders the built-in dataset with style.
func (r *Renderer) RenderAutomationGap(ctx context.Context, style StyleConfig) (*Result, error) {
	a, b := AutomationGap()
	return r.Render(ctx, a, b, style)
}

// IsInputError reports whether err came from bad series data rather than IO.
func IsInputError(err error) bool {
	return errors.Is(err, ErrSeriesMismatch) ||
		errors.Is(err, ErrEmptySeries) ||
		errors.Is(err, ErrValueOutOfRange) ||
		errors.Is(err, ErrYearsNotOrdered)
}
