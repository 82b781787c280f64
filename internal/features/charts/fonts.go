package charts

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	log "blog-charts/internal/infra/log"

	"github.com/golang/freetype/truetype"
	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// FontOptions selects the TrueType files used for chart text.
// Empty paths fall back to the search list, then to the embedded Go fonts.
type FontOptions struct {
	Regular      string
	Bold         string
	EmbeddedOnly bool
}

// Fonts holds parsed regular and bold fonts. Parsed fonts are read-only
// and can be shared between concurrent renders; faces are not.
type Fonts struct {
	regular *truetype.Font
	bold    *truetype.Font
	Source  string // where the regular face came from, for logs
}

// DejaVu Sans first to match the house style, then common sans fallbacks.
// Only .ttf files: freetype cannot parse .ttc collections or CFF .otf.
var regularFontPaths = []string{
	"etc/fonts/DejaVuSans.ttf",
	"./etc/fonts/DejaVuSans.ttf",
	"~/.local/share/fonts/DejaVuSans.ttf",
	"~/Library/Fonts/DejaVuSans.ttf",
	"/Library/Fonts/DejaVuSans.ttf",
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/TTF/DejaVuSans.ttf",
	"/usr/share/fonts/dejavu/DejaVuSans.ttf",
	"/usr/local/share/fonts/DejaVuSans.ttf",
	"/usr/share/fonts/truetype/liberation/LiberationSans-Regular.ttf",
	"/System/Library/Fonts/Supplemental/Arial.ttf",
}

var boldFontPaths = []string{
	"etc/fonts/DejaVuSans-Bold.ttf",
	"./etc/fonts/DejaVuSans-Bold.ttf",
	"~/.local/share/fonts/DejaVuSans-Bold.ttf",
	"~/Library/Fonts/DejaVuSans-Bold.ttf",
	"/Library/Fonts/DejaVuSans-Bold.ttf",
	"/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf",
	"/usr/share/fonts/TTF/DejaVuSans-Bold.ttf",
	"/usr/share/fonts/dejavu/DejaVuSans-Bold.ttf",
	"/usr/local/share/fonts/DejaVuSans-Bold.ttf",
	"/usr/share/fonts/truetype/liberation/LiberationSans-Bold.ttf",
	"/System/Library/Fonts/Supplemental/Arial Bold.ttf",
}

const embeddedSource = "embedded:gofont"

// EmbeddedFonts returns the Go fonts compiled into the binary.
func EmbeddedFonts() (*Fonts, error) {
	regular, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse embedded regular font: %w", err)
	}
	bold, err := truetype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse embedded bold font: %w", err)
	}
	return &Fonts{regular: regular, bold: bold, Source: embeddedSource}, nil
}

// LoadFonts resolves fonts per opts. An explicitly configured path that
// cannot be loaded is an error; a failed search is not.
func LoadFonts(opts FontOptions) (*Fonts, error) {
	embedded, err := EmbeddedFonts()
	if err != nil {
		return nil, err
	}
	if opts.EmbeddedOnly {
		return embedded, nil
	}

	fonts := &Fonts{regular: embedded.regular, bold: embedded.bold, Source: embeddedSource}

	regular, path, err := resolveFont(opts.Regular, regularFontPaths)
	switch {
	case err != nil:
		return nil, err
	case regular != nil:
		fonts.regular = regular
		fonts.Source = path
		log.LogInfo("Loaded chart font", zap.String("path", path))
	default:
		log.LogWarn("No system font found, using embedded font",
			zap.Int("paths_checked", len(regularFontPaths)))
	}

	bold, path, err := resolveFont(opts.Bold, boldFontPaths)
	switch {
	case err != nil:
		return nil, err
	case bold != nil:
		fonts.bold = bold
		log.LogInfo("Loaded chart bold font", zap.String("path", path))
	case regular != nil:
		// no bold sibling: use the regular face rather than mixing families
		fonts.bold = regular
		log.LogWarn("No bold font found, using regular face for bold text")
	}

	return fonts, nil
}

// resolveFont loads explicit if set, otherwise the first parseable file in candidates.
// Returns a nil font when nothing was found.
func resolveFont(explicit string, candidates []string) (*truetype.Font, string, error) {
	if explicit != "" {
		f, err := parseFontFile(expandPath(explicit))
		if err != nil {
			return nil, "", fmt.Errorf("failed to load font %s: %w", explicit, err)
		}
		return f, explicit, nil
	}

	for _, candidate := range candidates {
		path := expandPath(candidate)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		f, err := parseFontFile(path)
		if err != nil {
			log.LogWarn("Font file exists but failed to load", zap.String("path", path), zap.Error(err))
			continue
		}
		return f, path, nil
	}
	return nil, "", nil
}

func parseFontFile(path string) (*truetype.Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return truetype.Parse(data)
}

func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(homeDir, path[1:])
		}
	}
	return path
}

type faceKey struct {
	size float64
	bold bool
}

// faceCache hands out font faces at one DPI for a single render.
// Faces hold glyph caches and must be closed.
type faceCache struct {
	fonts *Fonts
	dpi   float64

	mu    sync.Mutex
	faces map[faceKey]font.Face
}

func (f *Fonts) newFaceCache(dpi float64) *faceCache {
	return &faceCache{fonts: f, dpi: dpi, faces: make(map[faceKey]font.Face)}
}

// face returns the face for a point size.
func (c *faceCache) face(size float64, bold bool) font.Face {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := faceKey{size: size, bold: bold}
	if face, ok := c.faces[key]; ok {
		return face
	}

	ttf := c.fonts.regular
	if bold {
		ttf = c.fonts.bold
	}
	face := truetype.NewFace(ttf, &truetype.Options{
		Size:    size,
		DPI:     c.dpi,
		Hinting: font.HintingNone,
	})
	c.faces[key] = face
	return face
}

func (c *faceCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	for key, face := range c.faces {
		if err := face.Close(); err != nil {
			errs = append(errs, err)
		}
		delete(c.faces, key)
	}
	return errors.Join(errs...)
}
