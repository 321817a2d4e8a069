package document

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"strings"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
)

// renderScale rasterizes pages at 2x page points (144 dpi equivalent).
const renderScale = 2.0

type faceKey struct {
	size float64
	bold bool
}

// Renderer rasterizes laid-out pages and doubles as the Measurer the
// layout runs against, so measured and drawn widths agree.
type Renderer struct {
	regular *truetype.Font
	bold    *truetype.Font

	mu    sync.Mutex
	faces map[faceKey]font.Face
}

// NewRenderer loads the document fonts from DOCUMENT_FONT and, when set,
// DOCUMENT_FONT_BOLD.
func NewRenderer() (*Renderer, error) {
	fontPath := strings.TrimSpace(os.Getenv("DOCUMENT_FONT"))
	if fontPath == "" {
		return nil, fmt.Errorf("Env var DOCUMENT_FONT is empty")
	}
	regular, err := loadFont(fontPath)
	if err != nil {
		return nil, fmt.Errorf("could not load document font: %w", err)
	}

	bold := regular
	if boldPath := strings.TrimSpace(os.Getenv("DOCUMENT_FONT_BOLD")); boldPath != "" {
		bold, err = loadFont(boldPath)
		if err != nil {
			return nil, fmt.Errorf("could not load bold document font: %w", err)
		}
	}

	return &Renderer{
		regular: regular,
		bold:    bold,
		faces:   map[faceKey]font.Face{},
	}, nil
}

func loadFont(path string) (*truetype.Font, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read font file: %w", err)
	}
	parsed, err := truetype.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TTF: %w", err)
	}
	return parsed, nil
}

func (r *Renderer) face(size float64, bold bool) font.Face {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := faceKey{size: size, bold: bold}
	if f, ok := r.faces[key]; ok {
		return f
	}

	src := r.regular
	if bold {
		src = r.bold
	}
	f := truetype.NewFace(src, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	r.faces[key] = f
	return f
}

func (r *Renderer) TextWidth(text string, size float64) float64 {
	dc := gg.NewContext(1, 1)
	dc.SetFontFace(r.face(size, false))
	w, _ := dc.MeasureString(text)
	return w
}

// RenderPage rasterizes one page onto a white canvas.
func (r *Renderer) RenderPage(p Page) image.Image {
	dc := gg.NewContext(int(PageWidth*renderScale), int(PageHeight*renderScale))
	dc.SetColor(color.White)
	dc.Clear()
	dc.Scale(renderScale, renderScale)

	dc.SetColor(color.RGBA{R: 79, G: 70, B: 229, A: 255})
	for _, rule := range p.Rules {
		dc.SetLineWidth(rule.Width)
		dc.DrawLine(rule.X1, rule.Y, rule.X2, rule.Y)
		dc.Stroke()
	}

	for _, t := range p.Texts {
		if t.Bold {
			dc.SetColor(color.RGBA{R: 55, G: 48, B: 163, A: 255})
		} else {
			dc.SetColor(color.RGBA{R: 55, G: 65, B: 81, A: 255})
		}
		dc.SetFontFace(r.face(t.Size, t.Bold))
		dc.DrawString(t.Value, t.X, t.Y)
	}

	return dc.Image()
}
