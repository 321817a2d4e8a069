package document

import (
	"fmt"
	"image"
	"regexp"
	"strings"
	"time"

	"github.com/cathealth/cathealth-backend/internal/pkg/logger"
)

const Name = "DocumentSynthesizer"

// Synthesizer turns a wellness plan narrative into a paginated,
// print-ready PDF.
type Synthesizer struct {
	log      *logger.Logger
	renderer *Renderer
	layouter *Layouter
}

func NewSynthesizer(log *logger.Logger) (*Synthesizer, error) {
	renderer, err := NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("document renderer: %w", err)
	}
	return &Synthesizer{
		log:      log.With("service", Name),
		renderer: renderer,
		layouter: NewLayouter(renderer),
	}, nil
}

// Synthesize lays out the narrative into pages without rasterizing them.
func (s *Synthesizer) Synthesize(narrative, subject string) Document {
	return s.layouter.Layout(narrative, subject, time.Now())
}

// RenderPlanPDF produces the downloadable PDF for a wellness plan.
func (s *Synthesizer) RenderPlanPDF(catName, planMarkdown string) ([]byte, error) {
	doc := s.Synthesize(planMarkdown, catName)

	images := make([]image.Image, 0, len(doc.Pages))
	for _, page := range doc.Pages {
		images = append(images, s.renderer.RenderPage(page))
	}

	out, err := encodePDF(images)
	if err != nil {
		return nil, fmt.Errorf("encode pdf: %w", err)
	}
	s.log.Debug("rendered plan pdf",
		"subject", catName,
		"pages", len(doc.Pages),
		"bytes", len(out))
	return out, nil
}

var filenamePattern = regexp.MustCompile(`[^a-z0-9]+`)

// PlanFilename derives the download filename from the cat's name.
func PlanFilename(catName string) string {
	slug := filenamePattern.ReplaceAllString(strings.ToLower(catName), "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "cat"
	}
	return slug + "-wellness-plan.pdf"
}
