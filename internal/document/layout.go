package document

import (
	"fmt"
	"strings"
	"time"
)

// Page geometry in PDF points (US Letter).
const (
	PageWidth  = 612.0
	PageHeight = 792.0

	marginX      = 72.0
	flowTop      = 96.0
	flowBottom   = 712.0
	contentWidth = PageWidth - 2*marginX

	// Start a new page rather than open a section or paragraph in a sliver.
	minFlowSpace = 96.0

	coverOnly = 1
)

const footerDisclaimer = "This plan is for general guidance only and is not a substitute for veterinary care."

const emptyPlanNotice = "No plan content is available yet. Generate a wellness plan to fill these pages."

// Measurer reports rendered text width so layout stays independent of any
// drawing backend.
type Measurer interface {
	TextWidth(text string, size float64) float64
}

// Text is one positioned run. Y is the baseline.
type Text struct {
	Value string
	X, Y  float64
	Size  float64
	Bold  bool
}

// Rule is a horizontal decorative line.
type Rule struct {
	X1, Y, X2 float64
	Width     float64
}

type Page struct {
	Texts []Text
	Rules []Rule
}

// Document is the laid-out printable plan, ready for rendering.
type Document struct {
	Subject     string
	GeneratedAt time.Time
	Pages       []Page
}

type Layouter struct {
	m Measurer
}

func NewLayouter(m Measurer) *Layouter {
	return &Layouter{m: m}
}

// Layout paginates the narrative into a cover page plus flowed section
// pages. An empty narrative yields exactly the cover with a placeholder
// notice.
func (l *Layouter) Layout(narrative, subject string, generatedAt time.Time) Document {
	doc := Document{Subject: subject, GeneratedAt: generatedAt}

	empty := strings.TrimSpace(narrative) == ""
	doc.Pages = append(doc.Pages, l.coverPage(subject, generatedAt, empty))
	if empty {
		return doc
	}

	sections := ExtractSections(narrative)

	flow := newPageFlow(l.m, subject)
	for _, sec := range sections {
		flow.sectionBand(sec.Title)
		for _, para := range sec.Paragraphs {
			flow.paragraph(para)
		}
	}
	flow.closingRemark(fmt.Sprintf("Wishing %s a long, happy and healthy life from all of us at CatHealth.", subject))

	doc.Pages = append(doc.Pages, flow.pages...)
	l.applyFooters(&doc)
	return doc
}

func (l *Layouter) coverPage(subject string, generatedAt time.Time, empty bool) Page {
	var p Page
	center := func(text string, y, size float64, bold bool) {
		w := l.m.TextWidth(text, size)
		p.Texts = append(p.Texts, Text{Value: text, X: (PageWidth - w) / 2, Y: y, Size: size, Bold: bold})
	}

	p.Rules = append(p.Rules, Rule{X1: marginX, Y: 200, X2: PageWidth - marginX, Width: 2})
	center("CatHealth", 252, 36, true)
	center(fmt.Sprintf("Wellness & Behavior Plan for %s", subject), 310, 20, false)
	center(generatedAt.Format("January 2, 2006"), 348, 12, false)
	p.Rules = append(p.Rules, Rule{X1: marginX, Y: 392, X2: PageWidth - marginX, Width: 2})

	if empty {
		center(emptyPlanNotice, 470, 12, false)
	}
	return p
}

// applyFooters stamps "page n of N" and the disclaimer on every page but
// the cover.
func (l *Layouter) applyFooters(doc *Document) {
	total := len(doc.Pages) - coverOnly
	for i := range doc.Pages {
		if i == 0 {
			continue
		}
		label := fmt.Sprintf("Page %d of %d", i, total)
		lw := l.m.TextWidth(label, 9)
		dw := l.m.TextWidth(footerDisclaimer, 8)
		doc.Pages[i].Texts = append(doc.Pages[i].Texts,
			Text{Value: label, X: (PageWidth - lw) / 2, Y: PageHeight - 48, Size: 9},
			Text{Value: footerDisclaimer, X: (PageWidth - dw) / 2, Y: PageHeight - 34, Size: 8},
		)
	}
}

// pageFlow accumulates content pages top to bottom.
type pageFlow struct {
	m       Measurer
	subject string
	pages   []Page
	y       float64
}

func newPageFlow(m Measurer, subject string) *pageFlow {
	f := &pageFlow{m: m, subject: subject}
	f.newPage()
	return f
}

func (f *pageFlow) newPage() {
	var p Page
	header := fmt.Sprintf("CatHealth · %s", f.subject)
	p.Texts = append(p.Texts, Text{Value: header, X: marginX, Y: 52, Size: 9})
	p.Rules = append(p.Rules, Rule{X1: marginX, Y: 62, X2: PageWidth - marginX, Width: 0.5})
	f.pages = append(f.pages, p)
	f.y = flowTop
}

func (f *pageFlow) page() *Page {
	return &f.pages[len(f.pages)-1]
}

func (f *pageFlow) ensure(height float64) {
	if f.y+height > flowBottom || flowBottom-f.y < minFlowSpace {
		f.newPage()
	}
}

func (f *pageFlow) sectionBand(title string) {
	f.ensure(48)
	f.y += 24
	p := f.page()
	p.Texts = append(p.Texts, Text{Value: title, X: marginX, Y: f.y, Size: 16, Bold: true})
	p.Rules = append(p.Rules, Rule{X1: marginX, Y: f.y + 8, X2: PageWidth - marginX, Width: 1})
	f.y += 28
}

func (f *pageFlow) paragraph(text string) {
	const size = 11.0
	lineHeight := size * 1.45

	x := marginX
	width := contentWidth
	if strings.HasPrefix(text, bulletPrefix) {
		x = marginX + 14
		width = contentWidth - 14
	}

	lines := wrap(f.m, text, size, width)
	for i, line := range lines {
		f.ensure(lineHeight)
		lx := x
		if i > 0 && strings.HasPrefix(text, bulletPrefix) {
			// Hanging indent past the bullet.
			lx += f.m.TextWidth(bulletPrefix, size)
		}
		f.page().Texts = append(f.page().Texts, Text{Value: line, X: lx, Y: f.y, Size: size})
		f.y += lineHeight
	}
	f.y += 6
}

// closingRemark is appended only when it fits on the current page.
func (f *pageFlow) closingRemark(text string) {
	const size = 11.0
	needed := 40.0
	if f.y+needed > flowBottom {
		return
	}
	f.y += 20
	w := f.m.TextWidth(text, size)
	x := (PageWidth - w) / 2
	if x < marginX {
		x = marginX
	}
	f.page().Texts = append(f.page().Texts, Text{Value: text, X: x, Y: f.y, Size: size})
	f.y += size * 1.45
}

// wrap greedily fills lines up to width. A word wider than the whole line
// gets a line of its own rather than looping.
func wrap(m Measurer, text string, size, width float64) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	current := words[0]
	for _, word := range words[1:] {
		candidate := current + " " + word
		if m.TextWidth(candidate, size) <= width {
			current = candidate
			continue
		}
		lines = append(lines, current)
		current = word
	}
	lines = append(lines, current)
	return lines
}
