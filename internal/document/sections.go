// Package document turns a narrative wellness plan into a paginated,
// printable PDF.
package document

import (
	"regexp"
	"strings"
)

// SectionTitles is the fixed section order of a rendered plan document.
var SectionTitles = [5]string{
	"Overview",
	"Health Recommendations",
	"Behavior Training",
	"Enrichment Plan",
	"Follow-up Schedule",
}

// sectionKeywords identify each section's heading in model output, whose
// wording drifts ("Greeting & Cat Overview", "Behavior Training & Advice").
var sectionKeywords = [5]string{"overview", "health", "behavior", "enrichment", "follow"}

// Section is one titled block of plain paragraphs. A paragraph beginning
// with the bullet prefix renders as a list item.
type Section struct {
	Title      string
	Paragraphs []string
}

const bulletPrefix = "• "

var linkPattern = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
var orderedListPattern = regexp.MustCompile(`^\d+[.)]\s+`)

func isHeadingLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	if strings.HasPrefix(trimmed, "#") {
		return true
	}
	// Bold-only lines act as headings in model output.
	if strings.HasPrefix(trimmed, "**") && strings.HasSuffix(trimmed, "**") && len(trimmed) > 4 && !strings.Contains(trimmed[2:len(trimmed)-2], "**") {
		return true
	}
	return false
}

func headingText(line string) string {
	trimmed := strings.TrimSpace(line)
	trimmed = strings.TrimLeft(trimmed, "#")
	trimmed = strings.TrimSpace(trimmed)
	trimmed = strings.Trim(trimmed, "*")
	return strings.TrimSpace(trimmed)
}

// ExtractSections locates the five expected headings in order and slices the
// narrative between them. A missing heading yields an empty section.
func ExtractSections(narrative string) [5]Section {
	var out [5]Section
	for i := range out {
		out[i].Title = SectionTitles[i]
	}

	lines := strings.Split(narrative, "\n")

	starts := [5]int{-1, -1, -1, -1, -1}
	cursor := 0
	for i, kw := range sectionKeywords {
		for j := cursor; j < len(lines); j++ {
			if !isHeadingLine(lines[j]) {
				continue
			}
			if strings.Contains(strings.ToLower(headingText(lines[j])), kw) {
				starts[i] = j
				cursor = j + 1
				break
			}
		}
	}

	for i := range out {
		if starts[i] < 0 {
			continue
		}
		end := len(lines)
		for k := i + 1; k < len(starts); k++ {
			if starts[k] > starts[i] {
				end = starts[k]
				break
			}
		}
		out[i].Paragraphs = toParagraphs(lines[starts[i]+1 : end])
	}
	return out
}

// toParagraphs strips markup and groups lines: blank lines separate
// paragraphs, list items become single bullet paragraphs.
func toParagraphs(lines []string) []string {
	var paragraphs []string
	var current []string

	flush := func() {
		if len(current) > 0 {
			paragraphs = append(paragraphs, strings.Join(current, " "))
			current = nil
		}
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			flush()
		case strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* ") || strings.HasPrefix(trimmed, "• "):
			flush()
			paragraphs = append(paragraphs, bulletPrefix+stripInline(trimmed[2:]))
		case orderedListPattern.MatchString(trimmed):
			flush()
			paragraphs = append(paragraphs, bulletPrefix+stripInline(orderedListPattern.ReplaceAllString(trimmed, "")))
		case isHeadingLine(trimmed):
			// Sub-headings inside a section flow as ordinary text.
			flush()
			paragraphs = append(paragraphs, stripInline(headingText(trimmed)))
		default:
			current = append(current, stripInline(trimmed))
		}
	}
	flush()
	return paragraphs
}

func stripInline(s string) string {
	s = linkPattern.ReplaceAllString(s, "$1")
	s = strings.ReplaceAll(s, "**", "")
	s = strings.ReplaceAll(s, "__", "")
	s = strings.ReplaceAll(s, "*", "")
	s = strings.ReplaceAll(s, "`", "")
	return strings.TrimSpace(s)
}
