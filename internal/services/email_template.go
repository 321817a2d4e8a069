package services

import (
	"fmt"
	"html"
	"html/template"
	"strings"
	"time"
)

// planEmailTemplate matches the table-based layout of the account emails so
// the plan email renders consistently in mail clients.
const planEmailTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{.CatName}}'s Wellness Plan</title>
</head>
<body style="font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; margin: 0; padding: 0; background-color: #f9fafb; color: #374151;">
  <table width="100%" border="0" cellspacing="0" cellpadding="0" bgcolor="#f9fafb">
    <tr>
      <td align="center" style="padding: 40px 0;">
        <table width="600" border="0" cellspacing="0" cellpadding="0" bgcolor="#ffffff" style="border-radius: 8px; box-shadow: 0 4px 6px rgba(0, 0, 0, 0.1); overflow: hidden;">
          <!-- Header -->
          <tr>
            <td style="background: linear-gradient(to right, #4f46e5, #6366f1); padding: 30px; text-align: center;">
              <h1 style="color: #ffffff; margin: 0; font-size: 28px; font-weight: bold;">{{.CatName}}'s Wellness Plan</h1>
            </td>
          </tr>
          <!-- Content -->
          <tr>
            <td style="padding: 30px; font-size: 16px; line-height: 1.5;">
              {{.PlanHTML}}
            </td>
          </tr>
          <!-- Footer -->
          <tr>
            <td style="background-color: #f3f4f6; padding: 20px; text-align: center;">
              <p style="margin: 0; color: #6b7280; font-size: 14px;">This plan is for general guidance only and is not a substitute for veterinary care.</p>
              <p style="margin: 10px 0 0; color: #9ca3af; font-size: 12px;">&copy; {{.Year}} CatHealth. All rights reserved.</p>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>
`

var planEmailTmpl = template.Must(template.New("plan_email").Parse(planEmailTemplate))

type planEmailData struct {
	CatName  string
	PlanHTML template.HTML
	Year     int
}

func renderPlanEmailHTML(catName, planMarkdown string) (string, error) {
	var b strings.Builder
	err := planEmailTmpl.Execute(&b, planEmailData{
		CatName:  catName,
		PlanHTML: template.HTML(markdownToHTML(planMarkdown)),
		Year:     time.Now().Year(),
	})
	if err != nil {
		return "", err
	}
	return b.String(), nil
}

// markdownToHTML covers the subset the model actually emits: ATX headings,
// bold spans, dash lists, and paragraphs.
func markdownToHTML(md string) string {
	var b strings.Builder
	inList := false
	var paragraph []string

	flushParagraph := func() {
		if len(paragraph) == 0 {
			return
		}
		fmt.Fprintf(&b, "<p style=\"margin: 0 0 16px;\">%s</p>\n", inlineHTML(strings.Join(paragraph, " ")))
		paragraph = nil
	}
	closeList := func() {
		if inList {
			b.WriteString("</ul>\n")
			inList = false
		}
	}

	for _, line := range strings.Split(md, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			flushParagraph()
			closeList()
		case strings.HasPrefix(trimmed, "#"):
			flushParagraph()
			closeList()
			level := 0
			for level < len(trimmed) && trimmed[level] == '#' {
				level++
			}
			if level > 4 {
				level = 4
			}
			text := strings.TrimSpace(trimmed[level:])
			fmt.Fprintf(&b, "<h%d style=\"margin: 24px 0 12px; color: #4f46e5;\">%s</h%d>\n", level, inlineHTML(text), level)
		case strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* "):
			flushParagraph()
			if !inList {
				b.WriteString("<ul style=\"margin: 0 0 16px; padding-left: 24px;\">\n")
				inList = true
			}
			fmt.Fprintf(&b, "<li>%s</li>\n", inlineHTML(strings.TrimSpace(trimmed[2:])))
		default:
			closeList()
			paragraph = append(paragraph, trimmed)
		}
	}
	flushParagraph()
	closeList()
	return b.String()
}

func inlineHTML(s string) string {
	s = html.EscapeString(s)
	// **bold** pairs only; stray markers are left as-is.
	for {
		start := strings.Index(s, "**")
		if start < 0 {
			break
		}
		end := strings.Index(s[start+2:], "**")
		if end < 0 {
			break
		}
		end += start + 2
		s = s[:start] + "<strong>" + s[start+2:end] + "</strong>" + s[end+2:]
	}
	return s
}
