package services

import (
	"strings"
	"testing"
)

func TestMarkdownToHTML(t *testing.T) {
	md := "## Health Recommendations\n\nFeed **wet food** daily.\n\n- Fresh water\n- Play time\n"
	out := markdownToHTML(md)

	if !strings.Contains(out, "<h2 style=\"margin: 24px 0 12px; color: #4f46e5;\">Health Recommendations</h2>") {
		t.Fatalf("heading not rendered: %s", out)
	}
	if !strings.Contains(out, "<strong>wet food</strong>") {
		t.Fatalf("bold not rendered: %s", out)
	}
	if !strings.Contains(out, "<li>Fresh water</li>") || !strings.Contains(out, "<li>Play time</li>") {
		t.Fatalf("list not rendered: %s", out)
	}
	if strings.Count(out, "<ul") != 1 || strings.Count(out, "</ul>") != 1 {
		t.Fatalf("list not closed exactly once: %s", out)
	}
}

func TestMarkdownToHTMLEscapes(t *testing.T) {
	out := markdownToHTML("Watch for <script>alert(1)</script> & other issues.")
	if strings.Contains(out, "<script>") {
		t.Fatalf("markup not escaped: %s", out)
	}
	if !strings.Contains(out, "&lt;script&gt;") || !strings.Contains(out, "&amp;") {
		t.Fatalf("expected escaped entities: %s", out)
	}
}

func TestRenderPlanEmailHTML(t *testing.T) {
	out, err := renderPlanEmailHTML("Misha", "## Overview\nA happy cat.")
	if err != nil {
		t.Fatalf("renderPlanEmailHTML: %v", err)
	}
	if !strings.Contains(out, "Misha&#39;s Wellness Plan") && !strings.Contains(out, "Misha's Wellness Plan") {
		t.Fatalf("header missing cat name: %s", out)
	}
	if !strings.Contains(out, "A happy cat.") {
		t.Fatalf("plan body missing")
	}
	if !strings.Contains(out, "not a substitute for veterinary care") {
		t.Fatalf("disclaimer missing")
	}
}
