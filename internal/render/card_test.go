package render

import (
	"strings"
	"testing"
	"time"
)

func TestRenderHTMLConvertsMarkdown(t *testing.T) {
	r := NewCardRenderer()

	doc, errRender := r.RenderHTML("**bold** and _italic_", time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC))
	if errRender != nil {
		t.Fatalf("render html: %v", errRender)
	}
	if !strings.Contains(doc, "<strong>bold</strong>") {
		t.Fatalf("expected bold markup in %q", doc)
	}
	if !strings.Contains(doc, "<em>italic</em>") {
		t.Fatalf("expected italic markup in %q", doc)
	}
	if !strings.Contains(doc, "March 14, 2025") {
		t.Fatalf("expected formatted date in %q", doc)
	}
}

func TestRenderHTMLKeepsSanitizedInlineHTML(t *testing.T) {
	r := NewCardRenderer()

	doc, errRender := r.RenderHTML("<p>already clean</p>", time.Now())
	if errRender != nil {
		t.Fatalf("render html: %v", errRender)
	}
	if !strings.Contains(doc, "<p>already clean</p>") {
		t.Fatalf("expected inline html to pass through, got %q", doc)
	}
}

func TestRenderHTMLWrapsInCard(t *testing.T) {
	r := NewCardRenderer()

	doc, errRender := r.RenderHTML("hello", time.Now())
	if errRender != nil {
		t.Fatalf("render html: %v", errRender)
	}
	if !strings.Contains(doc, `id="card"`) {
		t.Fatalf("expected card container in %q", doc)
	}
	if !strings.Contains(doc, "Anonymous message") {
		t.Fatalf("expected card footer in %q", doc)
	}
}
