package sanitize

import (
	"strings"
	"testing"
)

func TestSanitizeKeepsAllowedMarkup(t *testing.T) {
	in := "<h1>Title</h1><p>Hello <strong>world</strong> and <em>everyone</em></p><ul><li>one</li></ul><blockquote>quote</blockquote>"
	out := Sanitize(in)
	for _, want := range []string{"<h1>", "</h1>", "<p>", "<strong>world</strong>", "<em>everyone</em>", "<li>one</li>", "<blockquote>quote</blockquote>"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output, got %q", want, out)
		}
	}
}

func TestSanitizeRemovesScriptBlocks(t *testing.T) {
	out := Sanitize(`<p>hi</p><script>alert("x")</script><p>bye</p>`)
	if strings.Contains(out, "script") || strings.Contains(out, "alert") {
		t.Fatalf("script content survived: %q", out)
	}
	if !strings.Contains(out, "<p>hi</p>") || !strings.Contains(out, "<p>bye</p>") {
		t.Fatalf("surrounding content lost: %q", out)
	}
}

func TestSanitizeRemovesDisallowedTagsKeepsText(t *testing.T) {
	out := Sanitize(`<div class="x">inner text</div><table><tr><td>cell</td></tr></table>`)
	if strings.Contains(out, "<div") || strings.Contains(out, "<table") || strings.Contains(out, "<td") {
		t.Fatalf("disallowed tag survived: %q", out)
	}
	if !strings.Contains(out, "inner text") || !strings.Contains(out, "cell") {
		t.Fatalf("inner text lost: %q", out)
	}
}

func TestSanitizeStripsAttributesExceptLinkHrefTitle(t *testing.T) {
	out := Sanitize(`<p style="color:red" class="big">x</p>`)
	if out != "<p>x</p>" {
		t.Fatalf("expected bare paragraph, got %q", out)
	}

	out = Sanitize(`<a href="https://example.com" title="ok" target="_blank" rel="noopener">link</a>`)
	if out != `<a href="https://example.com" title="ok">link</a>` {
		t.Fatalf("unexpected link rewrite: %q", out)
	}
}

func TestSanitizeRemovesJavascriptScheme(t *testing.T) {
	cases := []string{
		`<a href="javascript:alert(1)">x</a>`,
		`<a href="JAVASCRIPT:alert(1)">x</a>`,
		`click javascript:alert(1) here`,
	}
	for _, in := range cases {
		out := Sanitize(in)
		if strings.Contains(strings.ToLower(out), "javascript:") {
			t.Fatalf("javascript scheme survived %q -> %q", in, out)
		}
	}
}

func TestSanitizeRemovesEventHandlers(t *testing.T) {
	cases := []string{
		`<p onclick="evil()">x</p>`,
		`<img src="x" onerror="evil()">`,
		`text with onload= marker`,
	}
	for _, in := range cases {
		out := Sanitize(in)
		if strings.Contains(strings.ToLower(out), "onclick") || strings.Contains(strings.ToLower(out), "onerror=") || strings.Contains(strings.ToLower(out), "onload=") {
			t.Fatalf("event handler survived %q -> %q", in, out)
		}
	}
}

func TestSanitizeDefeatsReassembly(t *testing.T) {
	cases := []string{
		`<scr<script></script>ipt>alert(1)</scr</script>ipt>`,
		`javajavascript:script:alert(1)`,
		`<<script>script>x<</script>/script>`,
	}
	for _, in := range cases {
		out := Sanitize(in)
		lower := strings.ToLower(out)
		if strings.Contains(lower, "<script") || strings.Contains(lower, "javascript:") {
			t.Fatalf("reassembled construct survived %q -> %q", in, out)
		}
	}
}

func TestSanitizeIdempotent(t *testing.T) {
	cases := []string{
		"",
		"plain text only",
		"<p>Hello <strong>world</strong></p>",
		`<a href="https://example.com" title="t">link</a>`,
		`<script>alert(1)</script>`,
		`<scr<script>ipt>alert(1)</script>`,
		`javajavascript:script:alert(1)`,
		`<div onclick="x">text</div>`,
		`<h1 id="a">T</h1><ul><li>x</li></ul>`,
		"markdown **bold** and _italic_ with `code`",
	}
	for _, in := range cases {
		once := Sanitize(in)
		twice := Sanitize(once)
		if once != twice {
			t.Fatalf("not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}

func TestSanitizeLeavesPlainMarkdownAlone(t *testing.T) {
	in := "# Heading\n\nSome **bold** text with a [link](https://example.com) and `code`."
	if out := Sanitize(in); out != in {
		t.Fatalf("plain markdown was modified: %q", out)
	}
}
