// Package sanitize strips disallowed markup from user-submitted message
// content before it is stored or rendered.
package sanitize

import (
	"fmt"
	"regexp"
	"strings"
)

// allowedTags is the markup allow-list for message content. Anything else
// is removed, keeping the inner text.
var allowedTags = map[string]bool{
	"p": true, "br": true,
	"strong": true, "em": true, "u": true, "s": true, "b": true, "i": true,
	"code": true, "pre": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"ul": true, "ol": true, "li": true,
	"blockquote": true,
	"a":          true,
}

// forbiddenContainers are removed together with their content. Dropping only
// the tags would leak script bodies into the visible text.
var forbiddenContainers = []string{
	"script", "style", "object", "embed", "form", "input", "textarea", "iframe", "svg",
}

var (
	reTag        = regexp.MustCompile(`(?s)<(/?)([a-zA-Z][a-zA-Z0-9]*)\b[^>]*?>`)
	reJSScheme   = regexp.MustCompile(`(?i)javascript\s*:`)
	reEventAttr  = regexp.MustCompile(`(?i)on\w+\s*=`)
	reHrefAttr   = regexp.MustCompile(`(?i)\bhref\s*=\s*("([^"]*)"|'([^']*)'|([^\s"'>]+))`)
	reTitleAttr  = regexp.MustCompile(`(?i)\btitle\s*=\s*("([^"]*)"|'([^']*)'|([^\s"'>]+))`)
	reContainers []*regexp.Regexp
	reOrphans    []*regexp.Regexp
)

func init() {
	for _, tag := range forbiddenContainers {
		reContainers = append(reContainers,
			regexp.MustCompile(fmt.Sprintf(`(?is)<\s*%s\b[^>]*>.*?<\s*/\s*%s\s*>`, tag, tag)))
		reOrphans = append(reOrphans,
			regexp.MustCompile(fmt.Sprintf(`(?is)<\s*/?\s*%s\b[^>]*>`, tag)))
	}
}

// maxPasses bounds the fixpoint loop. Each pass strictly shrinks the input
// when it changes anything, so the bound is never hit on real content.
const maxPasses = 16

// Sanitize removes every markup construct outside the allow-list from raw
// and neutralizes script vectors. It is a pure function and idempotent:
// Sanitize(Sanitize(x)) == Sanitize(x). The passes repeat until the output
// stabilizes so that removals cannot reassemble into new dangerous
// constructs (e.g. "<scr<script>ipt>").
func Sanitize(raw string) string {
	out := raw
	for i := 0; i < maxPasses; i++ {
		next := sanitizeOnce(out)
		if next == out {
			break
		}
		out = next
	}
	return strings.TrimSpace(out)
}

func sanitizeOnce(s string) string {
	for _, re := range reContainers {
		s = re.ReplaceAllString(s, "")
	}
	for _, re := range reOrphans {
		s = re.ReplaceAllString(s, "")
	}

	s = reTag.ReplaceAllStringFunc(s, rewriteTag)

	s = reJSScheme.ReplaceAllString(s, "")
	s = reEventAttr.ReplaceAllString(s, "")
	return s
}

// rewriteTag drops tags outside the allow-list and strips every attribute
// from allowed ones, except href/title on links.
func rewriteTag(tag string) string {
	m := reTag.FindStringSubmatch(tag)
	if m == nil {
		return ""
	}
	closing := m[1] == "/"
	name := strings.ToLower(m[2])

	if !allowedTags[name] {
		return ""
	}
	if closing {
		return "</" + name + ">"
	}
	if name != "a" {
		return "<" + name + ">"
	}

	var attrs []string
	if href, ok := linkAttr(reHrefAttr, tag); ok {
		attrs = append(attrs, `href="`+href+`"`)
	}
	if title, ok := linkAttr(reTitleAttr, tag); ok {
		attrs = append(attrs, `title="`+title+`"`)
	}
	if len(attrs) == 0 {
		return "<a>"
	}
	return "<a " + strings.Join(attrs, " ") + ">"
}

// linkAttr extracts an attribute value and vets it for use on a link.
func linkAttr(re *regexp.Regexp, tag string) (string, bool) {
	m := re.FindStringSubmatch(tag)
	if m == nil {
		return "", false
	}
	value := m[2]
	if value == "" {
		value = m[3]
	}
	if value == "" {
		value = m[4]
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}
	if reJSScheme.MatchString(value) || reEventAttr.MatchString(value) {
		return "", false
	}
	// Quotes inside the value would break out of the rebuilt attribute.
	if strings.ContainsAny(value, `"'<>`) {
		return "", false
	}
	return value, true
}
