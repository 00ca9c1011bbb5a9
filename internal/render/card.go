// Package render turns stored messages into shareable PNG cards. Markdown is
// rendered to HTML, wrapped in a styled card template and screenshotted with a
// headless browser.
package render

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/yuin/goldmark"
	ghtml "github.com/yuin/goldmark/renderer/html"
)

const cardTemplateText = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
  body { margin: 0; background: #1a1a2e; font-family: -apple-system, "Segoe UI", Roboto, sans-serif; }
  #card { width: 600px; box-sizing: border-box; padding: 48px; background: linear-gradient(135deg, #16213e, #0f3460); color: #eaeaea; }
  #card .content { font-size: 20px; line-height: 1.6; word-wrap: break-word; }
  #card .content a { color: #e94560; }
  #card .footer { margin-top: 32px; font-size: 13px; color: #9a9ab0; }
</style>
</head>
<body>
<div id="card">
  <div class="content">{{.Content}}</div>
  <div class="footer">Anonymous message &middot; {{.Date}}</div>
</div>
</body>
</html>`

var cardTemplate = template.Must(template.New("card").Parse(cardTemplateText))

// CardRenderer renders message cards to PNG. The underlying browser is
// launched on first use and reused across renders.
type CardRenderer struct {
	markdown goldmark.Markdown

	mu      sync.Mutex
	browser *rod.Browser
}

// NewCardRenderer creates a renderer. No browser is launched until the first
// Render call.
func NewCardRenderer() *CardRenderer {
	return &CardRenderer{
		markdown: goldmark.New(
			goldmark.WithRendererOptions(ghtml.WithHardWraps()),
		),
	}
}

// RenderHTML converts message markdown to the full card HTML document.
// The content has already been sanitized at submit time, so inline HTML
// passes through unchanged.
func (r *CardRenderer) RenderHTML(content string, createdAt time.Time) (string, error) {
	var body bytes.Buffer
	if errConvert := r.markdown.Convert([]byte(content), &body); errConvert != nil {
		return "", fmt.Errorf("failed to render markdown: %w", errConvert)
	}

	var doc bytes.Buffer
	data := struct {
		Content template.HTML
		Date    string
	}{
		Content: template.HTML(body.String()),
		Date:    createdAt.Format("January 2, 2006"),
	}
	if errExec := cardTemplate.Execute(&doc, data); errExec != nil {
		return "", fmt.Errorf("failed to render card template: %w", errExec)
	}
	return doc.String(), nil
}

// Render produces a PNG card for the given message content.
func (r *CardRenderer) Render(ctx context.Context, content string, createdAt time.Time) ([]byte, error) {
	doc, errHTML := r.RenderHTML(content, createdAt)
	if errHTML != nil {
		return nil, errHTML
	}

	browser, errBrowser := r.getBrowser()
	if errBrowser != nil {
		return nil, errBrowser
	}

	page, errPage := browser.Page(proto.TargetCreateTarget{})
	if errPage != nil {
		return nil, fmt.Errorf("failed to open page: %w", errPage)
	}
	defer page.Close()
	page = page.Context(ctx)

	if errSet := page.SetDocumentContent(doc); errSet != nil {
		return nil, fmt.Errorf("failed to set page content: %w", errSet)
	}
	card, errFind := page.Element("#card")
	if errFind != nil {
		return nil, fmt.Errorf("failed to locate card element: %w", errFind)
	}
	png, errShot := card.Screenshot(proto.PageCaptureScreenshotFormatPng, 0)
	if errShot != nil {
		return nil, fmt.Errorf("failed to capture card: %w", errShot)
	}
	return png, nil
}

// Close shuts down the browser if one was launched.
func (r *CardRenderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.browser == nil {
		return nil
	}
	browser := r.browser
	r.browser = nil
	return browser.Close()
}

func (r *CardRenderer) getBrowser() (*rod.Browser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.browser != nil {
		return r.browser, nil
	}

	u, errLaunch := launcher.New().Headless(true).Launch()
	if errLaunch != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", errLaunch)
	}
	browser := rod.New().ControlURL(u)
	if errConnect := browser.Connect(); errConnect != nil {
		return nil, fmt.Errorf("failed to connect to browser: %w", errConnect)
	}
	r.browser = browser
	return r.browser, nil
}
