package httphandler

import (
	"bytes"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/ericfisherdev/reviewhub/internal/domain/model"
)

var (
	mdRenderer    goldmark.Markdown
	htmlSanitizer *bluemonday.Policy

	markdownEscaper   = strings.NewReplacer(markdownEscapePairs(false)...)
	markdownUnescaper = strings.NewReplacer(markdownEscapePairs(true)...)
)

func init() {
	mdRenderer = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(goldmarkhtml.WithUnsafe()),
	)

	htmlSanitizer = bluemonday.UGCPolicy()
}

// markdownSpecial lists characters that carry meaning in Markdown.
const markdownSpecial = "\\`*_{}[]()<>#+-!|~"

func markdownEscapePairs(reverse bool) []string {
	pairs := make([]string, 0, len(markdownSpecial)*2)
	for _, ch := range markdownSpecial {
		escaped := "\\" + string(ch)
		if reverse {
			pairs = append(pairs, escaped, string(ch))
		} else {
			pairs = append(pairs, string(ch), escaped)
		}
	}
	return pairs
}

// RenderMarkdown converts a markdown string to sanitized HTML.
// Returns empty string for empty input.
func RenderMarkdown(src string) string {
	if src == "" {
		return ""
	}

	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(src), &buf); err != nil {
		return htmlSanitizer.Sanitize(src)
	}

	return htmlSanitizer.Sanitize(buf.String())
}

// renderText converts text stored as textType into forceType. An empty
// forceType returns the text unchanged. The returned type is the type of the
// returned text.
func renderText(text string, textType, forceType model.TextType) (string, model.TextType) {
	if forceType == "" || forceType == textType {
		return text, textType
	}

	switch forceType {
	case model.TextTypeHTML:
		if textType == model.TextTypeMarkdown {
			return RenderMarkdown(text), model.TextTypeHTML
		}
		return html.EscapeString(text), model.TextTypeHTML
	case model.TextTypeMarkdown:
		// Plain text shown as Markdown must not pick up formatting.
		return markdownEscaper.Replace(text), model.TextTypeMarkdown
	case model.TextTypePlain:
		return markdownUnescaper.Replace(text), model.TextTypePlain
	}

	return text, textType
}
