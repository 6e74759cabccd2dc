package archive

import (
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Content render formats.
const (
	FormatHTML     = "html" // verbatim body, the default
	FormatMarkdown = "markdown"
	FormatText     = "text"
)

// renderer converts fetched snapshot bodies into the requested format.
type renderer struct {
	md         *converter.Converter
	textPolicy *bluemonday.Policy
}

func newRenderer() *renderer {
	return &renderer{
		md: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		),
		textPolicy: bluemonday.StrictPolicy(),
	}
}

// render converts body to the requested format. Conversion failures and
// empty conversions fall back to the verbatim body.
func (r *renderer) render(body, format, sourceURL string) string {
	switch format {
	case FormatMarkdown:
		out, err := r.md.ConvertString(body, converter.WithDomain(sourceURL))
		if err != nil || strings.TrimSpace(out) == "" {
			return body
		}
		return strings.TrimSpace(out)
	case FormatText:
		out := strings.TrimSpace(r.textPolicy.Sanitize(body))
		if out == "" {
			return body
		}
		return out
	default:
		return body
	}
}

// extractTitle returns the document <title> text, or "" when the body is
// not parseable HTML or carries no title.
func extractTitle(body string) string {
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return ""
	}
	return findTitle(doc)
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.DataAtom == atom.Title {
		if n.FirstChild != nil {
			return strings.TrimSpace(n.FirstChild.Data)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}
