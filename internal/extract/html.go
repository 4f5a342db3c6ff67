package extract

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/normlens/normlens/internal/model"
)

// ExtractFromHTML strips markup from an HTML document and extracts
// statements from the visible text. Useful for statutes and contracts
// published as web pages. Unparsable HTML is treated as plain text.
func (e *StatementExtractor) ExtractFromHTML(htmlContent, documentID string) []model.DeonticStatement {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return e.ExtractStatements(htmlContent, documentID)
	}
	return e.ExtractStatements(visibleText(doc), documentID)
}

// visibleText extracts text nodes from HTML, skipping scripts and styles
func visibleText(n *html.Node) string {
	var buf strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe":
				return
			}
		}

		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				buf.WriteString(text)
				buf.WriteString(" ")
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(n)
	return buf.String()
}
