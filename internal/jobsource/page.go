package jobsource

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// PageText extracts the visible text of a rendered HTML document. Script,
// style and other non-content subtrees are removed first; the remaining text
// is whitespace-normalized.
func PageText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}

	doc.Find("script, style, noscript, svg, iframe").Remove()

	body := doc.Find("body")
	if body.Length() == 0 {
		return "", nil
	}

	return strings.Join(strings.Fields(body.Text()), " "), nil
}
