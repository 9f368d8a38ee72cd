package textutil

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// PlainText strips markup from text pasted out of rich-text editors. Input
// that does not look like HTML is only trimmed.
func PlainText(s string) string {
	if !strings.Contains(s, "<") || !strings.Contains(s, ">") {
		return strings.TrimSpace(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(s)
	}
	doc.Find("script,style").Remove()
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("p,div,li,tr,h1,h2,h3,h4,h5,h6").Each(func(_ int, sel *goquery.Selection) {
		sel.AppendHtml("\n")
	})

	var lines []string
	for _, ln := range strings.Split(doc.Text(), "\n") {
		ln = strings.Join(strings.Fields(ln), " ")
		if ln != "" {
			lines = append(lines, ln)
		}
	}
	return strings.Join(lines, "\n")
}
