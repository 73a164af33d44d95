package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ExtractValue finds the first table row whose leading th/td cell matches label
// and returns the text of the value cell. The value cell is the td right after
// the label cell, or the last td in the row when there is none. Labels are
// compared after collapsing whitespace, dropping colons, and lowercasing.
//
// The second return value is false when no row matches or the matching row has
// no td at all. Later rows with the same label are ignored.
func ExtractValue(doc *goquery.Document, label string) (string, bool) {
	want := normalizeLabel(label)

	var value string
	var found bool
	doc.Find("tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		first := row.Find("th, td").First()
		if first.Length() == 0 || normalizeLabel(first.Text()) != want {
			return true
		}

		if next := first.NextFiltered("td"); next.Length() > 0 {
			value, found = collapseSpace(next.Text()), true
		} else if cells := row.Find("td"); cells.Length() > 0 {
			value, found = collapseSpace(cells.Last().Text()), true
		}
		return false
	})

	return value, found
}

func normalizeLabel(s string) string {
	s = collapseSpace(s)
	s = strings.ReplaceAll(s, ":", "")
	return strings.ToLower(strings.TrimSpace(s))
}

// collapseSpace replaces runs of Unicode whitespace (including &nbsp;) with a
// single space and trims both ends.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
