package rag

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
)

// CleanText normalizes scraped or OCR'd document text: control characters
// and common ligature artifacts go, whitespace collapses.
func CleanText(text string) string {
	if text == "" {
		return ""
	}

	b := strings.Map(func(r rune) rune {
		if r == '\n' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, text)

	fixes := map[string]string{
		"ﬁ": "fi", "ﬂ": "fl",
		"—": "-", "–": "-",
		"·": ".", "•": "-",
	}
	for k, v := range fixes {
		b = strings.ReplaceAll(b, k, v)
	}

	b = reSpaces.ReplaceAllString(b, " ")
	b = reNewlines.ReplaceAllString(b, "\n\n")
	return strings.TrimSpace(b)
}

var (
	reSpaces   = regexp.MustCompile(`[ \t]+`)
	reNewlines = regexp.MustCompile(`\n{3,}`)
)

// HTMLToText extracts readable content from an HTML guideline page,
// keeping headings, paragraphs, list items, and tables.
func HTMLToText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}
	var out []string
	doc.Find("h1,h2,h3,h4,p,li,table").Each(func(i int, s *goquery.Selection) {
		switch goquery.NodeName(s) {
		case "h1":
			out = append(out, "# "+strings.TrimSpace(s.Text()))
		case "h2":
			out = append(out, "## "+strings.TrimSpace(s.Text()))
		case "h3", "h4":
			out = append(out, "### "+strings.TrimSpace(s.Text()))
		case "li":
			out = append(out, "- "+strings.TrimSpace(s.Text()))
		case "table":
			out = append(out, flattenTable(s))
		default:
			out = append(out, strings.TrimSpace(s.Text()))
		}
	})
	return strings.Join(out, "\n\n"), nil
}

func flattenTable(sel *goquery.Selection) string {
	var rows []string
	sel.Find("tr").Each(func(i int, tr *goquery.Selection) {
		var cols []string
		tr.Find("th,td").Each(func(j int, td *goquery.Selection) {
			cols = append(cols, strings.TrimSpace(td.Text()))
		})
		if len(cols) > 0 {
			rows = append(rows, "| "+strings.Join(cols, " | ")+" |")
		}
	})
	return strings.Join(rows, "\n")
}

// boilerplate lines that show up in scraped legal guideline pages and
// carry no content.
var noiseMarkers = []string{
	"All rights reserved",
	"Privacy Policy",
	"Terms of Use",
	"Cookie",
	"Subscribe to our newsletter",
	"Download PDF",
	"Share this page",
}

// StripBoilerplate drops lines matching known web boilerplate.
func StripBoilerplate(text string) string {
	lines := strings.Split(text, "\n")
	var out []string
	for _, l := range lines {
		skip := false
		for _, marker := range noiseMarkers {
			if strings.Contains(l, marker) {
				skip = true
				break
			}
		}
		if !skip {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}

// DedupeParagraphs removes exactly repeated paragraphs.
func DedupeParagraphs(text string) string {
	parts := strings.Split(text, "\n\n")
	seen := map[string]struct{}{}
	var out []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return strings.Join(out, "\n\n")
}

// Preprocess runs the full cleaning pipeline over raw document text.
func Preprocess(raw string) string {
	t := CleanText(raw)
	t = StripBoilerplate(t)
	t = DedupeParagraphs(t)
	return t
}
