// Package htmltext pulls plain text and image references out of stored HTML
// fragments such as pre-rendered legacy campaign content.
package htmltext

import (
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
)

type ImageRef struct {
	Src string `json:"src"`
	Alt string `json:"alt,omitempty"`
}

type Summary struct {
	Text    string     `json:"text"`
	Excerpt string     `json:"excerpt"`
	Images  []ImageRef `json:"images,omitempty"`
}

// Summarize parses an HTML fragment. excerptLen caps the excerpt in runes
// and cuts at a word boundary where one exists.
func Summarize(fragment string, excerptLen int) (*Summary, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return nil, err
	}

	doc.Find("script, style").Remove()

	var parts []string
	doc.Find("p, h1, h2, h3, h4, h5, h6, li, blockquote").Each(func(_ int, s *goquery.Selection) {
		if s.Find("p, li").Length() > 0 {
			return
		}
		if t := collapseSpace(s.Text()); t != "" {
			parts = append(parts, t)
		}
	})
	if len(parts) == 0 {
		if t := collapseSpace(doc.Text()); t != "" {
			parts = append(parts, t)
		}
	}

	sum := &Summary{Text: strings.Join(parts, "\n\n")}
	sum.Excerpt = truncate(strings.Join(parts, " "), excerptLen)

	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		src, ok := s.Attr("src")
		if !ok || strings.TrimSpace(src) == "" {
			return
		}
		alt, _ := s.Attr("alt")
		sum.Images = append(sum.Images, ImageRef{Src: strings.TrimSpace(src), Alt: strings.TrimSpace(alt)})
	})

	return sum, nil
}

// FirstImage returns the first image of the fragment, nil when there is none.
func (s *Summary) FirstImage() *ImageRef {
	if len(s.Images) == 0 {
		return nil
	}
	return &s.Images[0]
}

func collapseSpace(s string) string {
	return strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " ")
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if max <= 0 || len(runes) <= max {
		return s
	}
	cut := string(runes[:max])
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,.;:") + "…"
}
