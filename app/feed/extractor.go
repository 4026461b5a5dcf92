package feed

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
)

// Extractor pulls the main article text out of a fetched HTML page.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

// Run extracts readable text from HTML. When readability finds nothing it
// falls back to the page's og:description / meta description.
func (e *Extractor) Run(data []byte, pageURL string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("HTML data is empty")
	}

	parsedURL, _ := url.Parse(pageURL)

	article, err := readability.FromReader(bytes.NewReader(data), parsedURL)
	if err == nil && strings.TrimSpace(article.TextContent) != "" {
		text := collapseText(article.TextContent)
		slog.Debug("Content extracted", "url", pageURL, "content_length", len(text))
		return text, nil
	}

	meta := e.metaDescription(data)
	if meta == "" {
		return "", fmt.Errorf("no content extracted from HTML data")
	}

	slog.Debug("Falling back to meta description", "url", pageURL)
	return meta, nil
}

func (e *Extractor) metaDescription(data []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return ""
	}

	if content, ok := doc.Find(`meta[property="og:description"]`).Attr("content"); ok {
		if content = strings.TrimSpace(content); content != "" {
			return content
		}
	}
	if content, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok {
		return strings.TrimSpace(content)
	}

	return ""
}

func collapseText(s string) string {
	lines := strings.Split(s, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
