package feed

import (
	"strings"
	"testing"
)

func TestParseSources(t *testing.T) {
	input := `# FX news feeds
https://www.fxstreet.com/rss/news

# central banks
https://www.boj.or.jp/en/rss/whatsnew.xml
https://www.federalreserve.gov/feeds/press_all.xml
https://www.fxstreet.com/rss/news
`

	sources, err := ParseSources(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Failed to parse sources: %v", err)
	}

	if len(sources) != 3 {
		t.Fatalf("Expected 3 sources (duplicate collapsed), got %d", len(sources))
	}

	if sources[0].ID != "fxstreet.com" {
		t.Errorf("Expected source ID 'fxstreet.com', got %q", sources[0].ID)
	}
	if sources[1].ID != "boj.or.jp" {
		t.Errorf("Expected source ID 'boj.or.jp', got %q", sources[1].ID)
	}
	if sources[2].URL != "https://www.federalreserve.gov/feeds/press_all.xml" {
		t.Errorf("Unexpected third source URL: %q", sources[2].URL)
	}
}

func TestParseSources_Empty(t *testing.T) {
	sources, err := ParseSources(strings.NewReader("# nothing here\n\n"))
	if err != nil {
		t.Fatalf("Failed to parse sources: %v", err)
	}
	if len(sources) != 0 {
		t.Errorf("Expected no sources, got %d", len(sources))
	}
}
