package feed

import (
	"testing"
	"time"
)

var testSource = Source{ID: "example.com", URL: "https://example.com/rss"}

const rssWithDates = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Example Feed</title>
    <link>https://example.com</link>
    <item>
      <title>Fed Holds Rates Steady</title>
      <link>https://example.com/fed-holds</link>
      <description>The Federal Reserve kept its policy rate unchanged.</description>
      <pubDate>Mon, 15 Jan 2024 08:30:00 +0900</pubDate>
    </item>
    <item>
      <title>No Timestamp Item</title>
      <link>https://example.com/no-ts</link>
      <description>An entry without a publish date.</description>
    </item>
    <item>
      <title>No Link Item</title>
      <description>Should be dropped.</description>
    </item>
  </channel>
</rss>`

func TestParser_Run(t *testing.T) {
	parser := NewParser()
	now := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)

	items, err := parser.Run(testSource, []byte(rssWithDates), now)
	if err != nil {
		t.Fatalf("Failed to parse feed: %v", err)
	}

	if len(items) != 2 {
		t.Fatalf("Expected 2 items (link-less entry dropped), got %d", len(items))
	}

	first := items[0]
	if first.SourceID != "example.com" {
		t.Errorf("Expected source ID 'example.com', got %q", first.SourceID)
	}
	if first.URL != "https://example.com/fed-holds" {
		t.Errorf("Unexpected URL: %q", first.URL)
	}
	if first.Title != "Fed Holds Rates Steady" {
		t.Errorf("Unexpected title: %q", first.Title)
	}
	if first.BodyExcerpt == "" {
		t.Error("Expected body excerpt from description")
	}
	want := time.Date(2024, 1, 15, 8, 30, 0, 0, time.FixedZone("", 9*3600))
	if !first.PublishedAt.Equal(want) {
		t.Errorf("Expected published at %v, got %v", want, first.PublishedAt)
	}
	if first.Fingerprint == "" {
		t.Error("Expected fingerprint to be computed")
	}
}

func TestParser_Run_MissingTimestampDefaultsToNow(t *testing.T) {
	parser := NewParser()
	now := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)

	items, err := parser.Run(testSource, []byte(rssWithDates), now)
	if err != nil {
		t.Fatalf("Failed to parse feed: %v", err)
	}

	second := items[1]
	if !second.PublishedAt.Equal(now) {
		t.Errorf("Expected missing timestamp to default to now (%v), got %v", now, second.PublishedAt)
	}
}

func TestParser_Run_InvalidData(t *testing.T) {
	parser := NewParser()

	if _, err := parser.Run(testSource, []byte("not a feed"), time.Now()); err == nil {
		t.Error("Expected error for unparseable feed data")
	}
}
