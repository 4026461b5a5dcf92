package feed

import (
	"bytes"
	"cmp"
	"fmt"
	"time"

	"github.com/mmcdole/gofeed"
)

type Parser struct {
	gofeedParser *gofeed.Parser
}

func NewParser() *Parser {
	return &Parser{
		gofeedParser: gofeed.NewParser(),
	}
}

// Run parses raw feed bytes into normalized items. Entries without a link
// are dropped; a missing publish timestamp is treated as now.
func (p *Parser) Run(source Source, data []byte, now time.Time) ([]RawItem, error) {
	parsed, err := p.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	items := make([]RawItem, 0, len(parsed.Items))
	for _, entry := range parsed.Items {
		if entry == nil || entry.Link == "" {
			continue
		}
		items = append(items, p.normalizeItem(source, entry, now))
	}

	return items, nil
}

func (p *Parser) normalizeItem(source Source, entry *gofeed.Item, now time.Time) RawItem {
	item := RawItem{
		SourceID:    source.ID,
		URL:         entry.Link,
		Title:       entry.Title,
		BodyExcerpt: cmp.Or(entry.Description, entry.Content),
		PublishedAt: now,
	}

	if entry.PublishedParsed != nil {
		item.PublishedAt = *entry.PublishedParsed
	} else if entry.UpdatedParsed != nil {
		item.PublishedAt = *entry.UpdatedParsed
	}

	item.Fingerprint = Fingerprint(item.URL, item.Title)

	return item
}
