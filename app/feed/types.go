package feed

import (
	"time"
)

// Source is one configured upstream feed.
type Source struct {
	ID  string // derived from the URL host
	URL string
}

// RawItem is a normalized feed entry. Produced per pass and never persisted
// as-is; the fingerprint is its stable identity for deduplication.
type RawItem struct {
	SourceID    string
	URL         string
	Title       string
	BodyExcerpt string
	PublishedAt time.Time

	Fingerprint string
}
