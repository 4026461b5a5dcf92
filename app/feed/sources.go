package feed

import (
	"bufio"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
)

// LoadSources reads a source list file: one feed URL per line, blank lines
// and #-prefixed comments ignored. Duplicate URLs are collapsed.
func LoadSources(path string) ([]Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sources file: %w", err)
	}
	defer f.Close()

	sources, err := ParseSources(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read sources file %s: %w", path, err)
	}

	return sources, nil
}

// ParseSources parses the source list format from r.
func ParseSources(r io.Reader) ([]Source, error) {
	var sources []Source
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if seen[line] {
			continue
		}
		seen[line] = true

		sources = append(sources, Source{
			ID:  sourceID(line),
			URL: line,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return sources, nil
}

// sourceID derives a stable identifier from the feed URL host.
func sourceID(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	return strings.TrimPrefix(u.Host, "www.")
}
