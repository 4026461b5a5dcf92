package deliver

import "strings"

const truncationMarker = "…"

// Truncate cuts message to at most limit runes, appending a marker when
// anything was dropped. Sends never fail on size.
func Truncate(message string, limit int) string {
	if limit < 1 {
		return ""
	}
	runes := []rune(message)
	if len(runes) <= limit {
		return message
	}
	marker := []rune(truncationMarker)
	return string(runes[:limit-len(marker)]) + truncationMarker
}

// PackBlocks joins header and as many whole blocks as fit in limit
// runes, blocks separated by blank lines. It returns the packed message
// and how many blocks made it in. When not even the first block fits, a
// truncated version of it is included so a non-empty batch always
// produces at least one block.
func PackBlocks(header string, blocks []string, limit int) (string, int) {
	message := header
	used := 0

	for _, block := range blocks {
		candidate := message + "\n\n" + block
		if len([]rune(candidate)) <= limit {
			message = candidate
			used++
			continue
		}
		if used == 0 {
			available := limit - len([]rune(header)) - 2
			if available > 10 {
				message = header + "\n\n" + Truncate(block, available)
				used = 1
			}
		}
		break
	}

	return Truncate(message, limit), used
}

// BuildBlock renders one item as a digest block: summary bullets, then
// tags and the source link.
func BuildBlock(summaryText, url string, tags []string) string {
	var b strings.Builder
	b.WriteString(summaryText)
	if len(tags) > 0 {
		b.WriteString("\n[")
		b.WriteString(strings.Join(tags, ", "))
		b.WriteString("]")
	}
	b.WriteString("\n")
	b.WriteString(url)
	return b.String()
}
