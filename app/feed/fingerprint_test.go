package feed

import (
	"testing"
)

func TestFingerprint_Stability(t *testing.T) {
	a := Fingerprint("https://example.com/story", "Fed Holds Rates Steady")
	b := Fingerprint("HTTPS://EXAMPLE.COM/STORY", "fed  holds\trates   steady")

	if a != b {
		t.Errorf("Fingerprints should match for case/whitespace variants:\n%s\n%s", a, b)
	}
}

func TestFingerprint_DistinctStories(t *testing.T) {
	a := Fingerprint("https://example.com/story-1", "Fed Holds Rates Steady")
	b := Fingerprint("https://example.com/story-2", "BoJ Intervenes in FX Market")

	if a == b {
		t.Error("Distinct stories must not collide")
	}
}

func TestFingerprint_Length(t *testing.T) {
	fp := Fingerprint("https://example.com", "title")

	// hex-encoded SHA-256
	if len(fp) != 64 {
		t.Errorf("Expected 64 hex chars, got %d", len(fp))
	}
}

func TestFingerprint_UnicodeNormalization(t *testing.T) {
	// Full-width vs ASCII forms fold to the same identity under NFKC.
	a := Fingerprint("https://example.com", "ＵＳＤＪＰＹ surges")
	b := Fingerprint("https://example.com", "usdjpy surges")

	if a != b {
		t.Error("NFKC-equivalent titles should produce the same fingerprint")
	}
}
