package faults

import (
	"strings"
	"unicode"
)

// Redacted is substituted for every scrubbed secret.
const Redacted = "[REDACTED]"

// Scrubber removes configured sensitive substrings and non-printable
// characters from text before it reaches a response body. Matching is
// case-insensitive.
type Scrubber struct {
	secrets []string
}

// NewScrubber creates a scrubber for the given secrets. Empty entries are
// ignored.
func NewScrubber(secrets ...string) *Scrubber {
	kept := make([]string, 0, len(secrets))
	for _, s := range secrets {
		if s != "" {
			kept = append(kept, s)
		}
	}
	return &Scrubber{secrets: kept}
}

// Scrub returns the text with every secret replaced by Redacted and
// control characters stripped.
func (s *Scrubber) Scrub(text string) string {
	if s != nil {
		for _, secret := range s.secrets {
			text = replaceFold(text, secret, Redacted)
		}
	}

	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, text)
}

// replaceFold replaces all case-insensitive occurrences of old in text.
func replaceFold(text, old, new string) string {
	if old == "" {
		return text
	}

	var b strings.Builder
	lower := strings.ToLower(text)
	target := strings.ToLower(old)

	for {
		i := strings.Index(lower, target)
		if i < 0 {
			b.WriteString(text)
			return b.String()
		}
		b.WriteString(text[:i])
		b.WriteString(new)
		text = text[i+len(old):]
		lower = lower[i+len(target):]
	}
}
