package faults

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScrubber_ReplacesSecrets(t *testing.T) {
	s := NewScrubber("s3cr3t-token", "hunter2")

	got := s.Scrub("auth failed for s3cr3t-token with password hunter2")
	assert.Equal(t, "auth failed for [REDACTED] with password [REDACTED]", got)
}

func TestScrubber_CaseInsensitive(t *testing.T) {
	s := NewScrubber("ApiKey123")

	got := s.Scrub("leaked APIKEY123 and apikey123")
	assert.Equal(t, "leaked [REDACTED] and [REDACTED]", got)
}

func TestScrubber_StripsControlCharacters(t *testing.T) {
	s := NewScrubber()

	got := s.Scrub("line one\r\nline two\x00end")
	assert.Equal(t, "line oneline twoend", got)
}

func TestScrubber_IgnoresEmptySecrets(t *testing.T) {
	s := NewScrubber("", "real")

	got := s.Scrub("contains real data")
	assert.Equal(t, "contains [REDACTED] data", got)
}

func TestScrubber_NilReceiverStillStripsControls(t *testing.T) {
	var s *Scrubber

	got := s.Scrub("ok\x1b[31m")
	assert.Equal(t, "ok[31m", got)
}
