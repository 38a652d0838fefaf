package service

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"google.golang.org/genai"
)

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "abc", truncateRunes("abc", 10))
	assert.Equal(t, "ab", truncateRunes("abcd", 2))

	// multi-byte input must be cut on a rune boundary
	input := strings.Repeat("é", 5)
	got := truncateRunes(input, 3)
	assert.Equal(t, strings.Repeat("é", 3), got)
	assert.True(t, utf8.ValidString(got))
}

func TestIsRetryable(t *testing.T) {
	s := &GeminiService{}

	assert.False(t, s.isRetryable(nil))
	assert.False(t, s.isRetryable(errors.New("context canceled")))
	assert.False(t, s.isRetryable(errors.New("context deadline exceeded")))
	assert.True(t, s.isRetryable(errors.New("connection refused")))
	assert.True(t, s.isRetryable(&genai.APIError{Code: 429}))
	assert.True(t, s.isRetryable(&genai.APIError{Code: 503}))
	assert.False(t, s.isRetryable(&genai.APIError{Code: 401}))
}
