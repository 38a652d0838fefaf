package matching

import (
	"errors"
	"strings"
	"unicode/utf8"
)

var (
	// ErrTextUnreadable is returned when a document yields no usable text.
	ErrTextUnreadable = errors.New("document text is empty or unreadable")
	// ErrTextTooShort is returned when a document has too little content to match.
	ErrTextTooShort = errors.New("document text too short for matching")
)

// minContentLength is the smallest cleaned text (in runes) worth scoring.
const minContentLength = 20

// CleanText trims every line of the raw extracted text, drops blank lines
// and rejoins the rest. It is the gate in front of the whole pipeline:
// callers must treat an error as "cannot match", never as an empty match.
func CleanText(raw string) (string, error) {
	lines := strings.Split(raw, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		cleaned = append(cleaned, line)
	}

	text := strings.Join(cleaned, "\n")
	if text == "" {
		return "", ErrTextUnreadable
	}
	if utf8.RuneCountInString(text) < minContentLength {
		return "", ErrTextTooShort
	}
	return text, nil
}
