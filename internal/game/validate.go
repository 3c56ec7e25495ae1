package game

import (
	"strings"
	"unicode/utf8"
)

const maxCaptionLength = 300

func validateCaption(text string) (string, error) {
	trimmed := normalizeText(text)
	if trimmed == "" {
		return "", validationError("text", "caption is required")
	}
	// Characters, not bytes, to agree with the binding tag and the column type.
	if utf8.RuneCountInString(trimmed) > maxCaptionLength {
		return "", validationError("text", "caption must be 300 characters or fewer")
	}
	return trimmed, nil
}

func normalizeText(text string) string {
	fields := strings.Fields(strings.TrimSpace(text))
	return strings.Join(fields, " ")
}
