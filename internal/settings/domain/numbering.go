package domain

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var paddedSeqPattern = regexp.MustCompile(`\{SEQ:(\d+)\}`)

// FormatDocumentNumber expands a numbering format string.
// Supported placeholders: {YEAR}, {SEQ}, {SEQ:N} (zero-padded to N digits).
// {PREFIX} must already be substituted by the caller.
func FormatDocumentNumber(format string, seq int, now time.Time) string {
	result := strings.ReplaceAll(format, "{YEAR}", strconv.Itoa(now.Year()))

	if match := paddedSeqPattern.FindStringSubmatch(result); match != nil {
		pad, _ := strconv.Atoi(match[1])
		padded := strconv.Itoa(seq)
		for len(padded) < pad {
			padded = "0" + padded
		}
		result = strings.Replace(result, match[0], padded, 1)
	} else {
		result = strings.ReplaceAll(result, "{SEQ}", strconv.Itoa(seq))
	}
	return result
}
