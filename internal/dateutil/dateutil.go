// Package dateutil formats report timestamps from user-friendly layouts.
package dateutil

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidDateFormat indicates an invalid timestamp layout string.
var ErrInvalidDateFormat = errors.New("invalid date format")

// MaxDateFormatLength limits layout string length to prevent abuse.
const MaxDateFormatLength = 50

// DefaultTimestampFormat is the report header layout used for "auto".
const DefaultTimestampFormat = "YYYY-MM-DD HH:mm"

// dateTokens maps user-friendly tokens to Go time layout components.
// Ordered by length descending for greedy matching. Tokens are
// case-sensitive: MM is the month, mm the minute.
var dateTokens = []struct {
	token string
	goFmt string
}{
	{"YYYY", "2006"},
	{"MMMM", "January"},
	{"MMM", "Jan"},
	{"YY", "06"},
	{"MM", "01"},
	{"DD", "02"},
	{"HH", "15"},
	{"mm", "04"},
	{"ss", "05"},
	{"M", "1"},
	{"D", "2"},
}

// DatePresets provides named shortcuts for common layouts.
var DatePresets = map[string]string{
	"iso":      DefaultTimestampFormat,
	"date":     "YYYY-MM-DD",
	"european": "DD/MM/YYYY HH:mm",
	"us":       "MM/DD/YYYY HH:mm",
	"long":     "MMMM D, YYYY HH:mm",
}

// ParseDateFormat converts a user-friendly layout to Go's time layout.
// Tokens: YYYY, YY, MMMM, MMM, MM, M, DD, D, HH, mm, ss.
// Brackets escape literal text: [at] keeps "at" as is.
func ParseDateFormat(format string) (string, error) {
	if format == "" {
		return "", fmt.Errorf("%w: format cannot be empty", ErrInvalidDateFormat)
	}
	if len(format) > MaxDateFormatLength {
		return "", fmt.Errorf("%w: format exceeds %d characters", ErrInvalidDateFormat, MaxDateFormatLength)
	}

	var result strings.Builder
	result.Grow(len(format) + 10)

	i := 0
	for i < len(format) {
		if format[i] == '[' {
			end := strings.Index(format[i+1:], "]")
			if end == -1 {
				return "", fmt.Errorf("%w: unclosed bracket at position %d", ErrInvalidDateFormat, i)
			}
			result.WriteString(format[i+1 : i+1+end])
			i += end + 2
			continue
		}

		matched := false
		for _, t := range dateTokens {
			if strings.HasPrefix(format[i:], t.token) {
				result.WriteString(t.goFmt)
				i += len(t.token)
				matched = true
				break
			}
		}

		if !matched {
			result.WriteByte(format[i])
			i++
		}
	}

	return result.String(), nil
}

// ResolveTimestamp handles "auto" and "auto:FORMAT" values for the header date.
//   - "" or "auto" → t in DefaultTimestampFormat
//   - "auto:FORMAT" → t in a custom layout (e.g. "auto:DD/MM/YYYY")
//   - "auto:preset" → t in a named preset (iso, date, european, us, long)
//   - any other value → returned unchanged
//
// The time parameter allows injecting a fixed time for testing.
func ResolveTimestamp(value string, t time.Time) (string, error) {
	lower := strings.ToLower(value)

	if lower == "" || lower == "auto" {
		return Format(DefaultTimestampFormat, t)
	}

	if !strings.HasPrefix(lower, "auto:") {
		return value, nil
	}

	// keep the original case, tokens are case-sensitive
	formatPart := value[len("auto:"):]
	if formatPart == "" {
		return "", fmt.Errorf("%w: format cannot be empty after \"auto:\"", ErrInvalidDateFormat)
	}

	if preset, ok := DatePresets[strings.ToLower(formatPart)]; ok {
		formatPart = preset
	}

	return Format(formatPart, t)
}

// Format renders t with a user-friendly layout.
func Format(layout string, t time.Time) (string, error) {
	goFmt, err := ParseDateFormat(layout)
	if err != nil {
		return "", err
	}
	return t.Format(goFmt), nil
}
