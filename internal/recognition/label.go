package recognition

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// NormalizeLabel turns a raw model label into display form: the first
// comma-separated synonym, underscores as spaces, whitespace collapsed, first
// letter upper-cased. The rest of the label keeps its case. The function is
// idempotent and maps empty input to empty output.
func NormalizeLabel(raw string) string {
	if idx := strings.IndexByte(raw, ','); idx >= 0 {
		raw = raw[:idx]
	}
	raw = strings.ReplaceAll(raw, "_", " ")
	raw = strings.Join(strings.Fields(raw), " ")
	if raw == "" {
		return ""
	}
	first, size := utf8.DecodeRuneInString(raw)
	return string(unicode.ToUpper(first)) + raw[size:]
}
