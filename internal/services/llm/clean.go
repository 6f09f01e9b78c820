package llm

import (
	"regexp"
	"strings"
)

var (
	labelOnlyLine = regexp.MustCompile(`^[A-Za-z\s]{1,20}:\s*$`)
	markdownRule  = regexp.MustCompile(`^[-*_=]{3,}$`)
)

// CleanOutput strips code fences, markdown rules and label-only header lines
// from a model response while keeping line structure intact.
func CleanOutput(content string) string {
	trimmed := strings.TrimSpace(stripCodeFenceBlock(content))
	if trimmed == "" {
		return ""
	}
	lines := strings.Split(strings.ReplaceAll(trimmed, "\r\n", "\n"), "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || markdownRule.MatchString(line) || labelOnlyLine.MatchString(line) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

func stripCodeFenceBlock(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	body := trimmed[3:]
	if idx := strings.IndexByte(body, '\n'); idx >= 0 {
		body = body[idx+1:]
	} else {
		body = ""
	}
	if idx := strings.LastIndex(body, "```"); idx >= 0 {
		body = body[:idx]
	}
	return strings.TrimSpace(body)
}
