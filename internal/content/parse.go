package content

import "strings"

const maxGeneratedFeatures = 5

// minGeneratedLength is the shortest model reply worth parsing.
const minGeneratedLength = 30

// ParseGeneratedFeatures extracts "Title: Detail" lines from a model reply.
// List numbering and bullets are dropped from the front of each line and
// markdown emphasis from the title. At most five features are returned.
func ParseGeneratedFeatures(text string) []Feature {
	text = strings.TrimSpace(text)
	if len(text) <= minGeneratedLength {
		return nil
	}
	var features []Feature
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimLeft(strings.TrimSpace(line), "0123456789.-) ")
		title, detail, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		title = strings.Trim(strings.TrimSpace(title), "*#")
		title = strings.TrimSpace(title)
		detail = strings.TrimSpace(strings.TrimLeft(detail, "*"))
		if title == "" || detail == "" {
			continue
		}
		features = append(features, Feature{Title: title, Detail: detail})
		if len(features) == maxGeneratedFeatures {
			break
		}
	}
	return features
}
