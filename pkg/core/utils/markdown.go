package utils

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/text"
)

// CleanMarkdown strips an outer markdown code fence if the whole input is
// wrapped in one, and trims surrounding whitespace. Model narratives often
// arrive fenced as ```markdown blocks.
func CleanMarkdown(input string) string {
	cleaned := strings.TrimSpace(input)

	for _, lang := range []string{"```markdown", "```json"} {
		if strings.HasPrefix(cleaned, lang) && strings.HasSuffix(cleaned, "```") {
			cleaned = strings.TrimPrefix(cleaned, lang)
			cleaned = strings.TrimSuffix(cleaned, "```")
			return strings.TrimSpace(cleaned)
		}
	}
	if strings.HasPrefix(cleaned, "```") && strings.HasSuffix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(cleaned, "```")
		cleaned = strings.TrimSpace(cleaned)
	}

	return cleaned
}

// ValidateMarkdown checks that the input parses with Goldmark. Goldmark is
// permissive, so this only catches grossly broken content.
func ValidateMarkdown(input string) bool {
	parser := goldmark.DefaultParser()
	reader := text.NewReader([]byte(input))
	doc := parser.Parse(reader)
	return doc != nil
}
