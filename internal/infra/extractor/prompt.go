package extractor

import (
	"fmt"
	"regexp"
	"strings"

	"leadscout/internal/domain/entity"
	"leadscout/internal/pkg/text"
)

// maxPromptChars caps how much article text reaches the model.
const maxPromptChars = 1500

var htmlTagRe = regexp.MustCompile(`<[^>]+>`)

// boilerplatePhrases are stripped before the text is sent to the model;
// they waste prompt budget without carrying lead information.
var boilerplatePhrases = []string{
	"Subscribe to our newsletter", "Sign up for", "All rights reserved",
	"Read more", "Click here", "Advertisement", "Cookie policy",
	"Terms of service", "Privacy policy",
}

// preprocess strips HTML tags and boilerplate and collapses whitespace,
// then truncates to the prompt budget.
func preprocess(body string) string {
	s := htmlTagRe.ReplaceAllString(body, " ")
	for _, phrase := range boilerplatePhrases {
		s = strings.ReplaceAll(s, phrase, " ")
	}
	return text.Truncate(text.CollapseWhitespace(s), maxPromptChars)
}

// BuildPrompt assembles the extraction prompt: essential fields plus every
// visible custom column with its description, followed by the preprocessed
// article text. The prompt demands a single flat JSON object so the response
// parser can stay strict.
func BuildPrompt(title, body string, columns []entity.Column) string {
	var b strings.Builder
	b.WriteString("Extract business lead fields from the article below. ")
	b.WriteString("Respond with ONLY a single flat JSON object, no prose, no markdown. ")
	b.WriteString("Use \"Unknown\" for fields you cannot determine.\n\nFields:\n")
	b.WriteString("- company: the business or developer behind the project\n")
	b.WriteString("- location: city and state where the project is located\n")
	b.WriteString("- project_type: hotel, resort, office, retail, multifamily, industrial, or similar\n")
	b.WriteString("- budget: project cost in dollars\n")

	for _, col := range columns {
		if !col.IsVisible {
			continue
		}
		desc := col.Description
		if desc == "" {
			desc = string(col.DataType) + " value"
		}
		fmt.Fprintf(&b, "- %s: %s\n", col.FieldKey, desc)
	}

	b.WriteString("\nTitle: ")
	b.WriteString(title)
	b.WriteString("\n\nArticle:\n")
	b.WriteString(preprocess(body))
	return b.String()
}
