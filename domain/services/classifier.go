// Package services holds the stateless domain logic of the memory engine:
// classification of free text, importance scoring and ranked retrieval.
package services

import (
	"strings"

	"memoryhub/domain/core/valueobjects"
)

// classificationRule maps a keyword set to a category. A rule matches when any
// keyword appears as a substring of the lower-cased text.
type classificationRule struct {
	category valueobjects.Category
	keywords []string
}

// classificationRules is evaluated top to bottom and the first match wins.
// The order is part of the contract: "we decided on a goal" is a goal.
var classificationRules = []classificationRule{
	{valueobjects.CategoryGoal, []string{"goal", "objective", "target", "aim"}},
	{valueobjects.CategoryActionItem, []string{"todo", "task", "action", "need to"}},
	{valueobjects.CategoryDecision, []string{"decided", "decision", "concluded"}},
	{valueobjects.CategoryInsight, []string{"insight", "learned", "discovered"}},
	{valueobjects.CategoryCodeSnippet, []string{"code", "function", "class", "def"}},
	{valueobjects.CategoryMeetingNote, []string{"meeting", "discussed", "agenda"}},
}

// Classify returns the category for text using ordered keyword matching.
// Text that matches no rule falls back to the default category.
func Classify(text string) valueobjects.Category {
	lower := strings.ToLower(text)
	for _, rule := range classificationRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(lower, keyword) {
				return rule.category
			}
		}
	}
	return valueobjects.DefaultCategory
}

// ResolveCategory classifies text only when requested is the unclassified
// sentinel; an explicit category is returned untouched.
func ResolveCategory(requested valueobjects.Category, text string) valueobjects.Category {
	if requested == "" || requested.IsDefault() {
		return Classify(text)
	}
	return requested
}
