package valueobjects

import (
	"fmt"
	"strings"

	pkgerrors "memoryhub/pkg/errors"
)

// Category is the closed set of labels a memory can be classified into
type Category string

const (
	CategoryGoal        Category = "goal"
	CategoryActionItem  Category = "action_item"
	CategoryDecision    Category = "decision"
	CategoryContext     Category = "context"
	CategoryInsight     Category = "insight"
	CategoryReference   Category = "reference"
	CategoryCodeSnippet Category = "code_snippet"
	CategoryMeetingNote Category = "meeting_note"
)

// DefaultCategory is assigned when the caller does not pick one. It also marks
// a memory as not yet classified.
const DefaultCategory = CategoryContext

// AllCategories lists every valid category
func AllCategories() []Category {
	return []Category{
		CategoryGoal,
		CategoryActionItem,
		CategoryDecision,
		CategoryContext,
		CategoryInsight,
		CategoryReference,
		CategoryCodeSnippet,
		CategoryMeetingNote,
	}
}

// ParseCategory converts a raw string into a Category. An empty string yields
// the default category.
func ParseCategory(s string) (Category, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultCategory, nil
	}
	c := Category(s)
	if !c.IsValid() {
		return "", pkgerrors.NewValidationError(fmt.Sprintf("invalid memory type: %q", s))
	}
	return c, nil
}

// ParseCategories converts a list of raw strings, failing on the first invalid entry
func ParseCategories(values []string) ([]Category, error) {
	if len(values) == 0 {
		return nil, nil
	}
	out := make([]Category, 0, len(values))
	for _, v := range values {
		c, err := ParseCategory(v)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// IsValid reports whether c is a member of the closed set
func (c Category) IsValid() bool {
	switch c {
	case CategoryGoal, CategoryActionItem, CategoryDecision, CategoryContext,
		CategoryInsight, CategoryReference, CategoryCodeSnippet, CategoryMeetingNote:
		return true
	default:
		return false
	}
}

// IsDefault reports whether c is the unclassified sentinel
func (c Category) IsDefault() bool {
	return c == DefaultCategory
}

func (c Category) String() string {
	return string(c)
}
