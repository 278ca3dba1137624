package valueobjects

import (
	"fmt"
	"strings"

	pkgerrors "memoryhub/pkg/errors"
)

// Priority is the caller-assigned urgency of a memory
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// DefaultPriority is used when the caller omits a priority
const DefaultPriority = PriorityMedium

// ParsePriority converts a raw string into a Priority
func ParsePriority(s string) (Priority, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultPriority, nil
	}
	p := Priority(s)
	if !p.IsValid() {
		return "", pkgerrors.NewValidationError(fmt.Sprintf("invalid priority: %q", s))
	}
	return p, nil
}

// IsValid reports whether p is a member of the closed set
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	default:
		return false
	}
}

func (p Priority) String() string {
	return string(p)
}
