package valueobjects

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"memoryhub/domain/config"
	pkgerrors "memoryhub/pkg/errors"
)

// MemoryContent is the validated free text of a memory
type MemoryContent struct {
	text string
}

// NewMemoryContent creates content with validation using default configuration
func NewMemoryContent(text string) (MemoryContent, error) {
	return NewMemoryContentWithConfig(text, config.DefaultDomainConfig())
}

// NewMemoryContentWithConfig creates content with validation and configuration
func NewMemoryContentWithConfig(text string, cfg *config.DomainConfig) (MemoryContent, error) {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}

	if strings.TrimSpace(text) == "" {
		return MemoryContent{}, pkgerrors.NewValidationError("content cannot be empty")
	}

	if utf8.RuneCountInString(text) > cfg.MaxContentLength {
		return MemoryContent{}, pkgerrors.NewValidationError(
			fmt.Sprintf("content exceeds maximum length of %d characters", cfg.MaxContentLength),
		)
	}

	return MemoryContent{text: text}, nil
}

// String returns the raw text
func (c MemoryContent) String() string {
	return c.text
}

// Length returns the content length in characters
func (c MemoryContent) Length() int {
	return utf8.RuneCountInString(c.text)
}

// IsEmpty checks if content is empty
func (c MemoryContent) IsEmpty() bool {
	return c.text == ""
}

// Contains reports whether query appears in the content, ignoring case
func (c MemoryContent) Contains(query string) bool {
	return strings.Contains(strings.ToLower(c.text), strings.ToLower(query))
}

// Summary returns a truncated summary of the content
func (c MemoryContent) Summary(maxLength int) string {
	if maxLength <= 0 {
		return ""
	}
	if utf8.RuneCountInString(c.text) <= maxLength {
		return c.text
	}
	if maxLength <= 3 {
		return string([]rune(c.text)[:maxLength])
	}
	runes := []rune(c.text)
	return string(runes[:maxLength-3]) + "..."
}

// RestoreMemoryContent wraps previously validated text loaded from storage
func RestoreMemoryContent(text string) MemoryContent {
	return MemoryContent{text: text}
}
