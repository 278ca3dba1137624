package commands

import (
	"strings"
	"unicode/utf8"

	"memoryhub/domain/core/valueobjects"
	pkgerrors "memoryhub/pkg/errors"
)

const (
	MaxContentLength   = 10000
	MaxProjectIDLength = 100
)

// CreateMemoryCommand represents the command to store a new memory.
// The caller allocates MemoryID so it can read the record back afterwards.
type CreateMemoryCommand struct {
	MemoryID  string                 `json:"memory_id"`
	UserID    string                 `json:"user_id"`
	Content   string                 `json:"content"`
	Category  string                 `json:"memory_type"`
	Priority  string                 `json:"priority"`
	Source    string                 `json:"source"`
	ProjectID string                 `json:"project_id"`
	Tags      []string               `json:"tags"`
	Metadata  map[string]interface{} `json:"metadata"`
}

// Validate validates the command
func (cmd CreateMemoryCommand) Validate() error {
	if cmd.UserID == "" {
		return pkgerrors.NewValidationError("user ID is required")
	}
	if _, err := valueobjects.NewMemoryIDFromString(cmd.MemoryID); err != nil {
		return err
	}
	if strings.TrimSpace(cmd.Content) == "" {
		return pkgerrors.NewValidationError("content is required")
	}
	if utf8.RuneCountInString(cmd.Content) > MaxContentLength {
		return pkgerrors.NewValidationError("content exceeds maximum length")
	}
	if utf8.RuneCountInString(cmd.ProjectID) > MaxProjectIDLength {
		return pkgerrors.NewValidationError("project ID exceeds maximum length")
	}
	if _, err := valueobjects.ParseCategory(cmd.Category); err != nil {
		return err
	}
	if _, err := valueobjects.ParsePriority(cmd.Priority); err != nil {
		return err
	}
	if _, err := valueobjects.ParseSource(cmd.Source); err != nil {
		return err
	}
	return nil
}

// DeleteMemoryCommand represents the command to hard-delete a memory
type DeleteMemoryCommand struct {
	UserID   string `json:"user_id"`
	MemoryID string `json:"memory_id"`
}

// Validate validates the command
func (cmd DeleteMemoryCommand) Validate() error {
	if cmd.UserID == "" {
		return pkgerrors.NewValidationError("user ID is required")
	}
	if cmd.MemoryID == "" {
		return pkgerrors.NewValidationError("memory ID is required")
	}
	return nil
}
