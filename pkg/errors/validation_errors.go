package errors

import (
	"fmt"
	"strings"
)

// ValidationErrors collects every field failure of one request so they can be
// reported together
type ValidationErrors struct {
	Errors []*DomainError `json:"errors"`
}

func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{Errors: make([]*DomainError, 0)}
}

// Add records a failure against field
func (v *ValidationErrors) Add(field string, message string) {
	v.Errors = append(v.Errors,
		NewDomainError(DomainValidationError, "FIELD_VALIDATION_ERROR", message).WithDetail("field", field))
}

// AddError records a pre-built domain error; its "field" detail names the field
func (v *ValidationErrors) AddError(err *DomainError) {
	v.Errors = append(v.Errors, err)
}

func (v *ValidationErrors) HasErrors() bool {
	return len(v.Errors) > 0
}

func (v *ValidationErrors) Error() string {
	messages := make([]string, len(v.Errors))
	for i, err := range v.Errors {
		messages[i] = err.Message
	}
	return fmt.Sprintf("Validation failed: %s", strings.Join(messages, "; "))
}

// ToMap groups messages by field; errors without a field land under "general"
func (v *ValidationErrors) ToMap() map[string][]string {
	result := make(map[string][]string)
	for _, err := range v.Errors {
		field, ok := err.Details["field"].(string)
		if !ok {
			field = "general"
		}
		result[field] = append(result[field], err.Message)
	}
	return result
}
