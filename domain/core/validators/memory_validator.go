package validators

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"memoryhub/domain/config"
	"memoryhub/pkg/errors"
)

// MemoryValidator validates memory-related domain rules that sit outside the
// value objects: tags, project identifiers and metadata.
type MemoryValidator struct {
	maxTags            int
	tagMaxLength       int
	projectIDMaxLength int
	maxMetadataKeys    int
	maxKeyLength       int
	maxValueLength     int
}

// NewMemoryValidator creates a validator from the domain configuration
func NewMemoryValidator(cfg *config.DomainConfig) *MemoryValidator {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return &MemoryValidator{
		maxTags:            cfg.MaxTagsPerMemory,
		tagMaxLength:       cfg.MaxTagLength,
		projectIDMaxLength: cfg.MaxProjectIDLength,
		maxMetadataKeys:    50,
		maxKeyLength:       100,
		maxValueLength:     1000,
	}
}

// ValidateTags validates a list of tags
func (v *MemoryValidator) ValidateTags(tags []string) error {
	if len(tags) > v.maxTags {
		return errors.NewDomainError(
			errors.DomainValidationError,
			"TOO_MANY_TAGS",
			fmt.Sprintf("Cannot have more than %d tags", v.maxTags),
		).WithDetail("field", "tags").WithDetail("count", len(tags))
	}

	for _, tag := range tags {
		if err := v.validateTag(tag); err != nil {
			return err
		}
	}

	return nil
}

func (v *MemoryValidator) validateTag(tag string) error {
	if strings.TrimSpace(tag) == "" {
		return errors.NewDomainError(
			errors.DomainValidationError,
			"EMPTY_TAG",
			"Tag cannot be empty",
		).WithDetail("field", "tags")
	}

	if utf8.RuneCountInString(tag) > v.tagMaxLength {
		return errors.NewDomainError(
			errors.DomainValidationError,
			"TAG_TOO_LONG",
			fmt.Sprintf("Tag exceeds maximum length of %d characters", v.tagMaxLength),
		).WithDetail("field", "tags").WithDetail("tag", tag)
	}

	return nil
}

// ValidateProjectID validates an optional project identifier
func (v *MemoryValidator) ValidateProjectID(projectID string) error {
	if projectID == "" {
		return nil
	}
	if utf8.RuneCountInString(projectID) > v.projectIDMaxLength {
		return errors.NewDomainError(
			errors.DomainValidationError,
			"PROJECT_ID_TOO_LONG",
			fmt.Sprintf("Project ID exceeds maximum length of %d characters", v.projectIDMaxLength),
		).WithDetail("field", "project_id").WithDetail("actual_length", utf8.RuneCountInString(projectID))
	}
	return nil
}

// ValidateMetadata validates the open key-value metadata
func (v *MemoryValidator) ValidateMetadata(metadata map[string]interface{}) error {
	if len(metadata) > v.maxMetadataKeys {
		return errors.NewDomainError(
			errors.DomainValidationError,
			"TOO_MANY_METADATA_KEYS",
			fmt.Sprintf("Cannot have more than %d metadata keys", v.maxMetadataKeys),
		).WithDetail("field", "metadata").WithDetail("count", len(metadata))
	}

	for key, value := range metadata {
		if len(key) > v.maxKeyLength {
			return errors.NewDomainError(
				errors.DomainValidationError,
				"METADATA_KEY_TOO_LONG",
				fmt.Sprintf("Metadata key '%s' exceeds maximum length of %d", key, v.maxKeyLength),
			).WithDetail("field", "metadata").WithDetail("key", key)
		}

		if s, ok := value.(string); ok && len(s) > v.maxValueLength {
			return errors.NewDomainError(
				errors.DomainValidationError,
				"METADATA_VALUE_TOO_LONG",
				fmt.Sprintf("Metadata value for '%s' exceeds maximum length of %d", key, v.maxValueLength),
			).WithDetail("field", "metadata").WithDetail("key", key)
		}
	}

	return nil
}

// Validate runs every check and aggregates the failures
func (v *MemoryValidator) Validate(tags []string, projectID string, metadata map[string]interface{}) error {
	validationErrors := errors.NewValidationErrors()

	for _, err := range []error{
		v.ValidateTags(tags),
		v.ValidateProjectID(projectID),
		v.ValidateMetadata(metadata),
	} {
		if err == nil {
			continue
		}
		if domainErr, ok := err.(*errors.DomainError); ok {
			validationErrors.AddError(domainErr)
		} else {
			validationErrors.Add("general", err.Error())
		}
	}

	if validationErrors.HasErrors() {
		return validationErrors
	}
	return nil
}
