package config

import (
	"errors"
	"time"
)

// DomainConfig holds all configurable business rules and constraints
type DomainConfig struct {
	// Memory constraints
	MaxContentLength   int
	MaxProjectIDLength int
	MaxTagsPerMemory   int
	MaxTagLength       int

	// Search constraints
	MaxQueryLength     int
	DefaultSearchLimit int
	MaxSearchLimit     int

	// Account constraints
	MinPasswordLength int
	SessionTimeout    time.Duration

	// Feature flags
	EnableAutoClassification bool
	EnableRecallForwarding   bool
}

// DefaultDomainConfig returns the default domain configuration
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		MaxContentLength:   10000,
		MaxProjectIDLength: 100,
		MaxTagsPerMemory:   50,
		MaxTagLength:       100,

		MaxQueryLength:     1000,
		DefaultSearchLimit: 10,
		MaxSearchLimit:     100,

		MinPasswordLength: 8,
		SessionTimeout:    30 * time.Minute,

		EnableAutoClassification: true,
		EnableRecallForwarding:   true,
	}
}

// ProductionDomainConfig returns production-specific configuration
func ProductionDomainConfig() *DomainConfig {
	config := DefaultDomainConfig()

	// Tighter tag limits in production
	config.MaxTagsPerMemory = 20
	config.MaxTagLength = 50

	return config
}

// DevelopmentDomainConfig returns development-specific configuration
func DevelopmentDomainConfig() *DomainConfig {
	config := DefaultDomainConfig()

	// Long-lived sessions make local testing less painful
	config.SessionTimeout = 24 * time.Hour

	return config
}

// LoadDomainConfig loads domain configuration based on environment
func LoadDomainConfig(environment string) *DomainConfig {
	switch environment {
	case "production":
		return ProductionDomainConfig()
	case "development":
		return DevelopmentDomainConfig()
	default:
		return DefaultDomainConfig()
	}
}

// Validate checks if the configuration is valid
func (c *DomainConfig) Validate() error {
	if c.MaxContentLength <= 0 {
		return errors.New("max content length must be positive")
	}
	if c.MaxSearchLimit < 1 {
		return errors.New("max search limit must be at least 1")
	}
	if c.DefaultSearchLimit < 1 || c.DefaultSearchLimit > c.MaxSearchLimit {
		return errors.New("default search limit must be within [1, max search limit]")
	}
	return nil
}
