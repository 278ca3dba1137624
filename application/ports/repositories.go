package ports

import (
	"context"

	"memoryhub/domain/core/entities"
	"memoryhub/domain/core/valueobjects"
	"memoryhub/domain/events"
)

// MemoryRepository defines the interface for memory persistence.
// This is a port in hexagonal architecture - the domain doesn't know about the implementation
type MemoryRepository interface {
	// Save persists a new memory. Memories are immutable, so Save never updates.
	Save(ctx context.Context, memory *entities.Memory) error

	// GetByOwnerAndID retrieves one of the user's memories with a consistent
	// read, returning ErrMemoryNotFound when absent or owned by someone else
	GetByOwnerAndID(ctx context.Context, userID string, id valueobjects.MemoryID) (*entities.Memory, error)

	// GetByOwner retrieves every memory owned by a user
	GetByOwner(ctx context.Context, userID string) ([]*entities.Memory, error)

	// Delete removes one of the user's memories, returning ErrMemoryNotFound
	// when absent or owned by someone else
	Delete(ctx context.Context, userID string, id valueobjects.MemoryID) error
}

// UserRepository defines the interface for account persistence
type UserRepository interface {
	// Save persists a new user, returning ErrEmailAlreadyRegistered on a duplicate email
	Save(ctx context.Context, user *entities.User) error

	// GetByID retrieves a user by ID, returning ErrUserNotFound when absent
	GetByID(ctx context.Context, id string) (*entities.User, error)

	// GetByEmail retrieves a user by normalized email, returning ErrUserNotFound when absent
	GetByEmail(ctx context.Context, email string) (*entities.User, error)
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	// Publish sends a single event
	Publish(ctx context.Context, event events.DomainEvent) error

	// PublishBatch sends multiple events
	PublishBatch(ctx context.Context, events []events.DomainEvent) error
}

// RecallRecord is the payload forwarded to the external memory-recall service
type RecallRecord struct {
	UserID   string
	Content  string
	Metadata map[string]interface{}
}

// RecallClient talks to the external memory-recall service
type RecallClient interface {
	// Enabled reports whether forwarding is configured
	Enabled() bool

	// Add forwards a memory. Callers treat failures as non-fatal.
	Add(ctx context.Context, record RecallRecord) error

	// Search queries the recall service and returns its raw results
	Search(ctx context.Context, userID, query string, limit int) ([]map[string]interface{}, error)
}

// Cache defines the interface for caching
type Cache interface {
	// Get retrieves a value from cache
	Get(ctx context.Context, key string) (interface{}, bool)

	// Set stores a value in cache with TTL in seconds
	Set(ctx context.Context, key string, value interface{}, ttl int) error

	// Delete removes a value from cache
	Delete(ctx context.Context, key string) error

	// Clear removes all values from cache
	Clear(ctx context.Context) error
}
