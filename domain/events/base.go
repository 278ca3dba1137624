package events

import (
	"time"

	"memoryhub/domain/core/valueobjects"
)

const (
	// SourceBackend is the EventBridge source for events emitted by this service
	SourceBackend = "memoryhub.backend"

	TypeMemoryCreated  = "memory.created"
	TypeMemoryDeleted  = "memory.deleted"
	TypeUserRegistered = "user.registered"
)

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

// Memory Events

// MemoryCreated is raised when a memory has been classified, scored and accepted
type MemoryCreated struct {
	BaseEvent
	MemoryID        valueobjects.MemoryID `json:"memory_id"`
	UserID          string                `json:"user_id"`
	Category        string                `json:"memory_type"`
	Source          string                `json:"source"`
	ProjectID       string                `json:"project_id,omitempty"`
	ImportanceScore int                   `json:"importance_score"`
}

// NewMemoryCreated creates a MemoryCreated event
func NewMemoryCreated(
	memoryID valueobjects.MemoryID,
	userID string,
	category valueobjects.Category,
	source valueobjects.Source,
	projectID string,
	score int,
	timestamp time.Time,
) MemoryCreated {
	return MemoryCreated{
		BaseEvent: BaseEvent{
			AggregateID: memoryID.String(),
			EventType:   TypeMemoryCreated,
			Timestamp:   timestamp,
			Version:     1,
		},
		MemoryID:        memoryID,
		UserID:          userID,
		Category:        category.String(),
		Source:          source.String(),
		ProjectID:       projectID,
		ImportanceScore: score,
	}
}

// MemoryDeleted is raised when a memory is hard-removed
type MemoryDeleted struct {
	BaseEvent
	MemoryID valueobjects.MemoryID `json:"memory_id"`
	UserID   string                `json:"user_id"`
}

// NewMemoryDeleted creates a MemoryDeleted event
func NewMemoryDeleted(memoryID valueobjects.MemoryID, userID string, timestamp time.Time) MemoryDeleted {
	return MemoryDeleted{
		BaseEvent: BaseEvent{
			AggregateID: memoryID.String(),
			EventType:   TypeMemoryDeleted,
			Timestamp:   timestamp,
			Version:     1,
		},
		MemoryID: memoryID,
		UserID:   userID,
	}
}

// User Events

// UserRegistered is raised when a new account is created
type UserRegistered struct {
	BaseEvent
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// NewUserRegistered creates a UserRegistered event
func NewUserRegistered(userID, email string, timestamp time.Time) UserRegistered {
	return UserRegistered{
		BaseEvent: BaseEvent{
			AggregateID: userID,
			EventType:   TypeUserRegistered,
			Timestamp:   timestamp,
			Version:     1,
		},
		UserID: userID,
		Email:  email,
	}
}
