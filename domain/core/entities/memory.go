package entities

import (
	"time"

	"memoryhub/domain/core/valueobjects"
	"memoryhub/domain/events"
	pkgerrors "memoryhub/pkg/errors"
)

// Enricher derives the computed attributes of a memory at creation time.
// It is implemented by the domain services package.
type Enricher interface {
	ResolveCategory(requested valueobjects.Category, text string) valueobjects.Category
	Score(text string, category valueobjects.Category, metadata map[string]interface{}) int
}

// MemoryParams carries the caller-supplied fields of a new memory
type MemoryParams struct {
	ID        valueobjects.MemoryID
	UserID    string
	Content   valueobjects.MemoryContent
	Category  valueobjects.Category
	Priority  valueobjects.Priority
	Source    valueobjects.Source
	ProjectID string
	Tags      []string
	Metadata  map[string]interface{}
	CreatedAt time.Time
}

// Memory is a single stored unit of user-submitted text plus its
// classification and derived importance. It is immutable once created.
type Memory struct {
	id              valueobjects.MemoryID
	userID          string
	content         valueobjects.MemoryContent
	category        valueobjects.Category
	priority        valueobjects.Priority
	source          valueobjects.Source
	projectID       string
	tags            []string
	metadata        map[string]interface{}
	createdAt       time.Time
	importanceScore int

	events []events.DomainEvent
}

// NewMemory creates a memory, classifying it when the requested category is the
// default and computing its importance score. Zero-valued optional fields fall
// back to their defaults.
func NewMemory(p MemoryParams, enricher Enricher) (*Memory, error) {
	if p.UserID == "" {
		return nil, pkgerrors.NewValidationError("userID cannot be empty")
	}
	if p.Content.IsEmpty() {
		return nil, pkgerrors.NewValidationError("content cannot be empty")
	}
	if enricher == nil {
		return nil, pkgerrors.NewInternalError("memory enricher is required")
	}

	if p.ID.IsZero() {
		p.ID = valueobjects.NewMemoryID()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	if p.Priority == "" {
		p.Priority = valueobjects.DefaultPriority
	}
	if p.Source == "" {
		p.Source = valueobjects.DefaultSource
	}

	category := enricher.ResolveCategory(p.Category, p.Content.String())
	metadata := copyMetadata(p.Metadata)

	m := &Memory{
		id:              p.ID,
		userID:          p.UserID,
		content:         p.Content,
		category:        category,
		priority:        p.Priority,
		source:          p.Source,
		projectID:       p.ProjectID,
		tags:            copyTags(p.Tags),
		metadata:        metadata,
		createdAt:       p.CreatedAt,
		importanceScore: enricher.Score(p.Content.String(), category, metadata),
		events:          []events.DomainEvent{},
	}

	m.addEvent(events.NewMemoryCreated(
		m.id,
		m.userID,
		m.category,
		m.source,
		m.projectID,
		m.importanceScore,
		m.createdAt,
	))

	return m, nil
}

// ReconstructMemory rebuilds a memory from repository data. The stored score is
// trusted as-is; it was computed when the memory was created.
func ReconstructMemory(p MemoryParams, importanceScore int) (*Memory, error) {
	if p.UserID == "" {
		return nil, pkgerrors.NewValidationError("userID cannot be empty")
	}
	if p.ID.IsZero() {
		return nil, pkgerrors.NewValidationError("memory ID cannot be empty")
	}

	return &Memory{
		id:              p.ID,
		userID:          p.UserID,
		content:         p.Content,
		category:        p.Category,
		priority:        p.Priority,
		source:          p.Source,
		projectID:       p.ProjectID,
		tags:            copyTags(p.Tags),
		metadata:        copyMetadata(p.Metadata),
		createdAt:       p.CreatedAt,
		importanceScore: importanceScore,
		events:          []events.DomainEvent{},
	}, nil
}

// ID returns the memory's unique identifier
func (m *Memory) ID() valueobjects.MemoryID {
	return m.id
}

// UserID returns the owner
func (m *Memory) UserID() string {
	return m.userID
}

// Content returns the memory text
func (m *Memory) Content() valueobjects.MemoryContent {
	return m.content
}

func (m *Memory) Category() valueobjects.Category {
	return m.category
}

func (m *Memory) Priority() valueobjects.Priority {
	return m.priority
}

func (m *Memory) Source() valueobjects.Source {
	return m.source
}

// ProjectID returns the optional project identifier, empty when unset
func (m *Memory) ProjectID() string {
	return m.projectID
}

// Tags returns a copy of the memory's tags
func (m *Memory) Tags() []string {
	return copyTags(m.tags)
}

// Metadata returns a shallow copy of the memory's metadata
func (m *Memory) Metadata() map[string]interface{} {
	return copyMetadata(m.metadata)
}

func (m *Memory) CreatedAt() time.Time {
	return m.createdAt
}

// ImportanceScore returns the score computed at creation time
func (m *Memory) ImportanceScore() int {
	return m.importanceScore
}

// IsOwnedBy reports whether userID owns this memory
func (m *Memory) IsOwnedBy(userID string) bool {
	return m.userID == userID
}

// MarkDeleted records the deletion event. The repository performs the removal.
func (m *Memory) MarkDeleted(at time.Time) {
	m.addEvent(events.NewMemoryDeleted(m.id, m.userID, at))
}

// GetUncommittedEvents returns events raised since the last commit
func (m *Memory) GetUncommittedEvents() []events.DomainEvent {
	return m.events
}

// MarkEventsAsCommitted clears the pending events
func (m *Memory) MarkEventsAsCommitted() {
	m.events = []events.DomainEvent{}
}

func (m *Memory) addEvent(event events.DomainEvent) {
	m.events = append(m.events, event)
}

func copyTags(tags []string) []string {
	out := make([]string, len(tags))
	copy(out, tags)
	return out
}

func copyMetadata(metadata map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(metadata))
	for k, v := range metadata {
		out[k] = v
	}
	return out
}
