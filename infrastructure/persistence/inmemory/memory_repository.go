// Package inmemory provides process-local implementations of the
// application ports. Data does not survive a restart.
package inmemory

import (
	"context"
	"sync"

	"memoryhub/application/ports"
	"memoryhub/domain/core/entities"
	"memoryhub/domain/core/valueobjects"
	pkgerrors "memoryhub/pkg/errors"
)

// MemoryRepository keeps memories in a map guarded by a RWMutex. Reads hand
// out copies so callers always work on a consistent snapshot.
type MemoryRepository struct {
	mu       sync.RWMutex
	memories map[string]*entities.Memory
	byOwner  map[string]map[string]struct{}
}

// NewMemoryRepository creates an empty repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		memories: make(map[string]*entities.Memory),
		byOwner:  make(map[string]map[string]struct{}),
	}
}

var _ ports.MemoryRepository = (*MemoryRepository)(nil)

// Save stores a memory. Memories are immutable, so an existing ID is a conflict.
func (r *MemoryRepository) Save(ctx context.Context, memory *entities.Memory) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	stored, err := cloneMemory(memory)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id := memory.ID().String()
	if _, exists := r.memories[id]; exists {
		return pkgerrors.NewConflictError("memory already exists")
	}
	r.memories[id] = stored

	owned, ok := r.byOwner[memory.UserID()]
	if !ok {
		owned = make(map[string]struct{})
		r.byOwner[memory.UserID()] = owned
	}
	owned[id] = struct{}{}
	return nil
}

// GetByOwnerAndID returns a copy of the memory if userID owns it
func (r *MemoryRepository) GetByOwnerAndID(ctx context.Context, userID string, id valueobjects.MemoryID) (*entities.Memory, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	m, ok := r.memories[id.String()]
	r.mu.RUnlock()
	if !ok || !m.IsOwnedBy(userID) {
		return nil, pkgerrors.ErrMemoryNotFound
	}
	return cloneMemory(m)
}

// GetByOwner returns copies of every memory owned by userID, in no particular order
func (r *MemoryRepository) GetByOwner(ctx context.Context, userID string) ([]*entities.Memory, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	owned := r.byOwner[userID]
	result := make([]*entities.Memory, 0, len(owned))
	for id := range owned {
		m, err := cloneMemory(r.memories[id])
		if err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	return result, nil
}

// Delete hard-removes a memory owned by userID
func (r *MemoryRepository) Delete(ctx context.Context, userID string, id valueobjects.MemoryID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.memories[id.String()]
	if !ok || !m.IsOwnedBy(userID) {
		return pkgerrors.ErrMemoryNotFound
	}
	delete(r.memories, id.String())
	if owned := r.byOwner[m.UserID()]; owned != nil {
		delete(owned, id.String())
		if len(owned) == 0 {
			delete(r.byOwner, m.UserID())
		}
	}
	return nil
}

// Count returns the number of stored memories
func (r *MemoryRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.memories)
}

func cloneMemory(m *entities.Memory) (*entities.Memory, error) {
	return entities.ReconstructMemory(entities.MemoryParams{
		ID:        m.ID(),
		UserID:    m.UserID(),
		Content:   m.Content(),
		Category:  m.Category(),
		Priority:  m.Priority(),
		Source:    m.Source(),
		ProjectID: m.ProjectID(),
		Tags:      m.Tags(),
		Metadata:  m.Metadata(),
		CreatedAt: m.CreatedAt(),
	}, m.ImportanceScore())
}
