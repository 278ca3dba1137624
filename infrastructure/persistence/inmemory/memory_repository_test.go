package inmemory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"memoryhub/domain/core/entities"
	"memoryhub/domain/core/valueobjects"
	pkgerrors "memoryhub/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMemory(t *testing.T, userID, content string) *entities.Memory {
	t.Helper()
	m, err := entities.ReconstructMemory(entities.MemoryParams{
		ID:        valueobjects.NewMemoryID(),
		UserID:    userID,
		Content:   valueobjects.RestoreMemoryContent(content),
		Category:  valueobjects.CategoryContext,
		Priority:  valueobjects.DefaultPriority,
		Source:    valueobjects.DefaultSource,
		Tags:      []string{"a"},
		Metadata:  map[string]interface{}{"k": "v"},
		CreatedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}, 50)
	require.NoError(t, err)
	return m
}

func TestMemoryRepository_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	m := newTestMemory(t, "user-1", "hello world")

	require.NoError(t, repo.Save(ctx, m))

	got, err := repo.GetByOwnerAndID(ctx, "user-1", m.ID())
	require.NoError(t, err)
	assert.Equal(t, m.ID(), got.ID())
	assert.Equal(t, "hello world", got.Content().String())
	assert.Equal(t, 50, got.ImportanceScore())
	assert.Equal(t, []string{"a"}, got.Tags())
	assert.Equal(t, 1, repo.Count())
}

func TestMemoryRepository_SaveDuplicateID(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	m := newTestMemory(t, "user-1", "hello")

	require.NoError(t, repo.Save(ctx, m))
	err := repo.Save(ctx, m)
	assert.True(t, pkgerrors.IsConflict(err))
}

func TestMemoryRepository_GetByOwnerAndIDMissing(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	m := newTestMemory(t, "alice", "one")
	require.NoError(t, repo.Save(ctx, m))

	_, err := repo.GetByOwnerAndID(ctx, "alice", valueobjects.NewMemoryID())
	assert.True(t, errors.Is(err, pkgerrors.ErrMemoryNotFound))

	_, err = repo.GetByOwnerAndID(ctx, "bob", m.ID())
	assert.True(t, errors.Is(err, pkgerrors.ErrMemoryNotFound))
}

func TestMemoryRepository_GetByOwnerIsolatesUsers(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	require.NoError(t, repo.Save(ctx, newTestMemory(t, "alice", "one")))
	require.NoError(t, repo.Save(ctx, newTestMemory(t, "alice", "two")))
	require.NoError(t, repo.Save(ctx, newTestMemory(t, "bob", "three")))

	alice, err := repo.GetByOwner(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, alice, 2)
	for _, m := range alice {
		assert.Equal(t, "alice", m.UserID())
	}

	nobody, err := repo.GetByOwner(ctx, "carol")
	require.NoError(t, err)
	assert.NotNil(t, nobody)
	assert.Empty(t, nobody)
}

func TestMemoryRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	m := newTestMemory(t, "alice", "one")
	require.NoError(t, repo.Save(ctx, m))

	got, err := repo.GetByOwnerAndID(ctx, "alice", m.ID())
	require.NoError(t, err)
	got.Metadata()["k"] = "changed"

	again, err := repo.GetByOwnerAndID(ctx, "alice", m.ID())
	require.NoError(t, err)
	assert.Equal(t, "v", again.Metadata()["k"])
}

func TestMemoryRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	m := newTestMemory(t, "alice", "one")
	require.NoError(t, repo.Save(ctx, m))

	err := repo.Delete(ctx, "bob", m.ID())
	assert.True(t, errors.Is(err, pkgerrors.ErrMemoryNotFound))
	assert.Equal(t, 1, repo.Count())

	require.NoError(t, repo.Delete(ctx, "alice", m.ID()))

	_, err = repo.GetByOwnerAndID(ctx, "alice", m.ID())
	assert.True(t, errors.Is(err, pkgerrors.ErrMemoryNotFound))
	owned, err := repo.GetByOwner(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, owned)

	err = repo.Delete(ctx, "alice", m.ID())
	assert.True(t, errors.Is(err, pkgerrors.ErrMemoryNotFound))
}

func TestMemoryRepository_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	repo := NewMemoryRepository()

	err := repo.Save(ctx, newTestMemory(t, "alice", "one"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemoryRepository_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			assert.NoError(t, repo.Save(ctx, newTestMemory(t, "alice", "content")))
		}()
		go func() {
			defer wg.Done()
			_, err := repo.GetByOwner(ctx, "alice")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, repo.Count())
}
