package entities

import (
	"testing"

	"memoryhub/domain/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	u, err := NewUser("  Bob@Example.COM", "hash")
	require.NoError(t, err)

	assert.Equal(t, "bob@example.com", u.Email())
	assert.NotEmpty(t, u.ID())
	assert.NotEmpty(t, u.APIKey())
	assert.NotEqual(t, u.ID(), u.APIKey())
	assert.True(t, u.IsActive())

	evts := u.GetUncommittedEvents()
	require.Len(t, evts, 1)
	assert.Equal(t, events.TypeUserRegistered, evts[0].GetEventType())

	u.Deactivate()
	assert.False(t, u.IsActive())
}

func TestNewUser_Rejects(t *testing.T) {
	_, err := NewUser("", "hash")
	assert.Error(t, err)

	_, err = NewUser("a@b.co", "")
	assert.Error(t, err)
}
