package entities

import (
	"strings"
	"time"

	"memoryhub/domain/events"
	pkgerrors "memoryhub/pkg/errors"

	"github.com/google/uuid"
)

// User is an account that owns memories
type User struct {
	id           string
	email        string
	passwordHash string
	apiKey       string
	active       bool
	createdAt    time.Time

	events []events.DomainEvent
}

// NewUser creates an active user with a fresh ID and API key. The password
// must already be hashed.
func NewUser(email, passwordHash string) (*User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return nil, pkgerrors.NewValidationError("email cannot be empty")
	}
	if passwordHash == "" {
		return nil, pkgerrors.NewValidationError("password hash cannot be empty")
	}

	now := time.Now().UTC()
	u := &User{
		id:           uuid.New().String(),
		email:        email,
		passwordHash: passwordHash,
		apiKey:       uuid.New().String(),
		active:       true,
		createdAt:    now,
		events:       []events.DomainEvent{},
	}
	u.events = append(u.events, events.NewUserRegistered(u.id, u.email, now))
	return u, nil
}

// ReconstructUser rebuilds a user from repository data
func ReconstructUser(id, email, passwordHash, apiKey string, active bool, createdAt time.Time) *User {
	return &User{
		id:           id,
		email:        email,
		passwordHash: passwordHash,
		apiKey:       apiKey,
		active:       active,
		createdAt:    createdAt,
		events:       []events.DomainEvent{},
	}
}

func (u *User) ID() string           { return u.id }
func (u *User) Email() string        { return u.email }
func (u *User) PasswordHash() string { return u.passwordHash }
func (u *User) APIKey() string       { return u.apiKey }
func (u *User) IsActive() bool       { return u.active }
func (u *User) CreatedAt() time.Time { return u.createdAt }

// Deactivate disables the account; login is refused afterwards
func (u *User) Deactivate() {
	u.active = false
}

// GetUncommittedEvents returns events raised since the last commit
func (u *User) GetUncommittedEvents() []events.DomainEvent {
	return u.events
}

// MarkEventsAsCommitted clears the pending events
func (u *User) MarkEventsAsCommitted() {
	u.events = []events.DomainEvent{}
}
