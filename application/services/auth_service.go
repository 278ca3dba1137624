package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"memoryhub/application/ports"
	"memoryhub/domain/config"
	"memoryhub/domain/core/entities"
	pkgerrors "memoryhub/pkg/errors"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// TokenIssuer signs session tokens for authenticated users
type TokenIssuer interface {
	GenerateToken(userID, email string) (string, error)
}

// AuthResult is returned by a successful registration or login
type AuthResult struct {
	Token     string `json:"access_token"`
	TokenType string `json:"token_type"`
	UserID    string `json:"user_id"`
	APIKey    string `json:"api_key,omitempty"`
}

const tokenTypeBearer = "bearer"

// AuthService registers accounts and exchanges credentials for tokens
type AuthService struct {
	users          ports.UserRepository
	tokens         TokenIssuer
	eventPublisher ports.EventPublisher
	domainConfig   *config.DomainConfig
	bcryptCost     int
	logger         *zap.Logger
}

// NewAuthService creates a new auth service. A zero bcryptCost uses bcrypt.DefaultCost.
func NewAuthService(
	users ports.UserRepository,
	tokens TokenIssuer,
	eventPublisher ports.EventPublisher,
	domainConfig *config.DomainConfig,
	bcryptCost int,
	logger *zap.Logger,
) *AuthService {
	if domainConfig == nil {
		domainConfig = config.DefaultDomainConfig()
	}
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{
		users:          users,
		tokens:         tokens,
		eventPublisher: eventPublisher,
		domainConfig:   domainConfig,
		bcryptCost:     bcryptCost,
		logger:         logger,
	}
}

// Register creates an account and signs a token for it
func (s *AuthService) Register(ctx context.Context, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, pkgerrors.NewValidationError("email is required")
	}
	if utf8.RuneCountInString(password) < s.domainConfig.MinPasswordLength {
		return nil, pkgerrors.NewValidationError(
			fmt.Sprintf("password must be at least %d characters", s.domainConfig.MinPasswordLength),
		)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, pkgerrors.ErrEmailAlreadyRegistered
	} else if !errors.Is(err, pkgerrors.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := entities.NewUser(email, string(hash))
	if err != nil {
		return nil, err
	}
	if err := s.users.Save(ctx, user); err != nil {
		return nil, err
	}

	if err := s.eventPublisher.PublishBatch(ctx, user.GetUncommittedEvents()); err != nil {
		s.logger.Warn("Failed to publish registration event", zap.String("userID", user.ID()), zap.Error(err))
	}
	user.MarkEventsAsCommitted()

	token, err := s.tokens.GenerateToken(user.ID(), user.Email())
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	s.logger.Info("User registered", zap.String("userID", user.ID()))

	return &AuthResult{
		Token:     token,
		TokenType: tokenTypeBearer,
		UserID:    user.ID(),
		APIKey:    user.APIKey(),
	}, nil
}

// Login verifies credentials and signs a token. Unknown emails and wrong
// passwords produce the same error.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, pkgerrors.ErrUserNotFound) {
			return nil, pkgerrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash()), []byte(password)); err != nil {
		return nil, pkgerrors.ErrInvalidCredentials
	}
	if !user.IsActive() {
		return nil, pkgerrors.ErrAccountDisabled
	}

	token, err := s.tokens.GenerateToken(user.ID(), user.Email())
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &AuthResult{
		Token:     token,
		TokenType: tokenTypeBearer,
		UserID:    user.ID(),
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
