package service

import (
	"fmt"
	"log/slog"

	"github.com/sajj-ina/only-code-connect/internal/apperror"
	"github.com/sajj-ina/only-code-connect/internal/auth"
)

// AccountService implements the password grant for the application's own user.
//
// The credential comes from configuration and is hashed once at startup; only
// the bcrypt hash lives in memory afterwards. This mirrors the single
// operator-style account the system needs — there is no user signup flow.
type AccountService struct {
	username     string
	passwordHash string
	passwords    *auth.PasswordService
	tokens       *auth.TokenService
	logger       *slog.Logger
}

// NewAccountService hashes the configured password and returns a ready
// service.
func NewAccountService(
	username, password string,
	passwords *auth.PasswordService,
	tokens *auth.TokenService,
	logger *slog.Logger,
) (*AccountService, error) {
	if username == "" || password == "" {
		return nil, fmt.Errorf("service/account: username and password must be configured")
	}

	hash, err := passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("service/account: hashing configured password: %w", err)
	}

	return &AccountService{
		username:     username,
		passwordHash: hash,
		passwords:    passwords,
		tokens:       tokens,
		logger:       logger,
	}, nil
}

// Login verifies the credentials and issues a 30-minute JWT.
// Wrong username and wrong password produce the same error.
func (s *AccountService) Login(username, password string) (string, error) {
	if username != s.username || s.passwords.Verify(s.passwordHash, password) != nil {
		s.logger.Warn("failed login attempt", slog.String("username", username))
		return "", apperror.Unauthorized("Incorrect username or password")
	}

	token, err := s.tokens.Generate(username)
	if err != nil {
		return "", fmt.Errorf("service/account: generating token for %s: %w", username, err)
	}

	s.logger.Info("user logged in", slog.String("username", username))
	return token, nil
}
