package services

import (
	"context"

	"financas/internal/auth"
	"financas/internal/core"
	"financas/internal/log"
	"financas/internal/storage"
)

// Session is an authenticated session handed back to the UI: the user
// plus a signed token bounding its lifetime.
type Session struct {
	User  core.User
	Token string
}

// AuthService is the session gateway: it orchestrates login against
// the registry and credential store and issues the stateless tokens
// protected operations re-validate.
type AuthService struct {
	repo   *storage.SQLiteRepository
	creds  *auth.CredentialStore
	tokens *auth.TokenIssuer
	logger *log.Logger
}

// NewAuthService constructs an AuthService.
func NewAuthService(repo *storage.SQLiteRepository, creds *auth.CredentialStore, tokens *auth.TokenIssuer, logger *log.Logger) *AuthService {
	return &AuthService{
		repo:   repo,
		creds:  creds,
		tokens: tokens,
		logger: logger.WithComponent("auth"),
	}
}

// Login verifies the email/password pair and issues a fresh session
// token. An unknown email and a wrong password are indistinguishable:
// both yield core.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.repo.UserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || !s.creds.Verify(password, user.PasswordHash) {
		s.logger.WarnContext(ctx, "login rejected")
		return nil, core.ErrInvalidCredentials
	}

	if s.creds.NeedsRehash(user.PasswordHash) {
		// Upgrade legacy or under-iterated records while the plaintext
		// is at hand. Login proceeds either way.
		if hash, err := s.creds.Hash(password); err == nil {
			if err := s.repo.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
				s.logger.ErrorContext(ctx, "credential rehash failed", "user_id", user.ID, "error", err)
			} else {
				user.PasswordHash = hash
				s.logger.InfoContext(ctx, "credential record upgraded", "user_id", user.ID)
			}
		}
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "login succeeded", "user_id", user.ID)
	return &Session{User: *user, Token: token}, nil
}

// ValidateToken checks signature and expiry and returns the subject
// user id. It does not re-check user existence; callers combine with a
// registry lookup to detect deleted accounts.
func (s *AuthService) ValidateToken(token string) (int64, bool) {
	return s.tokens.Validate(token)
}

// Logout is purely client-side: tokens are stateless, so there is no
// server state to clear beyond the caller discarding its copy.
func (s *AuthService) Logout() {}
