// Package services contains the application services the UI calls
// into: the user registry, the ledger and the session gateway.
package services

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	"financas/internal/auth"
	"financas/internal/core"
	"financas/internal/log"
	"financas/internal/storage"
)

// defaultCategories is the fixed seed set created for every new user.
var defaultCategories = []core.Category{
	{Name: "Alimentação", Color: "#e74c3c", Icon: "🍽️"},
	{Name: "Transporte", Color: "#3498db", Icon: "🚗"},
	{Name: "Moradia", Color: "#2ecc71", Icon: "🏠"},
	{Name: "Saúde", Color: "#9b59b6", Icon: "🏥"},
	{Name: "Educação", Color: "#f39c12", Icon: "📚"},
	{Name: "Lazer", Color: "#1abc9c", Icon: "🎮"},
	{Name: "Vestuário", Color: "#e67e22", Icon: "👕"},
	{Name: "Salário", Color: "#27ae60", Icon: "💰", IsDefault: true},
	{Name: "Freelance", Color: "#f1c40f", Icon: "💼", IsDefault: true},
	{Name: "Investimentos", Color: "#8e44ad", Icon: "📈", IsDefault: true},
}

var defaultSettings = core.Settings{
	Currency:    "BRL",
	Language:    "pt-BR",
	StartWeekOn: "sunday",
}

// RegisterInput carries validated registration fields.
type RegisterInput struct {
	Name     string `validate:"required,min=2,max=100"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8,max=50"`
}

// UserService is the user registry: account creation with default
// seeding, lookups, profile updates and password changes.
type UserService struct {
	repo     *storage.SQLiteRepository
	creds    *auth.CredentialStore
	validate *validator.Validate
	logger   *log.Logger
}

// NewUserService constructs a UserService.
func NewUserService(repo *storage.SQLiteRepository, creds *auth.CredentialStore, logger *log.Logger) *UserService {
	return &UserService{
		repo:     repo,
		creds:    creds,
		validate: validator.New(),
		logger:   logger.WithComponent("users"),
	}
}

// Register creates an account for a new email, hashes the password and
// seeds default categories and settings in the same transaction. A
// duplicate email (exact case match) yields core.ErrDuplicateEmail.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (int64, error) {
	if err := s.validate.Struct(in); err != nil {
		return 0, fmt.Errorf("validate registration: %w", err)
	}
	if err := checkPasswordStrength(in.Password); err != nil {
		return 0, err
	}

	hash, err := s.creds.Hash(in.Password)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}

	userID, err := s.repo.CreateUser(ctx, in.Name, in.Email, hash, defaultCategories, defaultSettings)
	if err != nil {
		return 0, err
	}

	s.logger.InfoContext(ctx, "user registered", "user_id", userID)
	return userID, nil
}

// FindByEmail looks up a user by exact email. Absence is (nil, nil).
func (s *UserService) FindByEmail(ctx context.Context, email string) (*core.User, error) {
	return s.repo.UserByEmail(ctx, email)
}

// FindByID looks up a user by id. Absence is (nil, nil).
func (s *UserService) FindByID(ctx context.Context, id int64) (*core.User, error) {
	return s.repo.UserByID(ctx, id)
}

// UpdateProfile applies a partial name/email update. A supplied email
// is re-checked for uniqueness against all other users first; conflicts
// report false without mutation.
func (s *UserService) UpdateProfile(ctx context.Context, id int64, name, email *string) (bool, error) {
	if email != nil {
		if err := s.validate.Var(*email, "required,email"); err != nil {
			return false, fmt.Errorf("validate email: %w", err)
		}
		taken, err := s.repo.EmailTaken(ctx, *email, id)
		if err != nil {
			return false, err
		}
		if taken {
			s.logger.WarnContext(ctx, "profile update rejected, email in use", "user_id", id)
			return false, nil
		}
	}
	return s.repo.UpdateUserProfile(ctx, id, name, email)
}

// ChangePassword verifies the current password before storing a new
// hash. A failed verification reports false without mutation.
func (s *UserService) ChangePassword(ctx context.Context, id int64, current, newPassword string) (bool, error) {
	user, err := s.repo.UserByID(ctx, id)
	if err != nil {
		return false, err
	}
	if user == nil {
		return false, nil
	}
	if !s.creds.Verify(current, user.PasswordHash) {
		s.logger.WarnContext(ctx, "password change rejected, current password mismatch", "user_id", id)
		return false, nil
	}
	if err := checkPasswordStrength(newPassword); err != nil {
		return false, err
	}
	hash, err := s.creds.Hash(newPassword)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}
	if err := s.repo.UpdatePasswordHash(ctx, id, hash); err != nil {
		return false, err
	}
	return true, nil
}

// Settings fetches the user's settings row.
func (s *UserService) Settings(ctx context.Context, userID int64) (*core.Settings, error) {
	return s.repo.SettingsByUser(ctx, userID)
}

// UpdateSettings overwrites the user's settings row.
func (s *UserService) UpdateSettings(ctx context.Context, settings core.Settings) error {
	return s.repo.UpdateSettings(ctx, settings)
}

// checkPasswordStrength enforces the minimum password policy: at least
// 8 characters with an upper-case letter, a lower-case letter and a
// digit.
func checkPasswordStrength(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}
	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		}
	}
	if !upper || !lower || !digit {
		return fmt.Errorf("password must contain upper and lower case letters and a digit")
	}
	return nil
}
