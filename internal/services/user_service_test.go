package services

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"financas/internal/auth"
	"financas/internal/cache"
	"financas/internal/core"
	"financas/internal/log"
	"financas/internal/storage"
)

type testApp struct {
	repo   *storage.SQLiteRepository
	creds  *auth.CredentialStore
	tokens *auth.TokenIssuer
	users  *UserService
	ledger *LedgerService
	auth   *AuthService
}

func newTestApp(t *testing.T, credOpts ...auth.Option) *testApp {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(":memory:")
	require.NoError(t, err, "failed to create test database")
	t.Cleanup(func() { repo.Close() })

	logger := log.New(log.Config{Level: slog.LevelError, Component: "test"})
	creds := auth.NewCredentialStore(credOpts...)
	tokens := auth.NewTokenIssuer("test-secret-at-least-16", 24*time.Hour)
	reports := cache.NewLRUCache[core.MonthlySummary](16, time.Minute)

	return &testApp{
		repo:   repo,
		creds:  creds,
		tokens: tokens,
		users:  NewUserService(repo, creds, logger),
		ledger: NewLedgerService(repo, reports, logger),
		auth:   NewAuthService(repo, creds, tokens, logger),
	}
}

func registerTestUser(t *testing.T, app *testApp, email string) int64 {
	t.Helper()
	id, err := app.users.Register(context.Background(), RegisterInput{
		Name: "Ana Silva", Email: email, Password: "Secret123",
	})
	require.NoError(t, err)
	return id
}

func TestRegisterSeedsDefaults(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	id := registerTestUser(t, app, "a@x.com")
	require.Positive(t, id)

	user, err := app.users.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, id, user.ID)
	assert.NotEqual(t, "Secret123", user.PasswordHash, "plaintext must never be stored")

	categories, err := app.ledger.Categories(ctx, id)
	require.NoError(t, err)
	assert.Len(t, categories, len(defaultCategories))

	settings, err := app.users.Settings(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, settings)
	assert.Equal(t, "BRL", settings.Currency)
	assert.Equal(t, "pt-BR", settings.Language)
	assert.Equal(t, "sunday", settings.StartWeekOn)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	app := newTestApp(t)
	registerTestUser(t, app, "a@x.com")

	_, err := app.users.Register(context.Background(), RegisterInput{
		Name: "Outro", Email: "a@x.com", Password: "Secret123",
	})
	assert.ErrorIs(t, err, core.ErrDuplicateEmail)

	// Case variants are distinct addresses under exact-match uniqueness.
	_, err = app.users.Register(context.Background(), RegisterInput{
		Name: "Outro", Email: "A@x.com", Password: "Secret123",
	})
	assert.NoError(t, err)
}

func TestRegisterValidation(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	cases := []RegisterInput{
		{Name: "", Email: "a@x.com", Password: "Secret123"},
		{Name: "A", Email: "a@x.com", Password: "Secret123"},
		{Name: "Ana", Email: "not-an-email", Password: "Secret123"},
		{Name: "Ana", Email: "", Password: "Secret123"},
		{Name: "Ana", Email: "a@x.com", Password: "short1A"},
		{Name: "Ana", Email: "a@x.com", Password: "alllowercase1"},
		{Name: "Ana", Email: "a@x.com", Password: "ALLUPPERCASE1"},
		{Name: "Ana", Email: "a@x.com", Password: "NoDigitsHere"},
	}
	for _, in := range cases {
		_, err := app.users.Register(ctx, in)
		assert.Error(t, err, "input %+v", in)
	}

	user, err := app.users.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Nil(t, user, "rejected registrations must leave no partial state")
}

func TestFindByIDAbsent(t *testing.T) {
	app := newTestApp(t)

	user, err := app.users.FindByID(context.Background(), 12345)
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestUpdateProfileEmailConflict(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	a := registerTestUser(t, app, "a@x.com")
	registerTestUser(t, app, "b@x.com")

	email := "b@x.com"
	ok, err := app.users.UpdateProfile(ctx, a, nil, &email)
	require.NoError(t, err)
	assert.False(t, ok, "conflicting email must not apply")

	user, err := app.users.FindByID(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", user.Email, "no mutation on conflict")

	fresh := "c@x.com"
	name := "Renamed"
	ok, err = app.users.UpdateProfile(ctx, a, &name, &fresh)
	require.NoError(t, err)
	assert.True(t, ok)

	user, err = app.users.FindByID(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, "c@x.com", user.Email)
	assert.Equal(t, "Renamed", user.Name)
}

func TestChangePassword(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	id := registerTestUser(t, app, "a@x.com")

	ok, err := app.users.ChangePassword(ctx, id, "WrongPass1", "NewSecret456")
	require.NoError(t, err)
	assert.False(t, ok, "wrong current password must not mutate")

	_, err = app.auth.Login(ctx, "a@x.com", "Secret123")
	require.NoError(t, err, "old password still valid after rejected change")

	ok, err = app.users.ChangePassword(ctx, id, "Secret123", "NewSecret456")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = app.auth.Login(ctx, "a@x.com", "Secret123")
	assert.ErrorIs(t, err, core.ErrInvalidCredentials)
	_, err = app.auth.Login(ctx, "a@x.com", "NewSecret456")
	assert.NoError(t, err)
}

func TestChangePasswordUnknownUser(t *testing.T) {
	app := newTestApp(t)

	ok, err := app.users.ChangePassword(context.Background(), 999, "Secret123", "NewSecret456")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUpdateSettings(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	id := registerTestUser(t, app, "a@x.com")

	err := app.users.UpdateSettings(ctx, core.Settings{
		UserID: id, Currency: "EUR", Language: "en-US", StartWeekOn: "monday",
	})
	require.NoError(t, err)

	settings, err := app.users.Settings(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "EUR", settings.Currency)
	assert.Equal(t, "monday", settings.StartWeekOn)
}
