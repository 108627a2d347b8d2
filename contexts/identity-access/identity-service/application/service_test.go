package application

import (
	"context"
	"testing"
	"time"

	"communitypulse/contexts/identity-access/identity-service/adapters/memory"
	"communitypulse/contexts/identity-access/identity-service/adapters/passwords"
	"communitypulse/contexts/identity-access/identity-service/adapters/tokens"
	domainerrors "communitypulse/contexts/identity-access/identity-service/domain/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	return c.now
}

func newTestService(adminEmails ...string) (Service, *fixedClock) {
	store := memory.NewStore(nil)
	clock := &fixedClock{now: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)}
	return Service{
		Users:       store,
		Hasher:      passwords.BcryptHasher{Cost: bcrypt.MinCost},
		Tokens:      tokens.NewJWTIssuer("test-secret", time.Hour),
		Clock:       clock,
		IDGen:       store,
		AdminEmails: adminEmails,
	}, clock
}

func TestSignupIssuesTokenThatResolvesToCaller(t *testing.T) {
	service, _ := newTestService("Admin@Example.com")
	ctx := context.Background()

	session, err := service.Signup(ctx, SignupCommand{
		Name:     "Ada",
		Email:    " admin@example.com ",
		Phone:    "555-0100",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	assert.True(t, session.User.IsAdmin)
	assert.Equal(t, "admin@example.com", session.User.Email)
	assert.NotEmpty(t, session.Token.Token)

	caller, err := service.Resolve(ctx, session.Token.Token)
	require.NoError(t, err)
	assert.Equal(t, session.User.UserID, caller.UserID)
	assert.True(t, caller.Admin())
}

func TestSignupRejectsInvalidInputAndDuplicates(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()

	_, err := service.Signup(ctx, SignupCommand{Name: "Bo", Email: "not-an-email", Phone: "1", Password: "long-enough"})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	_, err = service.Signup(ctx, SignupCommand{Name: "Bo", Email: "bo@example.com", Phone: "1", Password: "short"})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	_, err = service.Signup(ctx, SignupCommand{Name: "Bo", Email: "bo@example.com", Phone: "1", Password: "long-enough"})
	require.NoError(t, err)
	_, err = service.Signup(ctx, SignupCommand{Name: "Bo2", Email: "BO@example.com", Phone: "2", Password: "long-enough"})
	assert.ErrorIs(t, err, domainerrors.ErrEmailTaken)
}

func TestLoginChecksPassword(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()
	_, err := service.Signup(ctx, SignupCommand{Name: "Cy", Email: "cy@example.com", Phone: "1", Password: "password-1"})
	require.NoError(t, err)

	_, err = service.Login(ctx, "cy@example.com", "password-2")
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)

	_, err = service.Login(ctx, "nobody@example.com", "password-1")
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)

	session, err := service.Login(ctx, "CY@example.com", "password-1")
	require.NoError(t, err)
	assert.False(t, session.User.IsAdmin)
}

func TestResolveRejectsExpiredAndForeignTokens(t *testing.T) {
	service, clock := newTestService()
	ctx := context.Background()
	session, err := service.Signup(ctx, SignupCommand{Name: "Di", Email: "di@example.com", Phone: "1", Password: "password-1"})
	require.NoError(t, err)

	caller, err := service.Resolve(ctx, "")
	require.NoError(t, err)
	assert.True(t, caller.IsAnonymous())

	foreign, err := tokens.NewJWTIssuer("other-secret", time.Hour).Issue(session.User, clock.now)
	require.NoError(t, err)
	_, err = service.Resolve(ctx, foreign.Token)
	assert.ErrorIs(t, err, domainerrors.ErrUnauthenticated)

	clock.now = clock.now.Add(2 * time.Hour)
	_, err = service.Resolve(ctx, session.Token.Token)
	assert.ErrorIs(t, err, domainerrors.ErrUnauthenticated)
}

func TestStatsCountsRecentSignups(t *testing.T) {
	service, clock := newTestService()
	ctx := context.Background()
	_, err := service.Signup(ctx, SignupCommand{Name: "Old", Email: "old@example.com", Phone: "1", Password: "password-1"})
	require.NoError(t, err)
	clock.now = clock.now.Add(10 * 24 * time.Hour)
	_, err = service.Signup(ctx, SignupCommand{Name: "New", Email: "new@example.com", Phone: "1", Password: "password-1"})
	require.NoError(t, err)

	stats, err := service.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalUsers)
	assert.Equal(t, 1, stats.NewSince)
}
