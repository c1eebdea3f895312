package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/tripdeck/tripsync/internal/domain"
)

type mapCredStore map[string]Credential

func (m mapCredStore) LookupByEmail(ctx context.Context, email string) (Credential, error) {
	_ = ctx
	c, ok := m[email]
	if !ok {
		return Credential{}, ErrUnknownUser
	}
	return c, nil
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)
	creds := mapCredStore{
		"ana@example.com": {UserID: "u-1", PasswordHash: hash},
	}
	return NewService(creds, []byte("test-secret"), time.Hour, nil)
}

func TestLoginEstablishesSession(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	assert.True(t, svc.Ready())
	_, ok := svc.CurrentUserID()
	assert.False(t, ok)

	token, err := svc.Login(ctx, "ana@example.com", "hunter2")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	uid, ok := svc.CurrentUserID()
	require.True(t, ok)
	assert.Equal(t, domain.UserID("u-1"), uid)

	// The issued token verifies back to the same identity.
	got, err := UserIDFromToken(token, []byte("test-secret"))
	require.NoError(t, err)
	assert.Equal(t, domain.UserID("u-1"), got)

	// A token signed with another secret does not verify.
	_, err = UserIDFromToken(token, []byte("wrong-secret"))
	assert.Error(t, err)
}

func TestLoginFailuresLeaveSessionUntouched(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	_, err := svc.Login(ctx, "ana@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// Unknown accounts and bad passwords are indistinguishable to the caller.
	_, err = svc.Login(ctx, "nobody@example.com", "hunter2")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, ok := svc.CurrentUserID()
	assert.False(t, ok)
}

func TestLogoutClearsSessionAndNotifies(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	var seen []domain.UserID
	unsub := svc.Subscribe(func(uid domain.UserID) {
		seen = append(seen, uid)
	})

	_, err := svc.Login(ctx, "ana@example.com", "hunter2")
	require.NoError(t, err)
	svc.Logout(ctx)

	_, ok := svc.CurrentUserID()
	assert.False(t, ok)
	assert.Equal(t, []domain.UserID{"u-1", ""}, seen)

	// After unsubscribe no further notifications arrive.
	unsub()
	_, err = svc.Login(ctx, "ana@example.com", "hunter2")
	require.NoError(t, err)
	assert.Len(t, seen, 2)
}
