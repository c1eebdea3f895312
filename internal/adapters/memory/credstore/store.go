package credstore

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/tripdeck/tripsync/internal/app/session"
	"github.com/tripdeck/tripsync/internal/domain"
)

// Store is an in-memory implementation of session.CredentialStore.
// It is safe for concurrent use.
type Store struct {
	mu sync.RWMutex
	m  map[string]session.Credential // keyed by lower-cased email
}

func NewStore() *Store {
	return &Store{m: make(map[string]session.Credential)}
}

// Register hashes the password with bcrypt and stores the credential.
func (s *Store) Register(email, password string, userID domain.UserID) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[strings.ToLower(email)] = session.Credential{
		UserID:       userID,
		PasswordHash: hash,
	}
	return nil
}

func (s *Store) LookupByEmail(ctx context.Context, email string) (session.Credential, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.m[strings.ToLower(email)]
	if !ok {
		return session.Credential{}, session.ErrUnknownUser
	}
	return c, nil
}
