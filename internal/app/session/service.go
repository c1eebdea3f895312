// Package session tracks the authenticated identity for the process and
// notifies subscribers when it changes. Consumers treat an empty identity as
// "no session", which is a valid state rather than an error.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/tripdeck/tripsync/internal/domain"
)

var (
	ErrUnknownUser        = errors.New("unknown user")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// Credential is the stored login record for one account.
type Credential struct {
	UserID       domain.UserID
	PasswordHash []byte
}

// CredentialStore resolves login emails to stored credentials.
type CredentialStore interface {
	LookupByEmail(ctx context.Context, email string) (Credential, error)
}

// Listener receives the new identity after every change. An empty UserID
// means the session ended.
type Listener func(userID domain.UserID)

// Service is the session provider. There is exactly one writer (Login/Logout);
// reads return a stable value per call.
type Service struct {
	creds    CredentialStore
	secret   []byte
	tokenTTL time.Duration
	log      *slog.Logger

	mu        sync.Mutex
	userID    domain.UserID
	ready     bool
	listeners []Listener
}

func NewService(creds CredentialStore, secret []byte, tokenTTL time.Duration, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		creds:    creds,
		secret:   secret,
		tokenTTL: tokenTTL,
		log:      log,
		ready:    true,
	}
}

// CurrentUserID returns the current identity. ok is false when no session is
// present.
func (s *Service) CurrentUserID() (domain.UserID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID, s.userID != ""
}

// Ready reports whether the provider has finished initializing. It exists so
// consumers can distinguish "no session yet" from "no session at all".
func (s *Service) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}

// Subscribe registers a listener for identity changes and returns an
// unsubscribe func. Listeners are invoked synchronously after each change.
func (s *Service) Subscribe(fn Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
	idx := len(s.listeners) - 1
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.listeners[idx] = nil
	}
}

// Login verifies the credentials and establishes the session. It returns a
// signed session token. Failures carry a human-readable message and leave the
// current session untouched.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	cred, err := s.creds.LookupByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUnknownUser) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}
	if err := bcrypt.CompareHashAndPassword(cred.PasswordHash, []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	token, err := generateToken(cred.UserID, s.secret, s.tokenTTL)
	if err != nil {
		return "", err
	}

	s.setIdentity(cred.UserID)
	s.log.Info("session established", "user_id", string(cred.UserID))
	return token, nil
}

// Logout clears the session. It is a no-op when no session is present.
func (s *Service) Logout(ctx context.Context) {
	_ = ctx
	s.setIdentity("")
	s.log.Info("session ended")
}

func (s *Service) setIdentity(id domain.UserID) {
	s.mu.Lock()
	s.userID = id
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.Unlock()

	for _, fn := range listeners {
		if fn != nil {
			fn(id)
		}
	}
}
