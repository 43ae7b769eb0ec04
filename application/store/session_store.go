package store

import (
	"context"
	"regexp"
	"sync"

	"go.uber.org/zap"

	"scholarmind/application/ports"
	pkgerrors "scholarmind/pkg/errors"
)

// biometricSentinel is the value the original mobile client submits in
// place of a code after a successful OS biometric check. Kept for client
// compatibility; VerifyBiometric is the explicit path.
const biometricSentinel = "biometric"

var passcodePattern = regexp.MustCompile(`^[0-9]{4}$`)

// SessionStore tracks the authenticated identity and the app-lock
// passcode, and gates access behind the passcode check. It is the sole
// source of the "is authenticated" and "is passcode configured" flags.
type SessionStore struct {
	kv       ports.KeyValueStore
	provider ports.IdentityProvider
	data     *DataStore
	logger   *zap.Logger

	mu          sync.RWMutex
	identity    *ports.Identity
	passcode    string
	loading     bool
	unsubscribe func()
}

// NewSessionStore creates a session store. Loading starts true and settles
// once ObserveIdentity has processed the first emission. The data store is
// needed at logout: its persist queue must drain before erasure.
func NewSessionStore(kv ports.KeyValueStore, provider ports.IdentityProvider, data *DataStore, logger *zap.Logger) *SessionStore {
	return &SessionStore{
		kv:       kv,
		provider: provider,
		data:     data,
		logger:   logger,
		loading:  true,
	}
}

// ObserveIdentity subscribes to the identity provider's notification
// stream. On each emission the current identity is replaced; a present
// identity loads the stored passcode, an absent one clears it.
func (s *SessionStore) ObserveIdentity() {
	s.mu.Lock()
	if s.unsubscribe != nil {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	unsub := s.provider.OnIdentityChange(func(identity *ports.Identity) {
		s.mu.Lock()
		s.loading = true
		s.identity = identity
		s.mu.Unlock()

		passcode := ""
		if identity != nil {
			stored, ok, err := s.kv.Get(context.Background(), PasscodeKey)
			if err != nil {
				s.logger.Error("Failed to load stored passcode", zap.Error(err))
			} else if ok {
				passcode = stored
			}
		}

		s.mu.Lock()
		s.passcode = passcode
		s.loading = false
		s.mu.Unlock()
	})

	s.mu.Lock()
	s.unsubscribe = unsub
	s.mu.Unlock()
}

// Close cancels the identity subscription
func (s *SessionStore) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
}

// Login delegates to the identity provider. Rejected credentials surface
// as an authentication error.
func (s *SessionStore) Login(ctx context.Context, email, password string) error {
	s.setLoading(true)
	defer s.setLoading(false)

	if _, err := s.provider.SignInWithPassword(ctx, email, password); err != nil {
		return err
	}
	return nil
}

// Signup delegates account creation to the identity provider. Duplicate
// emails and weak passwords surface as authentication errors.
func (s *SessionStore) Signup(ctx context.Context, email, password, displayName string) error {
	s.setLoading(true)
	defer s.setLoading(false)

	if _, err := s.provider.CreateAccountWithPassword(ctx, email, password, displayName); err != nil {
		return err
	}
	return nil
}

// Logout erases the stored passcode and the identity's entire collection
// namespace from persistent storage, then signs out. Erasure runs first,
// while the identity reference is still available to build the keys; a
// failed erasure aborts before sign-out so the user is not detached from
// a namespace that still holds data.
func (s *SessionStore) Logout(ctx context.Context) error {
	s.mu.RLock()
	identity := s.identity
	s.mu.RUnlock()

	if identity == nil {
		return pkgerrors.NewAuthenticationError("no identity to sign out")
	}

	// Pending snapshots must land before the keys are removed; a queued
	// write draining after the erasure would re-create them.
	s.data.Flush()

	if err := s.kv.Remove(ctx, PasscodeKey); err != nil {
		return pkgerrors.NewStorageError("erase passcode", err)
	}
	if err := s.kv.RemoveByPrefix(ctx, IdentityPrefix(identity.ID)); err != nil {
		return pkgerrors.NewStorageError("erase identity data", err)
	}

	if err := s.provider.SignOut(ctx); err != nil {
		return err
	}

	s.logger.Info("Logged out and erased local data", zap.String("userID", identity.ID))
	return nil
}

// SetupPasscode stores a 4-digit code in memory and persistent storage;
// it becomes the active lock credential.
func (s *SessionStore) SetupPasscode(ctx context.Context, code string) error {
	if !passcodePattern.MatchString(code) {
		return pkgerrors.NewValidationError("passcode must be exactly 4 digits")
	}

	if err := s.kv.Set(ctx, PasscodeKey, code); err != nil {
		return pkgerrors.NewStorageError("store passcode", err)
	}

	s.mu.Lock()
	s.passcode = code
	s.mu.Unlock()
	return nil
}

// VerifyPasscode reports whether the candidate unlocks the app: either it
// equals the configured code, or it is the biometric sentinel the client
// submits after a successful OS biometric check.
func (s *SessionStore) VerifyPasscode(code string) bool {
	if code == biometricSentinel {
		return true
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.passcode != "" && code == s.passcode
}

// VerifyBiometric is the explicit biometric unlock path. The OS biometric
// check happens on-device before this call; an authenticated identity is
// all that remains to verify here.
func (s *SessionStore) VerifyBiometric() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity != nil
}

// Identity returns the current identity, or nil when signed out
func (s *SessionStore) Identity() *ports.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return nil
	}
	ident := *s.identity
	return &ident
}

// IsAuthenticated reports whether an identity is present
func (s *SessionStore) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity != nil
}

// IsPasscodeSet reports whether a passcode is configured
func (s *SessionStore) IsPasscodeSet() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.passcode != ""
}

// Loading reports whether an identity transition is still resolving
func (s *SessionStore) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *SessionStore) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}
