package identity

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"scholarmind/application/ports"
	pkgerrors "scholarmind/pkg/errors"
)

// accountsKey is the storage key for the device's account registry
const accountsKey = "scholarmind_accounts"

const minPasswordLength = 6

// account is the stored form of a registered user
type account struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	DisplayName  string `json:"displayName,omitempty"`
	PasswordHash string `json:"passwordHash"`
}

// Provider is a local email/password identity provider. Accounts persist
// through the key-value adapter; the current identity and its change
// notifications live in memory, so every process start begins signed out.
type Provider struct {
	kv     ports.KeyValueStore
	logger *zap.Logger

	mu          sync.Mutex
	current     *ports.Identity
	subscribers map[int]ports.IdentityCallback
	nextSubID   int
}

// NewProvider creates an identity provider backed by the given store
func NewProvider(kv ports.KeyValueStore, logger *zap.Logger) *Provider {
	return &Provider{
		kv:          kv,
		logger:      logger,
		subscribers: make(map[int]ports.IdentityCallback),
	}
}

// OnIdentityChange registers a callback for auth transitions. The callback
// fires immediately with the current state, then on every change, until the
// returned function is called.
func (p *Provider) OnIdentityChange(cb ports.IdentityCallback) func() {
	p.mu.Lock()
	id := p.nextSubID
	p.nextSubID++
	p.subscribers[id] = cb
	current := p.current
	p.mu.Unlock()

	cb(current)

	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.subscribers, id)
	}
}

// SignInWithPassword authenticates an existing account and emits the new
// identity to subscribers.
func (p *Provider) SignInWithPassword(ctx context.Context, email, password string) (*ports.Identity, error) {
	accounts, err := p.loadAccounts(ctx)
	if err != nil {
		return nil, err
	}

	normalized := normalizeEmail(email)
	for _, acct := range accounts {
		if acct.Email != normalized {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)) != nil {
			return nil, pkgerrors.NewAuthenticationError("invalid email or password")
		}

		ident := &ports.Identity{
			ID:          acct.ID,
			Email:       acct.Email,
			DisplayName: acct.DisplayName,
		}
		p.setCurrent(ident)

		p.logger.Info("Identity signed in", zap.String("userID", ident.ID))
		return ident, nil
	}

	return nil, pkgerrors.NewAuthenticationError("invalid email or password")
}

// CreateAccountWithPassword registers a new account and signs it in.
// Duplicate emails and weak passwords are rejected the way the remote
// provider rejects them, as authentication errors.
func (p *Provider) CreateAccountWithPassword(ctx context.Context, email, password, displayName string) (*ports.Identity, error) {
	normalized := normalizeEmail(email)
	if normalized == "" || !strings.Contains(normalized, "@") {
		return nil, pkgerrors.NewAuthenticationError("invalid email address")
	}
	if len(password) < minPasswordLength {
		return nil, pkgerrors.NewAuthenticationError("password is too weak")
	}

	accounts, err := p.loadAccounts(ctx)
	if err != nil {
		return nil, err
	}

	for _, acct := range accounts {
		if acct.Email == normalized {
			return nil, pkgerrors.NewAuthenticationError("an account with this email already exists")
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to hash password")
	}

	acct := account{
		ID:           uuid.New().String(),
		Email:        normalized,
		DisplayName:  displayName,
		PasswordHash: string(hash),
	}
	accounts = append(accounts, acct)

	if err := p.saveAccounts(ctx, accounts); err != nil {
		return nil, err
	}

	ident := &ports.Identity{
		ID:          acct.ID,
		Email:       acct.Email,
		DisplayName: acct.DisplayName,
	}
	p.setCurrent(ident)

	p.logger.Info("Account created", zap.String("userID", ident.ID))
	return ident, nil
}

// SignOut clears the current identity and notifies subscribers
func (p *Provider) SignOut(ctx context.Context) error {
	p.setCurrent(nil)
	p.logger.Info("Identity signed out")
	return nil
}

// setCurrent swaps the current identity and notifies subscribers outside
// the lock.
func (p *Provider) setCurrent(ident *ports.Identity) {
	p.mu.Lock()
	p.current = ident
	callbacks := make([]ports.IdentityCallback, 0, len(p.subscribers))
	for _, cb := range p.subscribers {
		callbacks = append(callbacks, cb)
	}
	p.mu.Unlock()

	for _, cb := range callbacks {
		cb(ident)
	}
}

func (p *Provider) loadAccounts(ctx context.Context) ([]account, error) {
	raw, ok, err := p.kv.Get(ctx, accountsKey)
	if err != nil {
		return nil, pkgerrors.NewStorageError("load accounts", err)
	}
	if !ok || raw == "" {
		return nil, nil
	}

	var accounts []account
	if err := json.Unmarshal([]byte(raw), &accounts); err != nil {
		return nil, pkgerrors.NewStorageError("parse accounts", err)
	}
	return accounts, nil
}

func (p *Provider) saveAccounts(ctx context.Context, accounts []account) error {
	raw, err := json.Marshal(accounts)
	if err != nil {
		return pkgerrors.NewStorageError("serialize accounts", err)
	}
	if err := p.kv.Set(ctx, accountsKey, string(raw)); err != nil {
		return pkgerrors.NewStorageError("save accounts", err)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
