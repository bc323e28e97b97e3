package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/yasinhessnawi1/backoffice-auth/internal/auth"
	"github.com/yasinhessnawi1/backoffice-auth/internal/config"
	"github.com/yasinhessnawi1/backoffice-auth/internal/models"
	"github.com/yasinhessnawi1/backoffice-auth/internal/utils"
)

// In-memory repositories used by the service tests.

type accountKey struct {
	kind  models.AccountKind
	email string
}

type fakeAccountRepository struct {
	mu      sync.Mutex
	byID    map[models.AccountKind]map[int64]*models.Account
	byEmail map[accountKey]*models.Account
	nextID  int64
	err     error
}

func newFakeAccountRepository() *fakeAccountRepository {
	return &fakeAccountRepository{
		byID:    make(map[models.AccountKind]map[int64]*models.Account),
		byEmail: make(map[accountKey]*models.Account),
		nextID:  1,
	}
}

func (m *fakeAccountRepository) Create(ctx context.Context, account *models.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}
	key := accountKey{account.Kind, account.Email}
	if _, ok := m.byEmail[key]; ok {
		return utils.ErrDuplicateEmail
	}

	account.ID = m.nextID
	m.nextID++

	stored := *account
	if m.byID[account.Kind] == nil {
		m.byID[account.Kind] = make(map[int64]*models.Account)
	}
	m.byID[account.Kind][account.ID] = &stored
	m.byEmail[key] = &stored
	return nil
}

func (m *fakeAccountRepository) GetByID(ctx context.Context, kind models.AccountKind, id int64) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	account, ok := m.byID[kind][id]
	if !ok {
		return nil, utils.NewNotFoundError("Account", id)
	}
	copied := *account
	return &copied, nil
}

func (m *fakeAccountRepository) GetByEmail(ctx context.Context, kind models.AccountKind, email string) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}
	account, ok := m.byEmail[accountKey{kind, email}]
	if !ok {
		return nil, utils.NewNotFoundError("Account", email)
	}
	copied := *account
	return &copied, nil
}

func (m *fakeAccountRepository) ExistsByEmail(ctx context.Context, kind models.AccountKind, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return false, m.err
	}
	_, ok := m.byEmail[accountKey{kind, email}]
	return ok, nil
}

func (m *fakeAccountRepository) UpdatePassword(ctx context.Context, kind models.AccountKind, id int64, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	account, ok := m.byID[kind][id]
	if !ok {
		return utils.NewNotFoundError("Account", id)
	}
	account.PasswordHash = passwordHash
	return nil
}

// storedHash returns the current password hash of an account.
func (m *fakeAccountRepository) storedHash(kind models.AccountKind, email string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byEmail[accountKey{kind, email}].PasswordHash
}

type fakeTokenRepository struct {
	mu     sync.Mutex
	tokens map[int64]*models.AuthToken
	nextID int64
	err    error
}

func newFakeTokenRepository() *fakeTokenRepository {
	return &fakeTokenRepository{
		tokens: make(map[int64]*models.AuthToken),
		nextID: 1,
	}
}

func (m *fakeTokenRepository) insert(token *models.AuthToken) {
	token.ID = m.nextID
	m.nextID++
	stored := *token
	m.tokens[token.ID] = &stored
}

func (m *fakeTokenRepository) Create(ctx context.Context, token *models.AuthToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}
	m.insert(token)
	return nil
}

func (m *fakeTokenRepository) ReplaceForAccount(ctx context.Context, token *models.AuthToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}
	m.deleteWhere(func(t *models.AuthToken) bool {
		return t.AccountKind == token.AccountKind && t.AccountID == token.AccountID
	})
	m.insert(token)
	return nil
}

func (m *fakeTokenRepository) GetByHash(ctx context.Context, kind models.AccountKind, tokenHash string) (*models.AuthToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, t := range m.tokens {
		if t.AccountKind == kind && t.TokenHash == tokenHash {
			copied := *t
			return &copied, nil
		}
	}
	return nil, utils.NewNotFoundError("AuthToken", tokenHash)
}

func (m *fakeTokenRepository) Touch(ctx context.Context, id int64, usedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if t, ok := m.tokens[id]; ok {
		t.LastUsedAt = &usedAt
	}
	return nil
}

func (m *fakeTokenRepository) DeleteByHash(ctx context.Context, kind models.AccountKind, tokenHash string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.deleteWhere(func(t *models.AuthToken) bool {
		return t.AccountKind == kind && t.TokenHash == tokenHash
	}), nil
}

func (m *fakeTokenRepository) DeleteByAccount(ctx context.Context, kind models.AccountKind, accountID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.deleteWhere(func(t *models.AuthToken) bool {
		return t.AccountKind == kind && t.AccountID == accountID
	}), nil
}

func (m *fakeTokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.deleteWhere(func(t *models.AuthToken) bool {
		return t.ExpiresAt != nil && t.ExpiresAt.Before(now)
	}), nil
}

func (m *fakeTokenRepository) deleteWhere(match func(*models.AuthToken) bool) int64 {
	var count int64
	for id, t := range m.tokens {
		if match(t) {
			delete(m.tokens, id)
			count++
		}
	}
	return count
}

func (m *fakeTokenRepository) count(kind models.AccountKind, accountID int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, t := range m.tokens {
		if t.AccountKind == kind && t.AccountID == accountID {
			n++
		}
	}
	return n
}

type fakeResetRepository struct {
	mu       sync.Mutex
	tickets  map[accountKey]*models.PasswordResetTicket
	accounts *fakeAccountRepository
}

func newFakeResetRepository(accounts *fakeAccountRepository) *fakeResetRepository {
	return &fakeResetRepository{
		tickets:  make(map[accountKey]*models.PasswordResetTicket),
		accounts: accounts,
	}
}

func (m *fakeResetRepository) Replace(ctx context.Context, ticket *models.PasswordResetTicket) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := *ticket
	m.tickets[accountKey{ticket.AccountKind, ticket.Email}] = &stored
	return nil
}

func (m *fakeResetRepository) Get(ctx context.Context, kind models.AccountKind, email string) (*models.PasswordResetTicket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ticket, ok := m.tickets[accountKey{kind, email}]
	if !ok {
		return nil, utils.NewNotFoundError("PasswordResetTicket", email)
	}
	copied := *ticket
	return &copied, nil
}

func (m *fakeResetRepository) Redeem(ctx context.Context, kind models.AccountKind, email, tokenHash string, accountID int64, passwordHash string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := accountKey{kind, email}
	ticket, ok := m.tickets[key]
	if !ok || ticket.TokenHash != tokenHash {
		return false, nil
	}
	delete(m.tickets, key)

	if err := m.accounts.UpdatePassword(ctx, kind, accountID, passwordHash); err != nil {
		return false, err
	}
	return true, nil
}

func (m *fakeResetRepository) Delete(ctx context.Context, kind models.AccountKind, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.tickets, accountKey{kind, email})
	return nil
}

func (m *fakeResetRepository) DeleteCreatedBefore(ctx context.Context, kind models.AccountKind, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var count int64
	for key, ticket := range m.tickets {
		if key.kind == kind && !ticket.CreatedAt.After(cutoff) {
			delete(m.tickets, key)
			count++
		}
	}
	return count, nil
}

// fakeNotifier records every reset mail instead of sending it.
type fakeNotifier struct {
	mu   sync.Mutex
	sent []PasswordResetMail
	ok   bool
	err  error
}

func (n *fakeNotifier) SendPasswordReset(ctx context.Context, msg PasswordResetMail) (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.err != nil {
		return false, n.err
	}
	n.sent = append(n.sent, msg)
	return n.ok, nil
}

func (n *fakeNotifier) lastToken(t *testing.T) string {
	t.Helper()
	n.mu.Lock()
	defer n.mu.Unlock()

	if len(n.sent) == 0 {
		t.Fatal("no reset mail was sent")
	}
	return n.sent[len(n.sent)-1].Token
}

var errMailboxUnavailable = errors.New("mailbox unavailable")

// testEnv wires one AuthService per kind over shared in-memory repositories.
type testEnv struct {
	accounts  *fakeAccountRepository
	tokens    *fakeTokenRepository
	resets    *fakeResetRepository
	notifier  *fakeNotifier
	jwt       *auth.JWTService
	customers *AuthService
	admins    *AuthService
}

var testPasswordConfig = &auth.PasswordConfig{
	Memory:      1024,
	Iterations:  1,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		accounts: newFakeAccountRepository(),
		tokens:   newFakeTokenRepository(),
		notifier: &fakeNotifier{ok: true},
		jwt: auth.NewJWTService(&config.TokenSettings{
			Secret: "test-secret-with-enough-length-for-hs256",
			Issuer: "backoffice-auth",
		}),
	}
	env.resets = newFakeResetRepository(env.accounts)

	resetSettings := &config.PasswordResetSettings{
		TTL:      60 * time.Minute,
		ResetURL: "https://shop.example.com/%s/auth/password/reset/%s?email=%s",
	}

	credentials := NewCredentialStore(env.accounts, testPasswordConfig)
	issuer := NewTokenIssuer(env.tokens, env.accounts, env.jwt)

	env.customers = NewAuthService(models.KindCustomer, credentials, issuer,
		NewPasswordResetBroker(models.KindCustomer, credentials, env.resets, env.notifier, resetSettings))
	env.admins = NewAuthService(models.KindAdmin, credentials, issuer,
		NewPasswordResetBroker(models.KindAdmin, credentials, env.resets, env.notifier, resetSettings))

	return env
}

// register creates a customer and returns the issued token.
func (env *testEnv) register(t *testing.T, name, email, password string) *models.AuthResult {
	t.Helper()

	result, err := env.customers.Register(context.Background(), &models.RegisterRequest{
		Name:     name,
		Email:    email,
		Password: password,
	})
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	return result
}
