package mock

import (
	"context"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/jvre/memberd/database"
)

var _ database.DB = (*MockDB)(nil)

// MockDB is a mock implementation of database.DB for testing.
type MockDB struct {
	mu sync.RWMutex

	// Account storage
	accounts      map[uint]*database.Account
	nextAccountID uint
	nextChildID   uint

	// Settings storage
	settings map[string]string

	// Error simulation
	CountAccountsError           error
	CreateAccountError           error
	GetAccountError              error
	FindPendingConfirmationError error
	ActivateAccountError         error
	DeleteStalePendingError      error
	GetSettingValuesError        error
	SetSettingError              error
}

// NewMockDB creates a new MockDB instance.
func NewMockDB() *MockDB {
	m := &MockDB{}
	m.Reset()
	return m
}

// Reset clears all data and errors from the mock database.
func (m *MockDB) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.accounts = make(map[uint]*database.Account)
	m.nextAccountID = 1
	m.nextChildID = 1
	m.settings = map[string]string{
		database.SettingMemberVerification:  "0",
		database.SettingDisallowedUsernames: "",
		database.SettingMailSenderEmail:     "no-reply@localhost",
		database.SettingRegisterNotifyAdmin: "0",
		database.SettingAdminVerifyEmails:   "",
	}

	m.CountAccountsError = nil
	m.CreateAccountError = nil
	m.GetAccountError = nil
	m.FindPendingConfirmationError = nil
	m.ActivateAccountError = nil
	m.DeleteStalePendingError = nil
	m.GetSettingValuesError = nil
	m.SetSettingError = nil
}

// AccountCount returns the number of stored accounts.
func (m *MockDB) AccountCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.accounts)
}

// Accounts returns all stored accounts ordered by ID.
func (m *MockDB) Accounts() []database.Account {
	m.mu.RLock()
	defer m.mu.RUnlock()
	accounts := make([]database.Account, 0, len(m.accounts))
	for _, a := range m.accounts {
		accounts = append(accounts, *a)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].ID < accounts[j].ID })
	return accounts
}

// SetCreatedUTC backdates a stored account, used to exercise the purge.
func (m *MockDB) SetCreatedUTC(id uint, at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if account, ok := m.accounts[id]; ok {
		account.CreatedUTC = at
	}
}

// SetLastLogin marks a stored account as having logged in.
func (m *MockDB) SetLastLogin(id uint, at *time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if account, ok := m.accounts[id]; ok {
		account.LastLogin = at
	}
}

func (m *MockDB) CountAccountsByUsername(_ context.Context, username string) (int64, error) {
	if m.CountAccountsError != nil {
		return 0, m.CountAccountsError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var count int64
	for _, a := range m.accounts {
		if a.Username == username {
			count++
		}
	}
	return count, nil
}

func (m *MockDB) CountAccountsByEmail(_ context.Context, email string) (int64, error) {
	if m.CountAccountsError != nil {
		return 0, m.CountAccountsError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var count int64
	for _, a := range m.accounts {
		if a.Email == email {
			count++
		}
	}
	return count, nil
}

func (m *MockDB) CreateAccount(_ context.Context, account *database.Account) error {
	if m.CreateAccountError != nil {
		return m.CreateAccountError
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, a := range m.accounts {
		if a.Username == account.Username || a.Email == account.Email {
			return database.ErrDuplicate
		}
	}

	account.ID = m.nextAccountID
	m.nextAccountID++
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now()
	}
	for i := range account.Levels {
		account.Levels[i].ID = m.nextChildID
		m.nextChildID++
		account.Levels[i].AccountID = account.ID
	}
	for i := range account.Fields {
		account.Fields[i].ID = m.nextChildID
		m.nextChildID++
		account.Fields[i].AccountID = account.ID
	}

	stored := *account
	m.accounts[account.ID] = &stored
	return nil
}

func (m *MockDB) GetAccountByID(_ context.Context, id uint) (*database.Account, error) {
	if m.GetAccountError != nil {
		return nil, m.GetAccountError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	account, ok := m.accounts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *account
	return &copied, nil
}

func (m *MockDB) GetAccountByUsername(_ context.Context, username string) (*database.Account, error) {
	if m.GetAccountError != nil {
		return nil, m.GetAccountError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, a := range m.accounts {
		if a.Username == username {
			copied := *a
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockDB) FindPendingConfirmation(_ context.Context, username, confirmCode string) (*database.Account, error) {
	if m.FindPendingConfirmationError != nil {
		return nil, m.FindPendingConfirmationError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, a := range m.accounts {
		if a.Username == username &&
			a.ConfirmCode != nil && *a.ConfirmCode == confirmCode &&
			a.Status == database.StatusPending &&
			a.LastLogin == nil {
			copied := *a
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *MockDB) ActivateAccount(_ context.Context, id uint) error {
	if m.ActivateAccountError != nil {
		return m.ActivateAccountError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.accounts[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	account.Status = database.StatusActive
	account.ConfirmCode = nil
	account.StatusText = nil
	return nil
}

func (m *MockDB) DeleteStalePending(_ context.Context, before time.Time) (int64, error) {
	if m.DeleteStalePendingError != nil {
		return 0, m.DeleteStalePendingError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var deleted int64
	for id, a := range m.accounts {
		if a.Status == database.StatusPending && a.LastLogin == nil && a.CreatedUTC.Before(before) {
			delete(m.accounts, id)
			deleted++
		}
	}
	return deleted, nil
}

func (m *MockDB) GetSettingValues(_ context.Context, names ...string) (map[string]string, error) {
	if m.GetSettingValuesError != nil {
		return nil, m.GetSettingValuesError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	values := make(map[string]string, len(names))
	for _, name := range names {
		if v, ok := m.settings[name]; ok {
			values[name] = v
		}
	}
	return values, nil
}

func (m *MockDB) GetAllSettings(_ context.Context) ([]database.Setting, error) {
	if m.GetSettingValuesError != nil {
		return nil, m.GetSettingValuesError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.settings))
	for name := range m.settings {
		names = append(names, name)
	}
	sort.Strings(names)
	settings := make([]database.Setting, 0, len(names))
	for _, name := range names {
		settings = append(settings, database.Setting{Name: name, Value: m.settings[name]})
	}
	return settings, nil
}

func (m *MockDB) SetSetting(_ context.Context, name, value string) error {
	if m.SetSettingError != nil {
		return m.SetSettingError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings[name] = value
	return nil
}

// Close is a no-op for the mock database.
func (m *MockDB) Close() error {
	return nil
}
