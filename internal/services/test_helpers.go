package services

import (
	"context"
	"sync"
	"time"

	"github.com/stationops/forecourt/internal/models"
)

// MockLogStore implements LogStore for testing
type MockLogStore struct {
	CreateFunc func(ctx context.Context, entry *models.LogEntry) (*models.LogEntry, error)
	GetAllFunc func(ctx context.Context) ([]*models.LogEntry, error)
	ListFunc   func(ctx context.Context, stationID, status string, limit, offset int) ([]*models.LogEntry, error)
}

func (m *MockLogStore) Create(ctx context.Context, entry *models.LogEntry) (*models.LogEntry, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, entry)
	}
	return entry, nil
}

func (m *MockLogStore) GetAll(ctx context.Context) ([]*models.LogEntry, error) {
	if m.GetAllFunc != nil {
		return m.GetAllFunc(ctx)
	}
	return []*models.LogEntry{}, nil
}

func (m *MockLogStore) List(ctx context.Context, stationID, status string, limit, offset int) ([]*models.LogEntry, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, stationID, status, limit, offset)
	}
	return []*models.LogEntry{}, nil
}

// MockAlertStore implements AlertStore for testing
type MockAlertStore struct {
	CreateFunc  func(ctx context.Context, alert *models.Alert) (*models.Alert, error)
	GetByIDFunc func(ctx context.Context, id int64) (*models.Alert, error)
	ListFunc    func(ctx context.Context, status string, limit, offset int) ([]*models.Alert, error)
	ResolveFunc func(ctx context.Context, id int64, resolvedBy string, resolvedAt time.Time) (*models.Alert, error)

	Created []*models.Alert
}

func (m *MockAlertStore) Create(ctx context.Context, alert *models.Alert) (*models.Alert, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, alert)
	}
	stored := *alert
	stored.ID = int64(len(m.Created) + 1)
	m.Created = append(m.Created, &stored)
	return &stored, nil
}

func (m *MockAlertStore) GetByID(ctx context.Context, id int64) (*models.Alert, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockAlertStore) List(ctx context.Context, status string, limit, offset int) ([]*models.Alert, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, status, limit, offset)
	}
	return []*models.Alert{}, nil
}

func (m *MockAlertStore) Resolve(ctx context.Context, id int64, resolvedBy string, resolvedAt time.Time) (*models.Alert, error) {
	if m.ResolveFunc != nil {
		return m.ResolveFunc(ctx, id, resolvedBy, resolvedAt)
	}
	return nil, models.ErrNotFound
}

// MockUserDirectory implements both UserStore and UserDirectory for testing
type MockUserDirectory struct {
	GetByUsernameFunc  func(ctx context.Context, username string) (*models.UserAccount, error)
	ListFunc           func(ctx context.Context) ([]*models.UserAccount, error)
	CreateFunc         func(ctx context.Context, user *models.UserAccount) (*models.UserAccount, error)
	SetLockedFunc      func(ctx context.Context, username string, locked bool) error
	UpdatePasswordFunc func(ctx context.Context, username, passwordHash string, changedAt time.Time) error

	mu        sync.Mutex
	LockCalls []LockCall
}

// LockCall records one SetLocked invocation
type LockCall struct {
	Username string
	Locked   bool
}

func (m *MockUserDirectory) GetByUsername(ctx context.Context, username string) (*models.UserAccount, error) {
	if m.GetByUsernameFunc != nil {
		return m.GetByUsernameFunc(ctx, username)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserDirectory) List(ctx context.Context) ([]*models.UserAccount, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return []*models.UserAccount{}, nil
}

func (m *MockUserDirectory) Create(ctx context.Context, user *models.UserAccount) (*models.UserAccount, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return user, nil
}

func (m *MockUserDirectory) SetLocked(ctx context.Context, username string, locked bool) error {
	m.mu.Lock()
	m.LockCalls = append(m.LockCalls, LockCall{Username: username, Locked: locked})
	m.mu.Unlock()

	if m.SetLockedFunc != nil {
		return m.SetLockedFunc(ctx, username, locked)
	}
	return nil
}

func (m *MockUserDirectory) UpdatePassword(ctx context.Context, username, passwordHash string, changedAt time.Time) error {
	if m.UpdatePasswordFunc != nil {
		return m.UpdatePasswordFunc(ctx, username, passwordHash, changedAt)
	}
	return nil
}

// MockSettingsStore implements SettingsStore for testing
type MockSettingsStore struct {
	GetFunc  func(ctx context.Context, name string) ([]byte, error)
	SaveFunc func(ctx context.Context, name string, data []byte) error

	Saved map[string][]byte
}

func (m *MockSettingsStore) Get(ctx context.Context, name string) ([]byte, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, name)
	}
	if data, ok := m.Saved[name]; ok {
		return data, nil
	}
	return nil, models.ErrNotFound
}

func (m *MockSettingsStore) Save(ctx context.Context, name string, data []byte) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, name, data)
	}
	if m.Saved == nil {
		m.Saved = make(map[string][]byte)
	}
	m.Saved[name] = data
	return nil
}

// MockStationDirectory implements StationDirectory for testing
type MockStationDirectory struct {
	GetByIDFunc func(ctx context.Context, id string) (*models.Station, error)
}

func (m *MockStationDirectory) GetByID(ctx context.Context, id string) (*models.Station, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

// MockSecurityEventWriter implements SecurityEventWriter, recording every
// event it receives
type MockSecurityEventWriter struct {
	CreateFunc func(ctx context.Context, event *models.SecurityEvent) error

	mu     sync.Mutex
	Events []*models.SecurityEvent
}

func (m *MockSecurityEventWriter) Create(ctx context.Context, event *models.SecurityEvent) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, event)
	}

	m.mu.Lock()
	m.Events = append(m.Events, event)
	m.mu.Unlock()
	return nil
}

// RecordingSink implements NotificationSink, capturing payloads instead of
// delivering them
type RecordingSink struct {
	Payloads []models.NotificationPayload
}

func (s *RecordingSink) Send(payload models.NotificationPayload) {
	s.Payloads = append(s.Payloads, payload)
}

// NewTestLogEntry creates an incident entry stamped at the given time
func NewTestLogEntry(id int64, stationID, status, severity string, at time.Time) *models.LogEntry {
	return &models.LogEntry{
		ID:        id,
		StationID: stationID,
		Status:    status,
		Severity:  severity,
		CreatedAt: &at,
	}
}

// NewTestUserAccount creates a user with the password already hashed by the
// caller
func NewTestUserAccount(username, passwordHash, role string) *models.UserAccount {
	now := time.Now()
	return &models.UserAccount{
		Username:          username,
		PasswordHash:      passwordHash,
		Role:              role,
		PasswordChangedAt: &now,
		CreatedAt:         now,
	}
}
