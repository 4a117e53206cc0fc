package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/dafibh/fortuna/ledger-backend/internal/domain"
	"github.com/dafibh/fortuna/ledger-backend/internal/websocket"
)

// MockDashboardStore is a mock implementation of domain.DashboardStore.
// It is safe for concurrent use because saves run on their own goroutines.
type MockDashboardStore struct {
	mu        sync.Mutex
	Documents map[string]*domain.DashboardDocument
	Tokens    []string
	LoadErr   error
	SaveErr   error
	LoadFn    func(cred domain.Credential) (*domain.DashboardDocument, error)
	// SaveGate, when set, holds every save until it is closed
	SaveGate chan struct{}
	saves    int
	saved     chan string
}

// NewMockDashboardStore creates a new MockDashboardStore
func NewMockDashboardStore() *MockDashboardStore {
	return &MockDashboardStore{
		Documents: make(map[string]*domain.DashboardDocument),
		saved:     make(chan string, 64),
	}
}

// LoadDashboard returns the stored document or an empty one for a new user
func (m *MockDashboardStore) LoadDashboard(ctx context.Context, cred domain.Credential) (*domain.DashboardDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Tokens = append(m.Tokens, cred.Token)
	if m.LoadFn != nil {
		return m.LoadFn(cred)
	}
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	if doc, ok := m.Documents[cred.Subject]; ok {
		return copyDocument(doc), nil
	}
	return &domain.DashboardDocument{}, nil
}

// SaveDashboard replaces the stored document
func (m *MockDashboardStore) SaveDashboard(ctx context.Context, cred domain.Credential, doc *domain.DashboardDocument) error {
	if m.SaveGate != nil {
		select {
		case <-m.SaveGate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	m.mu.Lock()
	m.Tokens = append(m.Tokens, cred.Token)
	err := m.SaveErr
	if err == nil {
		m.Documents[cred.Subject] = copyDocument(doc)
		m.saves++
	}
	m.mu.Unlock()

	if err != nil {
		return err
	}
	select {
	case m.saved <- cred.Subject:
	default:
	}
	return nil
}

// SetDocument seeds the stored document for a user
func (m *MockDashboardStore) SetDocument(subject string, doc *domain.DashboardDocument) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Documents[subject] = copyDocument(doc)
}

// SetSaveErr makes subsequent saves fail with err
func (m *MockDashboardStore) SetSaveErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveErr = err
}

// Document returns a copy of the stored document
func (m *MockDashboardStore) Document(subject string) (*domain.DashboardDocument, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.Documents[subject]
	if !ok {
		return nil, false
	}
	return copyDocument(doc), true
}

// SaveCount returns the number of successful saves
func (m *MockDashboardStore) SaveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// WaitSaved blocks until a save for any user succeeds or timeout passes. Reports whether one did.
func (m *MockDashboardStore) WaitSaved(timeout time.Duration) bool {
	select {
	case <-m.saved:
		return true
	case <-time.After(timeout):
		return false
	}
}

func copyDocument(doc *domain.DashboardDocument) *domain.DashboardDocument {
	if doc == nil {
		return nil
	}
	return &domain.DashboardDocument{
		TotalSalary:  append(json.RawMessage(nil), doc.TotalSalary...),
		BudgetTables: append(json.RawMessage(nil), doc.BudgetTables...),
	}
}

// MockTransactionHistory is a mock implementation of domain.TransactionHistoryReader
type MockTransactionHistory struct {
	mu    sync.Mutex
	Items map[string][]json.RawMessage
	Err   error
}

// NewMockTransactionHistory creates a new MockTransactionHistory
func NewMockTransactionHistory() *MockTransactionHistory {
	return &MockTransactionHistory{Items: make(map[string][]json.RawMessage)}
}

// LoadTransactionHistory returns the seeded items for the user
func (m *MockTransactionHistory) LoadTransactionHistory(ctx context.Context, cred domain.Credential) ([]json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	items := m.Items[cred.Subject]
	out := make([]json.RawMessage, len(items))
	copy(out, items)
	return out, nil
}

// AddItem seeds one raw history item
func (m *MockTransactionHistory) AddItem(subject, raw string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Items[subject] = append(m.Items[subject], json.RawMessage(raw))
}

// MockSettingsRepository is a mock implementation of domain.SettingsRepository
type MockSettingsRepository struct {
	mu        sync.Mutex
	Settings  map[string]*domain.Settings
	GetCalls  int
	UpsertErr error
}

// NewMockSettingsRepository creates a new MockSettingsRepository
func NewMockSettingsRepository() *MockSettingsRepository {
	return &MockSettingsRepository{Settings: make(map[string]*domain.Settings)}
}

// Get retrieves settings by subject
func (m *MockSettingsRepository) Get(ctx context.Context, subject string) (*domain.Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetCalls++
	if s, ok := m.Settings[subject]; ok {
		out := *s
		return &out, nil
	}
	return nil, domain.ErrNotFound
}

// Upsert stores settings
func (m *MockSettingsRepository) Upsert(ctx context.Context, settings *domain.Settings) (*domain.Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpsertErr != nil {
		return nil, m.UpsertErr
	}
	stored := *settings
	m.Settings[settings.Subject] = &stored
	out := stored
	return &out, nil
}

// MockObjectStore is a mock implementation of storage.ObjectStore
type MockObjectStore struct {
	mu        sync.Mutex
	Objects   map[string][]byte
	Types     map[string]string
	UploadErr error
}

// NewMockObjectStore creates a new MockObjectStore
func NewMockObjectStore() *MockObjectStore {
	return &MockObjectStore{
		Objects: make(map[string][]byte),
		Types:   make(map[string]string),
	}
}

// Upload stores the object in memory
func (m *MockObjectStore) Upload(ctx context.Context, key string, data io.Reader, contentType string, size int64) (string, error) {
	if m.UploadErr != nil {
		return "", m.UploadErr
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, data); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Objects[key] = buf.Bytes()
	m.Types[key] = contentType
	return key, nil
}

// Delete removes the object
func (m *MockObjectStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Objects, key)
	return nil
}

// GeneratePresignedURL returns a fake signed URL
func (m *MockObjectStore) GeneratePresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	return fmt.Sprintf("https://storage.test/%s?expires=%d", key, int(expiry.Seconds())), nil
}

// Object returns a stored object
func (m *MockObjectStore) Object(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.Objects[key]
	return b, ok
}

// PublishedEvent is one event captured by MockEventPublisher
type PublishedEvent struct {
	Subject string
	Event   websocket.Event
}

// MockEventPublisher records published events
type MockEventPublisher struct {
	mu     sync.Mutex
	events []PublishedEvent
}

// NewMockEventPublisher creates a new MockEventPublisher
func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{}
}

// Publish records the event
func (m *MockEventPublisher) Publish(subject string, event websocket.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, PublishedEvent{Subject: subject, Event: event})
}

// Events returns a copy of every recorded event
func (m *MockEventPublisher) Events() []PublishedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]PublishedEvent, len(m.events))
	copy(out, m.events)
	return out
}

// Types returns the recorded event types in order
func (m *MockEventPublisher) Types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.events))
	for i, e := range m.events {
		out[i] = e.Event.Type
	}
	return out
}
