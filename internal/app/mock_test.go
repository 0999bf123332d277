package app

import (
	"context"
	"sync"

	"github.com/Taucher2003-Bot/devmarkt-backend/internal/domain"
	"github.com/Taucher2003-Bot/devmarkt-backend/internal/port"
)

type mockTemplateRepo struct {
	mu         sync.Mutex
	nextID     int64
	byID       map[int64]*domain.Template
	order      []int64
	createErr  error
	getErr     error
	existsErr  error
	replaceErr error
	deleteErr  error
	// skipExists simulates a concurrent create that slips past the lookup
	skipExists bool
}

func newMockTemplateRepo() *mockTemplateRepo {
	return &mockTemplateRepo{byID: make(map[int64]*domain.Template)}
}

func (m *mockTemplateRepo) findByName(name string) *domain.Template {
	for _, id := range m.order {
		if t, ok := m.byID[id]; ok && t.Name == name {
			return t
		}
	}
	return nil
}

func (m *mockTemplateRepo) Create(_ context.Context, t *domain.Template) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findByName(t.Name) != nil {
		return domain.ErrDuplicateTemplateName
	}
	m.nextID++
	t.ID = m.nextID
	for i := range t.Questions {
		t.Questions[i].TemplateID = t.ID
	}
	m.byID[t.ID] = t.Clone()
	m.order = append(m.order, t.ID)
	return nil
}

func (m *mockTemplateRepo) GetByName(_ context.Context, name string) (*domain.Template, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	t := m.findByName(name)
	if t == nil {
		return nil, domain.ErrTemplateNotFound
	}
	return t.Clone(), nil
}

func (m *mockTemplateRepo) GetByID(_ context.Context, id int64) (*domain.Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrTemplateNotFound
	}
	return t.Clone(), nil
}

func (m *mockTemplateRepo) Exists(_ context.Context, name string) (bool, error) {
	if m.existsErr != nil {
		return false, m.existsErr
	}
	if m.skipExists {
		return false, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.findByName(name) != nil, nil
}

func (m *mockTemplateRepo) Replace(_ context.Context, id int64, t *domain.Template) error {
	if m.replaceErr != nil {
		return m.replaceErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return domain.ErrTemplateNotFound
	}
	if other := m.findByName(t.Name); other != nil && other.ID != id {
		return domain.ErrDuplicateTemplateName
	}
	t.ID = id
	m.byID[id] = t.Clone()
	return nil
}

func (m *mockTemplateRepo) Delete(_ context.Context, id int64) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return domain.ErrTemplateNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *mockTemplateRepo) ListNames(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := []string{}
	for _, id := range m.order {
		if t, ok := m.byID[id]; ok {
			names = append(names, t.Name)
		}
	}
	return names, nil
}

type mockPublisher struct {
	mu     sync.Mutex
	events []domain.TemplateEvent
	err    error
}

func (m *mockPublisher) Publish(_ context.Context, ev domain.TemplateEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
	return m.err
}

func (m *mockPublisher) published() []domain.TemplateEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.TemplateEvent(nil), m.events...)
}

type mockSubscription struct {
	ch     chan domain.TemplateEvent
	closed bool
}

func (s *mockSubscription) Events() <-chan domain.TemplateEvent { return s.ch }

func (s *mockSubscription) Close() { s.closed = true }

type mockSubscriber struct {
	subs []*mockSubscription
}

func (m *mockSubscriber) Subscribe() port.Subscription {
	s := &mockSubscription{ch: make(chan domain.TemplateEvent, 1)}
	m.subs = append(m.subs, s)
	return s
}

type mockAuditRepo struct {
	mu        sync.Mutex
	entries   []domain.AuditEntry
	recordErr error
	lastLimit int
}

func (m *mockAuditRepo) Record(_ context.Context, e domain.AuditEntry) (bool, error) {
	if m.recordErr != nil {
		return false, m.recordErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.entries {
		if existing.EventID == e.EventID {
			return false, nil
		}
	}
	m.entries = append(m.entries, e)
	return true, nil
}

func (m *mockAuditRepo) ListByTemplate(_ context.Context, name string, limit int) ([]domain.AuditEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastLimit = limit
	var out []domain.AuditEntry
	for i := len(m.entries) - 1; i >= 0; i-- {
		e := m.entries[i]
		if e.TemplateName == name || e.PreviousName == name {
			out = append(out, e)
		}
	}
	return out, nil
}
