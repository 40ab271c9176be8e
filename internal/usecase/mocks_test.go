// File: internal/usecase/mocks_test.go
package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"telegram-buyer-verification/internal/domain"
	"telegram-buyer-verification/internal/domain/model"
	"telegram-buyer-verification/internal/domain/ports/adapter"
	"telegram-buyer-verification/internal/infra/i18n"
)

// memCodeRepo is a small in-memory implementation used by unit tests. It
// mirrors the conditional-write semantics of the real store: MarkRedeemed
// only succeeds on an unredeemed record.
type memCodeRepo struct {
	mu    sync.Mutex
	store map[string]*model.BuyerCode // by ID

	findCalls int
	markCalls int

	findErr error // simulate store outage on lookup
	markErr error // simulate store outage on the consumption mark
}

func newMemCodeRepo(codes ...*model.BuyerCode) *memCodeRepo {
	m := &memCodeRepo{store: make(map[string]*model.BuyerCode)}
	for _, c := range codes {
		cp := *c
		m.store[c.ID] = &cp
	}
	return m
}

func (m *memCodeRepo) FindByCode(_ context.Context, code string) (*model.BuyerCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.findCalls++
	if m.findErr != nil {
		return nil, m.findErr
	}
	for _, c := range m.store {
		if c.Code == code {
			cp := *c
			return &cp, nil
		}
	}
	return nil, domain.ErrCodeNotFound
}

func (m *memCodeRepo) MarkRedeemed(_ context.Context, id, redeemedBy string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.markCalls++
	if m.markErr != nil {
		return m.markErr
	}
	c, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	if c.RedeemedBy != "" {
		return domain.ErrCodeAlreadyUsed
	}
	now := time.Now()
	c.RedeemedBy = redeemedBy
	c.RedeemedAt = &now
	return nil
}

func (m *memCodeRepo) Insert(_ context.Context, c *model.BuyerCode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	m.store[c.ID] = &cp
	return nil
}

func (m *memCodeRepo) CountByStatus(_ context.Context) (int, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	total, redeemed := 0, 0
	for _, c := range m.store {
		total++
		if c.RedeemedBy != "" {
			redeemed++
		}
	}
	return total, redeemed, nil
}

func (m *memCodeRepo) get(id string) *model.BuyerCode {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *m.store[id]
	return &cp
}

// stubEntitlements counts grants and lets tests inject failures at each step.
type stubEntitlements struct {
	mu     sync.Mutex
	grants int

	role       *adapter.Role
	has        bool
	resolveErr error
	hasErr     error
	grantErr   error
}

func newStubEntitlements() *stubEntitlements {
	return &stubEntitlements{role: &adapter.Role{ChatID: 777, Name: "✅ Buyer"}}
}

func (s *stubEntitlements) ResolveRole(_ context.Context) (*adapter.Role, error) {
	if s.resolveErr != nil {
		return nil, s.resolveErr
	}
	return s.role, nil
}

func (s *stubEntitlements) HasRole(_ context.Context, _ int64, _ *adapter.Role) (bool, error) {
	if s.hasErr != nil {
		return false, s.hasErr
	}
	return s.has, nil
}

func (s *stubEntitlements) GrantRole(_ context.Context, _ int64, _ *adapter.Role) error {
	if s.grantErr != nil {
		return s.grantErr
	}
	s.mu.Lock()
	s.grants++
	s.mu.Unlock()
	return nil
}

func (s *stubEntitlements) grantCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grants
}

// stubLimiter records whether the limiter was consulted at all.
type stubLimiter struct {
	mu    sync.Mutex
	allow bool
	calls int
}

func (s *stubLimiter) Allow(int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.allow
}

// memNotifier collects published outcomes for assertions.
type memNotifier struct {
	mu       sync.Mutex
	outcomes []model.VerificationOutcome
}

func (m *memNotifier) Publish(_ context.Context, o model.VerificationOutcome) {
	m.mu.Lock()
	m.outcomes = append(m.outcomes, o)
	m.mu.Unlock()
}

func (m *memNotifier) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.outcomes)
}

func (m *memNotifier) last() model.VerificationOutcome {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.outcomes[len(m.outcomes)-1]
}

func testRegistry(t *testing.T) *i18n.Registry {
	t.Helper()
	tr, err := i18n.NewRegistry(i18n.LocalesFS)
	if err != nil {
		t.Fatalf("load locales: %v", err)
	}
	return tr
}

func testLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}
