package test

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/polkiloo/veo3store/internal/domain/model"
)

// IssuerStub mints licenses for tests. Calls is safe for concurrent use.
type IssuerStub struct {
	IssueFn func(context.Context, model.LicenseRequest) (*model.License, error)
	Calls   atomic.Int32
}

// Issue returns a license keyed by the order unless overridden.
func (s *IssuerStub) Issue(ctx context.Context, req model.LicenseRequest) (*model.License, error) {
	s.Calls.Add(1)
	if s.IssueFn != nil {
		return s.IssueFn(ctx, req)
	}
	start := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	return &model.License{
		ID:         "lic-" + req.OrderID,
		Key:        "VEO3-KEY-" + req.OrderID,
		MaxDevices: req.MaxDevices,
		StartsAt:   start,
		EndsAt:     start.AddDate(0, req.DurationMonths, 0),
	}, nil
}

// PublisherStub records published events.
type PublisherStub struct {
	mu     sync.Mutex
	Events []model.OrderEvent
	Err    error
}

// Publish stores the event and returns the configured error.
func (s *PublisherStub) Publish(ctx context.Context, event model.OrderEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Events = append(s.Events, event)
	return s.Err
}

// Types returns the recorded event types in publish order.
func (s *PublisherStub) Types() []model.OrderEventType {
	s.mu.Lock()
	defer s.mu.Unlock()
	types := make([]model.OrderEventType, 0, len(s.Events))
	for _, e := range s.Events {
		types = append(types, e.Type)
	}
	return types
}

// MetricsStub counts recorded observations.
type MetricsStub struct {
	mu            sync.Mutex
	Transitions   map[[2]model.OrderStatus]int
	Conflicts     map[string]int
	Notifications map[model.OrderEventType]int
	Licenses      map[bool]int
	Sessions      map[string]int
}

// NewMetricsStub returns a stub with initialized counters.
func NewMetricsStub() *MetricsStub {
	return &MetricsStub{
		Transitions:   make(map[[2]model.OrderStatus]int),
		Conflicts:     make(map[string]int),
		Notifications: make(map[model.OrderEventType]int),
		Licenses:      make(map[bool]int),
		Sessions:      make(map[string]int),
	}
}

func (m *MetricsStub) ObserveTransition(from, to model.OrderStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Transitions[[2]model.OrderStatus{from, to}]++
}

func (m *MetricsStub) TransitionConflict(operation string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Conflicts[operation]++
}

func (m *MetricsStub) NotificationFailed(event model.OrderEventType) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Notifications[event]++
}

func (m *MetricsStub) LicenseIssued(ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Licenses[ok]++
}

func (m *MetricsStub) SessionChecked(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sessions[outcome]++
}

// Conflict returns the number of conflicts recorded for operation.
func (m *MetricsStub) Conflict(operation string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Conflicts[operation]
}

// Session returns the number of session checks with outcome.
func (m *MetricsStub) Session(outcome string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Sessions[outcome]
}
