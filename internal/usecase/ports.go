package usecase

import (
	"context"

	"github.com/polkiloo/veo3store/internal/domain/model"
)

// LicenseIssuer mints a license for an approved order.
type LicenseIssuer interface {
	Issue(ctx context.Context, req model.LicenseRequest) (*model.License, error)
}

// EventPublisher delivers order notifications.
type EventPublisher interface {
	Publish(ctx context.Context, event model.OrderEvent) error
}

// LifecycleMetrics records order lifecycle outcomes.
type LifecycleMetrics interface {
	ObserveTransition(from, to model.OrderStatus)
	TransitionConflict(operation string)
	NotificationFailed(event model.OrderEventType)
	LicenseIssued(ok bool)
}

// SessionMetrics records session registry outcomes.
type SessionMetrics interface {
	SessionChecked(outcome string)
}

type nopMetrics struct{}

func (nopMetrics) ObserveTransition(model.OrderStatus, model.OrderStatus) {}
func (nopMetrics) TransitionConflict(string)                             {}
func (nopMetrics) NotificationFailed(model.OrderEventType)               {}
func (nopMetrics) LicenseIssued(bool)                                    {}
func (nopMetrics) SessionChecked(string)                                 {}
