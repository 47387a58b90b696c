// Package service holds the catalog, ledger, approval and identity use cases.
package service

import (
	"context"

	"quartermaster/internal/notifications"
	"quartermaster/internal/observability"
)

// EventPublisher fans review events out to connected clients.
// *notifications.Notifier satisfies it.
type EventPublisher interface {
	PublishUser(ctx context.Context, userID uint, ev notifications.Event) error
	PublishAdmins(ctx context.Context, ev notifications.Event) error
}

type noopPublisher struct{}

func (noopPublisher) PublishUser(context.Context, uint, notifications.Event) error { return nil }
func (noopPublisher) PublishAdmins(context.Context, notifications.Event) error     { return nil }

func publisherOrNoop(p EventPublisher) EventPublisher {
	if p == nil {
		return noopPublisher{}
	}
	return p
}

// logPublishError records a failed notification; delivery is best effort.
func logPublishError(ctx context.Context, operation string, err error, fields map[string]interface{}) {
	if err != nil {
		observability.LogAsyncOperationError(ctx, operation, err, fields)
	}
}
