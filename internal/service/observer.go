package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// EntityEvent describes a committed write to a domain entity.
type EntityEvent struct {
	Entity   string    `json:"entity"`
	EntityID string    `json:"entity_id"`
	Action   string    `json:"action"`
	At       time.Time `json:"at"`
}

// EntityObserver receives committed entity changes. Notification is fire and
// forget: observers must never fail the write they observe.
type EntityObserver interface {
	Notify(ctx context.Context, event EntityEvent)
}

// NopObserver discards all events.
type NopObserver struct{}

// Notify implements EntityObserver.
func (NopObserver) Notify(context.Context, EntityEvent) {}

// MultiObserver fans each event out to every wrapped observer in order.
type MultiObserver []EntityObserver

// Notify implements EntityObserver.
func (m MultiObserver) Notify(ctx context.Context, event EntityEvent) {
	for _, o := range m {
		o.Notify(ctx, event)
	}
}

// DashboardInvalidator drops the dashboard cache on every committed entity
// write, so stale aggregates never outlive the cache TTL unnecessarily.
type DashboardInvalidator struct {
	dashboard *DashboardService
}

// NewDashboardInvalidator constructs a DashboardInvalidator.
func NewDashboardInvalidator(dashboard *DashboardService) *DashboardInvalidator {
	return &DashboardInvalidator{dashboard: dashboard}
}

// Notify implements EntityObserver.
func (o *DashboardInvalidator) Notify(ctx context.Context, _ EntityEvent) {
	o.dashboard.Invalidate(ctx)
}

// Publisher broadcasts a payload on a named channel.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload interface{}) error
}

// RedisObserver relays entity events onto a Redis pub/sub channel so other
// processes can react to writes.
type RedisObserver struct {
	publisher Publisher
	channel   string
	logger    *zap.Logger
}

// NewRedisObserver constructs a RedisObserver.
func NewRedisObserver(publisher Publisher, channel string, logger *zap.Logger) *RedisObserver {
	return &RedisObserver{publisher: publisher, channel: channel, logger: logger}
}

// Notify implements EntityObserver. Publish failures are logged and dropped.
func (o *RedisObserver) Notify(ctx context.Context, event EntityEvent) {
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}
	if err := o.publisher.Publish(ctx, o.channel, event); err != nil {
		o.logger.Warn("entity event publish failed",
			zap.String("entity", event.Entity),
			zap.String("entity_id", event.EntityID),
			zap.Error(err))
	}
}
