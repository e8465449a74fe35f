// Package events carries domain events from the services to their sinks.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	UserRegistered = "user.registered"
	UserUpdated    = "user.updated"
	UserDeleted    = "user.deleted"

	ProductCreated = "product.created"
	ProductUpdated = "product.updated"
	ProductDeleted = "product.deleted"

	CartCreated     = "cart.created"
	CartItemAdded   = "cart.item_added"
	CartItemUpdated = "cart.item_updated"
	CartItemRemoved = "cart.item_removed"
	CartDeleted     = "cart.deleted"

	OrderCreated       = "order.created"
	OrderStatusUpdated = "order.status_updated"
	OrderCouponApplied = "order.coupon_applied"

	CouponCreated = "coupon.created"
)

type Event struct {
	ID         string                 `json:"id"`
	Type       string                 `json:"type"`
	EntityID   string                 `json:"entity_id"`
	Data       map[string]interface{} `json:"data,omitempty"`
	OccurredAt time.Time              `json:"occurred_at"`
}

func New(eventType string, entityID uint, data map[string]interface{}) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		EntityID:   fmt.Sprint(entityID),
		Data:       data,
		OccurredAt: time.Now().UTC(),
	}
}

func (e Event) Encode() ([]byte, error) {
	return json.Marshal(e)
}

func Decode(data []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return Event{}, fmt.Errorf("failed to decode event: %w", err)
	}
	if e.Type == "" {
		return Event{}, fmt.Errorf("failed to decode event: missing type")
	}
	return e, nil
}

// Emitter accepts events without blocking the caller.
type Emitter interface {
	Emit(e Event)
}

// Sink is a destination for dispatched events.
type Sink interface {
	Handle(ctx context.Context, e Event) error
}

// Discard drops every event.
type Discard struct{}

func (Discard) Emit(Event) {}
