package events

import (
	"context"
	"encoding/json"

	pubsubv2 "cloud.google.com/go/pubsub/v2"

	"github.com/threadline/warehouse-backend/pkg/logger"
	"github.com/threadline/warehouse-backend/pkg/pubsub"
)

const TypeBalanceUpdate = "balance_update"

// BalanceChanges carries the derived numbers clients re-render from.
type BalanceChanges struct {
	CurrentBalance   int `json:"current_balance"`
	AvailableBalance int `json:"available_balance"`
}

// StockEvent is the wire payload broadcast after a ledger mutation commits.
type StockEvent struct {
	Type    string         `json:"type"`
	SkuID   string         `json:"sku_id"`
	Changes BalanceChanges `json:"changes"`
}

// Broadcaster emits stock events post-commit. Emission is best-effort;
// delivery failures are logged and swallowed.
type Broadcaster interface {
	BroadcastBalanceUpdate(ctx context.Context, skuID string, changes BalanceChanges)
}

type pubsubBroadcaster struct {
	publisher *pubsubv2.Publisher
	logg      *logger.Logger
}

// NewPubSubBroadcaster wires the broadcaster to the stock events topic.
func NewPubSubBroadcaster(client *pubsub.Client, logg *logger.Logger) Broadcaster {
	var publisher *pubsubv2.Publisher
	if client != nil {
		publisher = client.StockEventsPublisher()
	}
	return &pubsubBroadcaster{publisher: publisher, logg: logg}
}

func (b *pubsubBroadcaster) BroadcastBalanceUpdate(ctx context.Context, skuID string, changes BalanceChanges) {
	if b.publisher == nil {
		return
	}
	payload, err := json.Marshal(StockEvent{
		Type:    TypeBalanceUpdate,
		SkuID:   skuID,
		Changes: changes,
	})
	if err != nil {
		if b.logg != nil {
			b.logg.Error(ctx, "marshaling stock event", err)
		}
		return
	}
	result := b.publisher.Publish(ctx, &pubsubv2.Message{Data: payload})
	if _, err := result.Get(ctx); err != nil && b.logg != nil {
		b.logg.Warn(b.logg.WithSkuID(ctx, skuID), "stock event broadcast failed")
	}
}

type noopBroadcaster struct{}

// NewNoopBroadcaster returns a broadcaster that drops every event. Used when
// eventing is disabled and in tests.
func NewNoopBroadcaster() Broadcaster {
	return noopBroadcaster{}
}

func (noopBroadcaster) BroadcastBalanceUpdate(context.Context, string, BalanceChanges) {}
