package event

import (
	"github.com/npl/backend/internal/domain/am"
	"github.com/npl/backend/internal/domain/asset"
	"github.com/npl/backend/internal/domain/etl"
	"github.com/npl/backend/internal/domain/trade"
)

// RegisterAllEvents registers all domain event types with the serializer.
// This is required for the OutboxProcessor to deserialize events from the
// outbox table.
func RegisterAllEvents(serializer *EventSerializer) {
	// Trade lifecycle events
	serializer.Register(trade.EventTypeTradeCreated, &trade.TradeCreatedEvent{})
	serializer.Register(trade.EventTypeTradeBidSubmitted, &trade.TradeBidSubmittedEvent{})
	serializer.Register(trade.EventTypeTradeSettled, &trade.TradeSettledEvent{})

	// Asset boarding and resolution events
	serializer.Register(asset.EventTypeAssetBoarded, &asset.AssetBoardedEvent{})
	serializer.Register(asset.EventTypeAssetResolved, &asset.AssetResolvedEvent{})

	// Workout track events
	serializer.Register(am.EventTypeTrackOpened, &am.TrackOpenedEvent{})
	serializer.Register(am.EventTypeTrackResolved, &am.TrackResolvedEvent{})

	// Extraction pipeline events
	serializer.Register(etl.EventTypeJobCompleted, &etl.JobCompletedEvent{})
}
