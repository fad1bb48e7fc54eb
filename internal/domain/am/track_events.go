package am

import (
	"github.com/google/uuid"
	"github.com/npl/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeAMTrack = "AMTrack"

// Event type constants
const (
	EventTypeTrackOpened   = "AMTrackOpened"
	EventTypeTrackResolved = "AMTrackResolved"
)

// TrackOpenedEvent is raised when a workout track is opened on an asset
type TrackOpenedEvent struct {
	shared.BaseDomainEvent
	TrackID   uuid.UUID `json:"track_id"`
	HubID     uuid.UUID `json:"hub_id"`
	TrackType TrackType `json:"track_type"`
}

// NewTrackOpenedEvent creates a new TrackOpenedEvent
func NewTrackOpenedEvent(t *AMTrack) *TrackOpenedEvent {
	return &TrackOpenedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTrackOpened, AggregateTypeAMTrack, t.ID),
		TrackID:         t.ID,
		HubID:           t.HubID,
		TrackType:       t.Type,
	}
}

// EventType returns the event type name
func (e *TrackOpenedEvent) EventType() string {
	return EventTypeTrackOpened
}

// TrackResolvedEvent is raised when a track resolves. The asset-status
// handler maps the outcome onto the asset lifecycle.
type TrackResolvedEvent struct {
	shared.BaseDomainEvent
	TrackID   uuid.UUID         `json:"track_id"`
	HubID     uuid.UUID         `json:"hub_id"`
	TrackType TrackType         `json:"track_type"`
	Outcome   ResolutionOutcome `json:"outcome"`
}

// NewTrackResolvedEvent creates a new TrackResolvedEvent
func NewTrackResolvedEvent(t *AMTrack, outcome ResolutionOutcome) *TrackResolvedEvent {
	return &TrackResolvedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTrackResolved, AggregateTypeAMTrack, t.ID),
		TrackID:         t.ID,
		HubID:           t.HubID,
		TrackType:       t.Type,
		Outcome:         outcome,
	}
}

// EventType returns the event type name
func (e *TrackResolvedEvent) EventType() string {
	return EventTypeTrackResolved
}
