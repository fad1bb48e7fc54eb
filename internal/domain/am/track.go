package am

import (
	"time"

	"github.com/google/uuid"
	"github.com/npl/backend/internal/domain/shared"
)

// TrackType identifies the workout strategy a track executes
type TrackType string

const (
	TrackTypeREO          TrackType = "REO"
	TrackTypeForeclosure  TrackType = "FC"
	TrackTypeDeedInLieu   TrackType = "DIL"
	TrackTypeModification TrackType = "MOD"
	TrackTypeShortSale    TrackType = "SHORT_SALE"
	TrackTypeNoteSale     TrackType = "NOTE_SALE"
)

// IsValid checks if the type is a valid TrackType
func (t TrackType) IsValid() bool {
	switch t {
	case TrackTypeREO, TrackTypeForeclosure, TrackTypeDeedInLieu,
		TrackTypeModification, TrackTypeShortSale, TrackTypeNoteSale:
		return true
	}
	return false
}

// String returns the string representation of TrackType
func (t TrackType) String() string {
	return string(t)
}

// TrackStatus represents the state of an asset-management track
type TrackStatus string

const (
	TrackStatusOpen       TrackStatus = "OPEN"
	TrackStatusInProgress TrackStatus = "IN_PROGRESS"
	TrackStatusOnHold     TrackStatus = "ON_HOLD"
	TrackStatusResolved   TrackStatus = "RESOLVED"
	TrackStatusCancelled  TrackStatus = "CANCELLED"
)

// IsValid checks if the status is a valid TrackStatus
func (s TrackStatus) IsValid() bool {
	switch s {
	case TrackStatusOpen, TrackStatusInProgress, TrackStatusOnHold,
		TrackStatusResolved, TrackStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of TrackStatus
func (s TrackStatus) String() string {
	return string(s)
}

// IsTerminal returns true for statuses with no outgoing transitions
func (s TrackStatus) IsTerminal() bool {
	return s == TrackStatusResolved || s == TrackStatusCancelled
}

// CanTransitionTo checks if the status can transition to the target status
func (s TrackStatus) CanTransitionTo(target TrackStatus) bool {
	switch s {
	case TrackStatusOpen:
		return target == TrackStatusInProgress || target == TrackStatusCancelled
	case TrackStatusInProgress:
		return target == TrackStatusOnHold || target == TrackStatusResolved || target == TrackStatusCancelled
	case TrackStatusOnHold:
		return target == TrackStatusInProgress || target == TrackStatusCancelled
	case TrackStatusResolved, TrackStatusCancelled:
		return false // Terminal states
	}
	return false
}

// ResolutionOutcome records how a resolved track disposed of the asset
type ResolutionOutcome string

const (
	OutcomeLiquidated  ResolutionOutcome = "LIQUIDATED"  // Collateral sold (REO, FC sale, short sale, DIL)
	OutcomeNoteSold    ResolutionOutcome = "NOTE_SOLD"   // Note sold to another investor
	OutcomeReperformed ResolutionOutcome = "REPERFORMED" // Modification succeeded, loan stays on book
)

// IsValid checks if the outcome is a valid ResolutionOutcome
func (o ResolutionOutcome) IsValid() bool {
	switch o {
	case OutcomeLiquidated, OutcomeNoteSold, OutcomeReperformed:
		return true
	}
	return false
}

// AMTrack is an asset-management workflow for one asset. At most one
// non-terminal track per (asset, type) may exist at a time; the
// application layer enforces this against the repository.
type AMTrack struct {
	shared.BaseAggregateRoot
	HubID      uuid.UUID          `gorm:"type:uuid;not null;index:idx_track_hub_type"`
	Type       TrackType          `gorm:"type:varchar(20);not null;index:idx_track_hub_type"`
	Status     TrackStatus        `gorm:"type:varchar(20);not null;default:'OPEN';index"`
	Outcome    *ResolutionOutcome `gorm:"type:varchar(20)"`
	AssignedTo *uuid.UUID         `gorm:"type:uuid"`
	OpenedAt   time.Time          `gorm:"not null"`
	ResolvedAt *time.Time
	HoldReason string      `gorm:"type:varchar(255)"`
	Notes      string      `gorm:"type:text"`
	Milestones []Milestone `gorm:"foreignKey:TrackID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (AMTrack) TableName() string {
	return "am_tracks"
}

// Milestone is a dated step inside a track (e.g. FC complaint filed)
type Milestone struct {
	shared.BaseEntity
	TrackID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Name       string    `gorm:"type:varchar(100);not null"`
	DueDate    *time.Time
	ReachedAt  *time.Time
	Notes      string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (Milestone) TableName() string {
	return "am_milestones"
}

// NewAMTrack opens a track of the given type for an asset
func NewAMTrack(hubID uuid.UUID, trackType TrackType) (*AMTrack, error) {
	if hubID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_HUB", "Hub ID cannot be empty")
	}
	if !trackType.IsValid() {
		return nil, shared.NewDomainError("INVALID_TRACK_TYPE", "Unknown track type: "+string(trackType))
	}

	track := &AMTrack{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		HubID:             hubID,
		Type:              trackType,
		Status:            TrackStatusOpen,
		OpenedAt:          time.Now(),
	}

	track.AddDomainEvent(NewTrackOpenedEvent(track))
	return track, nil
}

// Assign sets the asset manager responsible for the track
func (t *AMTrack) Assign(userID uuid.UUID) error {
	if t.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", "Cannot assign a closed track")
	}
	t.AssignedTo = &userID
	t.UpdatedAt = time.Now()
	return nil
}

// Start moves the track into active work
func (t *AMTrack) Start() error {
	if !t.Status.CanTransitionTo(TrackStatusInProgress) || t.Status == TrackStatusOnHold {
		return shared.NewDomainError("INVALID_STATE", "Track cannot start from "+t.Status.String())
	}
	t.Status = TrackStatusInProgress
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
	return nil
}

// Hold pauses the track (e.g. bankruptcy stay on a foreclosure)
func (t *AMTrack) Hold(reason string) error {
	if !t.Status.CanTransitionTo(TrackStatusOnHold) {
		return shared.NewDomainError("INVALID_STATE", "Track cannot be held from "+t.Status.String())
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Hold reason cannot be empty")
	}
	t.Status = TrackStatusOnHold
	t.HoldReason = reason
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
	return nil
}

// Resume takes the track off hold
func (t *AMTrack) Resume() error {
	if t.Status != TrackStatusOnHold {
		return shared.NewDomainError("INVALID_STATE", "Only held tracks can resume")
	}
	t.Status = TrackStatusInProgress
	t.HoldReason = ""
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
	return nil
}

// Resolve closes the track with an outcome. The asset-status handler
// consumes the resulting event to mark the asset sold or liquidated.
func (t *AMTrack) Resolve(outcome ResolutionOutcome) error {
	if !t.Status.CanTransitionTo(TrackStatusResolved) {
		return shared.NewDomainError("INVALID_STATE", "Track cannot resolve from "+t.Status.String())
	}
	if !outcome.IsValid() {
		return shared.NewDomainError("INVALID_OUTCOME", "Unknown resolution outcome: "+string(outcome))
	}
	if t.Type == TrackTypeNoteSale && outcome != OutcomeNoteSold {
		return shared.NewDomainError("INVALID_OUTCOME", "Note sale tracks resolve as NOTE_SOLD")
	}
	if t.Type == TrackTypeModification && outcome == OutcomeNoteSold {
		return shared.NewDomainError("INVALID_OUTCOME", "Modification tracks cannot resolve as NOTE_SOLD")
	}

	now := time.Now()
	t.Status = TrackStatusResolved
	t.Outcome = &outcome
	t.ResolvedAt = &now
	t.UpdatedAt = now
	t.IncrementVersion()

	t.AddDomainEvent(NewTrackResolvedEvent(t, outcome))
	return nil
}

// Cancel abandons the track without resolving the asset
func (t *AMTrack) Cancel() error {
	if !t.Status.CanTransitionTo(TrackStatusCancelled) {
		return shared.NewDomainError("INVALID_STATE", "Track cannot be cancelled from "+t.Status.String())
	}
	t.Status = TrackStatusCancelled
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
	return nil
}

// AddMilestone attaches a dated step to the track
func (t *AMTrack) AddMilestone(name string, dueDate *time.Time) (*Milestone, error) {
	if t.Status.IsTerminal() {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot add milestones to a closed track")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Milestone name cannot be empty")
	}

	m := Milestone{
		BaseEntity: shared.NewBaseEntity(),
		TrackID:    t.ID,
		Name:       name,
		DueDate:    dueDate,
	}
	t.Milestones = append(t.Milestones, m)
	t.UpdatedAt = time.Now()
	return &t.Milestones[len(t.Milestones)-1], nil
}

// ReachMilestone stamps a milestone as reached
func (t *AMTrack) ReachMilestone(milestoneID uuid.UUID) error {
	for i := range t.Milestones {
		if t.Milestones[i].ID == milestoneID {
			if t.Milestones[i].ReachedAt != nil {
				return shared.NewDomainError("INVALID_STATE", "Milestone already reached")
			}
			now := time.Now()
			t.Milestones[i].ReachedAt = &now
			t.Milestones[i].UpdatedAt = now
			t.UpdatedAt = now
			return nil
		}
	}
	return shared.ErrNotFound
}

// IsOpen returns true while the track is non-terminal
func (t *AMTrack) IsOpen() bool {
	return !t.Status.IsTerminal()
}
