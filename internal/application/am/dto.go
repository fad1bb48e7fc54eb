package am

import (
	"time"

	"github.com/google/uuid"
	"github.com/npl/backend/internal/domain/am"
	"github.com/shopspring/decimal"
)

// OpenTrackRequest opens a workout track on an asset. The detail fields
// are consumed by the track types that need them at open time.
type OpenTrackRequest struct {
	Type string `json:"type" binding:"required,oneof=REO FC DIL MOD SHORT_SALE NOTE_SALE"`

	// Foreclosure
	AttorneyFirm string `json:"attorney_firm,omitempty"`
	IsJudicial   *bool  `json:"is_judicial,omitempty"`

	// Modification
	NewRate     decimal.Decimal `json:"new_rate,omitempty"`
	NewPayment  decimal.Decimal `json:"new_payment,omitempty"`
	TrialMonths int             `json:"trial_months,omitempty"`

	// Short sale
	OfferAmount  decimal.Decimal `json:"offer_amount,omitempty"`
	PayoffDemand decimal.Decimal `json:"payoff_demand,omitempty"`

	// Note sale
	BuyerName   string          `json:"buyer_name,omitempty"`
	AgreedPrice decimal.Decimal `json:"agreed_price,omitempty"`
	UPBAtSale   decimal.Decimal `json:"upb_at_sale,omitempty"`
	TradeDate   time.Time       `json:"trade_date,omitempty"`
}

// HoldTrackRequest pauses a track with a reason
type HoldTrackRequest struct {
	Reason string `json:"reason" binding:"required,max=255"`
}

// AssignTrackRequest assigns an asset manager
type AssignTrackRequest struct {
	UserID uuid.UUID `json:"user_id" binding:"required"`
}

// ResolveTrackRequest closes a track with an outcome
type ResolveTrackRequest struct {
	Outcome string `json:"outcome" binding:"required,oneof=LIQUIDATED NOTE_SOLD REPERFORMED"`
}

// AddMilestoneRequest attaches a dated step to a track
type AddMilestoneRequest struct {
	Name    string     `json:"name" binding:"required,max=100"`
	DueDate *time.Time `json:"due_date,omitempty"`
}

// ListREORequest puts an owned property on market
type ListREORequest struct {
	ListPrice  decimal.Decimal `json:"list_price" binding:"required"`
	BrokerName string          `json:"broker_name" binding:"max=100"`
}

// ReducePriceRequest lowers the list price of a marketed property
type ReducePriceRequest struct {
	NewPrice decimal.Decimal `json:"new_price" binding:"required"`
}

// AcceptContractRequest records an accepted purchase contract
type AcceptContractRequest struct {
	ContractPrice decimal.Decimal `json:"contract_price" binding:"required"`
}

// CloseREORequest records the closed REO sale
type CloseREORequest struct {
	SalePrice decimal.Decimal `json:"sale_price" binding:"required"`
	SoldAt    time.Time       `json:"sold_at" binding:"required"`
}

// FileComplaintRequest records the foreclosure complaint filing
type FileComplaintRequest struct {
	CaseNumber string    `json:"case_number" binding:"required,max=50"`
	FiledAt    time.Time `json:"filed_at" binding:"required"`
}

// EnterJudgmentRequest records the foreclosure judgment
type EnterJudgmentRequest struct {
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	EnteredAt time.Time       `json:"entered_at" binding:"required"`
}

// ScheduleSaleRequest sets the sheriff/trustee sale date
type ScheduleSaleRequest struct {
	SaleDate time.Time `json:"sale_date" binding:"required"`
}

// RecordSaleRequest records the held foreclosure sale
type RecordSaleRequest struct {
	Proceeds   decimal.Decimal `json:"proceeds"`
	HeldAt     time.Time       `json:"held_at" binding:"required"`
	ThirdParty bool            `json:"third_party"`
}

// StartTrialRequest begins the modification trial plan
type StartTrialRequest struct {
	StartedAt time.Time `json:"started_at" binding:"required"`
}

// MakePermanentRequest converts a completed trial into permanent terms
type MakePermanentRequest struct {
	EffectiveAt time.Time `json:"effective_at" binding:"required"`
}

// BreakModRequest marks the plan broken after missed payments
type BreakModRequest struct {
	BrokenAt time.Time `json:"broken_at" binding:"required"`
}

// ApproveShortSaleRequest accepts the short payoff
type ApproveShortSaleRequest struct {
	Amount     decimal.Decimal `json:"amount" binding:"required"`
	ApprovedAt time.Time       `json:"approved_at" binding:"required"`
}

// CloseShortSaleRequest records the closed short sale
type CloseShortSaleRequest struct {
	NetProceeds decimal.Decimal `json:"net_proceeds" binding:"required"`
	ClosedAt    time.Time       `json:"closed_at" binding:"required"`
}

// SettleNoteSaleRequest records the funded note-sale settlement
type SettleNoteSaleRequest struct {
	SettledAt time.Time `json:"settled_at" binding:"required"`
}

// MilestoneResponse is the API representation of a track milestone
type MilestoneResponse struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	DueDate   *time.Time `json:"due_date,omitempty"`
	ReachedAt *time.Time `json:"reached_at,omitempty"`
}

// TrackResponse is the API representation of an AM track
type TrackResponse struct {
	ID         uuid.UUID           `json:"id"`
	HubID      uuid.UUID           `json:"hub_id"`
	Type       string              `json:"type"`
	Status     string              `json:"status"`
	Outcome    *string             `json:"outcome,omitempty"`
	AssignedTo *uuid.UUID          `json:"assigned_to,omitempty"`
	OpenedAt   time.Time           `json:"opened_at"`
	ResolvedAt *time.Time          `json:"resolved_at,omitempty"`
	HoldReason string              `json:"hold_reason,omitempty"`
	Notes      string              `json:"notes,omitempty"`
	Milestones []MilestoneResponse `json:"milestones,omitempty"`
	Version    int                 `json:"version"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

// ToTrackResponse converts a track to its API representation
func ToTrackResponse(t *am.AMTrack) TrackResponse {
	resp := TrackResponse{
		ID:         t.ID,
		HubID:      t.HubID,
		Type:       t.Type.String(),
		Status:     t.Status.String(),
		AssignedTo: t.AssignedTo,
		OpenedAt:   t.OpenedAt,
		ResolvedAt: t.ResolvedAt,
		HoldReason: t.HoldReason,
		Notes:      t.Notes,
		Version:    t.Version,
		CreatedAt:  t.CreatedAt,
		UpdatedAt:  t.UpdatedAt,
	}
	if t.Outcome != nil {
		outcome := string(*t.Outcome)
		resp.Outcome = &outcome
	}
	for i := range t.Milestones {
		m := &t.Milestones[i]
		resp.Milestones = append(resp.Milestones, MilestoneResponse{
			ID:        m.ID,
			Name:      m.Name,
			DueDate:   m.DueDate,
			ReachedAt: m.ReachedAt,
		})
	}
	return resp
}

// ToTrackResponses converts a slice of tracks
func ToTrackResponses(tracks []am.AMTrack) []TrackResponse {
	out := make([]TrackResponse, len(tracks))
	for i := range tracks {
		out[i] = ToTrackResponse(&tracks[i])
	}
	return out
}

// REOResponse is the API representation of an REO detail record
type REOResponse struct {
	ID            uuid.UUID  `json:"id"`
	TrackID       uuid.UUID  `json:"track_id"`
	HubID         uuid.UUID  `json:"hub_id"`
	Stage         string     `json:"stage"`
	ListPrice     string     `json:"list_price"`
	ListedAt      *time.Time `json:"listed_at,omitempty"`
	ContractPrice string     `json:"contract_price"`
	ContractAt    *time.Time `json:"contract_at,omitempty"`
	SalePrice     string     `json:"sale_price"`
	SoldAt        *time.Time `json:"sold_at,omitempty"`
	RehabBudget   string     `json:"rehab_budget"`
	BrokerName    string     `json:"broker_name,omitempty"`
}

// ToREOResponse converts an REO detail to its API representation
func ToREOResponse(r *am.REOProperty) REOResponse {
	return REOResponse{
		ID:            r.ID,
		TrackID:       r.TrackID,
		HubID:         r.HubID,
		Stage:         string(r.Stage),
		ListPrice:     r.ListPrice.String(),
		ListedAt:      r.ListedAt,
		ContractPrice: r.ContractPrice.String(),
		ContractAt:    r.ContractAt,
		SalePrice:     r.SalePrice.String(),
		SoldAt:        r.SoldAt,
		RehabBudget:   r.RehabBudget.String(),
		BrokerName:    r.BrokerName,
	}
}

// ForeclosureResponse is the API representation of a foreclosure case
type ForeclosureResponse struct {
	ID               uuid.UUID  `json:"id"`
	TrackID          uuid.UUID  `json:"track_id"`
	HubID            uuid.UUID  `json:"hub_id"`
	Stage            string     `json:"stage"`
	CaseNumber       string     `json:"case_number,omitempty"`
	AttorneyFirm     string     `json:"attorney_firm,omitempty"`
	IsJudicial       bool       `json:"is_judicial"`
	ReferredAt       time.Time  `json:"referred_at"`
	ComplaintFiledAt *time.Time `json:"complaint_filed_at,omitempty"`
	JudgmentAt       *time.Time `json:"judgment_at,omitempty"`
	JudgmentAmount   string     `json:"judgment_amount"`
	SaleScheduledFor *time.Time `json:"sale_scheduled_for,omitempty"`
	SaleHeldAt       *time.Time `json:"sale_held_at,omitempty"`
	SaleProceeds     string     `json:"sale_proceeds"`
	ThirdPartySale   bool       `json:"third_party_sale"`
}

// ToForeclosureResponse converts a foreclosure case to its API representation
func ToForeclosureResponse(f *am.ForeclosureCase) ForeclosureResponse {
	return ForeclosureResponse{
		ID:               f.ID,
		TrackID:          f.TrackID,
		HubID:            f.HubID,
		Stage:            string(f.Stage),
		CaseNumber:       f.CaseNumber,
		AttorneyFirm:     f.AttorneyFirm,
		IsJudicial:       f.IsJudicial,
		ReferredAt:       f.ReferredAt,
		ComplaintFiledAt: f.ComplaintFiledAt,
		JudgmentAt:       f.JudgmentAt,
		JudgmentAmount:   f.JudgmentAmount.String(),
		SaleScheduledFor: f.SaleScheduledFor,
		SaleHeldAt:       f.SaleHeldAt,
		SaleProceeds:     f.SaleProceeds.String(),
		ThirdPartySale:   f.ThirdPartySale,
	}
}

// ModificationResponse is the API representation of a loan modification
type ModificationResponse struct {
	ID                uuid.UUID  `json:"id"`
	TrackID           uuid.UUID  `json:"track_id"`
	HubID             uuid.UUID  `json:"hub_id"`
	Stage             string     `json:"stage"`
	NewRate           string     `json:"new_rate"`
	NewPayment        string     `json:"new_payment"`
	NewMaturityDate   *time.Time `json:"new_maturity_date,omitempty"`
	TrialMonths       int        `json:"trial_months"`
	TrialPaymentsMade int        `json:"trial_payments_made"`
	TrialStartedAt    *time.Time `json:"trial_started_at,omitempty"`
	PermanentAt       *time.Time `json:"permanent_at,omitempty"`
	BrokenAt          *time.Time `json:"broken_at,omitempty"`
}

// ToModificationResponse converts a modification to its API representation
func ToModificationResponse(m *am.LoanModification) ModificationResponse {
	return ModificationResponse{
		ID:                m.ID,
		TrackID:           m.TrackID,
		HubID:             m.HubID,
		Stage:             string(m.Stage),
		NewRate:           m.NewRate.String(),
		NewPayment:        m.NewPayment.String(),
		NewMaturityDate:   m.NewMaturityDate,
		TrialMonths:       m.TrialMonths,
		TrialPaymentsMade: m.TrialPaymentsMade,
		TrialStartedAt:    m.TrialStartedAt,
		PermanentAt:       m.PermanentAt,
		BrokenAt:          m.BrokenAt,
	}
}

// ShortSaleResponse is the API representation of a short sale
type ShortSaleResponse struct {
	ID             uuid.UUID  `json:"id"`
	TrackID        uuid.UUID  `json:"track_id"`
	HubID          uuid.UUID  `json:"hub_id"`
	OfferAmount    string     `json:"offer_amount"`
	PayoffDemand   string     `json:"payoff_demand"`
	ApprovedAmount string     `json:"approved_amount"`
	ApprovedAt     *time.Time `json:"approved_at,omitempty"`
	ClosedAt       *time.Time `json:"closed_at,omitempty"`
	NetProceeds    string     `json:"net_proceeds"`
}

// ToShortSaleResponse converts a short sale to its API representation
func ToShortSaleResponse(s *am.ShortSale) ShortSaleResponse {
	return ShortSaleResponse{
		ID:             s.ID,
		TrackID:        s.TrackID,
		HubID:          s.HubID,
		OfferAmount:    s.OfferAmount.String(),
		PayoffDemand:   s.PayoffDemand.String(),
		ApprovedAmount: s.ApprovedAmount.String(),
		ApprovedAt:     s.ApprovedAt,
		ClosedAt:       s.ClosedAt,
		NetProceeds:    s.NetProceeds.String(),
	}
}

// NoteSaleResponse is the API representation of a note sale
type NoteSaleResponse struct {
	ID          uuid.UUID  `json:"id"`
	TrackID     uuid.UUID  `json:"track_id"`
	HubID       uuid.UUID  `json:"hub_id"`
	BuyerName   string     `json:"buyer_name"`
	AgreedPrice string     `json:"agreed_price"`
	UPBAtSale   string     `json:"upb_at_sale"`
	PricePctUPB string     `json:"price_pct_upb"`
	TradeDate   time.Time  `json:"trade_date"`
	SettledAt   *time.Time `json:"settled_at,omitempty"`
}

// ToNoteSaleResponse converts a note sale to its API representation
func ToNoteSaleResponse(n *am.NoteSale) NoteSaleResponse {
	return NoteSaleResponse{
		ID:          n.ID,
		TrackID:     n.TrackID,
		HubID:       n.HubID,
		BuyerName:   n.BuyerName,
		AgreedPrice: n.AgreedPrice.String(),
		UPBAtSale:   n.UPBAtSale.String(),
		PricePctUPB: n.PricePctUPB.String(),
		TradeDate:   n.TradeDate,
		SettledAt:   n.SettledAt,
	}
}

// PipelineCountResponse is one cell of the track pipeline rollup
type PipelineCountResponse struct {
	Type   string `json:"type"`
	Status string `json:"status"`
	Count  int64  `json:"count"`
}
