package am

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/npl/backend/internal/domain/am"
	"github.com/npl/backend/internal/domain/asset"
	"github.com/npl/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// TrackService manages workout tracks and their per-strategy detail records
type TrackService struct {
	trackRepo      am.TrackRepository
	detailRepo     am.DetailRepository
	hubRepo        asset.HubRepository
	assetRepo      asset.AssetRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewTrackService creates a new TrackService
func NewTrackService(
	trackRepo am.TrackRepository,
	detailRepo am.DetailRepository,
	hubRepo asset.HubRepository,
	assetRepo asset.AssetRepository,
	eventPublisher shared.EventPublisher,
	logger *zap.Logger,
) *TrackService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TrackService{
		trackRepo:      trackRepo,
		detailRepo:     detailRepo,
		hubRepo:        hubRepo,
		assetRepo:      assetRepo,
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

// Open opens a workout track on an asset. At most one non-terminal track
// per (asset, type) may exist; a second open attempt fails with
// shared.ErrTrackOpen.
func (s *TrackService) Open(ctx context.Context, hubID uuid.UUID, req OpenTrackRequest) (*TrackResponse, error) {
	trackType := am.TrackType(req.Type)
	if !trackType.IsValid() {
		return nil, shared.NewDomainError("INVALID_TRACK_TYPE", "Unknown track type: "+req.Type)
	}

	if _, err := s.hubRepo.FindByID(ctx, hubID); err != nil {
		return nil, err
	}
	a, err := s.assetRepo.FindByHubID(ctx, hubID)
	if err != nil {
		return nil, err
	}
	if !a.IsActive() {
		return nil, shared.NewDomainError("ASSET_RESOLVED", "Cannot open a track on a resolved asset")
	}

	existing, err := s.trackRepo.FindOpenByHubAndType(ctx, hubID, trackType)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing != nil && existing.IsOpen() {
		return nil, shared.ErrTrackOpen
	}

	track, err := am.NewAMTrack(hubID, trackType)
	if err != nil {
		return nil, err
	}

	detail, err := s.buildDetail(track, req)
	if err != nil {
		return nil, err
	}

	if err := s.saveAndPublish(ctx, track); err != nil {
		return nil, err
	}
	if detail != nil {
		if err := detail(ctx); err != nil {
			return nil, err
		}
	}

	s.logger.Info("track opened",
		zap.String("track_id", track.ID.String()),
		zap.String("hub_id", hubID.String()),
		zap.String("type", track.Type.String()))

	response := ToTrackResponse(track)
	return &response, nil
}

// buildDetail validates the type-specific open parameters and returns the
// deferred save for the detail record. Deed-in-lieu tracks carry no detail.
func (s *TrackService) buildDetail(track *am.AMTrack, req OpenTrackRequest) (func(context.Context) error, error) {
	switch track.Type {
	case am.TrackTypeREO:
		reo, err := am.NewREOProperty(track.ID, track.HubID)
		if err != nil {
			return nil, err
		}
		return func(ctx context.Context) error { return s.detailRepo.SaveREO(ctx, reo) }, nil
	case am.TrackTypeForeclosure:
		judicial := true
		if req.IsJudicial != nil {
			judicial = *req.IsJudicial
		}
		fc, err := am.NewForeclosureCase(track.ID, track.HubID, req.AttorneyFirm, judicial)
		if err != nil {
			return nil, err
		}
		return func(ctx context.Context) error { return s.detailRepo.SaveForeclosure(ctx, fc) }, nil
	case am.TrackTypeModification:
		mod, err := am.NewLoanModification(track.ID, track.HubID, req.NewRate, req.NewPayment, req.TrialMonths)
		if err != nil {
			return nil, err
		}
		return func(ctx context.Context) error { return s.detailRepo.SaveModification(ctx, mod) }, nil
	case am.TrackTypeShortSale:
		ss, err := am.NewShortSale(track.ID, track.HubID, req.OfferAmount, req.PayoffDemand)
		if err != nil {
			return nil, err
		}
		return func(ctx context.Context) error { return s.detailRepo.SaveShortSale(ctx, ss) }, nil
	case am.TrackTypeNoteSale:
		ns, err := am.NewNoteSale(track.ID, track.HubID, req.BuyerName, req.AgreedPrice, req.UPBAtSale, req.TradeDate)
		if err != nil {
			return nil, err
		}
		return func(ctx context.Context) error { return s.detailRepo.SaveNoteSale(ctx, ns) }, nil
	}
	return nil, nil
}

// GetByID retrieves a track by ID
func (s *TrackService) GetByID(ctx context.Context, trackID uuid.UUID) (*TrackResponse, error) {
	track, err := s.trackRepo.FindByID(ctx, trackID)
	if err != nil {
		return nil, err
	}
	response := ToTrackResponse(track)
	return &response, nil
}

// ListByHub retrieves all tracks ever opened on an asset
func (s *TrackService) ListByHub(ctx context.Context, hubID uuid.UUID) ([]TrackResponse, error) {
	tracks, err := s.trackRepo.FindByHub(ctx, hubID)
	if err != nil {
		return nil, err
	}
	return ToTrackResponses(tracks), nil
}

// List retrieves tracks with pagination
func (s *TrackService) List(ctx context.Context, filter shared.Filter) ([]TrackResponse, int64, error) {
	tracks, err := s.trackRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.trackRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return ToTrackResponses(tracks), total, nil
}

// ListByStatus retrieves tracks in one workflow state
func (s *TrackService) ListByStatus(ctx context.Context, status am.TrackStatus, filter shared.Filter) ([]TrackResponse, error) {
	if !status.IsValid() {
		return nil, shared.NewDomainError("INVALID_STATUS", "Unknown track status: "+status.String())
	}
	tracks, err := s.trackRepo.FindByStatus(ctx, status, filter)
	if err != nil {
		return nil, err
	}
	return ToTrackResponses(tracks), nil
}

// Pipeline returns track counts per (type, status) for the workout board
func (s *TrackService) Pipeline(ctx context.Context) ([]PipelineCountResponse, error) {
	types := []am.TrackType{
		am.TrackTypeREO, am.TrackTypeForeclosure, am.TrackTypeDeedInLieu,
		am.TrackTypeModification, am.TrackTypeShortSale, am.TrackTypeNoteSale,
	}
	statuses := []am.TrackStatus{
		am.TrackStatusOpen, am.TrackStatusInProgress, am.TrackStatusOnHold,
		am.TrackStatusResolved, am.TrackStatusCancelled,
	}

	var out []PipelineCountResponse
	for _, tt := range types {
		for _, st := range statuses {
			count, err := s.trackRepo.CountByTypeAndStatus(ctx, tt, st)
			if err != nil {
				return nil, err
			}
			if count == 0 {
				continue
			}
			out = append(out, PipelineCountResponse{
				Type:   tt.String(),
				Status: st.String(),
				Count:  count,
			})
		}
	}
	return out, nil
}

// Start moves the track into active work
func (s *TrackService) Start(ctx context.Context, trackID uuid.UUID) (*TrackResponse, error) {
	return s.transition(ctx, trackID, func(t *am.AMTrack) error {
		return t.Start()
	})
}

// Hold pauses the track with a reason
func (s *TrackService) Hold(ctx context.Context, trackID uuid.UUID, req HoldTrackRequest) (*TrackResponse, error) {
	return s.transition(ctx, trackID, func(t *am.AMTrack) error {
		return t.Hold(req.Reason)
	})
}

// Resume takes the track off hold
func (s *TrackService) Resume(ctx context.Context, trackID uuid.UUID) (*TrackResponse, error) {
	return s.transition(ctx, trackID, func(t *am.AMTrack) error {
		return t.Resume()
	})
}

// Assign sets the asset manager responsible for the track
func (s *TrackService) Assign(ctx context.Context, trackID uuid.UUID, req AssignTrackRequest) (*TrackResponse, error) {
	return s.transition(ctx, trackID, func(t *am.AMTrack) error {
		return t.Assign(req.UserID)
	})
}

// Resolve closes the track with an outcome. The resulting event drives
// the asset lifecycle downstream.
func (s *TrackService) Resolve(ctx context.Context, trackID uuid.UUID, req ResolveTrackRequest) (*TrackResponse, error) {
	outcome := am.ResolutionOutcome(req.Outcome)
	resp, err := s.transition(ctx, trackID, func(t *am.AMTrack) error {
		return t.Resolve(outcome)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("track resolved",
		zap.String("track_id", trackID.String()),
		zap.String("outcome", string(outcome)))
	return resp, nil
}

// Cancel abandons the track without resolving the asset
func (s *TrackService) Cancel(ctx context.Context, trackID uuid.UUID) (*TrackResponse, error) {
	return s.transition(ctx, trackID, func(t *am.AMTrack) error {
		return t.Cancel()
	})
}

// AddMilestone attaches a dated step to the track
func (s *TrackService) AddMilestone(ctx context.Context, trackID uuid.UUID, req AddMilestoneRequest) (*TrackResponse, error) {
	return s.transition(ctx, trackID, func(t *am.AMTrack) error {
		_, err := t.AddMilestone(req.Name, req.DueDate)
		return err
	})
}

// ReachMilestone stamps a milestone as reached
func (s *TrackService) ReachMilestone(ctx context.Context, trackID, milestoneID uuid.UUID) (*TrackResponse, error) {
	return s.transition(ctx, trackID, func(t *am.AMTrack) error {
		return t.ReachMilestone(milestoneID)
	})
}

// GetREO retrieves the REO detail for a track
func (s *TrackService) GetREO(ctx context.Context, trackID uuid.UUID) (*REOResponse, error) {
	reo, err := s.detailRepo.FindREOByTrack(ctx, trackID)
	if err != nil {
		return nil, err
	}
	response := ToREOResponse(reo)
	return &response, nil
}

// ListREO puts an owned property on market
func (s *TrackService) ListREO(ctx context.Context, trackID uuid.UUID, req ListREORequest) (*REOResponse, error) {
	return s.changeREO(ctx, trackID, func(r *am.REOProperty) error {
		return r.List(req.ListPrice, req.BrokerName)
	})
}

// ReduceREOPrice lowers the list price of a marketed REO property
func (s *TrackService) ReduceREOPrice(ctx context.Context, trackID uuid.UUID, req ReducePriceRequest) (*REOResponse, error) {
	return s.changeREO(ctx, trackID, func(r *am.REOProperty) error {
		return r.ReducePrice(req.NewPrice)
	})
}

// AcceptContract records an accepted purchase contract on an REO property
func (s *TrackService) AcceptContract(ctx context.Context, trackID uuid.UUID, req AcceptContractRequest) (*REOResponse, error) {
	return s.changeREO(ctx, trackID, func(r *am.REOProperty) error {
		return r.AcceptContract(req.ContractPrice)
	})
}

// ContractFell relists an REO property after a fallen contract
func (s *TrackService) ContractFell(ctx context.Context, trackID uuid.UUID) (*REOResponse, error) {
	return s.changeREO(ctx, trackID, func(r *am.REOProperty) error {
		return r.ContractFell()
	})
}

// CloseREO records the closed REO sale
func (s *TrackService) CloseREO(ctx context.Context, trackID uuid.UUID, req CloseREORequest) (*REOResponse, error) {
	return s.changeREO(ctx, trackID, func(r *am.REOProperty) error {
		return r.Close(req.SalePrice, req.SoldAt)
	})
}

// GetForeclosure retrieves the foreclosure detail for a track
func (s *TrackService) GetForeclosure(ctx context.Context, trackID uuid.UUID) (*ForeclosureResponse, error) {
	fc, err := s.detailRepo.FindForeclosureByTrack(ctx, trackID)
	if err != nil {
		return nil, err
	}
	response := ToForeclosureResponse(fc)
	return &response, nil
}

// FileComplaint records the foreclosure complaint filing
func (s *TrackService) FileComplaint(ctx context.Context, trackID uuid.UUID, req FileComplaintRequest) (*ForeclosureResponse, error) {
	return s.changeForeclosure(ctx, trackID, func(f *am.ForeclosureCase) error {
		return f.FileComplaint(req.CaseNumber, req.FiledAt)
	})
}

// EnterJudgment records the foreclosure judgment
func (s *TrackService) EnterJudgment(ctx context.Context, trackID uuid.UUID, req EnterJudgmentRequest) (*ForeclosureResponse, error) {
	return s.changeForeclosure(ctx, trackID, func(f *am.ForeclosureCase) error {
		return f.EnterJudgment(req.Amount, req.EnteredAt)
	})
}

// ScheduleSale sets the sheriff/trustee sale date
func (s *TrackService) ScheduleSale(ctx context.Context, trackID uuid.UUID, req ScheduleSaleRequest) (*ForeclosureResponse, error) {
	return s.changeForeclosure(ctx, trackID, func(f *am.ForeclosureCase) error {
		return f.ScheduleSale(req.SaleDate)
	})
}

// PostponeSale drops the case back to judgment for rescheduling
func (s *TrackService) PostponeSale(ctx context.Context, trackID uuid.UUID) (*ForeclosureResponse, error) {
	return s.changeForeclosure(ctx, trackID, func(f *am.ForeclosureCase) error {
		return f.PostponeSale()
	})
}

// RecordSale records the held foreclosure sale
func (s *TrackService) RecordSale(ctx context.Context, trackID uuid.UUID, req RecordSaleRequest) (*ForeclosureResponse, error) {
	return s.changeForeclosure(ctx, trackID, func(f *am.ForeclosureCase) error {
		return f.RecordSale(req.Proceeds, req.HeldAt, req.ThirdParty)
	})
}

// GetModification retrieves the modification detail for a track
func (s *TrackService) GetModification(ctx context.Context, trackID uuid.UUID) (*ModificationResponse, error) {
	mod, err := s.detailRepo.FindModificationByTrack(ctx, trackID)
	if err != nil {
		return nil, err
	}
	response := ToModificationResponse(mod)
	return &response, nil
}

// StartTrial begins the modification trial payment plan
func (s *TrackService) StartTrial(ctx context.Context, trackID uuid.UUID, req StartTrialRequest) (*ModificationResponse, error) {
	return s.changeModification(ctx, trackID, func(m *am.LoanModification) error {
		return m.StartTrial(req.StartedAt)
	})
}

// RecordTrialPayment counts one received trial payment
func (s *TrackService) RecordTrialPayment(ctx context.Context, trackID uuid.UUID) (*ModificationResponse, error) {
	return s.changeModification(ctx, trackID, func(m *am.LoanModification) error {
		return m.RecordTrialPayment()
	})
}

// MakePermanent converts a completed trial into permanent terms
func (s *TrackService) MakePermanent(ctx context.Context, trackID uuid.UUID, req MakePermanentRequest) (*ModificationResponse, error) {
	return s.changeModification(ctx, trackID, func(m *am.LoanModification) error {
		return m.MakePermanent(req.EffectiveAt)
	})
}

// BreakModification marks the plan broken after missed payments
func (s *TrackService) BreakModification(ctx context.Context, trackID uuid.UUID, req BreakModRequest) (*ModificationResponse, error) {
	return s.changeModification(ctx, trackID, func(m *am.LoanModification) error {
		return m.Break(req.BrokenAt)
	})
}

// GetShortSale retrieves the short-sale detail for a track
func (s *TrackService) GetShortSale(ctx context.Context, trackID uuid.UUID) (*ShortSaleResponse, error) {
	ss, err := s.detailRepo.FindShortSaleByTrack(ctx, trackID)
	if err != nil {
		return nil, err
	}
	response := ToShortSaleResponse(ss)
	return &response, nil
}

// ApproveShortSale accepts the short payoff
func (s *TrackService) ApproveShortSale(ctx context.Context, trackID uuid.UUID, req ApproveShortSaleRequest) (*ShortSaleResponse, error) {
	return s.changeShortSale(ctx, trackID, func(ss *am.ShortSale) error {
		return ss.Approve(req.Amount, req.ApprovedAt)
	})
}

// CloseShortSale records the closed short sale and net proceeds
func (s *TrackService) CloseShortSale(ctx context.Context, trackID uuid.UUID, req CloseShortSaleRequest) (*ShortSaleResponse, error) {
	return s.changeShortSale(ctx, trackID, func(ss *am.ShortSale) error {
		return ss.Close(req.NetProceeds, req.ClosedAt)
	})
}

// GetNoteSale retrieves the note-sale detail for a track
func (s *TrackService) GetNoteSale(ctx context.Context, trackID uuid.UUID) (*NoteSaleResponse, error) {
	ns, err := s.detailRepo.FindNoteSaleByTrack(ctx, trackID)
	if err != nil {
		return nil, err
	}
	response := ToNoteSaleResponse(ns)
	return &response, nil
}

// SettleNoteSale records the funded note-sale settlement
func (s *TrackService) SettleNoteSale(ctx context.Context, trackID uuid.UUID, req SettleNoteSaleRequest) (*NoteSaleResponse, error) {
	settledAt := req.SettledAt
	if settledAt.IsZero() {
		settledAt = time.Now()
	}
	return s.changeNoteSale(ctx, trackID, func(ns *am.NoteSale) error {
		return ns.Settle(settledAt)
	})
}

func (s *TrackService) transition(ctx context.Context, trackID uuid.UUID, change func(*am.AMTrack) error) (*TrackResponse, error) {
	track, err := s.trackRepo.FindByID(ctx, trackID)
	if err != nil {
		return nil, err
	}
	if err := change(track); err != nil {
		return nil, err
	}
	if err := s.saveAndPublish(ctx, track); err != nil {
		return nil, err
	}
	response := ToTrackResponse(track)
	return &response, nil
}

func (s *TrackService) changeREO(ctx context.Context, trackID uuid.UUID, change func(*am.REOProperty) error) (*REOResponse, error) {
	reo, err := s.detailRepo.FindREOByTrack(ctx, trackID)
	if err != nil {
		return nil, err
	}
	if err := change(reo); err != nil {
		return nil, err
	}
	if err := s.detailRepo.SaveREO(ctx, reo); err != nil {
		return nil, err
	}
	response := ToREOResponse(reo)
	return &response, nil
}

func (s *TrackService) changeForeclosure(ctx context.Context, trackID uuid.UUID, change func(*am.ForeclosureCase) error) (*ForeclosureResponse, error) {
	fc, err := s.detailRepo.FindForeclosureByTrack(ctx, trackID)
	if err != nil {
		return nil, err
	}
	if err := change(fc); err != nil {
		return nil, err
	}
	if err := s.detailRepo.SaveForeclosure(ctx, fc); err != nil {
		return nil, err
	}
	response := ToForeclosureResponse(fc)
	return &response, nil
}

func (s *TrackService) changeModification(ctx context.Context, trackID uuid.UUID, change func(*am.LoanModification) error) (*ModificationResponse, error) {
	mod, err := s.detailRepo.FindModificationByTrack(ctx, trackID)
	if err != nil {
		return nil, err
	}
	if err := change(mod); err != nil {
		return nil, err
	}
	if err := s.detailRepo.SaveModification(ctx, mod); err != nil {
		return nil, err
	}
	response := ToModificationResponse(mod)
	return &response, nil
}

func (s *TrackService) changeShortSale(ctx context.Context, trackID uuid.UUID, change func(*am.ShortSale) error) (*ShortSaleResponse, error) {
	ss, err := s.detailRepo.FindShortSaleByTrack(ctx, trackID)
	if err != nil {
		return nil, err
	}
	if err := change(ss); err != nil {
		return nil, err
	}
	if err := s.detailRepo.SaveShortSale(ctx, ss); err != nil {
		return nil, err
	}
	response := ToShortSaleResponse(ss)
	return &response, nil
}

func (s *TrackService) changeNoteSale(ctx context.Context, trackID uuid.UUID, change func(*am.NoteSale) error) (*NoteSaleResponse, error) {
	ns, err := s.detailRepo.FindNoteSaleByTrack(ctx, trackID)
	if err != nil {
		return nil, err
	}
	if err := change(ns); err != nil {
		return nil, err
	}
	if err := s.detailRepo.SaveNoteSale(ctx, ns); err != nil {
		return nil, err
	}
	response := ToNoteSaleResponse(ns)
	return &response, nil
}

func (s *TrackService) saveAndPublish(ctx context.Context, track *am.AMTrack) error {
	events := track.GetDomainEvents()
	track.ClearDomainEvents()

	if err := s.trackRepo.Save(ctx, track); err != nil {
		return err
	}

	if s.eventPublisher != nil && len(events) > 0 {
		if err := s.eventPublisher.Publish(ctx, events...); err != nil {
			// The write has committed; event delivery failures are logged,
			// not surfaced to the caller.
			s.logger.Error("failed to publish track events",
				zap.String("track_id", track.ID.String()),
				zap.Error(err))
		}
	}
	return nil
}
