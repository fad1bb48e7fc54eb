package servicing

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/npl/backend/internal/domain/asset"
	"github.com/npl/backend/internal/domain/seller"
	"github.com/npl/backend/internal/domain/servicing"
	"github.com/npl/backend/internal/domain/shared"
	"github.com/npl/backend/internal/infrastructure/tape"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Servicer file column names
const (
	colLoanNumber    = "seller_loan_number"
	colCurrentUPB    = "current_upb"
	colInterestRate  = "interest_rate"
	colNextDueDate   = "next_due_date"
	colLastPaidDate  = "last_payment_date"
	colLastPaidAmt   = "last_payment_amount"
	colDaysPastDue   = "days_past_due"
	colEscrowBalance = "escrow_balance"
	colAdvances      = "corporate_advances"
)

const servicingDateFormat = "2006-01-02"

const maxImportErrors = 100

// ImportService lands monthly servicer extract files. Rows key on
// (hub, period); re-importing a period replaces the existing rows, and
// each asset's working UPB follows its latest extract.
type ImportService struct {
	extractRepo servicing.ExtractRepository
	hubRepo     asset.HubRepository
	assetRepo   asset.AssetRepository
	importRepo  seller.TapeImportRepository
	logger      *zap.Logger
}

// NewImportService creates a new ImportService
func NewImportService(
	extractRepo servicing.ExtractRepository,
	hubRepo asset.HubRepository,
	assetRepo asset.AssetRepository,
	importRepo seller.TapeImportRepository,
	logger *zap.Logger,
) *ImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportService{
		extractRepo: extractRepo,
		hubRepo:     hubRepo,
		assetRepo:   assetRepo,
		importRepo:  importRepo,
		logger:      logger,
	}
}

func (s *ImportService) validationRules() []tape.FieldRule {
	zero := decimal.Zero
	return []tape.FieldRule{
		tape.Field(colLoanNumber).Required().String().MinLength(1).MaxLength(50).Unique().Build(),
		tape.Field(colCurrentUPB).Required().Decimal().MinValue(zero).Build(),
		tape.Field(colInterestRate).Decimal().MinValue(zero).Build(),
		tape.Field(colNextDueDate).DateFormat(servicingDateFormat).Build(),
		tape.Field(colLastPaidDate).DateFormat(servicingDateFormat).Build(),
		tape.Field(colLastPaidAmt).Decimal().MinValue(zero).Build(),
		tape.Field(colDaysPastDue).Int().MinValue(zero).Build(),
		tape.Field(colEscrowBalance).Decimal().Build(),
		tape.Field(colAdvances).Decimal().MinValue(zero).Build(),
	}
}

// Import lands one servicer file for a trade and period. Rows whose
// loan number has no hub identity count as errors; matched rows
// replace any extract already stored for the period.
func (s *ImportService) Import(ctx context.Context, tradeID uuid.UUID, period, servicer, fileName string, reader io.Reader, submittedBy *uuid.UUID) (*ImportResult, error) {
	periodEnd, err := servicing.PeriodEnd(period)
	if err != nil {
		return nil, err
	}

	imp := seller.NewTapeImport(tradeID, fileName, "SERVICING")
	imp.SubmittedBy = submittedBy
	if err := s.importRepo.Save(ctx, imp); err != nil {
		return nil, err
	}

	parser, err := tape.NewReader(reader)
	if err != nil {
		return s.failImport(ctx, imp, "unreadable file: "+err.Error())
	}
	if err := parser.ParseHeader(); err != nil {
		return s.failImport(ctx, imp, "invalid header: "+err.Error())
	}
	if missing := parser.ValidateHeaders([]string{colLoanNumber, colCurrentUPB, colNextDueDate}); len(missing) > 0 {
		return s.failImport(ctx, imp, "missing required headers: "+strings.Join(missing, ", "))
	}

	validator := tape.NewFieldValidator(s.validationRules(), maxImportErrors)
	errs := tape.NewErrorList(maxImportErrors)

	total, success, failed := 0, 0, 0

	for {
		row, readErr := parser.ReadRow()
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			failed++
			errs.Add(tape.NewRowError(parser.CurrentRow(), "", tape.ErrCodeParse, readErr.Error()))
			continue
		}
		if row.IsEmpty() {
			continue
		}
		total++

		if !validator.ValidateRow(row) {
			failed++
			continue
		}

		if err := s.applyRow(ctx, tradeID, imp.ID, period, periodEnd, servicer, row); err != nil {
			failed++
			errs.Add(tape.NewRowError(row.LineNumber, colLoanNumber, tape.ErrCodeValidation, err.Error()))
			continue
		}
		success++
	}

	for _, e := range validator.Errors().Errors() {
		errs.Add(e)
	}
	imp.Complete(total, success, failed, marshalErrors(errs))
	if err := s.importRepo.Save(ctx, imp); err != nil {
		return nil, err
	}

	s.logger.Info("servicing import finished",
		zap.String("trade_id", tradeID.String()),
		zap.String("period", period),
		zap.Int("total", total),
		zap.Int("applied", success),
		zap.Int("failed", failed))

	return &ImportResult{
		ImportID:    imp.ID,
		Period:      period,
		TotalRows:   total,
		SuccessRows: success,
		FailedRows:  failed,
		Errors:      errs.Errors(),
	}, nil
}

// applyRow upserts one asset-month and rolls the asset's working UPB forward
func (s *ImportService) applyRow(ctx context.Context, tradeID, importID uuid.UUID, period string, periodEnd time.Time, servicer string, row *tape.Row) error {
	loanNumber := strings.TrimSpace(row.Get(colLoanNumber))

	hub, err := s.hubRepo.FindByTradeAndLoanNumber(ctx, tradeID, loanNumber)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("UNKNOWN_LOAN", "no boarded asset for loan number "+loanNumber)
		}
		return err
	}

	upb := parseDecimal(row.Get(colCurrentUPB))
	dpd := daysPastDue(row, periodEnd)

	extract, err := s.upsertExtract(ctx, hub.ID, importID, period, upb, dpd)
	if err != nil {
		return err
	}

	extract.Servicer = servicer
	extract.InterestRate = parseDecimal(row.Get(colInterestRate))
	extract.NextDueDate = parseDate(row.Get(colNextDueDate))
	extract.SetPayment(parseDate(row.Get(colLastPaidDate)), parseDecimal(row.Get(colLastPaidAmt)))
	extract.SetBalances(parseDecimal(row.Get(colEscrowBalance)), parseDecimal(row.Get(colAdvances)))

	if err := s.extractRepo.Save(ctx, extract); err != nil {
		return err
	}

	return s.rollForwardUPB(ctx, hub.ID, period, upb)
}

// upsertExtract replaces the stored row for (hub, period) if present
func (s *ImportService) upsertExtract(ctx context.Context, hubID, importID uuid.UUID, period string, upb decimal.Decimal, dpd int) (*servicing.ServicingExtract, error) {
	existing, err := s.extractRepo.FindByHubAndPeriod(ctx, hubID, period)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing == nil {
		return servicing.NewServicingExtract(hubID, importID, period, upb, dpd)
	}
	if upb.IsNegative() {
		return nil, shared.NewDomainError("INVALID_UPB", "UPB cannot be negative")
	}
	if dpd < 0 {
		return nil, shared.NewDomainError("INVALID_DPD", "Days past due cannot be negative")
	}
	existing.ImportID = importID
	existing.CurrentUPB = upb
	existing.DaysPastDue = dpd
	existing.Bucket = servicing.BucketForDays(dpd)
	existing.UpdatedAt = time.Now()
	return existing, nil
}

// rollForwardUPB updates the asset balance when this period is the
// newest on file. Backfilled history must not clobber a fresher number.
func (s *ImportService) rollForwardUPB(ctx context.Context, hubID uuid.UUID, period string, upb decimal.Decimal) error {
	latest, err := s.extractRepo.FindLatestByHub(ctx, hubID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return err
	}
	if latest != nil && latest.Period > period {
		return nil
	}

	a, err := s.assetRepo.FindByHubID(ctx, hubID)
	if err != nil {
		return err
	}
	if !a.IsActive() {
		return nil
	}
	if err := a.UpdateUPB(upb); err != nil {
		return err
	}
	return s.assetRepo.Save(ctx, a)
}

// GetByHubAndPeriod retrieves one asset-month
func (s *ImportService) GetByHubAndPeriod(ctx context.Context, hubID uuid.UUID, period string) (*ExtractResponse, error) {
	e, err := s.extractRepo.FindByHubAndPeriod(ctx, hubID, period)
	if err != nil {
		return nil, err
	}
	response := ToExtractResponse(e)
	return &response, nil
}

// History retrieves all extracts for an asset
func (s *ImportService) History(ctx context.Context, hubID uuid.UUID, filter shared.Filter) ([]ExtractResponse, error) {
	es, err := s.extractRepo.FindByHub(ctx, hubID, filter)
	if err != nil {
		return nil, err
	}
	return ToExtractResponses(es), nil
}

// Latest retrieves the newest extract for an asset
func (s *ImportService) Latest(ctx context.Context, hubID uuid.UUID) (*ExtractResponse, error) {
	e, err := s.extractRepo.FindLatestByHub(ctx, hubID)
	if err != nil {
		return nil, err
	}
	response := ToExtractResponse(e)
	return &response, nil
}

// BucketDistribution rolls up delinquency bands for one period
func (s *ImportService) BucketDistribution(ctx context.Context, period string) (*BucketDistributionResponse, error) {
	if _, err := time.Parse("2006-01", period); err != nil {
		return nil, shared.NewDomainError("INVALID_PERIOD", "Period must be YYYY-MM")
	}
	counts, err := s.extractRepo.BucketCountsByPeriod(ctx, period)
	if err != nil {
		return nil, err
	}
	buckets := make(map[string]int64, len(counts))
	for b, n := range counts {
		buckets[b.String()] = n
	}
	return &BucketDistributionResponse{Period: period, Buckets: buckets}, nil
}

func (s *ImportService) failImport(ctx context.Context, imp *seller.TapeImport, reason string) (*ImportResult, error) {
	imp.Fail(reason)
	if err := s.importRepo.Save(ctx, imp); err != nil {
		return nil, err
	}
	return &ImportResult{
		ImportID:    imp.ID,
		Failed:      true,
		ErrorDetail: reason,
	}, nil
}

// ImportResult summarizes one servicing file ingestion run
type ImportResult struct {
	ImportID    uuid.UUID       `json:"import_id"`
	Period      string          `json:"period,omitempty"`
	TotalRows   int             `json:"total_rows"`
	SuccessRows int             `json:"success_rows"`
	FailedRows  int             `json:"failed_rows"`
	Errors      []tape.RowError `json:"errors,omitempty"`
	Failed      bool            `json:"failed"`
	ErrorDetail string          `json:"error_detail,omitempty"`
}

// daysPastDue derives delinquency from the reported next due date as
// of the period end. Rows without a next due date fall back to the
// servicer's own days_past_due column.
func daysPastDue(row *tape.Row, periodEnd time.Time) int {
	if due := parseDate(row.Get(colNextDueDate)); due != nil {
		return servicing.DaysPastDueAt(*due, periodEnd)
	}
	dpd, _ := strconv.Atoi(strings.TrimSpace(row.Get(colDaysPastDue)))
	return dpd
}

func parseDecimal(v string) decimal.Decimal {
	v = strings.TrimSpace(strings.ReplaceAll(v, ",", ""))
	if v == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func parseDate(v string) *time.Time {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	t, err := time.Parse(servicingDateFormat, v)
	if err != nil {
		return nil
	}
	return &t
}

func marshalErrors(errs *tape.ErrorList) string {
	list := errs.Errors()
	if len(list) == 0 {
		return ""
	}
	b, err := json.Marshal(list)
	if err != nil {
		return ""
	}
	return string(b)
}
