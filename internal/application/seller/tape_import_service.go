package seller

import (
	"context"
	"encoding/json"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/npl/backend/internal/domain/seller"
	"github.com/npl/backend/internal/domain/shared"
	"github.com/npl/backend/internal/domain/trade"
	"github.com/npl/backend/internal/infrastructure/tape"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Tape column names. Files are expected normalized to this layout
// before upload; header aliases are not guessed.
const (
	colLoanNumber   = "seller_loan_number"
	colCurrentUPB   = "current_upb"
	colInterestRate = "interest_rate"
	colOrigDate     = "origination_date"
	colMaturityDate = "maturity_date"
	colNextDueDate  = "next_due_date"
	colDelinquency  = "delinquency"
	colLienPosition = "lien_position"
	colPropStreet   = "property_street"
	colPropCity     = "property_city"
	colPropState    = "property_state"
	colPropZip      = "property_zip"
	colPropType     = "property_type"
	colOccupancy    = "occupancy"
	colAsIsValue    = "as_is_value"
	colARVValue     = "arv_value"
)

const tapeDateFormat = "2006-01-02"

// maxImportErrors bounds the error detail stored per run
const maxImportErrors = 100

// TapeImportService lands seller loan tapes into the raw data table
type TapeImportService struct {
	rawRepo    seller.RawDataRepository
	importRepo seller.TapeImportRepository
	tradeRepo  trade.TradeRepository
	logger     *zap.Logger
}

// NewTapeImportService creates a new TapeImportService
func NewTapeImportService(
	rawRepo seller.RawDataRepository,
	importRepo seller.TapeImportRepository,
	tradeRepo trade.TradeRepository,
	logger *zap.Logger,
) *TapeImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TapeImportService{
		rawRepo:    rawRepo,
		importRepo: importRepo,
		tradeRepo:  tradeRepo,
		logger:     logger,
	}
}

// validationRules returns the field rules for tape rows
func (s *TapeImportService) validationRules() []tape.FieldRule {
	zero := decimal.Zero
	return []tape.FieldRule{
		tape.Field(colLoanNumber).Required().String().MinLength(1).MaxLength(50).Unique().Build(),
		tape.Field(colCurrentUPB).Required().Decimal().MinValue(zero).Build(),
		tape.Field(colInterestRate).Decimal().MinValue(zero).Build(),
		tape.Field(colOrigDate).DateFormat(tapeDateFormat).Build(),
		tape.Field(colMaturityDate).DateFormat(tapeDateFormat).Build(),
		tape.Field(colNextDueDate).DateFormat(tapeDateFormat).Build(),
		tape.Field(colDelinquency).String().MaxLength(50).Build(),
		tape.Field(colLienPosition).Int().Build(),
		tape.Field(colPropStreet).String().MaxLength(200).Build(),
		tape.Field(colPropCity).String().MaxLength(100).Build(),
		tape.Field(colPropState).String().StateCode().Build(),
		tape.Field(colPropZip).String().ZipCode().Build(),
		tape.Field(colPropType).String().MaxLength(50).Build(),
		tape.Field(colOccupancy).String().MaxLength(30).Build(),
		tape.Field(colAsIsValue).Decimal().MinValue(zero).Build(),
		tape.Field(colARVValue).Decimal().MinValue(zero).Build(),
	}
}

// Import lands a tape file for a trade. Rows that duplicate a loan
// number already landed for the trade are skipped as errors; the file
// as a whole still imports. Tapes can only land on pre-settlement
// trades.
func (s *TapeImportService) Import(ctx context.Context, tradeID uuid.UUID, fileName string, reader io.Reader, submittedBy *uuid.UUID) (*TapeImportResponse, error) {
	tr, err := s.tradeRepo.FindByID(ctx, tradeID)
	if err != nil {
		return nil, err
	}
	if tr.Status.IsTerminal() {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot import a tape into a closed trade")
	}

	imp := seller.NewTapeImport(tradeID, fileName, "TAPE")
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
	if missing := parser.ValidateHeaders([]string{colLoanNumber, colCurrentUPB}); len(missing) > 0 {
		return s.failImport(ctx, imp, "missing required headers: "+strings.Join(missing, ", "))
	}

	validator := tape.NewFieldValidator(s.validationRules(), maxImportErrors)
	errs := tape.NewErrorList(maxImportErrors)

	var rows []*seller.SellerRawData
	total, failed := 0, 0

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

		raw, buildErr := s.buildRow(ctx, tradeID, imp.ID, row)
		if buildErr != nil {
			failed++
			errs.Add(tape.NewRowError(row.LineNumber, colLoanNumber, tape.ErrCodeValidation, buildErr.Error()))
			continue
		}
		rows = append(rows, raw)
	}

	if len(rows) > 0 {
		if err := s.rawRepo.SaveBatch(ctx, rows); err != nil {
			return s.failImport(ctx, imp, "persist failed: "+err.Error())
		}
	}

	for _, e := range validator.Errors().Errors() {
		errs.Add(e)
	}
	detail := marshalErrors(errs)

	imp.Complete(total, len(rows), failed, detail)
	if err := s.importRepo.Save(ctx, imp); err != nil {
		return nil, err
	}

	s.logger.Info("tape import finished",
		zap.String("trade_id", tradeID.String()),
		zap.String("file", fileName),
		zap.Int("total", total),
		zap.Int("landed", len(rows)),
		zap.Int("failed", failed))

	response := ToTapeImportResponse(imp)
	return &response, nil
}

// buildRow maps one validated CSV row to a landing row
func (s *TapeImportService) buildRow(ctx context.Context, tradeID, importID uuid.UUID, row *tape.Row) (*seller.SellerRawData, error) {
	loanNumber := strings.TrimSpace(row.Get(colLoanNumber))

	existing, err := s.rawRepo.FindByTradeAndLoanNumber(ctx, tradeID, loanNumber)
	if err != nil && err != shared.ErrNotFound {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainError("DUPLICATE_LOAN", "loan number already landed for this trade: "+loanNumber)
	}

	raw, err := seller.NewSellerRawData(tradeID, importID, loanNumber)
	if err != nil {
		return nil, err
	}

	raw.CurrentUPB = parseDecimal(row.Get(colCurrentUPB))
	raw.InterestRate = parseDecimal(row.Get(colInterestRate))
	raw.OriginationDate = parseDate(row.Get(colOrigDate))
	raw.MaturityDate = parseDate(row.Get(colMaturityDate))
	raw.NextDueDate = parseDate(row.Get(colNextDueDate))
	raw.DelinquencyRaw = strings.TrimSpace(row.Get(colDelinquency))
	if lien, err := strconv.Atoi(strings.TrimSpace(row.Get(colLienPosition))); err == nil && lien > 0 {
		raw.LienPosition = lien
	}
	raw.PropertyStreet = strings.TrimSpace(row.Get(colPropStreet))
	raw.PropertyCity = strings.TrimSpace(row.Get(colPropCity))
	raw.PropertyState = strings.ToUpper(strings.TrimSpace(row.Get(colPropState)))
	raw.PropertyZip = strings.TrimSpace(row.Get(colPropZip))
	raw.PropertyType = strings.TrimSpace(row.Get(colPropType))
	raw.Occupancy = strings.TrimSpace(row.Get(colOccupancy))
	raw.SellerAsIsValue = parseDecimal(row.Get(colAsIsValue))
	raw.SellerARVValue = parseDecimal(row.Get(colARVValue))

	return raw, nil
}

// GetImport retrieves one import run
func (s *TapeImportService) GetImport(ctx context.Context, importID uuid.UUID) (*TapeImportResponse, error) {
	imp, err := s.importRepo.FindByID(ctx, importID)
	if err != nil {
		return nil, err
	}
	response := ToTapeImportResponse(imp)
	return &response, nil
}

// ListImports lists import runs for a trade
func (s *TapeImportService) ListImports(ctx context.Context, tradeID uuid.UUID, filter shared.Filter) ([]TapeImportResponse, error) {
	imps, err := s.importRepo.FindByTrade(ctx, tradeID, filter)
	if err != nil {
		return nil, err
	}
	out := make([]TapeImportResponse, len(imps))
	for i := range imps {
		out[i] = ToTapeImportResponse(&imps[i])
	}
	return out, nil
}

// PopulationSummary rolls up a trade's landed population
func (s *TapeImportService) PopulationSummary(ctx context.Context, tradeID uuid.UUID) (*PopulationSummaryResponse, error) {
	summary, err := s.rawRepo.SumUPBByTrade(ctx, tradeID)
	if err != nil {
		return nil, err
	}
	return &PopulationSummaryResponse{
		LoanCount:     summary.LoanCount,
		TotalUPB:      summary.TotalUPB,
		TotalAsIs:     summary.TotalAsIs,
		TotalARV:      summary.TotalARV,
		BoardedCount:  summary.BoardedCount,
		RejectedCount: summary.RejectedCount,
	}, nil
}

// RejectRow drops a landed row from the trade population
func (s *TapeImportService) RejectRow(ctx context.Context, rowID uuid.UUID) (*RawDataResponse, error) {
	row, err := s.rawRepo.FindByID(ctx, rowID)
	if err != nil {
		return nil, err
	}
	if err := row.Reject(); err != nil {
		return nil, err
	}
	if err := s.rawRepo.Save(ctx, row); err != nil {
		return nil, err
	}
	response := ToRawDataResponse(row)
	return &response, nil
}

func (s *TapeImportService) failImport(ctx context.Context, imp *seller.TapeImport, reason string) (*TapeImportResponse, error) {
	imp.Fail(reason)
	if err := s.importRepo.Save(ctx, imp); err != nil {
		return nil, err
	}
	response := ToTapeImportResponse(imp)
	return &response, nil
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
	t, err := time.Parse(tapeDateFormat, v)
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
