package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-threshold/internal/backtest/engine"
	"github.com/rxtech-lab/argo-threshold/internal/store"
	"github.com/rxtech-lab/argo-threshold/internal/types"
	"github.com/rxtech-lab/argo-threshold/internal/version"
	"github.com/rxtech-lab/argo-threshold/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// maxListLimit caps the limit query parameter of get_past_runs.
const maxListLimit = 500

// RunBacktestRequest is the body of POST /api/run_backtest.
type RunBacktestRequest struct {
	Ticker    string `json:"ticker" validate:"required"`
	Indicator string `json:"indicator" validate:"required"`
	// Normalization also accepts the "normalisation" spelling. Only the key is required;
	// an empty or unknown method runs on raw indicator values.
	Normalization *string  `json:"normalization"`
	Normalisation *string  `json:"normalisation"`
	StartDate     string   `json:"start_date" validate:"required"`
	EndDate       string   `json:"end_date" validate:"required"`
	BuyThreshold  *float64 `json:"buy_threshold,omitempty"`
	SellThreshold *float64 `json:"sell_threshold,omitempty"`
}

// ToRunParams converts the request into engine parameters.
func (r RunBacktestRequest) ToRunParams() engine.RunParams {
	normalization, _ := r.NormalizationMethod()

	return engine.RunParams{
		Ticker:        r.Ticker,
		Indicator:     r.Indicator,
		Normalization: normalization,
		StartDate:     r.StartDate,
		EndDate:       r.EndDate,
		BuyThreshold:  optionalThreshold(r.BuyThreshold),
		SellThreshold: optionalThreshold(r.SellThreshold),
	}
}

// NormalizationMethod returns the requested method and whether either key was sent.
func (r RunBacktestRequest) NormalizationMethod() (string, bool) {
	switch {
	case r.Normalization != nil:
		return *r.Normalization, true
	case r.Normalisation != nil:
		return *r.Normalisation, true
	default:
		return "", false
	}
}

func optionalThreshold(value *float64) optional.Option[float64] {
	if value == nil {
		return optional.None[float64]()
	}

	return optional.Some(*value)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": version.GetVersion()})
}

func (s *Server) handleRunBacktest(w http.ResponseWriter, r *http.Request) {
	var req RunBacktestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.ErrCodeInvalidParameter, "Invalid request body.")
		return
	}

	if _, ok := req.NormalizationMethod(); !ok {
		writeError(w, http.StatusBadRequest, errors.ErrCodeMissingParameter, "Missing required fields.")
		return
	}

	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, errors.ErrCodeMissingParameter, "Missing required fields.")
		return
	}

	result, err := s.engine.Run(r.Context(), req.ToRunParams(), engine.LifecycleCallbacks{})
	if err != nil {
		s.log.Warn("Backtest failed",
			zap.String("ticker", req.Ticker),
			zap.Error(err),
		)
		writeCodedError(w, err)

		return
	}

	record, err := result.ToRecord()
	if err == nil {
		err = types.RequireKeys(record, types.RequiredResultKeys...)
	}

	if err != nil {
		s.log.Error("Backtest result is incomplete", zap.String("run_id", result.ID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, errors.ErrCodeResultIncomplete, err.Error())

		return
	}

	if err := s.store.Save(r.Context(), result); err != nil {
		s.log.Error("Failed to save backtest result", zap.String("run_id", result.ID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, errors.ErrCodeStoreWriteFailed, "Internal server error saving result.")

		return
	}

	writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleGetPastRuns(w http.ResponseWriter, r *http.Request) {
	limit := store.DefaultListLimit

	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > maxListLimit {
			writeError(w, http.StatusBadRequest, errors.ErrCodeInvalidParameter, "limit must be between 1 and 500")
			return
		}

		limit = parsed
	}

	results, err := s.store.ListRecent(r.Context(), limit)
	if err != nil {
		s.log.Error("Failed to list past runs", zap.Error(err))
		writeCodedError(w, err)

		return
	}

	writeJSON(w, http.StatusOK, lo.Map(results, func(result types.BacktestResult, _ int) RunSummary {
		return NewRunSummary(result)
	}))
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	result, err := s.store.Get(r.Context(), id)
	if err != nil {
		writeCodedError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// RunSummary is one entry of GET /api/get_past_runs. Trades and indicator values are left out.
type RunSummary struct {
	ID             string    `json:"id"`
	Ticker         string    `json:"ticker"`
	Indicator      string    `json:"indicator"`
	Normalization  string    `json:"normalization"`
	StartDate      string    `json:"start_date"`
	EndDate        string    `json:"end_date"`
	Cagr           float64   `json:"cagr"`
	Sharpe         float64   `json:"sharpe"`
	MaxDrawdown    float64   `json:"max_drawdown"`
	WinRate        float64   `json:"win_rate"`
	NumberOfTrades int       `json:"number_of_trades"`
	EquityCurve    []float64 `json:"equity_curve"`
	CreatedAt      string    `json:"created_at"`
}

// CreatedAtLayout is the timestamp format of past runs.
const CreatedAtLayout = "2006-01-02 15:04:05"

func NewRunSummary(result types.BacktestResult) RunSummary {
	return RunSummary{
		ID:             result.ID,
		Ticker:         result.Ticker,
		Indicator:      string(result.Indicator),
		Normalization:  result.Normalization,
		StartDate:      result.StartDate,
		EndDate:        result.EndDate,
		Cagr:           result.Cagr,
		Sharpe:         result.Sharpe,
		MaxDrawdown:    result.MaxDrawdown,
		WinRate:        result.WinRate,
		NumberOfTrades: result.NumberOfTrades,
		EquityCurve:    result.EquityCurve,
		CreatedAt:      result.CreatedAt.UTC().Format(CreatedAtLayout),
	}
}
