package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/rxtech-lab/argo-threshold/internal/logger"
	"github.com/rxtech-lab/argo-threshold/internal/types"
	"github.com/rxtech-lab/argo-threshold/pkg/errors"
	"go.uber.org/zap"
)

const resultsTable = "backtest_results"

var resultColumns = []string{
	"id", "ticker", "indicator", "normalization", "start_date", "end_date",
	"cagr", "sharpe", "max_drawdown", "win_rate", "number_of_trades",
	"equity_curve", "indicator_values", "trades", "created_at",
}

// DuckDBStore keeps results in a DuckDB database file. An empty path keeps them in memory.
type DuckDBStore struct {
	db  *sql.DB
	log *logger.Logger
	sq  squirrel.StatementBuilderType
}

// NewDuckDBStore opens the database at path and creates the results table.
func NewDuckDBStore(path string, log *logger.Logger) (*DuckDBStore, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeDataSourceUnavailable, err, "failed to open result store %q", path)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS backtest_results (
			id TEXT PRIMARY KEY,
			ticker TEXT NOT NULL,
			indicator TEXT NOT NULL,
			normalization TEXT NOT NULL,
			start_date TEXT NOT NULL,
			end_date TEXT NOT NULL,
			cagr DOUBLE NOT NULL,
			sharpe DOUBLE NOT NULL,
			max_drawdown DOUBLE NOT NULL,
			win_rate DOUBLE NOT NULL,
			number_of_trades INTEGER NOT NULL,
			equity_curve TEXT NOT NULL,
			indicator_values TEXT NOT NULL,
			trades TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		db.Close()

		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to create results table", err)
	}

	log.Debug("Result store opened", zap.String("path", path))

	return &DuckDBStore{
		db:  db,
		log: log,
		sq:  squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}, nil
}

// Save implements ResultStore.
func (s *DuckDBStore) Save(ctx context.Context, result types.BacktestResult) error {
	if result.ID == "" {
		return errors.New(errors.ErrCodeMissingParameter, "result has no id")
	}

	equityCurve, err := json.Marshal(result.EquityCurve)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStoreWriteFailed, "failed to encode equity curve", err)
	}

	indicatorValues, err := json.Marshal(result.IndicatorValues)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStoreWriteFailed, "failed to encode indicator values", err)
	}

	trades := result.Trades
	if trades == nil {
		trades = []types.Trade{}
	}

	tradesJSON, err := json.Marshal(trades)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStoreWriteFailed, "failed to encode trades", err)
	}

	createdAt := result.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	query, args, err := s.sq.Insert(resultsTable).
		Columns(resultColumns...).
		Values(
			result.ID, result.Ticker, string(result.Indicator), result.Normalization, result.StartDate, result.EndDate,
			result.Cagr, result.Sharpe, result.MaxDrawdown, result.WinRate, result.NumberOfTrades,
			string(equityCurve), string(indicatorValues), string(tradesJSON), createdAt.UTC(),
		).
		ToSql()
	if err != nil {
		return errors.Wrap(errors.ErrCodeStoreWriteFailed, "failed to build insert", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return errors.Wrapf(errors.ErrCodeStoreWriteFailed, err, "failed to save result %s", result.ID)
	}

	s.log.Debug("Result saved", zap.String("id", result.ID), zap.String("ticker", result.Ticker))

	return nil
}

// ListRecent implements ResultStore.
func (s *DuckDBStore) ListRecent(ctx context.Context, limit int) ([]types.BacktestResult, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	query, args, err := s.sq.Select(resultColumns...).
		From(resultsTable).
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build query", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to list results", err)
	}
	defer rows.Close()

	results := make([]types.BacktestResult, 0)

	for rows.Next() {
		result, err := scanResult(rows)
		if err != nil {
			return nil, err
		}

		results = append(results, result)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to read results", err)
	}

	return results, nil
}

// Get implements ResultStore.
func (s *DuckDBStore) Get(ctx context.Context, id string) (types.BacktestResult, error) {
	query, args, err := s.sq.Select(resultColumns...).
		From(resultsTable).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return types.BacktestResult{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build query", err)
	}

	result, err := scanResult(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.BacktestResult{}, errors.Newf(errors.ErrCodeDataNotFound, "result %s not found", id)
		}

		return types.BacktestResult{}, err
	}

	return result, nil
}

// Close implements ResultStore.
func (s *DuckDBStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResult(row rowScanner) (types.BacktestResult, error) {
	var (
		result                               types.BacktestResult
		indicator                            string
		equityCurve, indicatorValues, trades string
	)

	err := row.Scan(
		&result.ID, &result.Ticker, &indicator, &result.Normalization, &result.StartDate, &result.EndDate,
		&result.Cagr, &result.Sharpe, &result.MaxDrawdown, &result.WinRate, &result.NumberOfTrades,
		&equityCurve, &indicatorValues, &trades, &result.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.BacktestResult{}, err
		}

		return types.BacktestResult{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan result", err)
	}

	result.Indicator = types.IndicatorType(indicator)

	if err := json.Unmarshal([]byte(equityCurve), &result.EquityCurve); err != nil {
		return types.BacktestResult{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to decode equity curve", err)
	}

	if err := json.Unmarshal([]byte(indicatorValues), &result.IndicatorValues); err != nil {
		return types.BacktestResult{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to decode indicator values", err)
	}

	if err := json.Unmarshal([]byte(trades), &result.Trades); err != nil {
		return types.BacktestResult{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to decode trades", err)
	}

	return result, nil
}
