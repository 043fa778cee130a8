package provider

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/rxtech-lab/argo-threshold/internal/logger"
	"github.com/rxtech-lab/argo-threshold/internal/types"
	"github.com/rxtech-lab/argo-threshold/pkg/errors"
	"go.uber.org/zap"
)

// timeColumns are the accepted names of the bar timestamp column, in order of preference.
var timeColumns = []string{"time", "date", "timestamp"}

// FileProvider reads daily bars from a parquet or CSV file through DuckDB.
// Files written by the market data downloader can be read back directly.
type FileProvider struct {
	path string
	db   *sql.DB
	log  *logger.Logger
	sq   squirrel.StatementBuilderType
	mu   sync.Mutex
}

// NewFileProvider opens an in-memory DuckDB database and exposes path as the market_data view.
func NewFileProvider(path string, log *logger.Logger) (*FileProvider, error) {
	if path == "" {
		return nil, errors.New(errors.ErrCodeMissingParameter, "data path is required for the file provider")
	}

	if _, err := os.Stat(path); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeDataNotFound, err, "data file %s does not exist", path)
	}

	reader, err := fileReader(path)
	if err != nil {
		return nil, err
	}

	if log == nil {
		log = logger.NewNopLogger()
	}

	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to open DuckDB connection", err)
	}

	// Create a view from the file - using raw SQL as Squirrel doesn't support CREATE VIEW
	query := fmt.Sprintf(`CREATE VIEW market_data AS SELECT * FROM %s('%s');`, reader, strings.ReplaceAll(path, "'", "''"))
	if _, err := db.Exec(query); err != nil {
		db.Close()

		return nil, errors.Wrapf(errors.ErrCodeDataSourceUnavailable, err, "failed to read %s", path)
	}

	log.Debug("Initialized file provider", zap.String("path", path), zap.String("reader", reader))

	return &FileProvider{
		path: path,
		db:   db,
		log:  log,
		sq:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		mu:   sync.Mutex{},
	}, nil
}

func fileReader(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".parquet":
		return "read_parquet", nil
	case ".csv":
		return "read_csv_auto", nil
	default:
		return "", errors.Newf(errors.ErrCodeInvalidParameter, "unsupported data file type: %s", path)
	}
}

// Fetch implements Provider. Rows are filtered by symbol when the file has a symbol column.
func (f *FileProvider) Fetch(ctx context.Context, ticker string, start time.Time, end time.Time) ([]types.MarketData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	columns, err := f.columns(ctx)
	if err != nil {
		return nil, err
	}

	if !columns["close"] {
		return nil, errors.Newf(errors.ErrCodeMissingColumn, "%s has no close column", f.path)
	}

	timeColumn := ""

	for _, name := range timeColumns {
		if columns[name] {
			timeColumn = name

			break
		}
	}

	if timeColumn == "" {
		return nil, errors.Newf(errors.ErrCodeMissingColumn, "%s has no time column", f.path)
	}

	timeExpr := fmt.Sprintf("CAST(%s AS TIMESTAMP)", timeColumn)

	builder := f.sq.Select(
		timeExpr+" AS bar_time",
		optionalColumn(columns, "open"),
		optionalColumn(columns, "high"),
		optionalColumn(columns, "low"),
		"TRY_CAST(close AS DOUBLE) AS close",
		optionalColumn(columns, "volume"),
	).
		From("market_data").
		Where(squirrel.Expr(timeExpr+" >= ?", start)).
		Where(squirrel.Expr(timeExpr+" < ?", end.AddDate(0, 0, 1))).
		OrderBy("bar_time ASC")

	if columns["symbol"] {
		builder = builder.Where(squirrel.Eq{"symbol": ticker})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build query", err)
	}

	rows, err := f.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query market data", err)
	}
	defer rows.Close()

	data := make([]types.MarketData, 0)

	for rows.Next() {
		var (
			barTime                        time.Time
			open, high, low, close, volume sql.NullFloat64
		)

		if err := rows.Scan(&barTime, &open, &high, &low, &close, &volume); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan market data", err)
		}

		data = append(data, types.MarketData{
			Id:     "",
			Symbol: ticker,
			Time:   barTime,
			Open:   open.Float64,
			High:   high.Float64,
			Low:    low.Float64,
			Close:  nullToNaN(close),
			Volume: volume.Float64,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to read market data", err)
	}

	f.log.Debug("Fetched bars from file",
		zap.String("path", f.path),
		zap.String("ticker", ticker),
		zap.Int("bars", len(data)),
	)

	return data, nil
}

// Close releases the DuckDB connection.
func (f *FileProvider) Close() error {
	return f.db.Close()
}

func (f *FileProvider) columns(ctx context.Context) (map[string]bool, error) {
	query, args, err := f.sq.Select("column_name").
		From("information_schema.columns").
		Where(squirrel.Eq{"table_name": "market_data"}).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build column query", err)
	}

	rows, err := f.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to list columns", err)
	}
	defer rows.Close()

	columns := make(map[string]bool)

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan column name", err)
		}

		columns[strings.ToLower(name)] = true
	}

	return columns, rows.Err()
}

// optionalColumn selects name as a double, or NULL when the file lacks it.
func optionalColumn(columns map[string]bool, name string) string {
	if !columns[name] {
		return "NULL::DOUBLE AS " + name
	}

	return fmt.Sprintf("TRY_CAST(%s AS DOUBLE) AS %s", name, name)
}

// nullToNaN marks a missing close as undefined.
func nullToNaN(value sql.NullFloat64) float64 {
	if !value.Valid {
		return math.NaN()
	}

	return value.Float64
}
