package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Input validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeMissingParameter     ErrorCode = 102
	ErrCodeInvalidDate          ErrorCode = 103
	ErrCodeInvalidDateRange     ErrorCode = 104
	ErrCodeInvalidThreshold     ErrorCode = 105
	ErrCodeInvalidPeriod        ErrorCode = 106
	ErrCodeInvalidPriceSeries   ErrorCode = 107
	ErrCodeInvalidProvider      ErrorCode = 108

	// Data/Resource errors (200-299)
	ErrCodeDataNotFound          ErrorCode = 200
	ErrCodeDataSourceUnavailable ErrorCode = 201
	ErrCodeQueryFailed           ErrorCode = 202
	ErrCodeMissingColumn         ErrorCode = 203
	ErrCodeStoreWriteFailed      ErrorCode = 204

	// Indicator errors (300-399)
	ErrCodeUnsupportedIndicator   ErrorCode = 300
	ErrCodeIndicatorAlreadyExists ErrorCode = 301
	ErrCodeIndicatorCalculation   ErrorCode = 302

	// Computation errors (600-699)
	ErrCodeEmptySeries      ErrorCode = 600
	ErrCodeSimulationFailed ErrorCode = 601
	ErrCodeMetricsFailed    ErrorCode = 602
	ErrCodeResultIncomplete ErrorCode = 603
	ErrCodeFrameMismatch    ErrorCode = 604

	// Market data errors (700-799)
	ErrCodeMarketDataFetchFailed ErrorCode = 700
	ErrCodeMarketDataWriteFailed ErrorCode = 701
	ErrCodeMarketDataParseFailed ErrorCode = 702
)

// IsInputValidation reports whether the code belongs to the input validation range.
func (c ErrorCode) IsInputValidation() bool {
	return c >= 100 && c < 200
}

// IsComputation reports whether the code describes a numeric failure of the core.
func (c ErrorCode) IsComputation() bool {
	return (c >= 600 && c < 700) || c == ErrCodeIndicatorCalculation
}
