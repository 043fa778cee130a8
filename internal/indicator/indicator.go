package indicator

import (
	"github.com/rxtech-lab/argo-threshold/internal/series"
	"github.com/rxtech-lab/argo-threshold/internal/types"
)

// Indicator interface defines methods that any technical indicator must implement
type Indicator interface {
	// Name returns the name of the indicator
	Name() types.IndicatorType
	// Config configures the indicator. The meaning of params depends on the indicator.
	Config(params ...any) error
	// Compute returns one value per close price. Entries inside the lookback window are undefined.
	Compute(closes []float64) (series.Series, error)
}

// Factory creates a fresh, unconfigured indicator.
type Factory func() Indicator
