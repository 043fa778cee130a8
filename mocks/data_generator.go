package mocks

import (
	"math"
	"math/rand"
	"time"

	"github.com/rxtech-lab/argo-threshold/internal/types"
)

// DataGenerator generates daily price series for tests.
type DataGenerator struct {
	rng *rand.Rand
}

// NewDataGenerator creates a new DataGenerator with the given seed.
// Use a fixed seed for reproducible results in tests.
func NewDataGenerator(seed int64) *DataGenerator {
	return &DataGenerator{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// GeneratorConfig configures how daily bars are generated.
type GeneratorConfig struct {
	// Symbol is the ticker (e.g., "AAPL", "SPY")
	Symbol string
	// StartDate is the date of the first bar
	StartDate time.Time
	// Days is the number of bars to generate
	Days int
	// InitialPrice is the first close
	InitialPrice float64
	// Volatility is the standard deviation of the daily return (0.01 = 1%)
	Volatility float64
	// Drift is the expected daily return
	Drift float64
	// VolumeBase is the average volume per bar
	VolumeBase float64
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Symbol:       "TEST",
		StartDate:    time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		Days:         250,
		InitialPrice: 100.0,
		Volatility:   0.015,
		Drift:        0.0003,
		VolumeBase:   1_000_000,
	}
}

// Generate creates one bar per calendar day following a geometric random walk.
func (g *DataGenerator) Generate(config GeneratorConfig) []types.MarketData {
	data := make([]types.MarketData, config.Days)
	price := config.InitialPrice

	for i := 0; i < config.Days; i++ {
		open := price

		// Box-Muller transform for a normal draw
		u1 := 1 - g.rng.Float64()
		u2 := g.rng.Float64()
		z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)

		closePrice := open * math.Exp(config.Drift+config.Volatility*z)
		spread := math.Abs(g.rng.Float64() * config.Volatility * open)

		data[i] = types.MarketData{
			Id:     "",
			Symbol: config.Symbol,
			Time:   config.StartDate.AddDate(0, 0, i),
			Open:   roundToDecimals(open, 4),
			High:   roundToDecimals(math.Max(open, closePrice)+spread, 4),
			Low:    roundToDecimals(math.Max(math.Min(open, closePrice)-spread, 0.0001), 4),
			Close:  roundToDecimals(closePrice, 4),
			Volume: roundToDecimals(config.VolumeBase*(0.5+g.rng.Float64()), 0),
		}

		price = closePrice
	}

	return data
}

// FromCloses builds daily bars with the given closes. Open, high and low equal the close.
func FromCloses(symbol string, start time.Time, closes []float64) []types.MarketData {
	data := make([]types.MarketData, len(closes))

	for i, c := range closes {
		data[i] = types.MarketData{
			Symbol: symbol,
			Time:   start.AddDate(0, 0, i),
			Open:   c,
			High:   c,
			Low:    c,
			Close:  c,
			Volume: 1000,
		}
	}

	return data
}

// ConstantCloses returns n bars with the same close.
func ConstantCloses(symbol string, start time.Time, n int, price float64) []types.MarketData {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = price
	}

	return FromCloses(symbol, start, closes)
}

// roundToDecimals rounds a float64 to the specified number of decimal places.
func roundToDecimals(val float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(val*pow) / pow
}
