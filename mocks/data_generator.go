package mocks

import (
	"fmt"
	"math"
	"math/rand"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/rxtech-lab/argo-trend/internal/types"
)

// GeneratedLines are the lines produced by ReadingGenerator.
var GeneratedLines = []types.LineName{
	"tenkan", "kijun", "senkou_a", "senkou_b",
	"adx", "plus_di", "minus_di",
	"vwap", "rsi",
}

// ReadingGenerator generates realistic per-step readings for testing and benchmarking.
type ReadingGenerator struct {
	rng *rand.Rand
}

// NewReadingGenerator creates a new ReadingGenerator with the given seed.
// Use a fixed seed for reproducible results in tests.
func NewReadingGenerator(seed int64) *ReadingGenerator {
	return &ReadingGenerator{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// GeneratorConfig configures how readings are generated.
type GeneratorConfig struct {
	// Symbol is the trading symbol (e.g., "AAPL", "SPY")
	Symbol string
	// StartTime is the beginning of the data series
	StartTime time.Time
	// Interval is the duration between each step
	Interval time.Duration
	// Count is the number of steps to generate
	Count int
	// InitialPrice is the starting price
	InitialPrice float64
	// Volatility controls price movement (0.01 = 1% per step)
	Volatility float64
	// Trend is the drift factor (-0.01 to 0.01 for bearish to bullish)
	Trend float64
	// VolumeBase is the average volume per step
	VolumeBase float64
	// VolumeVariance is the variance in volume (0.0 to 1.0)
	VolumeVariance float64
	// Warmup is the number of leading steps flagged as not ready
	Warmup int
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Symbol:         "TEST",
		StartTime:      time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC),
		Interval:       time.Minute,
		Count:          1000,
		InitialPrice:   100.0,
		Volatility:     0.002, // 0.2% per step
		Trend:          0.0,   // neutral
		VolumeBase:     10000,
		VolumeVariance: 0.3,
		Warmup:         52,
	}
}

// Generate creates readings for one symbol. Prices follow a geometric Brownian
// motion; the lines are simple rolling derivations of the generated prices so
// crosses and gate transitions occur naturally.
func (g *ReadingGenerator) Generate(config GeneratorConfig) []types.Reading {
	readings := make([]types.Reading, config.Count)
	closes := make([]float64, 0, config.Count)
	currentPrice := config.InitialPrice
	currentTime := config.StartTime

	var (
		plusDM, minusDM, adx, gain, loss float64
		cumPV, cumVolume                 float64
	)

	for i := 0; i < config.Count; i++ {
		// Using Box-Muller transform for normal distribution
		u1 := g.rng.Float64()
		u2 := g.rng.Float64()
		z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)

		drift := config.Trend / float64(config.Count)
		price := currentPrice * (1 + config.Volatility*z + drift)
		if price <= 0 {
			price = currentPrice * 0.99 // Prevent negative prices
		}

		// Volume with variance
		volumeVariation := 1.0 + (g.rng.Float64()*2-1)*config.VolumeVariance
		volume := config.VolumeBase * volumeVariation
		if volume < 0 {
			volume = config.VolumeBase * 0.1
		}

		move := price - currentPrice
		plusDM = smooth(plusDM, math.Max(move, 0), 14)
		minusDM = smooth(minusDM, math.Max(-move, 0), 14)
		gain = smooth(gain, math.Max(move, 0), 14)
		loss = smooth(loss, math.Max(-move, 0), 14)

		plusDI, minusDI := 0.0, 0.0
		if total := plusDM + minusDM; total > 0 {
			plusDI = 100 * plusDM / total
			minusDI = 100 * minusDM / total
			adx = smooth(adx, 100*math.Abs(plusDM-minusDM)/total, 14)
		}

		rsi := 50.0
		if gain+loss > 0 {
			rsi = 100 * gain / (gain + loss)
		}

		cumPV += price * volume
		cumVolume += volume
		closes = append(closes, price)

		tenkan := midpoint(closes, 9)
		kijun := midpoint(closes, 26)

		readings[i] = types.Reading{
			Time:   currentTime,
			Symbol: config.Symbol,
			Price:  roundToDecimals(price, 4),
			Volume: roundToDecimals(volume, 2),
			Lines: map[types.LineName]float64{
				"tenkan":   roundToDecimals(tenkan, 4),
				"kijun":    roundToDecimals(kijun, 4),
				"senkou_a": roundToDecimals((tenkan+kijun)/2, 4),
				"senkou_b": roundToDecimals(midpoint(closes, 52), 4),
				"adx":      roundToDecimals(adx, 4),
				"plus_di":  roundToDecimals(plusDI, 4),
				"minus_di": roundToDecimals(minusDI, 4),
				"vwap":     roundToDecimals(cumPV/cumVolume, 4),
				"rsi":      roundToDecimals(rsi, 4),
			},
			IndicatorsReady: i >= config.Warmup,
		}

		// Update for next iteration
		currentPrice = price
		currentTime = currentTime.Add(config.Interval)
	}

	return readings
}

// GenerateSteps generates readings for every symbol and groups them into one
// batch per step. Symbols keep the given order inside each batch.
func (g *ReadingGenerator) GenerateSteps(symbols []string, baseConfig GeneratorConfig) []types.StepBatch {
	batches := make([]types.StepBatch, baseConfig.Count)
	for i := range batches {
		batches[i].Time = baseConfig.StartTime.Add(time.Duration(i) * baseConfig.Interval)
	}

	for _, symbol := range symbols {
		config := baseConfig
		config.Symbol = symbol
		// Vary initial price and volatility slightly per symbol
		config.InitialPrice = baseConfig.InitialPrice * (0.8 + g.rng.Float64()*0.4)
		config.Volatility = baseConfig.Volatility * (0.8 + g.rng.Float64()*0.4)

		for i, reading := range g.Generate(config) {
			batches[i].Readings = append(batches[i].Readings, reading)
		}
	}

	return batches
}

// WriteCSV writes batches in the replay file layout read by the DuckDB reading source.
func WriteCSV(path string, batches []types.StepBatch) error {
	var b strings.Builder

	header := []string{"time", "symbol", "price", "volume", "holding", "ready"}
	for _, line := range GeneratedLines {
		header = append(header, string(line))
	}

	b.WriteString(strings.Join(header, ","))
	b.WriteString("\n")

	for _, batch := range batches {
		readings := append([]types.Reading(nil), batch.Readings...)
		sort.SliceStable(readings, func(i, j int) bool { return readings[i].Symbol < readings[j].Symbol })

		for _, r := range readings {
			fields := []string{
				r.Time.UTC().Format("2006-01-02 15:04:05"),
				r.Symbol,
				fmt.Sprintf("%g", r.Price),
				fmt.Sprintf("%g", r.Volume),
				fmt.Sprintf("%d", r.Holding),
				fmt.Sprintf("%t", r.IndicatorsReady),
			}

			for _, line := range GeneratedLines {
				fields = append(fields, fmt.Sprintf("%g", r.Lines[line]))
			}

			b.WriteString(strings.Join(fields, ","))
			b.WriteString("\n")
		}
	}

	return os.WriteFile(path, []byte(b.String()), 0644)
}

// smooth is a Wilder style running average.
func smooth(prev, value float64, period int) float64 {
	return prev + (value-prev)/float64(period)
}

// midpoint returns the mean of the highest and lowest of the last period values.
func midpoint(values []float64, period int) float64 {
	window := values[max(0, len(values)-period):]

	lo, hi := window[0], window[0]
	for _, v := range window[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	return (lo + hi) / 2
}

// roundToDecimals rounds a float64 to the specified number of decimal places.
func roundToDecimals(val float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(val*pow) / pow
}
