// Package generative fits a conditional tabular model on healthy transactions
// and samples realistic synthetic transactions from it.
//
// The model keeps, for every combination of the categorical columns
// (transaction_type, currency, status_code), its frequency and a quantile table
// of each numeric column (amount, latency_ms). Sampling picks a combination by
// frequency and draws numeric values by inverse-CDF interpolation.
package generative

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"sanket/monitor/datalake/model"

	"github.com/montanaflynn/stats"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
)

// FormatVersion is the serialization version written by Marshal.
const FormatVersion = 1

const defaultResolution = 100

// ErrNoTrainingData is returned when Train receives no rows.
var ErrNoTrainingData = errors.New("no training data")

// ErrUnsupportedFormat is returned for blobs written by an unknown format version.
var ErrUnsupportedFormat = errors.New("unsupported model format")

var errCorruptModel = errors.New("corrupt model")

// Options tunes training.
type Options struct {
	// Resolution is the number of quantile steps kept per numeric column.
	Resolution int
}

// DefaultOptions returns the default training options.
func DefaultOptions() Options {
	return Options{Resolution: defaultResolution}
}

// Column summarises the distribution of one numeric column.
type Column struct {
	Quantiles []float64 `bson:"quantiles"`
	Mean      float64   `bson:"mean"`
	StdDev    float64   `bson:"std_dev"`
	Min       float64   `bson:"min"`
	Max       float64   `bson:"max"`
}

// Segment is one combination of categorical values.
type Segment struct {
	Category   string `bson:"category"`
	Currency   string `bson:"currency"`
	StatusCode int    `bson:"status_code"`
	Weight     int    `bson:"weight"`
	Amount     Column `bson:"amount"`
	Latency    Column `bson:"latency"`
}

// Model is a trained generative model.
type Model struct {
	FormatVersion int       `bson:"format_version"`
	TrainedAt     time.Time `bson:"trained_at"`
	Rows          int       `bson:"rows"`
	Segments      []Segment `bson:"segments"`
}

type segmentKey struct {
	category model.Category
	currency string
	status   int
}

type segmentData struct {
	amounts   []float64
	latencies []float64
}

// Train fits a model on transactions. Identifiers are ignored.
func Train(transactions []model.Transaction, opts Options, now time.Time) (*Model, error) {
	if len(transactions) == 0 {
		return nil, ErrNoTrainingData
	}
	if opts.Resolution < 2 {
		opts.Resolution = defaultResolution
	}

	groups := make(map[segmentKey]*segmentData)
	for _, tx := range transactions {
		key := segmentKey{category: tx.Category, currency: tx.Currency, status: tx.StatusCode}
		data, ok := groups[key]
		if !ok {
			data = &segmentData{}
			groups[key] = data
		}
		data.amounts = append(data.amounts, tx.Amount.InexactFloat64())
		data.latencies = append(data.latencies, float64(tx.LatencyMs))
	}

	m := &Model{
		FormatVersion: FormatVersion,
		TrainedAt:     now.UTC(),
		Rows:          len(transactions),
		Segments:      make([]Segment, 0, len(groups)),
	}
	for key, data := range groups {
		amount, err := fitColumn(data.amounts, opts.Resolution)
		if err != nil {
			return nil, fmt.Errorf("fit amount for %s: %w", key.category, err)
		}
		latency, err := fitColumn(data.latencies, opts.Resolution)
		if err != nil {
			return nil, fmt.Errorf("fit latency for %s: %w", key.category, err)
		}

		m.Segments = append(m.Segments, Segment{
			Category:   key.category.String(),
			Currency:   key.currency,
			StatusCode: key.status,
			Weight:     len(data.amounts),
			Amount:     amount,
			Latency:    latency,
		})
	}

	sort.Slice(m.Segments, func(i, j int) bool {
		a, b := m.Segments[i], m.Segments[j]
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		if a.Currency != b.Currency {
			return a.Currency < b.Currency
		}
		return a.StatusCode < b.StatusCode
	})

	return m, nil
}

func fitColumn(values []float64, resolution int) (Column, error) {
	var col Column
	var err error

	if col.Min, err = stats.Min(values); err != nil {
		return Column{}, err
	}
	if col.Max, err = stats.Max(values); err != nil {
		return Column{}, err
	}
	if col.Mean, err = stats.Mean(values); err != nil {
		return Column{}, err
	}
	if col.StdDev, err = stats.StandardDeviation(values); err != nil {
		return Column{}, err
	}

	col.Quantiles = make([]float64, resolution+1)
	col.Quantiles[0] = col.Min
	for i := 1; i <= resolution; i++ {
		percent := float64(i) * 100 / float64(resolution)
		if col.Quantiles[i], err = stats.PercentileNearestRank(values, percent); err != nil {
			return Column{}, err
		}
	}
	return col, nil
}

// draw samples the column by linear interpolation between quantiles.
func (c Column) draw(rng *rand.Rand) float64 {
	last := len(c.Quantiles) - 1
	pos := rng.Float64() * float64(last)
	i := int(pos)
	if i >= last {
		return c.Quantiles[last]
	}
	frac := pos - float64(i)
	return c.Quantiles[i] + frac*(c.Quantiles[i+1]-c.Quantiles[i])
}

// Sample draws n transactions without identifiers.
func (m *Model) Sample(rng *rand.Rand, n int) []model.Transaction {
	totalWeight := 0
	cumulative := make([]int, len(m.Segments))
	for i, seg := range m.Segments {
		totalWeight += seg.Weight
		cumulative[i] = totalWeight
	}

	out := make([]model.Transaction, n)
	for i := range out {
		pick := rng.Intn(totalWeight)
		idx := sort.SearchInts(cumulative, pick+1)
		seg := m.Segments[idx]

		out[i] = model.Transaction{
			Category:   model.Category(seg.Category),
			Amount:     decimal.NewFromFloat(seg.Amount.draw(rng)).Round(2),
			LatencyMs:  int(math.Round(seg.Latency.draw(rng))),
			Currency:   seg.Currency,
			StatusCode: seg.StatusCode,
		}
	}
	return out
}

// validate checks the invariants Sample relies on.
func (m *Model) validate() error {
	if len(m.Segments) == 0 {
		return fmt.Errorf("%w: no segments", errCorruptModel)
	}
	for _, seg := range m.Segments {
		if seg.Weight <= 0 {
			return fmt.Errorf("%w: segment %s has weight %d", errCorruptModel, seg.Category, seg.Weight)
		}
		if len(seg.Amount.Quantiles) < 2 || len(seg.Latency.Quantiles) < 2 {
			return fmt.Errorf("%w: segment %s has no quantile table", errCorruptModel, seg.Category)
		}
	}
	return nil
}

// Marshal serializes the model as a BSON document.
func Marshal(m *Model) ([]byte, error) {
	data, err := bson.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal model: %w", err)
	}
	return data, nil
}

// Unmarshal decodes a model written by Marshal.
func Unmarshal(data []byte) (*Model, error) {
	var m Model
	if err := bson.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal model: %w", err)
	}
	if m.FormatVersion != FormatVersion {
		return nil, fmt.Errorf("%w: version %d", ErrUnsupportedFormat, m.FormatVersion)
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}
