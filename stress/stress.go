// Package stress turns samples of the generative model into a stress-test log by
// overwriting random subsets of rows with latency spikes, negative amounts and
// server errors.
package stress

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"

	"sanket/monitor/artifact"
	"sanket/monitor/config"
	"sanket/monitor/datalake/model"
	"sanket/monitor/generative"

	"github.com/shopspring/decimal"
)

// DefaultIDPrefix prefixes the identifiers of stress rows.
const DefaultIDPrefix = "SYN-"

const stressDataSource = "stress"

var errInvalidPlan = errors.New("invalid stress plan")

// InvalidPlanError reports a fraction outside [0,1].
func InvalidPlanError(name string, fraction float64) error {
	return fmt.Errorf("%w: %s fraction %v not in [0,1]", errInvalidPlan, name, fraction)
}

// Plan describes the three stressors.
type Plan struct {
	LatencyFraction float64
	LatencyValue    int
	AmountFraction  float64
	AmountValue     decimal.Decimal
	StatusFraction  float64
	StatusValue     int
}

// DefaultPlan returns the standard stress mix: 5% latency spikes to 5000 ms, 2%
// amounts forced to -100 and 3% statuses forced to 500.
func DefaultPlan() Plan {
	return Plan{
		LatencyFraction: 0.05,
		LatencyValue:    5000,
		AmountFraction:  0.02,
		AmountValue:     decimal.NewFromInt(-100),
		StatusFraction:  0.03,
		StatusValue:     model.ErrorStatusCode,
	}
}

// PlanFromConfig builds a plan from the stress configuration.
func PlanFromConfig(cfg config.StressConfig) Plan {
	return Plan{
		LatencyFraction: cfg.LatencyFraction,
		LatencyValue:    cfg.LatencyValue,
		AmountFraction:  cfg.AmountFraction,
		AmountValue:     decimal.NewFromFloat(cfg.AmountValue),
		StatusFraction:  cfg.StatusFraction,
		StatusValue:     cfg.StatusValue,
	}
}

// Validate checks that every fraction lies in [0,1].
func (p Plan) Validate() error {
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"latency", p.LatencyFraction},
		{"amount", p.AmountFraction},
		{"status", p.StatusFraction},
	} {
		if math.IsNaN(f.value) || f.value < 0 || f.value > 1 {
			return InvalidPlanError(f.name, f.value)
		}
	}
	return nil
}

// Outcome counts the rows touched by each stressor. The subsets may overlap.
type Outcome struct {
	LatencySpikes int
	AmountLeaks   int
	ServerErrors  int
}

// SubsetSize is the number of rows a stressor touches: fraction*n rounded half to even.
func SubsetSize(fraction float64, n int) int {
	size := int(math.RoundToEven(fraction * float64(n)))
	if size > n {
		return n
	}
	return size
}

// pick chooses size distinct row indexes.
func pick(rng *rand.Rand, n, size int) []int {
	return rng.Perm(n)[:size]
}

// Inject applies the plan to txs in place. Each stressor draws its own subset.
func Inject(rng *rand.Rand, txs []model.Transaction, plan Plan) (Outcome, error) {
	if err := plan.Validate(); err != nil {
		return Outcome{}, err
	}

	n := len(txs)
	var out Outcome

	for _, i := range pick(rng, n, SubsetSize(plan.LatencyFraction, n)) {
		txs[i].LatencyMs = plan.LatencyValue
		out.LatencySpikes++
	}
	for _, i := range pick(rng, n, SubsetSize(plan.AmountFraction, n)) {
		txs[i].Amount = plan.AmountValue
		out.AmountLeaks++
	}
	for _, i := range pick(rng, n, SubsetSize(plan.StatusFraction, n)) {
		txs[i].StatusCode = plan.StatusValue
		out.ServerErrors++
	}

	return out, nil
}

// AssignIDs numbers the rows <prefix><i> and tags them with the stress data source.
func AssignIDs(txs []model.Transaction, prefix string) {
	for i := range txs {
		txs[i].ID = fmt.Sprintf("%s%d", prefix, i)
		txs[i].DataSource = stressDataSource
	}
}

// Generate loads the model stored under key, samples n rows, injects the plan and
// assigns identifiers.
func Generate(
	ctx context.Context,
	store artifact.Store,
	key artifact.Key,
	n int,
	plan Plan,
	idPrefix string,
	rng *rand.Rand,
) ([]model.Transaction, Outcome, artifact.Key, error) {
	if err := plan.Validate(); err != nil {
		return nil, Outcome{}, artifact.Key{}, err
	}

	resolved, m, err := generative.LoadModel(ctx, store, key)
	if err != nil {
		return nil, Outcome{}, artifact.Key{}, err
	}

	txs := m.Sample(rng, n)
	outcome, err := Inject(rng, txs, plan)
	if err != nil {
		return nil, Outcome{}, artifact.Key{}, err
	}
	AssignIDs(txs, idPrefix)

	return txs, outcome, resolved, nil
}
