package datasource

// DataSource represents the type of data source.
type DataSource string

const (
	// Baseline represents the healthy traffic the model is trained on.
	Baseline DataSource = "baseline"
	// Stress represents model samples with injected failures.
	Stress DataSource = "stress"
)
