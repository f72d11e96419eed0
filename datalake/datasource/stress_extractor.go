package datasource

import (
	"regexp"
	"strings"
)

// stressPattern matches "stress_test_logs" optionally followed by a run suffix.
var stressPattern = regexp.MustCompile(`stress_test_logs(?:[_-]([a-z0-9]+))?`)

// StressExtractor extracts info for stress-test logs.
type StressExtractor struct{}

// NewStressExtractor creates a new StressExtractor.
func NewStressExtractor() *StressExtractor {
	return &StressExtractor{}
}

// ExtractInfo recognises "stress_test_logs[_<run>].csv".
func (e *StressExtractor) ExtractInfo(filename string) (*SourceInfo, error) {
	lowerFileName := strings.ToLower(filename)

	matches := stressPattern.FindStringSubmatch(lowerFileName)
	if matches == nil {
		return nil, ErrUnableToExtractInfo
	}

	return &SourceInfo{
		DataSource: string(Stress),
		RunID:      matches[1],
	}, nil
}
