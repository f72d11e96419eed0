package datasource

import (
	"strings"
)

// BaselineExtractor extracts info for baseline logs.
type BaselineExtractor struct{}

// NewBaselineExtractor creates a new BaselineExtractor.
func NewBaselineExtractor() *BaselineExtractor {
	return &BaselineExtractor{}
}

// ExtractInfo recognises filenames containing "normal_logs" or "baseline".
func (e *BaselineExtractor) ExtractInfo(filename string) (*SourceInfo, error) {
	lowerFileName := strings.ToLower(filename)

	if strings.Contains(lowerFileName, "normal_logs") || strings.Contains(lowerFileName, "baseline") {
		return &SourceInfo{
			DataSource: string(Baseline),
		}, nil
	}

	return nil, ErrUnableToExtractInfo
}
