package datasource

import (
	"errors"
)

// SourceInfo holds the extracted data source and run identifier.
type SourceInfo struct {
	DataSource string
	RunID      string
}

// InfoExtractor defines the interface for extracting source information from a filename.
type InfoExtractor interface {
	ExtractInfo(filename string) (*SourceInfo, error)
}

// ErrUnableToExtractInfo is returned when the extractor cannot parse the filename.
var ErrUnableToExtractInfo = errors.New("unable to extract source info from filename")

// ChainExtractor tries each extractor in order and returns the first match.
type ChainExtractor struct {
	extractors []InfoExtractor
}

// NewChainExtractor creates a ChainExtractor over extractors.
func NewChainExtractor(extractors ...InfoExtractor) *ChainExtractor {
	return &ChainExtractor{extractors: extractors}
}

// NewDefaultExtractor recognises stress logs, then baseline logs.
func NewDefaultExtractor() *ChainExtractor {
	return NewChainExtractor(NewStressExtractor(), NewBaselineExtractor())
}

// ExtractInfo returns the result of the first extractor that recognises filename.
func (e *ChainExtractor) ExtractInfo(filename string) (*SourceInfo, error) {
	for _, extractor := range e.extractors {
		info, err := extractor.ExtractInfo(filename)
		if err == nil {
			return info, nil
		}
		if !errors.Is(err, ErrUnableToExtractInfo) {
			return nil, err
		}
	}
	return nil, ErrUnableToExtractInfo
}
