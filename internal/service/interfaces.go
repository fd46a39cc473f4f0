package service

import (
	"github.com/tracewell/comm-forensics-service/internal/domain"
	"github.com/tracewell/comm-forensics-service/internal/ingest"
)

// EventNormalizer converts a raw source record into a domain event.
type EventNormalizer interface {
	Normalize(rec ingest.RawRecord) (domain.Event, error)
}

// AnalysisRunner defines the interface for running one analysis pass.
type AnalysisRunner interface {
	Run(records []ingest.RawRecord) (*Result, error)
}
