package port

import (
	"imagefilter/internal/core/domain"
	"time"
)

type MetricsCollector interface {
	RecordRequest(outcome domain.Outcome)
	RecordFilter(backend string, duration time.Duration, err error)
	RecordCleanup(err error)
	SetLiveArtifacts(n int)
}
