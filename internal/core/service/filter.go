package service

import (
	"context"
	"imagefilter/internal/core/domain"
	"imagefilter/internal/core/port"
	"time"
)

// MeasuredFilter records the latency and result of every call to the wrapped filter.
type MeasuredFilter struct {
	next    port.ImageFilter
	backend string
	metrics port.MetricsCollector
}

func NewMeasuredFilter(next port.ImageFilter, backend string, metrics port.MetricsCollector) *MeasuredFilter {
	return &MeasuredFilter{next: next, backend: backend, metrics: metrics}
}

func (f *MeasuredFilter) FilterFromURL(ctx context.Context, imageURL string) (domain.Artifact, error) {
	start := time.Now()
	artifact, err := f.next.FilterFromURL(ctx, imageURL)
	f.metrics.RecordFilter(f.backend, time.Since(start), err)
	return artifact, err
}
