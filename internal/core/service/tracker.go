package service

import (
	"context"
	"imagefilter/internal/core/port"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// ArtifactTracker keeps the set of artifacts currently owned by in-flight requests. Each one is removed
// exactly once.
type ArtifactTracker struct {
	artifacts map[string]time.Time
	maxAge    time.Duration
	interval  time.Duration
	mutex     *sync.Mutex
	remover   port.FileRemover
	metrics   port.MetricsCollector
	now       func() time.Time
}

func NewArtifactTracker(remover port.FileRemover, metrics port.MetricsCollector, interval,
	maxAge time.Duration) *ArtifactTracker {
	return &ArtifactTracker{
		artifacts: make(map[string]time.Time),
		maxAge:    maxAge,
		interval:  interval,
		mutex:     &sync.Mutex{},
		remover:   remover,
		metrics:   metrics,
		now:       time.Now,
	}
}

func (t *ArtifactTracker) Track(path string) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	t.artifacts[path] = t.now()
	t.reportLive()
}

func (t *ArtifactTracker) Release(path string) {
	t.mutex.Lock()
	_, ok := t.artifacts[path]
	if ok {
		delete(t.artifacts, path)
		t.reportLive()
	}
	t.mutex.Unlock()

	if !ok {
		log.Debug().Str("path", path).Msg("artifact already released")
		return
	}

	t.remover.RemoveFiles(path)
}

func (t *ArtifactTracker) Live() int {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	return len(t.artifacts)
}

// Sweep releases every artifact still tracked.
func (t *ArtifactTracker) Sweep() {
	t.releaseWhere(func(time.Time) bool { return true })
}

// RunJanitor periodically releases artifacts older than the configured maximum age until ctx is done.
func (t *ArtifactTracker) RunJanitor(ctx context.Context) {
	if t.interval <= 0 || t.maxAge <= 0 {
		log.Debug().Msg("artifact janitor disabled")
		return
	}

	for {
		select {
		case <-time.After(t.interval):
			t.releaseExpired()
		case <-ctx.Done():
			log.Debug().Msg("stopping artifact janitor")
			return
		}
	}
}

func (t *ArtifactTracker) releaseExpired() {
	deadline := t.now().Add(-t.maxAge)
	n := t.releaseWhere(func(created time.Time) bool { return created.Before(deadline) })
	if n > 0 {
		log.Warn().Int("count", n).Dur("maxAge", t.maxAge).Msg("released expired artifacts")
	}
}

func (t *ArtifactTracker) releaseWhere(match func(created time.Time) bool) int {
	t.mutex.Lock()
	var paths []string
	for path, created := range t.artifacts {
		if match(created) {
			paths = append(paths, path)
			delete(t.artifacts, path)
		}
	}
	if len(paths) > 0 {
		t.reportLive()
	}
	t.mutex.Unlock()

	if len(paths) == 0 {
		return 0
	}

	t.remover.RemoveFiles(paths...)

	return len(paths)
}

// reportLive publishes the current artifact count. The caller must hold the mutex.
func (t *ArtifactTracker) reportLive() {
	if t.metrics != nil {
		t.metrics.SetLiveArtifacts(len(t.artifacts))
	}
}
