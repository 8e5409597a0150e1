package service

import (
	"context"
	"imagefilter/internal/core/domain"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
)

type mockRemover struct {
	mutex   sync.Mutex
	removed []string
}

func (m *mockRemover) RemoveFiles(paths ...string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.removed = append(m.removed, paths...)
}

func (m *mockRemover) Removed() []string {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return append([]string(nil), m.removed...)
}

type MockMetrics struct{ mock.Mock }

func (m *MockMetrics) RecordRequest(outcome domain.Outcome) {
	m.Called(outcome)
}

func (m *MockMetrics) RecordFilter(backend string, duration time.Duration, err error) {
	m.Called(backend, duration, err)
}

func (m *MockMetrics) RecordCleanup(err error) {
	m.Called(err)
}

func (m *MockMetrics) SetLiveArtifacts(n int) {
	m.Called(n)
}

type MockFilter struct{ mock.Mock }

func (m *MockFilter) FilterFromURL(ctx context.Context, imageURL string) (domain.Artifact, error) {
	args := m.Called(ctx, imageURL)
	return args.Get(0).(domain.Artifact), args.Error(1)
}

func artifactFixture() domain.Artifact {
	return domain.Artifact{Path: "/tmp/filtered.jpg", ContentType: domain.ContentTypeJPEG, Size: 42}
}
