package mocks

import (
	"context"
	"net/http"

	"github.com/story-catalog-api/internal/service"
)

// MockExportService is a mock implementation of ExportService
type MockExportService struct {
	StreamStoriesFunc func(ctx context.Context, w http.ResponseWriter, format string) error
	Counts            map[string]int
	CountErr          error
	Formats           []string
}

// Verify interface compliance
var _ service.ExportService = (*MockExportService)(nil)

func NewMockExportService() *MockExportService {
	return &MockExportService{
		Counts: map[string]int{
			"stories": 0,
			"genres":  0,
			"authors": 0,
		},
	}
}

func (m *MockExportService) StreamStories(ctx context.Context, w http.ResponseWriter, format string) error {
	m.Formats = append(m.Formats, format)
	if m.StreamStoriesFunc != nil {
		return m.StreamStoriesFunc(ctx, w, format)
	}
	return nil
}

func (m *MockExportService) GetCount(ctx context.Context, resource string) (int, error) {
	if m.CountErr != nil {
		return 0, m.CountErr
	}
	return m.Counts[resource], nil
}
