package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/studypals/studypals/internal/models"
)

// MockAnalyticsService is a mock implementation of services.AnalyticsService
type MockAnalyticsService struct {
	mock.Mock
}

func (m *MockAnalyticsService) GetAnalytics(ctx context.Context, userID string) (*models.StudyAnalytics, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StudyAnalytics), args.Error(1)
}

func (m *MockAnalyticsService) Recompute(ctx context.Context, userID string) (*models.StudyAnalytics, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StudyAnalytics), args.Error(1)
}

func (m *MockAnalyticsService) RecomputeAnalytics(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// ApplySession runs insert like the real service does. A failed insert returns
// its error without recording a call.
func (m *MockAnalyticsService) ApplySession(ctx context.Context, session models.StudySession, insert func(context.Context) error) (*models.StudyAnalytics, error) {
	if insert != nil {
		if err := insert(ctx); err != nil {
			return nil, err
		}
	}
	args := m.Called(ctx, session)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StudyAnalytics), args.Error(1)
}

func (m *MockAnalyticsService) GetInsights(ctx context.Context, userID string) (*models.Insights, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Insights), args.Error(1)
}
