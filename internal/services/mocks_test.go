package services_test

import (
	"context"
	"net/http"

	"github.com/stretchr/testify/mock"

	"github.com/getmentor/rating-api/internal/models"
)

// MockRatingStore is a mock implementation of repository.RatingStore
type MockRatingStore struct {
	mock.Mock
}

func (m *MockRatingStore) GetConsultation(ctx context.Context, consultationNo string) (*models.Consultation, error) {
	args := m.Called(ctx, consultationNo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Consultation), args.Error(1)
}

func (m *MockRatingStore) CreateRating(ctx context.Context, clientID string, submission *models.RatingSubmission) (string, error) {
	args := m.Called(ctx, clientID, submission)
	return args.String(0), args.Error(1)
}

// MockConsultationLookup is a mock implementation of services.ConsultationLookup
type MockConsultationLookup struct {
	mock.Mock
}

func (m *MockConsultationLookup) GetConsultation(ctx context.Context, consultationNo string) (*models.Consultation, error) {
	args := m.Called(ctx, consultationNo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Consultation), args.Error(1)
}

func (m *MockConsultationLookup) Invalidate(consultationNo string) {
	m.Called(consultationNo)
}

// MockHTTPClient is a mock implementation of httpclient.Client
type MockHTTPClient struct {
	mock.Mock
}

func (m *MockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	args := m.Called(req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*http.Response), args.Error(1)
}
