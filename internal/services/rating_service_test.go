package services_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/getmentor/rating-api/internal/models"
	"github.com/getmentor/rating-api/internal/services"
	apperrors "github.com/getmentor/rating-api/pkg/errors"
)

func TestRatingService_CheckRating(t *testing.T) {
	tests := map[string]struct {
		consultation *models.Consultation
		lookupErr    error
		clientID     string
		wantErr      error
		wantSubmit   bool
	}{
		"eligible": {
			consultation: consultation(models.ConsultationStatusCompleted, false),
			clientID:     "client-1",
			wantSubmit:   true,
		},
		"already rated": {
			consultation: consultation(models.ConsultationStatusCompleted, true),
			clientID:     "client-1",
		},
		"not completed": {
			consultation: consultation(models.ConsultationStatusInProgress, false),
			clientID:     "client-1",
		},
		"other client": {
			consultation: consultation(models.ConsultationStatusCompleted, false),
			clientID:     "client-2",
			wantErr:      services.ErrConsultationForbidden,
		},
		"unknown consultation": {
			lookupErr: apperrors.NotFoundError("consultation"),
			clientID:  "client-1",
			wantErr:   services.ErrConsultationNotFound,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			lookup := new(MockConsultationLookup)
			if tt.lookupErr != nil {
				lookup.On("GetConsultation", mock.Anything, "C-1").Return(nil, tt.lookupErr).Once()
			} else {
				lookup.On("GetConsultation", mock.Anything, "C-1").Return(tt.consultation, nil).Once()
			}

			service := services.NewRatingService(new(MockRatingStore), lookup, testConfig(""), new(MockHTTPClient))
			resp, err := service.CheckRating(context.Background(), tt.clientID, "C-1")

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, resp)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSubmit, resp.CanSubmit)
			assert.Equal(t, "Dr. Lin", resp.AdvisorName)
			if tt.wantSubmit {
				assert.Empty(t, resp.Error)
			} else {
				assert.NotEmpty(t, resp.Error)
			}
			lookup.AssertExpectations(t)
		})
	}
}

func TestRatingService_CheckRating_StoreFailure(t *testing.T) {
	lookup := new(MockConsultationLookup)
	lookup.On("GetConsultation", mock.Anything, "C-1").Return(nil, errors.New("connection refused")).Once()

	service := services.NewRatingService(new(MockRatingStore), lookup, testConfig(""), new(MockHTTPClient))
	_, err := service.CheckRating(context.Background(), "client-1", "C-1")

	require.Error(t, err)
	assert.NotErrorIs(t, err, services.ErrConsultationNotFound)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestRatingService_SubmitRating_Success(t *testing.T) {
	comment := "讲解清晰"
	sub := submission(t, 4, &comment)

	store := new(MockRatingStore)
	store.On("GetConsultation", mock.Anything, "C-1").Return(consultation(models.ConsultationStatusCompleted, false), nil).Once()
	store.On("CreateRating", mock.Anything, "client-1", sub).Return("rating-1", nil).Once()

	lookup := new(MockConsultationLookup)
	lookup.On("Invalidate", "C-1").Once()

	service := services.NewRatingService(store, lookup, testConfig(""), new(MockHTTPClient))
	resp, err := service.SubmitRating(context.Background(), "client-1", sub)

	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "rating-1", resp.RatingID)
	store.AssertExpectations(t)
	lookup.AssertExpectations(t)
}

func TestRatingService_SubmitRating_ForwardsValuesUnchanged(t *testing.T) {
	comment := "  keeps surrounding whitespace  "
	sub := submission(t, 1, &comment)

	store := new(MockRatingStore)
	store.On("GetConsultation", mock.Anything, "C-1").Return(consultation(models.ConsultationStatusCompleted, false), nil).Once()
	store.On("CreateRating", mock.Anything, "client-1", mock.MatchedBy(func(s *models.RatingSubmission) bool {
		text, ok := s.Comment()
		return ok && text == comment && s.Score() == 1 && s.ConsultationNo() == "C-1"
	})).Return("rating-1", nil).Once()

	lookup := new(MockConsultationLookup)
	lookup.On("Invalidate", "C-1").Once()

	service := services.NewRatingService(store, lookup, testConfig(""), new(MockHTTPClient))
	_, err := service.SubmitRating(context.Background(), "client-1", sub)

	require.NoError(t, err)
	store.AssertExpectations(t)
}

func TestRatingService_SubmitRating_Ineligible(t *testing.T) {
	tests := map[string]struct {
		consultation *models.Consultation
		lookupErr    error
		clientID     string
		wantErr      error
	}{
		"unknown consultation": {
			lookupErr: apperrors.NotFoundError("consultation"),
			clientID:  "client-1",
			wantErr:   services.ErrConsultationNotFound,
		},
		"other client": {
			consultation: consultation(models.ConsultationStatusCompleted, false),
			clientID:     "client-2",
			wantErr:      services.ErrConsultationForbidden,
		},
		"scheduled": {
			consultation: consultation(models.ConsultationStatusScheduled, false),
			clientID:     "client-1",
			wantErr:      services.ErrConsultationNotCompleted,
		},
		"cancelled": {
			consultation: consultation(models.ConsultationStatusCancelled, false),
			clientID:     "client-1",
			wantErr:      services.ErrConsultationNotCompleted,
		},
		"already rated": {
			consultation: consultation(models.ConsultationStatusCompleted, true),
			clientID:     "client-1",
			wantErr:      services.ErrRatingAlreadyExists,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			store := new(MockRatingStore)
			if tt.lookupErr != nil {
				store.On("GetConsultation", mock.Anything, "C-1").Return(nil, tt.lookupErr).Once()
			} else {
				store.On("GetConsultation", mock.Anything, "C-1").Return(tt.consultation, nil).Once()
			}

			service := services.NewRatingService(store, new(MockConsultationLookup), testConfig(""), new(MockHTTPClient))
			resp, err := service.SubmitRating(context.Background(), tt.clientID, submission(t, 5, nil))

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, resp)
			store.AssertNotCalled(t, "CreateRating", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestRatingService_SubmitRating_ConcurrentDuplicate(t *testing.T) {
	sub := submission(t, 3, nil)

	store := new(MockRatingStore)
	store.On("GetConsultation", mock.Anything, "C-1").Return(consultation(models.ConsultationStatusCompleted, false), nil).Once()
	store.On("CreateRating", mock.Anything, "client-1", sub).Return("", apperrors.ConflictError("duplicate")).Once()

	lookup := new(MockConsultationLookup)
	lookup.On("Invalidate", "C-1").Once()

	service := services.NewRatingService(store, lookup, testConfig(""), new(MockHTTPClient))
	_, err := service.SubmitRating(context.Background(), "client-1", sub)

	assert.ErrorIs(t, err, services.ErrRatingAlreadyExists)
	lookup.AssertExpectations(t)
}

func TestRatingService_SubmitRating_StoreFailure(t *testing.T) {
	sub := submission(t, 3, nil)

	store := new(MockRatingStore)
	store.On("GetConsultation", mock.Anything, "C-1").Return(consultation(models.ConsultationStatusCompleted, false), nil).Once()
	store.On("CreateRating", mock.Anything, "client-1", sub).Return("", errors.New("disk full")).Once()

	lookup := new(MockConsultationLookup)

	service := services.NewRatingService(store, lookup, testConfig(""), new(MockHTTPClient))
	_, err := service.SubmitRating(context.Background(), "client-1", sub)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	lookup.AssertNotCalled(t, "Invalidate", mock.Anything)
}

func TestRatingService_SubmitRating_FiresTrigger(t *testing.T) {
	sub := submission(t, 5, nil)

	store := new(MockRatingStore)
	store.On("GetConsultation", mock.Anything, "C-1").Return(consultation(models.ConsultationStatusCompleted, false), nil).Once()
	store.On("CreateRating", mock.Anything, "client-1", sub).Return("rating-9", nil).Once()

	lookup := new(MockConsultationLookup)
	lookup.On("Invalidate", "C-1").Once()

	called := make(chan *http.Request, 1)
	httpClient := new(MockHTTPClient)
	httpClient.On("Do", mock.AnythingOfType("*http.Request")).
		Run(func(args mock.Arguments) { called <- args.Get(0).(*http.Request) }).
		Return(&http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader(""))}, nil).Once()

	service := services.NewRatingService(store, lookup, testConfig("https://hooks.example/rating-created"), httpClient)
	_, err := service.SubmitRating(context.Background(), "client-1", sub)
	require.NoError(t, err)

	select {
	case req := <-called:
		assert.Equal(t, http.MethodPost, req.Method)
		assert.Equal(t, "https://hooks.example/rating-created", req.URL.String())
	case <-time.After(5 * time.Second):
		t.Fatal("trigger was not called")
	}
}

func TestRatingService_SubmitRating_NilSubmission(t *testing.T) {
	store := new(MockRatingStore)

	service := services.NewRatingService(store, new(MockConsultationLookup), testConfig(""), new(MockHTTPClient))
	_, err := service.SubmitRating(context.Background(), "client-1", nil)

	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	store.AssertNotCalled(t, "GetConsultation", mock.Anything, mock.Anything)
}

func TestRatingService_ErrorCategories(t *testing.T) {
	assert.ErrorIs(t, services.ErrConsultationNotFound, apperrors.ErrNotFound)
	assert.ErrorIs(t, services.ErrConsultationForbidden, apperrors.ErrAccessDenied)
	assert.ErrorIs(t, services.ErrConsultationNotCompleted, apperrors.ErrConflict)
	assert.ErrorIs(t, services.ErrRatingAlreadyExists, apperrors.ErrConflict)
	assert.NotErrorIs(t, services.ErrRatingAlreadyExists, services.ErrConsultationNotCompleted)
}
