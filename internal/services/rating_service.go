package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/getmentor/rating-api/config"
	"github.com/getmentor/rating-api/internal/models"
	"github.com/getmentor/rating-api/internal/repository"
	apperrors "github.com/getmentor/rating-api/pkg/errors"
	"github.com/getmentor/rating-api/pkg/httpclient"
	"github.com/getmentor/rating-api/pkg/logger"
	"github.com/getmentor/rating-api/pkg/metrics"
	"github.com/getmentor/rating-api/pkg/tracing"
	"github.com/getmentor/rating-api/pkg/trigger"
)

// RatingCreatedEvent is the trigger event type sent after a rating is stored
const RatingCreatedEvent = "rating.created"

// Each sentinel wraps the pkg/errors category it belongs to
var (
	ErrConsultationNotFound     = apperrors.NotFoundError("consultation")
	ErrConsultationForbidden    = apperrors.AccessDeniedError("consultation belongs to another client")
	ErrConsultationNotCompleted = apperrors.ConflictError("consultation is not completed")
	ErrRatingAlreadyExists      = apperrors.ConflictError("rating already exists for this consultation")
)

// ConsultationLookup is a cached consultation source
type ConsultationLookup interface {
	repository.ConsultationSource
	Invalidate(consultationNo string)
}

// RatingService decides whether a client may rate a consultation and stores accepted ratings
type RatingService struct {
	store         repository.RatingStore
	consultations ConsultationLookup
	config        *config.Config
	httpClient    httpclient.Client
}

// NewRatingService creates a new rating service instance
func NewRatingService(store repository.RatingStore, consultations ConsultationLookup, cfg *config.Config, httpClient httpclient.Client) *RatingService {
	return &RatingService{
		store:         store,
		consultations: consultations,
		config:        cfg,
		httpClient:    httpClient,
	}
}

// CheckRating reports whether clientID can rate the consultation.
// Unknown and foreign consultations are errors; ineligible ones are a negative response.
func (s *RatingService) CheckRating(ctx context.Context, clientID, consultationNo string) (resp *models.RatingCheckResponse, err error) {
	ctx, span := tracing.StartSpan(ctx, "RatingService.CheckRating",
		attribute.String("consultation_no", consultationNo))
	defer func() { tracing.EndSpan(span, err) }()

	consultation, err := s.consultations.GetConsultation(ctx, consultationNo)
	if err != nil {
		err = lookupError(err)
		metrics.RatingChecks.WithLabelValues(outcome(err)).Inc()
		return nil, err
	}

	if err = eligibility(consultation, clientID); err != nil {
		if errors.Is(err, ErrConsultationForbidden) {
			metrics.RatingChecks.WithLabelValues(outcome(err)).Inc()
			logger.Warn("Rating check for foreign consultation",
				zap.String("consultation_no", consultationNo),
				zap.String("client_id", clientID))
			return nil, err
		}

		metrics.RatingChecks.WithLabelValues("ineligible").Inc()
		logger.Info("Rating check: not eligible",
			zap.String("consultation_no", consultationNo),
			zap.String("reason", err.Error()))
		return &models.RatingCheckResponse{
			CanSubmit:   false,
			AdvisorName: consultation.AdvisorName,
			Error:       checkMessage(err),
		}, nil
	}

	metrics.RatingChecks.WithLabelValues("eligible").Inc()
	logger.Info("Rating check: eligible",
		zap.String("consultation_no", consultationNo),
		zap.String("advisor_name", consultation.AdvisorName))

	return &models.RatingCheckResponse{
		CanSubmit:   true,
		AdvisorName: consultation.AdvisorName,
	}, nil
}

// SubmitRating stores a validated rating after re-checking eligibility against the database.
// The submission's values are persisted as-is.
func (s *RatingService) SubmitRating(ctx context.Context, clientID string, submission *models.RatingSubmission) (resp *models.SubmitRatingResponse, err error) {
	if submission == nil {
		metrics.RatingSubmissions.WithLabelValues("invalid").Inc()
		return nil, apperrors.InvalidInputError("submission", "a validated rating is required")
	}

	start := time.Now()
	consultationNo := submission.ConsultationNo()

	ctx, span := tracing.StartSpan(ctx, "RatingService.SubmitRating",
		attribute.String("consultation_no", consultationNo),
		attribute.Int("score", submission.Score()))
	defer func() { tracing.EndSpan(span, err) }()

	// The cache may lag behind a just-completed consultation, so eligibility reads the store
	consultation, err := s.store.GetConsultation(ctx, consultationNo)
	if err != nil {
		err = lookupError(err)
		metrics.RatingSubmissions.WithLabelValues(outcome(err)).Inc()
		return nil, err
	}

	if err = eligibility(consultation, clientID); err != nil {
		metrics.RatingSubmissions.WithLabelValues(outcome(err)).Inc()
		logger.Info("Rating rejected",
			zap.String("consultation_no", consultationNo),
			zap.String("client_id", clientID),
			zap.String("reason", err.Error()))
		return nil, err
	}

	ratingID, err := s.store.CreateRating(ctx, clientID, submission)
	if err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			// Lost a race with a concurrent submission
			s.consultations.Invalidate(consultationNo)
			err = ErrRatingAlreadyExists
			metrics.RatingSubmissions.WithLabelValues(outcome(err)).Inc()
			return nil, err
		}

		metrics.RatingSubmissions.WithLabelValues("db_error").Inc()
		logger.LogError(err, "Failed to create rating", zap.String("consultation_no", consultationNo))
		err = fmt.Errorf("failed to create rating: %w", err)
		return nil, err
	}

	s.consultations.Invalidate(consultationNo)

	trigger.CallAsync(s.config.EventTriggers.RatingCreatedTriggerURL, trigger.Event{
		Type:       RatingCreatedEvent,
		RecordID:   ratingID,
		OccurredAt: time.Now().UTC(),
		Data: map[string]any{
			"consultationNo": consultationNo,
			"score":          submission.Score(),
		},
	}, s.httpClient)

	metrics.RatingDuration.Observe(metrics.MeasureDuration(start))
	metrics.RatingSubmissions.WithLabelValues("success").Inc()
	metrics.RecordScore(submission.Score())
	logger.Info("Rating submitted successfully",
		zap.String("consultation_no", consultationNo),
		zap.String("rating_id", ratingID),
		zap.Int("score", submission.Score()),
		zap.Duration("duration", time.Since(start)))

	return &models.SubmitRatingResponse{
		Success:  true,
		RatingID: ratingID,
	}, nil
}

func eligibility(consultation *models.Consultation, clientID string) error {
	if consultation.CanBeRatedBy(clientID) {
		return nil
	}

	switch {
	case consultation.ClientID != clientID:
		return ErrConsultationForbidden
	case consultation.Status != models.ConsultationStatusCompleted:
		return ErrConsultationNotCompleted
	case consultation.Rated:
		return ErrRatingAlreadyExists
	}
	return nil
}

func lookupError(err error) error {
	if errors.Is(err, apperrors.ErrNotFound) {
		return ErrConsultationNotFound
	}
	logger.LogError(err, "Failed to look up consultation")
	return fmt.Errorf("failed to get consultation: %w", err)
}

// outcome is the metrics status label for err
func outcome(err error) string {
	switch {
	case errors.Is(err, ErrConsultationNotFound):
		return "not_found"
	case errors.Is(err, ErrConsultationForbidden):
		return "forbidden"
	case errors.Is(err, ErrConsultationNotCompleted):
		return "not_completed"
	case errors.Is(err, ErrRatingAlreadyExists):
		return "already_exists"
	default:
		return "error"
	}
}

func checkMessage(err error) string {
	if errors.Is(err, ErrRatingAlreadyExists) {
		return "This consultation has already been rated"
	}
	return "This consultation is not completed yet"
}
