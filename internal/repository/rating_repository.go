package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/getmentor/rating-api/internal/models"
	apperrors "github.com/getmentor/rating-api/pkg/errors"
	"github.com/getmentor/rating-api/pkg/logger"
	"github.com/getmentor/rating-api/pkg/metrics"
)

const uniqueViolationCode = "23505"

// RatingRepository handles consultation and rating data access
type RatingRepository struct {
	pool *pgxpool.Pool
}

// NewRatingRepository creates a new rating repository
func NewRatingRepository(pool *pgxpool.Pool) *RatingRepository {
	return &RatingRepository{
		pool: pool,
	}
}

// GetConsultation fetches a consultation together with whether it already has a rating
func (r *RatingRepository) GetConsultation(ctx context.Context, consultationNo string) (*models.Consultation, error) {
	const operation = "getConsultation"
	start := time.Now()

	query := `
		SELECT c.consultation_no, c.client_id, c.advisor_name, c.status, c.completed_at,
			EXISTS(SELECT 1 FROM consultation_ratings cr WHERE cr.consultation_no = c.consultation_no) AS rated
		FROM consultations c
		WHERE c.consultation_no = $1
	`

	var c models.Consultation
	var status string
	err := r.pool.QueryRow(ctx, query, consultationNo).Scan(
		&c.ConsultationNo, &c.ClientID, &c.AdvisorName, &status, &c.CompletedAt, &c.Rated,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			observe(operation, start, nil, zap.String("consultation_no", consultationNo), zap.Bool("found", false))
			return nil, apperrors.NotFoundError("consultation")
		}
		observe(operation, start, err, zap.String("consultation_no", consultationNo))
		return nil, fmt.Errorf("failed to get consultation: %w", err)
	}
	c.Status = models.ConsultationStatus(status)

	observe(operation, start, nil, zap.String("consultation_no", consultationNo), zap.Bool("found", true))
	return &c, nil
}

// CreateRating inserts a rating. The unique index on consultation_no rejects duplicates.
func (r *RatingRepository) CreateRating(ctx context.Context, clientID string, submission *models.RatingSubmission) (string, error) {
	const operation = "createRating"
	start := time.Now()

	query := `
		INSERT INTO consultation_ratings (consultation_no, client_id, score, comment)
		VALUES ($1, $2, $3, $4)
		RETURNING id::text
	`

	var comment *string
	if text, ok := submission.Comment(); ok {
		comment = &text
	}

	var ratingID string
	err := r.pool.QueryRow(ctx, query, submission.ConsultationNo(), clientID, submission.Score(), comment).Scan(&ratingID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			observe(operation, start, nil, zap.String("consultation_no", submission.ConsultationNo()), zap.Bool("duplicate", true))
			return "", apperrors.ConflictError("rating already exists for this consultation")
		}
		observe(operation, start, err, zap.String("consultation_no", submission.ConsultationNo()))
		return "", fmt.Errorf("failed to create rating: %w", err)
	}

	observe(operation, start, nil, zap.String("consultation_no", submission.ConsultationNo()), zap.String("rating_id", ratingID))
	return ratingID, nil
}

// Ping checks database connectivity
func (r *RatingRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func observe(operation string, start time.Time, err error, fields ...zap.Field) {
	duration := metrics.MeasureDuration(start)
	status := "success"
	if err != nil {
		status = "error"
		fields = append(fields, zap.Error(err))
	}

	metrics.DBOperationDuration.WithLabelValues(operation, status).Observe(duration)
	metrics.DBOperationTotal.WithLabelValues(operation, status).Inc()
	logger.LogAPICall("postgres", operation, status, duration, fields...)
}
