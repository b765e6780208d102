package repository

import (
	"context"

	"github.com/getmentor/rating-api/internal/models"
)

// ConsultationSource looks up consultations by their public number
type ConsultationSource interface {
	// GetConsultation returns the consultation, or an error wrapping errors.ErrNotFound
	GetConsultation(ctx context.Context, consultationNo string) (*models.Consultation, error)
}

// RatingStore persists consultation ratings
type RatingStore interface {
	ConsultationSource

	// CreateRating stores a validated rating and returns its ID.
	// A second rating for the same consultation returns an error wrapping errors.ErrConflict.
	CreateRating(ctx context.Context, clientID string, submission *models.RatingSubmission) (string, error)
}

var _ RatingStore = (*RatingRepository)(nil)
