package services

import (
	"context"

	"github.com/getmentor/rating-api/internal/models"
)

// RatingServiceInterface defines the interface for rating service operations
type RatingServiceInterface interface {
	CheckRating(ctx context.Context, clientID, consultationNo string) (*models.RatingCheckResponse, error)
	SubmitRating(ctx context.Context, clientID string, submission *models.RatingSubmission) (*models.SubmitRatingResponse, error)
}

var _ RatingServiceInterface = (*RatingService)(nil)
