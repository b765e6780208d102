package services_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/getmentor/rating-api/config"
	"github.com/getmentor/rating-api/internal/models"
	"github.com/getmentor/rating-api/pkg/logger"
)

func init() {
	if err := logger.Initialize(logger.Config{
		Level:       "debug",
		Environment: "development",
	}); err != nil {
		panic(err)
	}
}

func testConfig(triggerURL string) *config.Config {
	return &config.Config{
		EventTriggers: config.EventTriggersConfig{RatingCreatedTriggerURL: triggerURL},
	}
}

func consultation(status models.ConsultationStatus, rated bool) *models.Consultation {
	return &models.Consultation{
		ConsultationNo: "C-1",
		ClientID:       "client-1",
		AdvisorName:    "Dr. Lin",
		Status:         status,
		Rated:          rated,
	}
}

func submission(t *testing.T, score int, comment *string) *models.RatingSubmission {
	t.Helper()
	s, err := (&models.SubmitRatingRequest{ConsultationNo: "C-1", Score: &score, Comment: comment}).Validate()
	require.NoError(t, err)
	return s
}
