package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/getmentor/rating-api/internal/middleware"
	"github.com/getmentor/rating-api/internal/models"
	"github.com/getmentor/rating-api/internal/services"
	"github.com/getmentor/rating-api/internal/validation"
	apperrors "github.com/getmentor/rating-api/pkg/errors"
)

// RatingHandler handles consultation rating HTTP requests
type RatingHandler struct {
	service       services.RatingServiceInterface
	defaultLocale validation.Locale
}

// NewRatingHandler creates a new rating handler. defaultLocale is used when Accept-Language matches nothing.
func NewRatingHandler(service services.RatingServiceInterface, defaultLocale validation.Locale) *RatingHandler {
	return &RatingHandler{service: service, defaultLocale: defaultLocale}
}

// CheckRating handles GET /api/v1/ratings/:consultationNo/check
func (h *RatingHandler) CheckRating(c *gin.Context) {
	session, err := middleware.GetClientSession(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	consultationNo := strings.TrimSpace(c.Param("consultationNo"))
	if consultationNo == "" {
		respondError(c, http.StatusBadRequest, "Missing consultation number", nil)
		return
	}

	resp, err := h.service.CheckRating(c.Request.Context(), session.ClientID, consultationNo)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// SubmitRating handles POST /api/v1/ratings
func (h *RatingHandler) SubmitRating(c *gin.Context) {
	session, err := middleware.GetClientSession(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	var req models.SubmitRatingRequest
	typeViolations, err := validation.DecodeJSON(c.Request.Body, &req, models.RatingMessages)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			respondError(c, http.StatusRequestEntityTooLarge, "Request body too large", err)
			return
		}
		respondError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	submission, err := req.Validate()
	if err != nil || len(typeViolations) > 0 {
		var ruleViolations validation.Violations
		if err != nil && !errors.As(err, &ruleViolations) {
			respondError(c, http.StatusInternalServerError, "Internal server error", err)
			return
		}

		violations := mergeViolations(models.RatingMessages, typeViolations, ruleViolations)
		recordViolations(violations)
		respondErrorWithDetails(c, http.StatusBadRequest, "Validation failed",
			models.RatingMessages.Localize(violations, requestLocale(c, h.defaultLocale)), violations)
		return
	}

	resp, err := h.service.SubmitRating(c.Request.Context(), session.ClientID, submission)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *RatingHandler) respondServiceError(c *gin.Context, err error) {
	switch {
	case apperrors.Is(err, apperrors.ErrNotFound):
		respondError(c, http.StatusNotFound, "Consultation not found", err)
	case apperrors.Is(err, apperrors.ErrAccessDenied):
		respondError(c, http.StatusForbidden, "Consultation belongs to another client", err)
	case errors.Is(err, services.ErrConsultationNotCompleted):
		respondError(c, http.StatusConflict, "Consultation is not completed", err)
	case apperrors.Is(err, apperrors.ErrConflict):
		respondError(c, http.StatusConflict, "Consultation has already been rated", err)
	case apperrors.Is(err, apperrors.ErrInvalidInput):
		respondError(c, http.StatusBadRequest, "Invalid rating", err)
	default:
		respondError(c, http.StatusInternalServerError, "Internal server error", err)
	}
}
