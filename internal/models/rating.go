package models

import (
	"github.com/getmentor/rating-api/internal/validation"
)

const (
	MinRatingScore        = 1
	MaxRatingScore        = 5
	MaxRatingCommentChars = 500
)

// SubmitRatingRequest represents a client's rating of a completed consultation
type SubmitRatingRequest struct {
	ConsultationNo string  `json:"consultationNo" validate:"required,notblank"`
	Score          *int    `json:"score" validate:"required,min=1,max=5"`
	Comment        *string `json:"comment,omitempty" validate:"omitempty,max=500"`
}

// RatingMessages declares the kind and user-facing messages of every rule on SubmitRatingRequest
var RatingMessages = validation.NewCatalog(
	validation.Rule{
		Field: "consultationNo", Tag: "required", Kind: validation.KindRequiredFieldMissing,
		Messages: map[validation.Locale]string{
			validation.LocaleZH: "咨询编号不能为空",
			validation.LocaleEN: "consultation number must not be blank",
		},
	},
	validation.Rule{
		Field: "consultationNo", Tag: "notblank", Kind: validation.KindRequiredFieldMissing,
		Messages: map[validation.Locale]string{
			validation.LocaleZH: "咨询编号不能为空",
			validation.LocaleEN: "consultation number must not be blank",
		},
	},
	validation.Rule{
		Field: "consultationNo", Tag: "type", Kind: validation.KindTypeMismatch,
		Messages: map[validation.Locale]string{
			validation.LocaleZH: "咨询编号必须为字符串",
			validation.LocaleEN: "consultation number must be a string",
		},
	},
	validation.Rule{
		Field: "score", Tag: "required", Kind: validation.KindRequiredFieldMissing,
		Messages: map[validation.Locale]string{
			validation.LocaleZH: "评分不能为空",
			validation.LocaleEN: "score is required",
		},
	},
	validation.Rule{
		Field: "score", Tag: "min", Kind: validation.KindRangeViolation,
		Messages: map[validation.Locale]string{
			validation.LocaleZH: "评分不能低于1分",
			validation.LocaleEN: "score must be at least 1",
		},
	},
	validation.Rule{
		Field: "score", Tag: "max", Kind: validation.KindRangeViolation,
		Messages: map[validation.Locale]string{
			validation.LocaleZH: "评分不能超过5分",
			validation.LocaleEN: "score must not exceed 5",
		},
	},
	validation.Rule{
		Field: "score", Tag: "type", Kind: validation.KindTypeMismatch,
		Messages: map[validation.Locale]string{
			validation.LocaleZH: "评分必须为整数",
			validation.LocaleEN: "score must be an integer",
		},
	},
	validation.Rule{
		Field: "comment", Tag: "max", Kind: validation.KindLengthViolation,
		Messages: map[validation.Locale]string{
			validation.LocaleZH: "评价内容不能超过500字符",
			validation.LocaleEN: "comment must not exceed 500 characters",
		},
	},
	validation.Rule{
		Field: "comment", Tag: "type", Kind: validation.KindTypeMismatch,
		Messages: map[validation.Locale]string{
			validation.LocaleZH: "评价内容必须为字符串",
			validation.LocaleEN: "comment must be a string",
		},
	},
)

// Validate checks every rule and returns the accepted submission, or a
// validation.Violations error listing all failed rules.
func (r *SubmitRatingRequest) Validate() (*RatingSubmission, error) {
	if err := validation.Struct(r, RatingMessages); err != nil {
		return nil, err
	}

	submission := &RatingSubmission{
		consultationNo: r.ConsultationNo,
		score:          *r.Score,
	}
	if r.Comment != nil {
		comment := *r.Comment
		submission.comment = &comment
	}
	return submission, nil
}

// RatingSubmission is a validated rating. It is immutable once built.
type RatingSubmission struct {
	consultationNo string
	score          int
	comment        *string
}

func (s *RatingSubmission) ConsultationNo() string {
	return s.consultationNo
}

func (s *RatingSubmission) Score() int {
	return s.score
}

// Comment returns the comment and whether one was submitted
func (s *RatingSubmission) Comment() (string, bool) {
	if s.comment == nil {
		return "", false
	}
	return *s.comment, true
}

// SubmitRatingResponse represents the response after submitting a rating
type SubmitRatingResponse struct {
	Success  bool   `json:"success"`
	RatingID string `json:"ratingId,omitempty"`
	Error    string `json:"error,omitempty"`
}

// RatingCheckResponse represents the response for checking if a rating can be submitted
type RatingCheckResponse struct {
	CanSubmit   bool   `json:"canSubmit"`
	AdvisorName string `json:"advisorName,omitempty"`
	Error       string `json:"error,omitempty"`
}
