package models

import "time"

// ConsultationStatus represents the lifecycle state of a consultation
type ConsultationStatus string

const (
	ConsultationStatusScheduled  ConsultationStatus = "scheduled"
	ConsultationStatusInProgress ConsultationStatus = "in_progress"
	ConsultationStatusCompleted  ConsultationStatus = "completed"
	ConsultationStatusCancelled  ConsultationStatus = "cancelled"
)

// Consultation is the subset of consultation data needed to accept a rating
type Consultation struct {
	ConsultationNo string
	ClientID       string
	AdvisorName    string
	Status         ConsultationStatus
	CompletedAt    *time.Time
	Rated          bool
}

// CanBeRatedBy reports whether clientID may still rate this consultation
func (c *Consultation) CanBeRatedBy(clientID string) bool {
	return c.ClientID == clientID && c.Status == ConsultationStatusCompleted && !c.Rated
}

// ClientSession holds the authenticated client extracted from the bearer token
type ClientSession struct {
	ClientID  string `json:"clientId"`
	Name      string `json:"name,omitempty"`
	ExpiresAt int64  `json:"exp"`
}
