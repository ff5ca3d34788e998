package models

import "time"

type AssessmentStatus string

const (
	AssessmentPending  AssessmentStatus = "Pending"
	AssessmentAccepted AssessmentStatus = "Accepted"
	AssessmentRejected AssessmentStatus = "Rejected"
)

// Оценка риска. Риск и оценщик фиксируются при создании,
// при редактировании не меняются.
type RiskAssessment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	RiskID uint `gorm:"not null" json:"risk_id"`
	Risk   Risk `json:"risk"`

	Status AssessmentStatus `gorm:"type:varchar(20);not null;default:Pending" json:"status"`

	AssessorID uint `gorm:"not null" json:"assessor_id"`
	Assessor   User `json:"assessor"`

	AssessorComments string `gorm:"type:text" json:"assessor_comments"`
}
