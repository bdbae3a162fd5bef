package models

import (
	"time"
)

type ApplicationStatus string

const (
	StatusApplied     ApplicationStatus = "applied"
	StatusUnderReview ApplicationStatus = "under_review"
	StatusApproved    ApplicationStatus = "approved"
	StatusRejected    ApplicationStatus = "rejected"
	StatusWithdrawn   ApplicationStatus = "withdrawn"
)

// statusTransitions is the forward-only transition table. Approved,
// rejected and withdrawn are terminal.
var statusTransitions = map[ApplicationStatus][]ApplicationStatus{
	StatusApplied:     {StatusUnderReview, StatusWithdrawn},
	StatusUnderReview: {StatusApproved, StatusRejected, StatusWithdrawn},
}

func (s ApplicationStatus) IsValid() bool {
	switch s {
	case StatusApplied, StatusUnderReview, StatusApproved, StatusRejected, StatusWithdrawn:
		return true
	}
	return false
}

// CanTransitionTo reports whether the status may move to next.
func (s ApplicationStatus) CanTransitionTo(next ApplicationStatus) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type JobApplication struct {
	ID          uint              `gorm:"primaryKey;autoIncrement" json:"id"`
	JobID       uint              `gorm:"not null;uniqueIndex:idx_applications_job_seeker" json:"job_id"`
	JobSeekerID uint              `gorm:"not null;uniqueIndex:idx_applications_job_seeker" json:"job_seeker_id"`
	ResumeLink  *string           `gorm:"type:varchar(512)" json:"resume_link"`
	CoverLetter *string           `gorm:"type:varchar(512)" json:"cover_letter"`
	ATSScore    *int              `json:"ats_score"`
	ATSFeedback *string           `gorm:"type:text" json:"ats_feedback"`
	Status      ApplicationStatus `gorm:"type:varchar(20);not null;default:'applied'" json:"status"`
	AppliedAt   time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"applied_at"`

	// Relations
	Job       Job  `gorm:"foreignKey:JobID" json:"-"`
	JobSeeker User `gorm:"foreignKey:JobSeekerID" json:"-"`
}

func (JobApplication) TableName() string {
	return "applications"
}
