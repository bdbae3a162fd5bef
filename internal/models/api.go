package models

import "time"

type ApplicationResponse struct {
	ID          uint      `json:"id"`
	JobID       uint      `json:"job_id"`
	Status      string    `json:"status"`
	ATSScore    *int      `json:"ats_score"`
	ATSFeedback *string   `json:"ats_feedback"`
	AppliedAt   time.Time `json:"applied_at"`
	ResumeLink  *string   `json:"resume_link"`
	CoverLetter *string   `json:"cover_letter"`
}

func NewApplicationResponse(app *JobApplication) ApplicationResponse {
	return ApplicationResponse{
		ID:          app.ID,
		JobID:       app.JobID,
		Status:      string(app.Status),
		ATSScore:    app.ATSScore,
		ATSFeedback: app.ATSFeedback,
		AppliedAt:   app.AppliedAt,
		ResumeLink:  app.ResumeLink,
		CoverLetter: app.CoverLetter,
	}
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type ApplicationStats struct {
	Total       int64 `json:"total"`
	Applied     int64 `json:"applied"`
	UnderReview int64 `json:"under_review"`
	Approved    int64 `json:"approved"`
	Rejected    int64 `json:"rejected"`
	Withdrawn   int64 `json:"withdrawn"`
}

type RequestOTPRequest struct {
	Email string `json:"email"`
}

type VerifyOTPRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}
