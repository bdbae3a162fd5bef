package services

import (
	"context"
	"fmt"

	"jobportal/internal/models"
	"jobportal/internal/repositories"
)

// NotificationService writes in-app notifications for job seekers.
type NotificationService interface {
	Notify(ctx context.Context, userID uint, message string) error
	NotifyStatusChange(ctx context.Context, app *models.JobApplication, jobTitle string) error
}

type notificationService struct {
	notificationRepo repositories.NotificationRepository
}

func NewNotificationService(notificationRepo repositories.NotificationRepository) NotificationService {
	return &notificationService{notificationRepo: notificationRepo}
}

func (s *notificationService) Notify(ctx context.Context, userID uint, message string) error {
	return s.notificationRepo.Create(ctx, &models.Notification{
		UserID:  userID,
		Message: message,
	})
}

// NotifyStatusChange tells the applicant about a status move. Statuses
// with no message (applied, withdrawn) produce no notification.
func (s *notificationService) NotifyStatusChange(ctx context.Context, app *models.JobApplication, jobTitle string) error {
	var message string
	switch app.Status {
	case models.StatusUnderReview:
		message = fmt.Sprintf("Your application for %s is now under review.", jobTitle)
	case models.StatusApproved:
		message = fmt.Sprintf("Congratulations! Your application for %s has been approved.", jobTitle)
	case models.StatusRejected:
		message = fmt.Sprintf("Unfortunately, your application for %s was not selected.", jobTitle)
	default:
		return nil
	}

	return s.Notify(ctx, app.JobSeekerID, message)
}
