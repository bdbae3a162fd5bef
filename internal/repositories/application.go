package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"jobportal/internal/models"
)

var (
	ErrNotFound             = errors.New("record not found")
	ErrDuplicateApplication = errors.New("application already exists for this job and applicant")
)

type ApplicationRepository interface {
	Create(ctx context.Context, app *models.JobApplication) error
	FindByID(ctx context.Context, id uint) (*models.JobApplication, error)
	FindByJobAndApplicant(ctx context.Context, jobID, applicantID uint) (*models.JobApplication, error)
	FindByApplicant(ctx context.Context, applicantID uint) ([]models.JobApplication, error)
	FindByCompany(ctx context.Context, companyID uint) ([]models.JobApplication, error)
	UpdateStatus(ctx context.Context, id uint, status models.ApplicationStatus) error
	CountByStatus(ctx context.Context, applicantID uint) (map[models.ApplicationStatus]int64, error)

	// InTransaction runs fn against a repository bound to a single
	// database transaction; a non-nil error from fn rolls it back.
	InTransaction(ctx context.Context, fn func(tx ApplicationRepository) error) error
}

type applicationRepository struct {
	db *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &applicationRepository{db: db}
}

func (r *applicationRepository) Create(ctx context.Context, app *models.JobApplication) error {
	if err := r.db.WithContext(ctx).Create(app).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateApplication
		}
		return fmt.Errorf("failed to create application: %w", err)
	}
	return nil
}

func (r *applicationRepository) FindByID(ctx context.Context, id uint) (*models.JobApplication, error) {
	var app models.JobApplication
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&app).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find application: %w", err)
	}
	return &app, nil
}

func (r *applicationRepository) FindByJobAndApplicant(ctx context.Context, jobID, applicantID uint) (*models.JobApplication, error) {
	var app models.JobApplication
	err := r.db.WithContext(ctx).
		Where("job_id = ? AND job_seeker_id = ?", jobID, applicantID).
		First(&app).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find application: %w", err)
	}
	return &app, nil
}

func (r *applicationRepository) FindByApplicant(ctx context.Context, applicantID uint) ([]models.JobApplication, error) {
	var apps []models.JobApplication
	err := r.db.WithContext(ctx).
		Where("job_seeker_id = ?", applicantID).
		Order("applied_at DESC").
		Find(&apps).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	return apps, nil
}

func (r *applicationRepository) FindByCompany(ctx context.Context, companyID uint) ([]models.JobApplication, error) {
	var apps []models.JobApplication
	err := r.db.WithContext(ctx).
		Joins("JOIN jobs ON jobs.id = applications.job_id").
		Where("jobs.company_id = ?", companyID).
		Preload("Job").
		Preload("JobSeeker").
		Order("applications.applied_at DESC").
		Find(&apps).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list company candidates: %w", err)
	}
	return apps, nil
}

func (r *applicationRepository) UpdateStatus(ctx context.Context, id uint, status models.ApplicationStatus) error {
	result := r.db.WithContext(ctx).
		Model(&models.JobApplication{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return fmt.Errorf("failed to update status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *applicationRepository) CountByStatus(ctx context.Context, applicantID uint) (map[models.ApplicationStatus]int64, error) {
	var rows []struct {
		Status models.ApplicationStatus
		Count  int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.JobApplication{}).
		Select("status, COUNT(*) as count").
		Where("job_seeker_id = ?", applicantID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count applications: %w", err)
	}

	counts := make(map[models.ApplicationStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (r *applicationRepository) InTransaction(ctx context.Context, fn func(tx ApplicationRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&applicationRepository{db: tx})
	})
}
