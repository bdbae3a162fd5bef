package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"jobportal/internal/models"
)

type EducationRepository interface {
	FindByUser(ctx context.Context, userID uint) ([]models.UserEducation, error)
}

type educationRepository struct {
	db *gorm.DB
}

func NewEducationRepository(db *gorm.DB) EducationRepository {
	return &educationRepository{db: db}
}

func (r *educationRepository) FindByUser(ctx context.Context, userID uint) ([]models.UserEducation, error) {
	var records []models.UserEducation
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id DESC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load education records: %w", err)
	}
	return records, nil
}
