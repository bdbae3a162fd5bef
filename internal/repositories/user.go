package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"jobportal/internal/models"
)

type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindOrCreateByEmail(ctx context.Context, email string) (*models.User, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}

// FindOrCreateByEmail backs the OTP login flow: a first-time address
// gets a job seeker account on the spot.
func (r *userRepository) FindOrCreateByEmail(ctx context.Context, email string) (*models.User, error) {
	user := models.User{Email: email, Role: models.RoleJobSeeker}
	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		FirstOrCreate(&user).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find or create user: %w", err)
	}
	return &user, nil
}
