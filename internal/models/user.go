package models

import "time"

type UserRole string

const (
	RoleJobSeeker UserRole = "job_seeker"
	RoleCompany   UserRole = "company"
	RoleAdmin     UserRole = "admin"
)

type User struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Email     string    `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"`
	Role      UserRole  `gorm:"type:varchar(20);not null;default:'job_seeker'" json:"role"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (User) TableName() string {
	return "users"
}
