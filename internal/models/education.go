package models

import "time"

// UserEducation is a collaborator entity: the pipeline only reads it to
// decide qualification eligibility.
type UserEducation struct {
	ID        uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint       `gorm:"not null;index" json:"user_id"`
	School    string     `gorm:"type:varchar(255)" json:"school"`
	Degree    string     `gorm:"type:varchar(255)" json:"degree"`
	Field     string     `gorm:"type:varchar(255)" json:"field"`
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
}

func (UserEducation) TableName() string {
	return "user_education"
}
