package models

import (
	"strings"
	"time"
)

type JobType string

const (
	JobTypeFullTime   JobType = "full_time"
	JobTypePartTime   JobType = "part_time"
	JobTypeContract   JobType = "contract"
	JobTypeInternship JobType = "internship"
	JobTypeRemote     JobType = "remote"
)

// StringList stores a JSON array in a json column, matching the legacy
// jobs schema where skills and tags are JSON-encoded.
type StringList []string

func (l StringList) Join() string {
	if len(l) == 0 {
		return ""
	}
	return strings.Join(l, ", ")
}

type Job struct {
	ID            uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	CompanyID     uint       `gorm:"not null;index" json:"company_id"`
	Title         string     `gorm:"type:varchar(255);not null" json:"title"`
	Description   string     `gorm:"type:text;not null" json:"description"`
	Location      string     `gorm:"type:varchar(255)" json:"location"`
	Type          JobType    `gorm:"type:varchar(20);not null" json:"type"`
	SalaryRange   string     `gorm:"type:varchar(100)" json:"salary_range"`
	Education     string     `gorm:"type:varchar(255)" json:"education"`
	ExperienceMin int        `gorm:"default:0" json:"experience_min"`
	Skills        StringList `gorm:"type:json;serializer:json" json:"skills"`
	Tags          StringList `gorm:"type:json;serializer:json" json:"tags"`
	Category      string     `gorm:"type:varchar(100)" json:"category"`
	PostedAt      time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"posted_at"`
	Deadline      *time.Time `json:"deadline,omitempty"`
}

func (Job) TableName() string {
	return "jobs"
}
