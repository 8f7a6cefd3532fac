package model

import (
	"time"

	"github.com/google/uuid"
)

// Application is one accepted "join the dev team" submission. Rows are
// written once and never mutated or deleted by this service.
type Application struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	FullName       string    `gorm:"type:varchar(100);not null" json:"full_name"`
	SchoolEmail    string    `gorm:"type:varchar(100);not null" json:"school_email"`
	GithubUsername string    `gorm:"type:varchar(39);not null" json:"github_username"`
	SeniorYear     string    `gorm:"type:varchar(10);not null" json:"senior_year"`
	Interests      string    `gorm:"type:varchar(255);not null" json:"interests"` // comma-joined
	Motivation     string    `gorm:"type:text;not null" json:"motivation"`
	CreatedAt      time.Time `json:"created_at"`
}

func (Application) TableName() string { return "applications" }
