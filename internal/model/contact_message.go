package model

import (
	"time"

	"github.com/google/uuid"
)

// ContactMessage is one submission from the public contact form.
// Duplicates are permitted.
type ContactMessage struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name      string    `gorm:"type:varchar(100);not null" json:"name"`
	Email     string    `gorm:"type:varchar(100);not null" json:"email"`
	Subject   string    `gorm:"type:varchar(150);not null" json:"subject"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

func (ContactMessage) TableName() string { return "contact_messages" }
