package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Certificate struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	InternID string    `gorm:"size:64;not null;uniqueIndex" json:"internId"`
	Email    string    `gorm:"size:255;not null;uniqueIndex" json:"email"`
	FullName string    `gorm:"size:255;not null" json:"fullName"`
	Title    string    `gorm:"size:255" json:"title"`
	Duration string    `gorm:"size:255" json:"duration"`
	ImageURL string    `gorm:"type:text" json:"imageUrl"`
	PDFURL   string    `gorm:"type:text" json:"pdfUrl"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Certificate) TableName() string {
	return "certificates"
}

// IDs are generated here rather than by the store so the model behaves the
// same under Postgres and the SQLite test database.
func (c *Certificate) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
