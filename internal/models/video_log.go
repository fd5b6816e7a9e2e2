package models

import (
	"time"

	"gorm.io/gorm"
)

// VideoLog is one row per generation job.
type VideoLog struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	UserID          uint           `gorm:"not null;index" json:"user_id"`
	Service         string         `gorm:"size:20;not null;index" json:"service"` // HEYGEN, VEO3, KIE
	Status          string         `gorm:"size:20;not null;index" json:"status"`  // PENDING, PROCESSING, COMPLETED, FAILED, CANCELLED
	ProviderJobID   *string        `gorm:"size:255;uniqueIndex" json:"provider_job_id,omitempty"`
	VideoURL        string         `gorm:"size:1024" json:"video_url,omitempty"`
	CreditsConsumed int64          `gorm:"not null;default:0" json:"credits_consumed"`
	ErrorMessage    string         `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (VideoLog) TableName() string {
	return "video_logs"
}
