package repository

import (
	"errors"

	"github.com/sanjay-gangishetty/VideoGen/internal/apperrors"
	"github.com/sanjay-gangishetty/VideoGen/internal/domain"
	"github.com/sanjay-gangishetty/VideoGen/internal/models"

	"gorm.io/gorm"
)

type VideoRepository struct {
	db *gorm.DB
}

func NewVideoRepository(db *gorm.DB) *VideoRepository {
	return &VideoRepository{db: db}
}

func (r *VideoRepository) Create(v *models.VideoLog) error {
	return r.db.Create(v).Error
}

func (r *VideoRepository) GetByID(id uint) (*models.VideoLog, error) {
	var v models.VideoLog
	if err := r.db.First(&v, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrVideoNotFound
		}
		return nil, err
	}
	return &v, nil
}

func (r *VideoRepository) ListByUser(userID uint, status string, limit, offset int) ([]models.VideoLog, error) {
	q := r.db.Where("user_id = ?", userID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var logs []models.VideoLog
	err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&logs).Error
	return logs, err
}

// UpdateFromPoll writes the latest provider status. The WHERE clause
// excludes terminal rows so a stale poll can never resurrect a finished
// or cancelled job.
func (r *VideoRepository) UpdateFromPoll(id uint, status, videoURL, errorMessage string) (*models.VideoLog, error) {
	updates := map[string]interface{}{"status": status}
	if videoURL != "" {
		updates["video_url"] = videoURL
	}
	if errorMessage != "" {
		updates["error_message"] = errorMessage
	}
	res := r.db.Model(&models.VideoLog{}).
		Where("id = ? AND status NOT IN ?", id, domain.VideoTerminalStatuses).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	return r.GetByID(id)
}

// MarkCancelled flips a PENDING or PROCESSING job to CANCELLED. Returns
// false when the job was already terminal.
func (r *VideoRepository) MarkCancelled(id uint) (bool, error) {
	res := r.db.Model(&models.VideoLog{}).
		Where("id = ? AND status IN ?", id, []string{domain.VideoStatusPending, domain.VideoStatusProcessing}).
		Update("status", domain.VideoStatusCancelled)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *VideoRepository) Delete(id uint) error {
	res := r.db.Delete(&models.VideoLog{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrVideoNotFound
	}
	return nil
}
