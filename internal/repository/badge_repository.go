package repository

import (
	"errors"

	"inr99_academy_backend/internal/model"

	"gorm.io/gorm"
)

type BadgeRepository struct {
	DB *gorm.DB
}

func NewBadgeRepository(db *gorm.DB) *BadgeRepository {
	return &BadgeRepository{DB: db}
}

// Issue inserts the badge if the user does not hold it yet. Safe to call on
// every pass; the unique (user, assessment) index backs the lookup.
func (r *BadgeRepository) Issue(badge *model.SkillBadge) (*model.SkillBadge, error) {
	var existing model.SkillBadge
	err := r.DB.Where("user_id = ? AND assessment_id = ?", badge.UserID, badge.AssessmentID).
		First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if err := r.DB.Create(badge).Error; err != nil {
		// Lost a race with a concurrent submit; the winner's row is the badge.
		if fetchErr := r.DB.Where("user_id = ? AND assessment_id = ?", badge.UserID, badge.AssessmentID).
			First(&existing).Error; fetchErr == nil {
			return &existing, nil
		}
		return nil, err
	}
	return badge, nil
}

func (r *BadgeRepository) ListByUser(userID uint) ([]model.SkillBadge, error) {
	var badges []model.SkillBadge
	err := r.DB.Where("user_id = ?", userID).Order("created_at desc").Find(&badges).Error
	return badges, err
}

func (r *BadgeRepository) CountByUser(userID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.SkillBadge{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}
