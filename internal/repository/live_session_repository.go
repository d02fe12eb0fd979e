package repository

import (
	"time"

	"inr99_academy_backend/internal/model"

	"gorm.io/gorm"
)

type LiveSessionRepository struct {
	DB *gorm.DB
}

func NewLiveSessionRepository(db *gorm.DB) *LiveSessionRepository {
	return &LiveSessionRepository{DB: db}
}

func (r *LiveSessionRepository) Create(s *model.LiveSession) error {
	return r.DB.Create(s).Error
}

func (r *LiveSessionRepository) FindByID(id uint) (*model.LiveSession, error) {
	var s model.LiveSession
	err := r.DB.First(&s, id).Error
	return &s, err
}

func (r *LiveSessionRepository) Update(s *model.LiveSession) error {
	return r.DB.Save(s).Error
}

func (r *LiveSessionRepository) Delete(id uint) error {
	return r.DB.Delete(&model.LiveSession{}, id).Error
}

func (r *LiveSessionRepository) ListByInstructor(instructorID uint) ([]model.LiveSession, error) {
	var ss []model.LiveSession
	err := r.DB.Where("instructor_id = ?", instructorID).Order("scheduled_at desc").Find(&ss).Error
	return ss, err
}

// ListUpcomingForUser returns not-yet-ended sessions of the user's enrolled
// courses, soonest first.
func (r *LiveSessionRepository) ListUpcomingForUser(userID uint, limit int) ([]model.LiveSession, error) {
	var ss []model.LiveSession
	err := r.DB.Table("live_sessions ls").
		Select("ls.*").
		Joins("JOIN enrollments e ON e.course_id = ls.course_id AND e.user_id = ?", userID).
		Where("ls.status <> ? AND ls.deleted_at IS NULL AND e.deleted_at IS NULL", model.SessionEnded).
		Order("ls.scheduled_at asc").
		Limit(limit).
		Scan(&ss).Error
	return ss, err
}

// SweepStatuses flips scheduled sessions to live and live ones to ended
// based on the clock.
func (r *LiveSessionRepository) SweepStatuses(now time.Time) error {
	if err := r.DB.Model(&model.LiveSession{}).
		Where("status = ? AND scheduled_at <= ?", model.SessionScheduled, now).
		Update("status", model.SessionLive).Error; err != nil {
		return err
	}

	var live []model.LiveSession
	if err := r.DB.Where("status = ?", model.SessionLive).Find(&live).Error; err != nil {
		return err
	}
	for i := range live {
		if live[i].EndsAt().Before(now) {
			if err := r.DB.Model(&live[i]).Update("status", model.SessionEnded).Error; err != nil {
				return err
			}
		}
	}
	return nil
}
