package repository

import (
	"inr99_academy_backend/internal/model"

	"gorm.io/gorm"
)

type AttemptRepository struct {
	DB *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) *AttemptRepository {
	return &AttemptRepository{DB: db}
}

func (r *AttemptRepository) Create(a *model.AssessmentAttempt) error {
	return r.DB.Create(a).Error
}

func (r *AttemptRepository) FindByID(id uint) (*model.AssessmentAttempt, error) {
	var a model.AssessmentAttempt
	err := r.DB.First(&a, id).Error
	return &a, err
}

// Latest returns the most recent attempt for user+assessment, or
// gorm.ErrRecordNotFound when there is none.
func (r *AttemptRepository) Latest(userID, assessmentID uint) (*model.AssessmentAttempt, error) {
	var a model.AssessmentAttempt
	err := r.DB.Where("user_id = ? AND assessment_id = ?", userID, assessmentID).
		Order("created_at desc, id desc").
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AttemptRepository) ListByUser(userID, assessmentID uint) ([]model.AssessmentAttempt, error) {
	var as []model.AssessmentAttempt
	err := r.DB.Where("user_id = ? AND assessment_id = ?", userID, assessmentID).
		Order("created_at desc, id desc").
		Find(&as).Error
	return as, err
}

func (r *AttemptRepository) ListRecentByUser(userID uint, limit int) ([]model.AssessmentAttempt, error) {
	var as []model.AssessmentAttempt
	err := r.DB.Where("user_id = ?", userID).
		Order("created_at desc, id desc").
		Limit(limit).
		Find(&as).Error
	return as, err
}

// HasPassed reports whether any prior attempt already passed. Used to gate
// badge issuance to the first passing attempt.
func (r *AttemptRepository) HasPassed(userID, assessmentID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.AssessmentAttempt{}).
		Where("user_id = ? AND assessment_id = ? AND passed = ?", userID, assessmentID, true).
		Count(&count).Error
	return count > 0, err
}

func (r *AttemptRepository) ListByAssessment(assessmentID uint, page, limit int) ([]model.AssessmentAttempt, int64, error) {
	var as []model.AssessmentAttempt
	var total int64

	query := r.DB.Model(&model.AssessmentAttempt{}).Where("assessment_id = ?", assessmentID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := r.DB.Preload("User").
		Where("assessment_id = ?", assessmentID).
		Order("created_at desc").
		Offset(offset).Limit(limit).
		Find(&as).Error
	return as, total, err
}

type AssessmentPassRate struct {
	AssessmentID uint    `json:"assessmentId"`
	Title        string  `json:"title"`
	Attempts     int64   `json:"attempts"`
	Passed       int64   `json:"passed"`
	PassRate     float64 `json:"passRate"`
}

func (r *AttemptRepository) PassRatesByCourse(courseID uint) ([]AssessmentPassRate, error) {
	var rows []AssessmentPassRate
	err := r.DB.Table("assessment_attempts aa").
		Select("aa.assessment_id, a.title, COUNT(*) as attempts, SUM(CASE WHEN aa.passed THEN 1 ELSE 0 END) as passed").
		Joins("JOIN assessments a ON a.id = aa.assessment_id").
		Where("a.course_id = ? AND aa.deleted_at IS NULL", courseID).
		Group("aa.assessment_id, a.title").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for i := range rows {
		if rows[i].Attempts > 0 {
			rows[i].PassRate = float64(rows[i].Passed) / float64(rows[i].Attempts)
		}
	}
	return rows, nil
}
