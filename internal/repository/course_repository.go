package repository

import (
	"time"

	"inr99_academy_backend/internal/model"

	"gorm.io/gorm"
)

type CourseRepository struct {
	DB *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: db}
}

func (r *CourseRepository) Create(course *model.Course) error {
	return r.DB.Create(course).Error
}

func (r *CourseRepository) FindByID(id uint) (*model.Course, error) {
	var course model.Course
	err := r.DB.Preload("Instructor").First(&course, id).Error
	return &course, err
}

func (r *CourseRepository) Update(course *model.Course) error {
	return r.DB.Save(course).Error
}

// Delete removes a course with its modules and lessons in one transaction.
// Enrollments are kept for history.
func (r *CourseRepository) Delete(id uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("course_id = ?", id).Delete(&model.Lesson{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", id).Delete(&model.CourseModule{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Course{}, id).Error
	})
}

func (r *CourseRepository) ListPublished(page, limit int, category string) ([]model.Course, int64, error) {
	var courses []model.Course
	var total int64

	query := r.DB.Model(&model.Course{}).Where("is_published = ?", true)
	if category != "" {
		query = query.Where("category = ?", category)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&courses).Error
	return courses, total, err
}

func (r *CourseRepository) ListByInstructor(instructorID uint) ([]model.Course, error) {
	var courses []model.Course
	err := r.DB.Where("instructor_id = ?", instructorID).Order("created_at desc").Find(&courses).Error
	return courses, err
}

func (r *CourseRepository) CreateModule(m *model.CourseModule) error {
	return r.DB.Create(m).Error
}

func (r *CourseRepository) ListModules(courseID uint) ([]model.CourseModule, error) {
	var ms []model.CourseModule
	err := r.DB.Where("course_id = ?", courseID).Order("`order` asc, created_at asc").Find(&ms).Error
	return ms, err
}

func (r *CourseRepository) CreateLesson(lesson *model.Lesson) error {
	return r.DB.Create(lesson).Error
}

func (r *CourseRepository) FindLessonByID(id uint) (*model.Lesson, error) {
	var lesson model.Lesson
	err := r.DB.First(&lesson, id).Error
	return &lesson, err
}

// IsLessonFree answers the preview-lesson check without loading the row.
func (r *CourseRepository) IsLessonFree(lessonID uint) (bool, error) {
	var free bool
	err := r.DB.Model(&model.Lesson{}).
		Select("free").
		Where("id = ?", lessonID).
		Scan(&free).Error
	return free, err
}

func (r *CourseRepository) UpdateLesson(lesson *model.Lesson) error {
	return r.DB.Save(lesson).Error
}

func (r *CourseRepository) DeleteLesson(id uint) error {
	return r.DB.Delete(&model.Lesson{}, id).Error
}

func (r *CourseRepository) ListLessons(courseID uint) ([]model.Lesson, error) {
	var lessons []model.Lesson
	err := r.DB.Where("course_id = ?", courseID).Order("`order` asc, created_at asc").Find(&lessons).Error
	return lessons, err
}

func (r *CourseRepository) CountLessons(courseID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Lesson{}).Where("course_id = ?", courseID).Count(&count).Error
	return count, err
}

// Enrollment

func (r *CourseRepository) CreateEnrollment(e *model.Enrollment) error {
	return r.DB.Create(e).Error
}

func (r *CourseRepository) FindEnrollment(userID, courseID uint) (*model.Enrollment, error) {
	var e model.Enrollment
	err := r.DB.Where("user_id = ? AND course_id = ?", userID, courseID).First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *CourseRepository) UpdateEnrollment(e *model.Enrollment) error {
	return r.DB.Save(e).Error
}

func (r *CourseRepository) ListEnrollmentsByUser(userID uint) ([]model.Enrollment, error) {
	var es []model.Enrollment
	err := r.DB.Preload("Course").Where("user_id = ?", userID).Order("created_at desc").Find(&es).Error
	return es, err
}

func (r *CourseRepository) CountEnrollments(courseID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Enrollment{}).Where("course_id = ?", courseID).Count(&count).Error
	return count, err
}

// CompleteLesson records the tick and refreshes the enrollment counters
// atomically. Ticking the same lesson twice is a no-op.
func (r *CourseRepository) CompleteLesson(userID uint, lesson *model.Lesson, totalLessons int64) (*model.Enrollment, error) {
	var enrollment model.Enrollment

	err := r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND course_id = ?", userID, lesson.CourseID).First(&enrollment).Error; err != nil {
			return err
		}

		var existing int64
		tx.Model(&model.LessonCompletion{}).
			Where("user_id = ? AND lesson_id = ?", userID, lesson.ID).
			Count(&existing)
		if existing > 0 {
			return nil
		}

		completion := &model.LessonCompletion{
			UserID:   userID,
			LessonID: lesson.ID,
			CourseID: lesson.CourseID,
		}
		if err := tx.Create(completion).Error; err != nil {
			return err
		}

		enrollment.CompletedLessons++
		if totalLessons > 0 {
			enrollment.ProgressPct = int(100 * int64(enrollment.CompletedLessons) / totalLessons)
		}
		if totalLessons > 0 && int64(enrollment.CompletedLessons) >= totalLessons && enrollment.CompletedAt == nil {
			now := time.Now()
			enrollment.CompletedAt = &now
		}

		return tx.Save(&enrollment).Error
	})

	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}
