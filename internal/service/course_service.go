package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"inr99_academy_backend/internal/model"
	"inr99_academy_backend/internal/repository"
	"inr99_academy_backend/internal/util"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

type CourseService struct {
	Repo  *repository.CourseRepository
	Redis *redis.Client
}

func NewCourseService(repo *repository.CourseRepository, rdb *redis.Client) *CourseService {
	return &CourseService{Repo: repo, Redis: rdb}
}

type CourseRequest struct {
	Title        string `json:"title" binding:"required"`
	Slug         string `json:"slug" binding:"required"`
	Description  string `json:"description"`
	Category     string `json:"category"`
	Level        string `json:"level"`
	PricePaise   int64  `json:"pricePaise"`
	IsPremium    bool   `json:"isPremium"`
	IsPublished  bool   `json:"isPublished"`
	ThumbnailURL string `json:"thumbnailUrl"`
}

func (s *CourseService) CreateCourse(instructorID uint, req CourseRequest) (*model.Course, error) {
	course := &model.Course{
		Title:        req.Title,
		Slug:         req.Slug,
		Description:  req.Description,
		Category:     req.Category,
		Level:        req.Level,
		PricePaise:   req.PricePaise,
		IsPremium:    req.IsPremium,
		IsPublished:  req.IsPublished,
		InstructorID: instructorID,
		ThumbnailURL: req.ThumbnailURL,
	}
	if err := s.Repo.Create(course); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *CourseService) UpdateCourse(instructorID, id uint, req CourseRequest) (*model.Course, error) {
	course, err := s.Repo.FindByID(id)
	if err != nil {
		return nil, util.ErrCourseNotFound
	}
	if course.InstructorID != instructorID {
		return nil, util.ErrPermissionDenied
	}

	course.Title = req.Title
	course.Slug = req.Slug
	course.Description = req.Description
	course.Category = req.Category
	course.Level = req.Level
	course.PricePaise = req.PricePaise
	course.IsPremium = req.IsPremium
	course.IsPublished = req.IsPublished
	course.ThumbnailURL = req.ThumbnailURL

	if err := s.Repo.Update(course); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *CourseService) DeleteCourse(instructorID, id uint) error {
	course, err := s.Repo.FindByID(id)
	if err != nil {
		return util.ErrCourseNotFound
	}
	if course.InstructorID != instructorID {
		return util.ErrPermissionDenied
	}
	return s.Repo.Delete(id)
}

func (s *CourseService) GetCourse(id uint) (*model.Course, error) {
	course, err := s.Repo.FindByID(id)
	if err != nil {
		return nil, util.ErrCourseNotFound
	}
	return course, nil
}

func (s *CourseService) ListPublished(page, limit int, category string) ([]model.Course, int64, error) {
	return s.Repo.ListPublished(page, limit, category)
}

func (s *CourseService) ListByInstructor(instructorID uint) ([]model.Course, error) {
	return s.Repo.ListByInstructor(instructorID)
}

type ModuleRequest struct {
	CourseID uint   `json:"courseId" binding:"required"`
	Title    string `json:"title" binding:"required"`
	Order    int    `json:"order"`
}

func (s *CourseService) CreateModule(req ModuleRequest) (*model.CourseModule, error) {
	if _, err := s.Repo.FindByID(req.CourseID); err != nil {
		return nil, util.ErrCourseNotFound
	}
	m := &model.CourseModule{
		CourseID: req.CourseID,
		Title:    req.Title,
		Order:    req.Order,
	}
	if err := s.Repo.CreateModule(m); err != nil {
		return nil, err
	}
	return m, nil
}

type LessonRequest struct {
	CourseID     uint   `json:"courseId" binding:"required"`
	ModuleID     uint   `json:"moduleId"`
	Title        string `json:"title" binding:"required"`
	Order        int    `json:"order"`
	ContentMD    string `json:"contentMd"`
	TranscriptMD string `json:"transcriptMd"`
	Free         bool   `json:"free"`
}

func (s *CourseService) CreateLesson(req LessonRequest) (*model.Lesson, error) {
	if _, err := s.Repo.FindByID(req.CourseID); err != nil {
		return nil, util.ErrCourseNotFound
	}
	lesson := &model.Lesson{
		CourseID:     req.CourseID,
		ModuleID:     req.ModuleID,
		Title:        req.Title,
		Order:        req.Order,
		ContentMD:    req.ContentMD,
		TranscriptMD: req.TranscriptMD,
		Free:         req.Free,
	}
	if err := s.Repo.CreateLesson(lesson); err != nil {
		return nil, err
	}
	return lesson, nil
}

func (s *CourseService) GetLesson(id uint) (*model.Lesson, error) {
	lesson, err := s.Repo.FindLessonByID(id)
	if err != nil {
		return nil, util.ErrLessonNotFound
	}
	return lesson, nil
}

func (s *CourseService) UpdateLesson(lesson *model.Lesson) error {
	return s.Repo.UpdateLesson(lesson)
}

func (s *CourseService) DeleteLesson(id uint) error {
	return s.Repo.DeleteLesson(id)
}

type CourseOutline struct {
	Course     *model.Course        `json:"course"`
	Modules    []model.CourseModule `json:"modules"`
	Lessons    []model.Lesson       `json:"lessons"`
	Enrollment *model.Enrollment    `json:"enrollment,omitempty"`
}

// GetOutline assembles the course page. userID is zero for guests; for a
// logged-in caller their enrollment rides along so the client can show
// progress inline.
func (s *CourseService) GetOutline(courseID, userID uint) (*CourseOutline, error) {
	course, err := s.Repo.FindByID(courseID)
	if err != nil {
		return nil, util.ErrCourseNotFound
	}
	modules, err := s.Repo.ListModules(courseID)
	if err != nil {
		return nil, err
	}
	lessons, err := s.Repo.ListLessons(courseID)
	if err != nil {
		return nil, err
	}

	outline := &CourseOutline{Course: course, Modules: modules, Lessons: lessons}
	if userID != 0 {
		if enrollment, err := s.Repo.FindEnrollment(userID, courseID); err == nil {
			outline.Enrollment = enrollment
		}
	}
	return outline, nil
}

func (s *CourseService) Enroll(userID, courseID uint) (*model.Enrollment, error) {
	course, err := s.Repo.FindByID(courseID)
	if err != nil || !course.IsPublished {
		return nil, util.ErrCourseNotFound
	}

	if existing, err := s.Repo.FindEnrollment(userID, courseID); err == nil {
		return existing, nil
	}

	e := &model.Enrollment{UserID: userID, CourseID: courseID}
	if err := s.Repo.CreateEnrollment(e); err != nil {
		return nil, err
	}
	return e, nil
}

// CompleteLesson ticks one lesson off and refreshes progress. The redis key
// is a display cache only; the database rows stay authoritative.
func (s *CourseService) CompleteLesson(userID, lessonID uint) (*model.Enrollment, error) {
	lesson, err := s.Repo.FindLessonByID(lessonID)
	if err != nil {
		return nil, util.ErrLessonNotFound
	}

	total, err := s.Repo.CountLessons(lesson.CourseID)
	if err != nil {
		return nil, err
	}

	enrollment, err := s.Repo.CompleteLesson(userID, lesson, total)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNotEnrolled
		}
		return nil, err
	}

	if s.Redis != nil {
		key := fmt.Sprintf("course:progress:%d:%d", userID, lesson.CourseID)
		_ = s.Redis.Set(context.Background(), key, strconv.Itoa(enrollment.ProgressPct), 24*time.Hour).Err()
	}

	return enrollment, nil
}

func (s *CourseService) ListEnrollments(userID uint) ([]model.Enrollment, error) {
	return s.Repo.ListEnrollmentsByUser(userID)
}

func (s *CourseService) GetEnrollment(userID, courseID uint) (*model.Enrollment, error) {
	e, err := s.Repo.FindEnrollment(userID, courseID)
	if err != nil {
		return nil, util.ErrNotEnrolled
	}
	return e, nil
}
