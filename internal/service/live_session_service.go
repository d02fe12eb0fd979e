package service

import (
	"time"

	"inr99_academy_backend/internal/model"
	"inr99_academy_backend/internal/repository"
	"inr99_academy_backend/internal/util"
	"inr99_academy_backend/pkg/logger"

	"go.uber.org/zap"
)

// joinWindowLead is how early the meeting link is handed out.
const joinWindowLead = 10 * time.Minute

type LiveSessionService struct {
	Repo    *repository.LiveSessionRepository
	Courses *repository.CourseRepository
}

func NewLiveSessionService(repo *repository.LiveSessionRepository, courses *repository.CourseRepository) *LiveSessionService {
	return &LiveSessionService{Repo: repo, Courses: courses}
}

type LiveSessionRequest struct {
	CourseID    uint      `json:"courseId" binding:"required"`
	Title       string    `json:"title" binding:"required"`
	ScheduledAt time.Time `json:"scheduledAt" binding:"required"`
	DurationMin int       `json:"durationMin"`
	MeetingURL  string    `json:"meetingUrl" binding:"required"`
}

func (s *LiveSessionService) Create(instructorID uint, req LiveSessionRequest) (*model.LiveSession, error) {
	if _, err := s.Courses.FindByID(req.CourseID); err != nil {
		return nil, util.ErrCourseNotFound
	}

	session := &model.LiveSession{
		CourseID:     req.CourseID,
		InstructorID: instructorID,
		Title:        req.Title,
		ScheduledAt:  req.ScheduledAt,
		DurationMin:  req.DurationMin,
		MeetingURL:   req.MeetingURL,
		Status:       model.SessionScheduled,
	}
	if session.DurationMin <= 0 {
		session.DurationMin = 60
	}
	if err := s.Repo.Create(session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *LiveSessionService) Update(instructorID, id uint, req LiveSessionRequest) (*model.LiveSession, error) {
	session, err := s.Repo.FindByID(id)
	if err != nil {
		return nil, util.ErrSessionNotFound
	}
	if session.InstructorID != instructorID {
		return nil, util.ErrPermissionDenied
	}

	session.Title = req.Title
	session.ScheduledAt = req.ScheduledAt
	if req.DurationMin > 0 {
		session.DurationMin = req.DurationMin
	}
	if req.MeetingURL != "" {
		session.MeetingURL = req.MeetingURL
	}

	if err := s.Repo.Update(session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *LiveSessionService) Delete(instructorID, id uint) error {
	session, err := s.Repo.FindByID(id)
	if err != nil {
		return util.ErrSessionNotFound
	}
	if session.InstructorID != instructorID {
		return util.ErrPermissionDenied
	}
	return s.Repo.Delete(id)
}

func (s *LiveSessionService) ListByInstructor(instructorID uint) ([]model.LiveSession, error) {
	return s.Repo.ListByInstructor(instructorID)
}

// ListUpcoming returns sessions for courses the user is enrolled in.
func (s *LiveSessionService) ListUpcoming(userID uint, limit int) ([]model.LiveSession, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	return s.Repo.ListUpcomingForUser(userID, limit)
}

type JoinInfo struct {
	SessionID  uint      `json:"sessionId"`
	Title      string    `json:"title"`
	MeetingURL string    `json:"meetingUrl"`
	EndsAt     time.Time `json:"endsAt"`
}

// Join hands out the meeting link inside the join window: from ten minutes
// before the start until the scheduled end.
func (s *LiveSessionService) Join(userID, sessionID uint) (*JoinInfo, error) {
	session, err := s.Repo.FindByID(sessionID)
	if err != nil {
		return nil, util.ErrSessionNotFound
	}

	if _, err := s.Courses.FindEnrollment(userID, session.CourseID); err != nil {
		return nil, util.ErrNotEnrolled
	}

	now := time.Now()
	if now.Before(session.ScheduledAt.Add(-joinWindowLead)) || now.After(session.EndsAt()) {
		return nil, util.ErrSessionNotJoinable
	}
	if session.Status == model.SessionEnded {
		return nil, util.ErrSessionNotJoinable
	}

	return &JoinInfo{
		SessionID:  session.ID,
		Title:      session.Title,
		MeetingURL: session.MeetingURL,
		EndsAt:     session.EndsAt(),
	}, nil
}

// SweepStatuses advances scheduled sessions to live and live sessions to
// ended as the clock passes them. Called from a ticker.
func (s *LiveSessionService) SweepStatuses() {
	if err := s.Repo.SweepStatuses(time.Now()); err != nil {
		logger.Log.Warn("live session sweep failed", zap.Error(err))
	}
}
