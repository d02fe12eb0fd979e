package service

import (
	"time"

	"inr99_academy_backend/internal/model"
	"inr99_academy_backend/internal/repository"
)

type DashboardService struct {
	Users         *repository.UserRepository
	Courses       *repository.CourseRepository
	Attempts      *repository.AttemptRepository
	Badges        *repository.BadgeRepository
	Subscriptions *repository.SubscriptionRepository
	Sessions      *repository.LiveSessionRepository
}

func NewDashboardService(users *repository.UserRepository, courses *repository.CourseRepository, attempts *repository.AttemptRepository, badges *repository.BadgeRepository, subscriptions *repository.SubscriptionRepository, sessions *repository.LiveSessionRepository) *DashboardService {
	return &DashboardService{
		Users:         users,
		Courses:       courses,
		Attempts:      attempts,
		Badges:        badges,
		Subscriptions: subscriptions,
		Sessions:      sessions,
	}
}

type StudentDashboard struct {
	Subscription     *model.Subscription       `json:"subscription,omitempty"`
	Enrollments      []model.Enrollment        `json:"enrollments"`
	RecentAttempts   []model.AssessmentAttempt `json:"recentAttempts"`
	Badges           []model.SkillBadge        `json:"badges"`
	UpcomingSessions []model.LiveSession       `json:"upcomingSessions"`
}

func (s *DashboardService) StudentDashboard(userID uint) (*StudentDashboard, error) {
	dash := &StudentDashboard{}

	if sub, err := s.Subscriptions.CurrentByUser(userID); err == nil && sub.Usable(time.Now()) {
		dash.Subscription = sub
	}

	enrollments, err := s.Courses.ListEnrollmentsByUser(userID)
	if err != nil {
		return nil, err
	}
	dash.Enrollments = enrollments

	attempts, err := s.Attempts.ListRecentByUser(userID, 10)
	if err != nil {
		return nil, err
	}
	dash.RecentAttempts = attempts

	badges, err := s.Badges.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	dash.Badges = badges

	sessions, err := s.Sessions.ListUpcomingForUser(userID, 5)
	if err != nil {
		return nil, err
	}
	dash.UpcomingSessions = sessions

	return dash, nil
}

type InstructorCourseStats struct {
	Course      model.Course                    `json:"course"`
	Enrollments int64                           `json:"enrollments"`
	PassRates   []repository.AssessmentPassRate `json:"passRates"`
}

type InstructorDashboard struct {
	CourseCount      int                     `json:"courseCount"`
	TotalEnrollments int64                   `json:"totalEnrollments"`
	Courses          []InstructorCourseStats `json:"courses"`
}

func (s *DashboardService) InstructorDashboard(instructorID uint) (*InstructorDashboard, error) {
	courses, err := s.Courses.ListByInstructor(instructorID)
	if err != nil {
		return nil, err
	}

	dash := &InstructorDashboard{CourseCount: len(courses)}
	for _, course := range courses {
		enrolled, err := s.Courses.CountEnrollments(course.ID)
		if err != nil {
			return nil, err
		}
		rates, err := s.Attempts.PassRatesByCourse(course.ID)
		if err != nil {
			return nil, err
		}
		dash.TotalEnrollments += enrolled
		dash.Courses = append(dash.Courses, InstructorCourseStats{
			Course:      course,
			Enrollments: enrolled,
			PassRates:   rates,
		})
	}
	return dash, nil
}

type AdminStats struct {
	UsersByRole           map[string]int64 `json:"usersByRole"`
	SubscriptionsByStatus map[string]int64 `json:"subscriptionsByStatus"`
	RevenuePaise          int64            `json:"revenuePaise"`
}

func (s *DashboardService) AdminStats() (*AdminStats, error) {
	roles, err := s.Users.CountByRole()
	if err != nil {
		return nil, err
	}
	subs, err := s.Subscriptions.CountByStatus()
	if err != nil {
		return nil, err
	}
	revenue, err := s.Subscriptions.TotalRevenuePaise()
	if err != nil {
		return nil, err
	}
	return &AdminStats{
		UsersByRole:           roles,
		SubscriptionsByStatus: subs,
		RevenuePaise:          revenue,
	}, nil
}
