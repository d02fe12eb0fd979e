package util

import "errors"

var (
	ErrUserNotFound          = errors.New("user not found")
	ErrEmailRegistered       = errors.New("email already registered")
	ErrPermissionDenied      = errors.New("permission denied")
	ErrAssessmentNotFound    = errors.New("assessment not found")
	ErrAssessmentNoQuestions = errors.New("assessment has no questions")
	ErrInvalidAnswers        = errors.New("invalid answer for question type")
	ErrCourseNotFound        = errors.New("course not found")
	ErrLessonNotFound        = errors.New("lesson not found")
	ErrUnsupportedMedia      = errors.New("unsupported media format")
	ErrNotEnrolled           = errors.New("not enrolled in course")
	ErrCourseNotCompleted    = errors.New("course not completed")
	ErrPlanNotFound          = errors.New("subscription plan not found")
	ErrPaymentNotFound       = errors.New("payment not found")
	ErrNoActiveSubscription  = errors.New("no active subscription")
	ErrSubscriptionRequired  = errors.New("active subscription required")
	ErrSessionNotFound       = errors.New("live session not found")
	ErrSessionNotJoinable    = errors.New("live session not joinable yet")
)
