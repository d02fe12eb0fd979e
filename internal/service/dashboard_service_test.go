package service

import (
	"testing"
	"time"

	"gorm.io/gorm"

	"inr99_academy_backend/internal/model"
	"inr99_academy_backend/internal/repository"
)

func newDashboardFixture(t *testing.T) (*DashboardService, *gorm.DB) {
	t.Helper()
	db := testDB(t)
	svc := NewDashboardService(
		repository.NewUserRepository(db),
		repository.NewCourseRepository(db),
		repository.NewAttemptRepository(db),
		repository.NewBadgeRepository(db),
		repository.NewSubscriptionRepository(db),
		repository.NewLiveSessionRepository(db),
	)
	return svc, db
}

func TestStudentDashboard_AggregatesActivity(t *testing.T) {
	svc, db := newDashboardFixture(t)

	instructor := createUser(t, db, "teach@inr99.test", model.Instructor)
	student := createUser(t, db, "student@inr99.test", model.Student)
	course := createCourse(t, db, instructor.ID, true)

	if err := db.Create(&model.Enrollment{UserID: student.ID, CourseID: course.ID}).Error; err != nil {
		t.Fatalf("enroll: %v", err)
	}

	assessment := &model.Assessment{Title: "Greetings Quiz", CourseID: course.ID, Active: true}
	if err := db.Create(assessment).Error; err != nil {
		t.Fatalf("create assessment: %v", err)
	}
	for _, passed := range []bool{false, true} {
		attempt := &model.AssessmentAttempt{UserID: student.ID, AssessmentID: assessment.ID, Score: 50, Passed: passed}
		if passed {
			attempt.Score = 80
		}
		if err := db.Create(attempt).Error; err != nil {
			t.Fatalf("create attempt: %v", err)
		}
	}
	if err := db.Create(&model.SkillBadge{UserID: student.ID, AssessmentID: assessment.ID, Name: "Greetings Quiz"}).Error; err != nil {
		t.Fatalf("create badge: %v", err)
	}

	plan := &model.SubscriptionPlan{Code: "monthly-99", Name: "Monthly", PricePaise: 9900, DurationDays: 30, Active: true}
	if err := db.Create(plan).Error; err != nil {
		t.Fatalf("create plan: %v", err)
	}
	starts := time.Now().Add(-time.Hour)
	expires := time.Now().Add(29 * 24 * time.Hour)
	sub := &model.Subscription{UserID: student.ID, PlanID: plan.ID, Status: model.SubscriptionActive, StartsAt: &starts, ExpiresAt: &expires}
	if err := db.Create(sub).Error; err != nil {
		t.Fatalf("create subscription: %v", err)
	}

	session := &model.LiveSession{CourseID: course.ID, InstructorID: instructor.ID, Title: "Doubt Clearing", ScheduledAt: time.Now().Add(2 * time.Hour), DurationMin: 60}
	if err := db.Create(session).Error; err != nil {
		t.Fatalf("create session: %v", err)
	}

	dash, err := svc.StudentDashboard(student.ID)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if dash.Subscription == nil || dash.Subscription.ID != sub.ID {
		t.Errorf("subscription missing from dashboard")
	}
	if len(dash.Enrollments) != 1 {
		t.Errorf("enrollments = %d, want 1", len(dash.Enrollments))
	}
	if len(dash.RecentAttempts) != 2 {
		t.Errorf("recent attempts = %d, want 2", len(dash.RecentAttempts))
	}
	if len(dash.Badges) != 1 {
		t.Errorf("badges = %d, want 1", len(dash.Badges))
	}
	if len(dash.UpcomingSessions) != 1 {
		t.Errorf("upcoming sessions = %d, want 1", len(dash.UpcomingSessions))
	}
}

func TestStudentDashboard_OmitsLapsedSubscription(t *testing.T) {
	svc, db := newDashboardFixture(t)

	student := createUser(t, db, "student@inr99.test", model.Student)
	expires := time.Now().Add(-24 * time.Hour)
	sub := &model.Subscription{UserID: student.ID, PlanID: 1, Status: model.SubscriptionExpired, ExpiresAt: &expires}
	if err := db.Create(sub).Error; err != nil {
		t.Fatalf("create subscription: %v", err)
	}

	dash, err := svc.StudentDashboard(student.ID)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if dash.Subscription != nil {
		t.Errorf("expired subscription should not appear on the dashboard")
	}
}

func TestInstructorDashboard_CountsEnrollmentsAndPassRates(t *testing.T) {
	svc, db := newDashboardFixture(t)

	instructor := createUser(t, db, "teach@inr99.test", model.Instructor)
	course := createCourse(t, db, instructor.ID, true)

	assessment := &model.Assessment{Title: "Final Quiz", CourseID: course.ID, Active: true}
	if err := db.Create(assessment).Error; err != nil {
		t.Fatalf("create assessment: %v", err)
	}

	for i, passed := range []bool{true, true, false, true} {
		student := createUser(t, db, "s"+string(rune('a'+i))+"@inr99.test", model.Student)
		if err := db.Create(&model.Enrollment{UserID: student.ID, CourseID: course.ID}).Error; err != nil {
			t.Fatalf("enroll: %v", err)
		}
		if err := db.Create(&model.AssessmentAttempt{UserID: student.ID, AssessmentID: assessment.ID, Passed: passed}).Error; err != nil {
			t.Fatalf("create attempt: %v", err)
		}
	}

	dash, err := svc.InstructorDashboard(instructor.ID)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if dash.CourseCount != 1 || dash.TotalEnrollments != 4 {
		t.Fatalf("courses = %d, enrollments = %d", dash.CourseCount, dash.TotalEnrollments)
	}
	if len(dash.Courses) != 1 || len(dash.Courses[0].PassRates) != 1 {
		t.Fatalf("course stats = %+v", dash.Courses)
	}
	rate := dash.Courses[0].PassRates[0]
	if rate.Attempts != 4 || rate.Passed != 3 {
		t.Errorf("pass rate row = %+v", rate)
	}
	if rate.PassRate < 0.74 || rate.PassRate > 0.76 {
		t.Errorf("pass rate = %f, want 0.75", rate.PassRate)
	}
}

func TestAdminStats_TalliesUsersSubscriptionsAndRevenue(t *testing.T) {
	svc, db := newDashboardFixture(t)

	createUser(t, db, "a@inr99.test", model.Student)
	createUser(t, db, "b@inr99.test", model.Student)
	createUser(t, db, "c@inr99.test", model.Instructor)

	plan := &model.SubscriptionPlan{Code: "monthly-99", Name: "Monthly", PricePaise: 9900, DurationDays: 30, Active: true}
	if err := db.Create(plan).Error; err != nil {
		t.Fatalf("create plan: %v", err)
	}
	sub := &model.Subscription{UserID: 1, PlanID: plan.ID, Status: model.SubscriptionActive}
	if err := db.Create(sub).Error; err != nil {
		t.Fatalf("create subscription: %v", err)
	}
	payments := []model.Payment{
		{UUIDBase: model.UUIDBase{ID: model.GenerateUUID()}, UserID: 1, SubscriptionID: sub.ID, AmountPaise: 9900, Status: model.PaymentPaid},
		{UUIDBase: model.UUIDBase{ID: model.GenerateUUID()}, UserID: 2, SubscriptionID: sub.ID, AmountPaise: 9900, Status: model.PaymentPaid},
		{UUIDBase: model.UUIDBase{ID: model.GenerateUUID()}, UserID: 2, SubscriptionID: sub.ID, AmountPaise: 9900, Status: model.PaymentFailed},
	}
	for i := range payments {
		if err := db.Create(&payments[i]).Error; err != nil {
			t.Fatalf("create payment: %v", err)
		}
	}

	stats, err := svc.AdminStats()
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.UsersByRole["student"] != 2 || stats.UsersByRole["instructor"] != 1 {
		t.Errorf("users by role = %v", stats.UsersByRole)
	}
	if stats.SubscriptionsByStatus["active"] != 1 {
		t.Errorf("subscriptions by status = %v", stats.SubscriptionsByStatus)
	}
	if stats.RevenuePaise != 19800 {
		t.Errorf("revenue = %d, want 19800", stats.RevenuePaise)
	}
}
