package service

import (
	"errors"
	"testing"
	"time"

	"inr99_academy_backend/internal/model"
	"inr99_academy_backend/internal/repository"
	"inr99_academy_backend/internal/util"

	"gorm.io/gorm"
)

func newLiveSessionFixture(t *testing.T) (*LiveSessionService, *gorm.DB, *model.User, *model.Course) {
	t.Helper()
	db := testDB(t)
	instructor := createUser(t, db, "instructor@inr99.test", model.Instructor)
	student := createUser(t, db, "student@inr99.test", model.Student)
	course := createCourse(t, db, instructor.ID, true)

	if err := db.Create(&model.Enrollment{UserID: student.ID, CourseID: course.ID}).Error; err != nil {
		t.Fatalf("enroll: %v", err)
	}

	svc := NewLiveSessionService(repository.NewLiveSessionRepository(db), repository.NewCourseRepository(db))
	return svc, db, student, course
}

func scheduleSession(t *testing.T, svc *LiveSessionService, instructorID, courseID uint, at time.Time) *model.LiveSession {
	t.Helper()
	session, err := svc.Create(instructorID, LiveSessionRequest{
		CourseID:    courseID,
		Title:       "Speaking practice",
		ScheduledAt: at,
		DurationMin: 60,
		MeetingURL:  "https://meet.example.com/abc",
	})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	return session
}

func TestJoin_InsideWindowReturnsMeetingURL(t *testing.T) {
	svc, _, student, course := newLiveSessionFixture(t)
	session := scheduleSession(t, svc, course.InstructorID, course.ID, time.Now().Add(5*time.Minute))

	info, err := svc.Join(student.ID, session.ID)
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if info.MeetingURL != "https://meet.example.com/abc" {
		t.Fatalf("meeting url = %q", info.MeetingURL)
	}
}

func TestJoin_OutsideWindowRejected(t *testing.T) {
	svc, _, student, course := newLiveSessionFixture(t)

	tests := []struct {
		name string
		at   time.Time
	}{
		{"too early", time.Now().Add(2 * time.Hour)},
		{"already over", time.Now().Add(-3 * time.Hour)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := scheduleSession(t, svc, course.InstructorID, course.ID, tt.at)
			if _, err := svc.Join(student.ID, session.ID); !errors.Is(err, util.ErrSessionNotJoinable) {
				t.Fatalf("err = %v, want ErrSessionNotJoinable", err)
			}
		})
	}
}

func TestJoin_RequiresEnrollment(t *testing.T) {
	svc, db, _, course := newLiveSessionFixture(t)
	outsider := createUser(t, db, "outsider@inr99.test", model.Student)
	session := scheduleSession(t, svc, course.InstructorID, course.ID, time.Now().Add(5*time.Minute))

	if _, err := svc.Join(outsider.ID, session.ID); !errors.Is(err, util.ErrNotEnrolled) {
		t.Fatalf("err = %v, want ErrNotEnrolled", err)
	}
}

func TestSweepStatuses_AdvancesLifecycle(t *testing.T) {
	svc, db, _, course := newLiveSessionFixture(t)

	running := scheduleSession(t, svc, course.InstructorID, course.ID, time.Now().Add(-10*time.Minute))
	over := scheduleSession(t, svc, course.InstructorID, course.ID, time.Now().Add(-3*time.Hour))
	upcoming := scheduleSession(t, svc, course.InstructorID, course.ID, time.Now().Add(2*time.Hour))

	svc.SweepStatuses()

	check := func(id uint, want model.LiveSessionStatus) {
		t.Helper()
		var s model.LiveSession
		if err := db.First(&s, id).Error; err != nil {
			t.Fatalf("load session: %v", err)
		}
		if s.Status != want {
			t.Errorf("session %d status = %q, want %q", id, s.Status, want)
		}
	}
	check(running.ID, model.SessionLive)
	check(over.ID, model.SessionEnded)
	check(upcoming.ID, model.SessionScheduled)
}

func TestListUpcoming_OnlyEnrolledCourses(t *testing.T) {
	svc, db, student, course := newLiveSessionFixture(t)

	otherInstructor := createUser(t, db, "other@inr99.test", model.Instructor)
	otherCourse := &model.Course{Title: "Other", Slug: "other", InstructorID: otherInstructor.ID, IsPublished: true}
	if err := db.Create(otherCourse).Error; err != nil {
		t.Fatalf("create course: %v", err)
	}

	scheduleSession(t, svc, course.InstructorID, course.ID, time.Now().Add(time.Hour))
	scheduleSession(t, svc, otherInstructor.ID, otherCourse.ID, time.Now().Add(time.Hour))

	sessions, err := svc.ListUpcoming(student.ID, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(sessions) != 1 || sessions[0].CourseID != course.ID {
		t.Fatalf("sessions = %+v, want only the enrolled course's session", sessions)
	}
}

func TestUpdateAndDelete_RequireOwnership(t *testing.T) {
	svc, db, _, course := newLiveSessionFixture(t)
	session := scheduleSession(t, svc, course.InstructorID, course.ID, time.Now().Add(time.Hour))
	rival := createUser(t, db, "rival@inr99.test", model.Instructor)

	req := LiveSessionRequest{CourseID: course.ID, Title: "Hijacked", ScheduledAt: session.ScheduledAt, MeetingURL: session.MeetingURL}
	if _, err := svc.Update(rival.ID, session.ID, req); !errors.Is(err, util.ErrPermissionDenied) {
		t.Fatalf("update err = %v, want ErrPermissionDenied", err)
	}
	if err := svc.Delete(rival.ID, session.ID); !errors.Is(err, util.ErrPermissionDenied) {
		t.Fatalf("delete err = %v, want ErrPermissionDenied", err)
	}

	updated, err := svc.Update(course.InstructorID, session.ID, req)
	if err != nil {
		t.Fatalf("owner update: %v", err)
	}
	if updated.Title != "Hijacked" {
		t.Fatalf("title = %q", updated.Title)
	}
	if err := svc.Delete(course.InstructorID, session.ID); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
}
