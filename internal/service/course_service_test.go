package service

import (
	"errors"
	"testing"

	"inr99_academy_backend/internal/model"
	"inr99_academy_backend/internal/repository"
	"inr99_academy_backend/internal/util"

	"gorm.io/gorm"
)

func newCourseFixture(t *testing.T) (*CourseService, *gorm.DB, *model.User, *model.Course, []model.Lesson) {
	t.Helper()
	db := testDB(t)
	instructor := createUser(t, db, "instructor@inr99.test", model.Instructor)
	student := createUser(t, db, "student@inr99.test", model.Student)
	course := createCourse(t, db, instructor.ID, true)

	lessons := make([]model.Lesson, 4)
	for i := range lessons {
		lessons[i] = model.Lesson{CourseID: course.ID, Title: "Lesson", Order: i + 1}
		if err := db.Create(&lessons[i]).Error; err != nil {
			t.Fatalf("create lesson: %v", err)
		}
	}

	svc := NewCourseService(repository.NewCourseRepository(db), nil)

	if _, err := svc.Enroll(student.ID, course.ID); err != nil {
		t.Fatalf("enroll: %v", err)
	}
	return svc, db, student, course, lessons
}

func TestEnroll_IdempotentAndPublishedOnly(t *testing.T) {
	svc, db, student, course, _ := newCourseFixture(t)

	// Enrolling again returns the same row.
	again, err := svc.Enroll(student.ID, course.ID)
	if err != nil {
		t.Fatalf("re-enroll: %v", err)
	}
	var count int64
	if err := db.Model(&model.Enrollment{}).Where("user_id = ?", student.ID).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("enrollments = %d, want 1", count)
	}
	if again.CourseID != course.ID {
		t.Fatalf("unexpected enrollment %+v", again)
	}

	// Draft courses are not enrollable.
	draft := &model.Course{Title: "Draft", Slug: "draft", InstructorID: course.InstructorID}
	if err := db.Create(draft).Error; err != nil {
		t.Fatalf("create draft: %v", err)
	}
	if _, err := svc.Enroll(student.ID, draft.ID); !errors.Is(err, util.ErrCourseNotFound) {
		t.Fatalf("err = %v, want ErrCourseNotFound", err)
	}
}

func TestCompleteLesson_TracksProgressToCompletion(t *testing.T) {
	svc, _, student, _, lessons := newCourseFixture(t)

	e, err := svc.CompleteLesson(student.ID, lessons[0].ID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if e.CompletedLessons != 1 || e.ProgressPct != 25 {
		t.Fatalf("progress = %d lessons %d%%, want 1 lesson 25%%", e.CompletedLessons, e.ProgressPct)
	}
	if e.CompletedAt != nil {
		t.Fatalf("course marked complete too early")
	}

	// Re-completing the same lesson is a no-op.
	e, err = svc.CompleteLesson(student.ID, lessons[0].ID)
	if err != nil {
		t.Fatalf("re-complete: %v", err)
	}
	if e.CompletedLessons != 1 {
		t.Fatalf("re-complete bumped the counter to %d", e.CompletedLessons)
	}

	for _, l := range lessons[1:] {
		if e, err = svc.CompleteLesson(student.ID, l.ID); err != nil {
			t.Fatalf("complete: %v", err)
		}
	}
	if e.ProgressPct != 100 || e.CompletedAt == nil {
		t.Fatalf("final enrollment = %+v, want 100%% with completion time", e)
	}
}

func TestCompleteLesson_RequiresEnrollment(t *testing.T) {
	svc, db, _, _, lessons := newCourseFixture(t)
	outsider := createUser(t, db, "outsider@inr99.test", model.Student)

	if _, err := svc.CompleteLesson(outsider.ID, lessons[0].ID); !errors.Is(err, util.ErrNotEnrolled) {
		t.Fatalf("err = %v, want ErrNotEnrolled", err)
	}
	if _, err := svc.CompleteLesson(outsider.ID, 9999); !errors.Is(err, util.ErrLessonNotFound) {
		t.Fatalf("err = %v, want ErrLessonNotFound", err)
	}
}

func TestGetOutline(t *testing.T) {
	svc, db, student, course, lessons := newCourseFixture(t)

	if err := db.Create(&model.CourseModule{CourseID: course.ID, Title: "Unit 1", Order: 1}).Error; err != nil {
		t.Fatalf("create module: %v", err)
	}

	// Guest view carries no enrollment.
	outline, err := svc.GetOutline(course.ID, 0)
	if err != nil {
		t.Fatalf("outline: %v", err)
	}
	if outline.Course.ID != course.ID || len(outline.Modules) != 1 || len(outline.Lessons) != len(lessons) {
		t.Fatalf("outline = %d modules %d lessons", len(outline.Modules), len(outline.Lessons))
	}
	if outline.Enrollment != nil {
		t.Fatalf("guest outline should not carry an enrollment")
	}

	// An enrolled caller sees their own progress inline.
	enrolled, err := svc.GetOutline(course.ID, student.ID)
	if err != nil {
		t.Fatalf("outline: %v", err)
	}
	if enrolled.Enrollment == nil || enrolled.Enrollment.UserID != student.ID {
		t.Fatalf("enrollment missing from outline")
	}
}

func TestCourseOwnership(t *testing.T) {
	svc, db, _, course, _ := newCourseFixture(t)
	rival := createUser(t, db, "rival@inr99.test", model.Instructor)

	req := CourseRequest{Title: course.Title, Slug: course.Slug, IsPublished: true}
	if _, err := svc.UpdateCourse(rival.ID, course.ID, req); !errors.Is(err, util.ErrPermissionDenied) {
		t.Fatalf("update err = %v, want ErrPermissionDenied", err)
	}
	if err := svc.DeleteCourse(rival.ID, course.ID); !errors.Is(err, util.ErrPermissionDenied) {
		t.Fatalf("delete err = %v, want ErrPermissionDenied", err)
	}

	// The owner still can.
	if _, err := svc.UpdateCourse(course.InstructorID, course.ID, req); err != nil {
		t.Fatalf("owner update: %v", err)
	}
}

func TestIsLessonFree(t *testing.T) {
	svc, db, _, course, lessons := newCourseFixture(t)

	preview := &model.Lesson{CourseID: course.ID, Title: "Preview", Order: 99, Free: true}
	if err := db.Create(preview).Error; err != nil {
		t.Fatalf("create lesson: %v", err)
	}

	free, err := svc.Repo.IsLessonFree(preview.ID)
	if err != nil || !free {
		t.Fatalf("free = %v err = %v, want true", free, err)
	}
	free, err = svc.Repo.IsLessonFree(lessons[0].ID)
	if err != nil || free {
		t.Fatalf("free = %v err = %v, want false", free, err)
	}
}
