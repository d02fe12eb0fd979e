package model

import "time"

// swagger:model Course
type Course struct {
	BaseModel
	Title        string `gorm:"size:255;not null" json:"title"`
	Slug         string `gorm:"size:255;uniqueIndex" json:"slug"`
	Description  string `gorm:"type:text" json:"description"`
	Category     string `gorm:"size:100;index" json:"category"`
	Level        string `gorm:"size:50" json:"level"` // beginner, intermediate, advanced
	PricePaise   int64  `gorm:"default:0" json:"pricePaise"`
	IsPremium    bool   `gorm:"default:false" json:"isPremium"`
	IsPublished  bool   `gorm:"default:false;index" json:"isPublished"`
	InstructorID uint   `gorm:"index" json:"instructorId"`
	Instructor   *User  `gorm:"foreignKey:InstructorID" json:"instructor,omitempty"`
	ThumbnailURL string `gorm:"size:255" json:"thumbnailUrl"`
}

func (Course) TableName() string {
	return "courses"
}

// swagger:model CourseModule
type CourseModule struct {
	BaseModel
	CourseID uint   `gorm:"index" json:"courseId"`
	Title    string `gorm:"size:255;not null" json:"title"`
	Order    int    `gorm:"default:0" json:"order"`
}

func (CourseModule) TableName() string {
	return "course_modules"
}

// swagger:model Lesson
type Lesson struct {
	BaseModel
	CourseID      uint   `gorm:"index" json:"courseId"`
	ModuleID      uint   `gorm:"index" json:"moduleId"`
	Title         string `gorm:"size:255;not null" json:"title"`
	Order         int    `gorm:"default:0" json:"order"`
	ContentMD     string `gorm:"type:text" json:"contentMd"`
	TranscriptMD  string `gorm:"type:text" json:"transcriptMd"`
	VideoObject   string `gorm:"size:255" json:"videoObject"` // storage object key
	AudioObject   string `gorm:"size:255" json:"audioObject"`
	PosterObject  string `gorm:"size:255" json:"posterObject"`
	DurationSec   int    `gorm:"default:0" json:"durationSec"`
	Width         int    `gorm:"default:0" json:"width"`
	Height        int    `gorm:"default:0" json:"height"`
	HasAudioTrack bool   `gorm:"default:false" json:"hasAudioTrack"`
	Free          bool   `gorm:"default:false" json:"free"` // viewable without subscription
}

func (Lesson) TableName() string {
	return "lessons"
}

// Enrollment tracks a student's membership and progress in one course.
// swagger:model Enrollment
type Enrollment struct {
	BaseModel
	UserID           uint       `gorm:"index:idx_enroll_user_course,unique" json:"userId"`
	CourseID         uint       `gorm:"index:idx_enroll_user_course,unique" json:"courseId"`
	Course           *Course    `gorm:"foreignKey:CourseID" json:"course,omitempty"`
	CompletedLessons int        `gorm:"default:0" json:"completedLessons"`
	ProgressPct      int        `gorm:"default:0" json:"progressPct"`
	CompletedAt      *time.Time `json:"completedAt,omitempty"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}

// LessonCompletion is one student/lesson tick, the source of truth behind
// Enrollment.ProgressPct.
type LessonCompletion struct {
	BaseModel
	UserID   uint `gorm:"index:idx_lesson_done_user,unique" json:"userId"`
	LessonID uint `gorm:"index:idx_lesson_done_user,unique" json:"lessonId"`
	CourseID uint `gorm:"index" json:"courseId"`
}

func (LessonCompletion) TableName() string {
	return "lesson_completions"
}
