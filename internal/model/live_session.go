package model

import "time"

type LiveSessionStatus string

const (
	SessionScheduled LiveSessionStatus = "scheduled"
	SessionLive      LiveSessionStatus = "live"
	SessionEnded     LiveSessionStatus = "ended"
)

// swagger:model LiveSession
type LiveSession struct {
	BaseModel
	CourseID     uint              `gorm:"index" json:"courseId"`
	InstructorID uint              `gorm:"index" json:"instructorId"`
	Title        string            `gorm:"size:255;not null" json:"title"`
	ScheduledAt  time.Time         `gorm:"index" json:"scheduledAt"`
	DurationMin  int               `gorm:"default:60" json:"durationMin"`
	MeetingURL   string            `gorm:"size:512" json:"-"` // handed out only inside the join window
	Status       LiveSessionStatus `gorm:"size:20;default:'scheduled';index" json:"status"`
}

func (LiveSession) TableName() string {
	return "live_sessions"
}

// EndsAt is the scheduled end, used both for the join window and for the
// status sweeper.
func (s *LiveSession) EndsAt() time.Time {
	return s.ScheduledAt.Add(time.Duration(s.DurationMin) * time.Minute)
}
