package model

import "encoding/json"

// AssessmentAttempt is one graded submission. Attempts are append-only: a
// retake creates a new row and never touches prior ones.
// swagger:model AssessmentAttempt
type AssessmentAttempt struct {
	BaseModel
	UserID         uint            `gorm:"index:idx_attempt_user_assessment" json:"userId"`
	User           *User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	AssessmentID   uint            `gorm:"index:idx_attempt_user_assessment" json:"assessmentId"`
	Answers        json.RawMessage `gorm:"type:json" json:"answers"`
	Score          int             `gorm:"default:0" json:"score"` // 0-100
	CorrectAnswers int             `gorm:"default:0" json:"correctAnswers"`
	TotalQuestions int             `gorm:"default:0" json:"totalQuestions"`
	Passed         bool            `gorm:"default:false" json:"passed"`
}

func (AssessmentAttempt) TableName() string {
	return "assessment_attempts"
}
