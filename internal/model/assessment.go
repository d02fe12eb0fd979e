package model

import "encoding/json"

type AssessmentType string

const (
	AssessmentQuiz     AssessmentType = "QUIZ"
	AssessmentPractice AssessmentType = "PRACTICE"
	AssessmentScenario AssessmentType = "SCENARIO"
)

type QuestionType string

const (
	QuestionMultipleChoice QuestionType = "MULTIPLE_CHOICE"
	QuestionTrueFalse      QuestionType = "TRUE_FALSE"
	QuestionShortAnswer    QuestionType = "SHORT_ANSWER"
)

// swagger:model Assessment
type Assessment struct {
	BaseModel
	Title       string         `gorm:"size:255;not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Type        AssessmentType `gorm:"size:20;default:'QUIZ'" json:"type"`
	CourseID    uint           `gorm:"index" json:"courseId"`
	LessonID    *uint          `gorm:"index" json:"lessonId,omitempty"`
	Active      bool           `gorm:"default:true;index" json:"active"`
}

func (Assessment) TableName() string {
	return "assessments"
}

// swagger:model AssessmentQuestion
type AssessmentQuestion struct {
	BaseModel
	AssessmentID uint            `gorm:"index" json:"assessmentId"`
	QuestionType QuestionType    `gorm:"size:30;not null" json:"questionType"`
	Prompt       string          `gorm:"type:text;not null" json:"prompt"`
	Options      json.RawMessage `gorm:"type:json" json:"options,omitempty"` // JSON: []string, empty for SHORT_ANSWER
	Answer       string          `gorm:"type:text" json:"-"`                 // never serialized to students
	Explanation  string          `gorm:"type:text" json:"explanation,omitempty"`
	Order        int             `gorm:"default:0" json:"order"`
}

func (AssessmentQuestion) TableName() string {
	return "assessment_questions"
}
