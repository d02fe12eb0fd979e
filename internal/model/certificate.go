package model

import "time"

// swagger:model Certificate
type Certificate struct {
	BaseModel
	UserID    uint      `gorm:"index:idx_cert_user_course,unique" json:"userId"`
	CourseID  uint      `gorm:"index:idx_cert_user_course,unique" json:"courseId"`
	Course    *Course   `gorm:"foreignKey:CourseID" json:"course,omitempty"`
	Serial    string    `gorm:"size:36;uniqueIndex" json:"serial"`
	ObjectKey string    `gorm:"size:255" json:"objectKey"`
	IssuedAt  time.Time `json:"issuedAt"`
}

func (Certificate) TableName() string {
	return "certificates"
}
