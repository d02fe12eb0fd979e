package model

// SkillBadge is issued once per user per assessment, on the first passing
// attempt. The unique index makes repeated issuance a no-op.
// swagger:model SkillBadge
type SkillBadge struct {
	BaseModel
	UserID       uint   `gorm:"index:idx_badge_user_assessment,unique" json:"userId"`
	AssessmentID uint   `gorm:"index:idx_badge_user_assessment,unique" json:"assessmentId"`
	Name         string `gorm:"size:255" json:"name"`
}

func (SkillBadge) TableName() string {
	return "skill_badges"
}
