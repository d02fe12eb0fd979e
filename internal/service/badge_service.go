package service

import (
	"inr99_academy_backend/internal/model"
	"inr99_academy_backend/internal/repository"
	"inr99_academy_backend/pkg/logger"

	"go.uber.org/zap"
)

type BadgeService struct {
	Repo *repository.BadgeRepository
}

func NewBadgeService(repo *repository.BadgeRepository) *BadgeService {
	return &BadgeService{Repo: repo}
}

// IssueForAssessment awards the skill badge tied to an assessment. Callers
// may invoke it on every pass; issuance is idempotent per user+assessment.
func (s *BadgeService) IssueForAssessment(userID uint, assessment *model.Assessment) error {
	badge := &model.SkillBadge{
		UserID:       userID,
		AssessmentID: assessment.ID,
		Name:         assessment.Title,
	}

	if _, err := s.Repo.Issue(badge); err != nil {
		logger.Log.Error("badge issuance failed",
			zap.Uint("userID", userID),
			zap.Uint("assessmentID", assessment.ID),
			zap.Error(err))
		return err
	}
	return nil
}

func (s *BadgeService) ListUserBadges(userID uint) ([]model.SkillBadge, error) {
	return s.Repo.ListByUser(userID)
}
