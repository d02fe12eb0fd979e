package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"inr99_academy_backend/internal/model"
	"inr99_academy_backend/internal/repository"
	"inr99_academy_backend/internal/util"
	"inr99_academy_backend/pkg/monitoring"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// PassThreshold is the platform-wide minimum score (percent) for a passing
// attempt. There is no per-assessment override.
const PassThreshold = 70

// SecondsPerQuestion drives the client countdown budget.
const SecondsPerQuestion = 60

// attemptTokenTTL is the replay window for a client attempt token.
const attemptTokenTTL = 30 * time.Second

type AssessmentService struct {
	Repo     *repository.AssessmentRepository
	Attempts *repository.AttemptRepository
	Badges   *BadgeService
	Redis    *redis.Client
}

func NewAssessmentService(repo *repository.AssessmentRepository, attempts *repository.AttemptRepository, badges *BadgeService, rdb *redis.Client) *AssessmentService {
	return &AssessmentService{
		Repo:     repo,
		Attempts: attempts,
		Badges:   badges,
		Redis:    rdb,
	}
}

// PlayerQuestion is the student projection of a question. Correct answers and
// explanations never leave the server before grading.
type PlayerQuestion struct {
	ID           uint               `json:"id"`
	QuestionType model.QuestionType `json:"questionType"`
	Prompt       string             `json:"prompt"`
	Options      json.RawMessage    `json:"options,omitempty"`
	Order        int                `json:"order"`
}

type PlayerView struct {
	ID               uint                 `json:"id"`
	Title            string               `json:"title"`
	Description      string               `json:"description"`
	Type             model.AssessmentType `json:"type"`
	TimeLimitSeconds int                  `json:"timeLimitSeconds"`
	Questions        []PlayerQuestion     `json:"questions"`
	AlreadyCompleted bool                 `json:"alreadyCompleted"`
	PreviousScore    *int                 `json:"previousScore,omitempty"`
}

// GetPlayerView loads the question set for the assessment player, together
// with the caller's prior completion state.
func (s *AssessmentService) GetPlayerView(userID, assessmentID uint) (*PlayerView, error) {
	assessment, err := s.Repo.FindByID(assessmentID)
	if err != nil || !assessment.Active {
		return nil, util.ErrAssessmentNotFound
	}

	questions, err := s.Repo.ListQuestions(assessmentID)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, util.ErrAssessmentNoQuestions
	}

	view := &PlayerView{
		ID:               assessment.ID,
		Title:            assessment.Title,
		Description:      assessment.Description,
		Type:             assessment.Type,
		TimeLimitSeconds: len(questions) * SecondsPerQuestion,
		Questions:        make([]PlayerQuestion, len(questions)),
	}
	for i, q := range questions {
		view.Questions[i] = PlayerQuestion{
			ID:           q.ID,
			QuestionType: q.QuestionType,
			Prompt:       q.Prompt,
			Options:      q.Options,
			Order:        q.Order,
		}
	}

	if latest, err := s.Attempts.Latest(userID, assessmentID); err == nil {
		view.AlreadyCompleted = true
		score := latest.Score
		view.PreviousScore = &score
	}

	return view, nil
}

// SubmitRequest carries one answer entry per question, in question order.
// Entries may be a string, an array of strings, or null.
type SubmitRequest struct {
	Answers      []json.RawMessage `json:"answers"`
	AttemptToken string            `json:"attemptToken"`
}

type AssessmentRef struct {
	ID    uint                 `json:"id"`
	Title string               `json:"title"`
	Type  model.AssessmentType `json:"type"`
}

type AttemptResult struct {
	ID             uint          `json:"id"`
	Score          int           `json:"score"`
	CorrectAnswers int           `json:"correctAnswers"`
	TotalQuestions int           `json:"totalQuestions"`
	Passed         bool          `json:"passed"`
	Assessment     AssessmentRef `json:"assessment"`
}

// Submit grades the answer set against the stored questions, persists a new
// attempt and issues the skill badge on the first pass. Every accepted call
// appends a fresh attempt; prior rows are never touched.
func (s *AssessmentService) Submit(userID, assessmentID uint, req SubmitRequest) (*AttemptResult, error) {
	assessment, err := s.Repo.FindByID(assessmentID)
	if err != nil || !assessment.Active {
		return nil, util.ErrAssessmentNotFound
	}

	questions, err := s.Repo.ListQuestions(assessmentID)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, util.ErrAssessmentNoQuestions
	}

	if replay := s.replayedAttempt(userID, assessment, req.AttemptToken); replay != nil {
		return replay, nil
	}

	grade := gradeAnswers(questions, req.Answers)

	answersJSON, err := json.Marshal(req.Answers)
	if err != nil {
		answersJSON = []byte("[]")
	}

	attempt := &model.AssessmentAttempt{
		UserID:         userID,
		AssessmentID:   assessmentID,
		Answers:        answersJSON,
		Score:          grade.Score,
		CorrectAnswers: grade.Correct,
		TotalQuestions: grade.Total,
		Passed:         grade.Passed,
	}

	// First-pass check has to run before the new attempt is persisted.
	alreadyPassed := false
	if grade.Passed {
		alreadyPassed, _ = s.Attempts.HasPassed(userID, assessmentID)
	}

	if err := s.Attempts.Create(attempt); err != nil {
		return nil, err
	}

	outcome := "failed"
	if grade.Passed {
		outcome = "passed"
	}
	monitoring.GradedAttempts.WithLabelValues(outcome).Inc()

	if grade.Passed && !alreadyPassed && s.Badges != nil {
		// Badge issuance dedups on its own; a failure here must not fail
		// the grading that already happened.
		_ = s.Badges.IssueForAssessment(userID, assessment)
	}

	s.storeAttemptToken(userID, req.AttemptToken, attempt.ID)

	return &AttemptResult{
		ID:             attempt.ID,
		Score:          attempt.Score,
		CorrectAnswers: attempt.CorrectAnswers,
		TotalQuestions: attempt.TotalQuestions,
		Passed:         attempt.Passed,
		Assessment: AssessmentRef{
			ID:    assessment.ID,
			Title: assessment.Title,
			Type:  assessment.Type,
		},
	}, nil
}

// replayedAttempt resolves a duplicate attempt token (double click, timer
// firing alongside a manual submit) to the already-recorded attempt.
func (s *AssessmentService) replayedAttempt(userID uint, assessment *model.Assessment, token string) *AttemptResult {
	if token == "" || s.Redis == nil {
		return nil
	}

	ctx := context.Background()
	key := fmt.Sprintf("assessment:attempt-token:%d:%s", userID, token)
	set, err := s.Redis.SetNX(ctx, key, "pending", attemptTokenTTL).Result()
	if err != nil || set {
		return nil
	}

	val, err := s.Redis.Get(ctx, key).Result()
	if err != nil {
		return nil
	}
	attemptID, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		// Grading for this token is still in flight; treat as a fresh
		// attempt rather than blocking the student.
		return nil
	}

	attempt, err := s.Attempts.FindByID(uint(attemptID))
	if err != nil || attempt.UserID != userID {
		return nil
	}
	return &AttemptResult{
		ID:             attempt.ID,
		Score:          attempt.Score,
		CorrectAnswers: attempt.CorrectAnswers,
		TotalQuestions: attempt.TotalQuestions,
		Passed:         attempt.Passed,
		Assessment: AssessmentRef{
			ID:    assessment.ID,
			Title: assessment.Title,
			Type:  assessment.Type,
		},
	}
}

func (s *AssessmentService) storeAttemptToken(userID uint, token string, attemptID uint) {
	if token == "" || s.Redis == nil {
		return
	}
	key := fmt.Sprintf("assessment:attempt-token:%d:%s", userID, token)
	_ = s.Redis.Set(context.Background(), key, strconv.FormatUint(uint64(attemptID), 10), attemptTokenTTL).Err()
}

func (s *AssessmentService) ListAttempts(userID, assessmentID uint) ([]model.AssessmentAttempt, error) {
	if _, err := s.Repo.FindByID(assessmentID); err != nil {
		return nil, util.ErrAssessmentNotFound
	}
	return s.Attempts.ListByUser(userID, assessmentID)
}

type gradeResult struct {
	Correct int
	Total   int
	Score   int
	Passed  bool
}

// gradeAnswers is the authoritative scorer: a pure function of the stored
// questions and the submitted entries. Answers are matched positionally to
// the ordered question list. Missing, null, or unparseable entries count as
// incorrect; they are never an error.
func gradeAnswers(questions []model.AssessmentQuestion, answers []json.RawMessage) gradeResult {
	correct := 0
	for i, q := range questions {
		var raw json.RawMessage
		if i < len(answers) {
			raw = answers[i]
		}
		if answerMatches(q, raw) {
			correct++
		}
	}

	total := len(questions)
	score := 0
	if total > 0 {
		score = int(float64(100*correct)/float64(total) + 0.5)
	}

	return gradeResult{
		Correct: correct,
		Total:   total,
		Score:   score,
		Passed:  score >= PassThreshold,
	}
}

// answerMatches compares one submitted entry against the stored answer.
// Comparison is trimmed and case-insensitive for every question type;
// array entries are canonicalized as an unordered set.
func answerMatches(q model.AssessmentQuestion, raw json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}

	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		if single == "" {
			return false
		}
		return canonicalAnswer(single) == canonicalAnswer(q.Answer)
	}

	var multi []string
	if err := json.Unmarshal(raw, &multi); err == nil {
		if len(multi) == 0 {
			return false
		}
		return canonicalList(multi) == canonicalList(strings.Split(q.Answer, ","))
	}

	// Anything else (numbers, objects, null) is just a wrong answer.
	return false
}

func canonicalAnswer(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func canonicalList(values []string) string {
	canon := make([]string, 0, len(values))
	for _, v := range values {
		if c := canonicalAnswer(v); c != "" {
			canon = append(canon, c)
		}
	}
	sort.Strings(canon)
	return strings.Join(canon, ",")
}

// Instructor-facing authoring.

type AssessmentRequest struct {
	Title       string               `json:"title" binding:"required"`
	Description string               `json:"description"`
	Type        model.AssessmentType `json:"type"`
	CourseID    uint                 `json:"courseId" binding:"required"`
	LessonID    *uint                `json:"lessonId"`
	Active      *bool                `json:"active"`
}

func (s *AssessmentService) CreateAssessment(req AssessmentRequest) (*model.Assessment, error) {
	a := &model.Assessment{
		Title:       req.Title,
		Description: req.Description,
		Type:        req.Type,
		CourseID:    req.CourseID,
		LessonID:    req.LessonID,
		Active:      true,
	}
	if a.Type == "" {
		a.Type = model.AssessmentQuiz
	}
	if req.Active != nil {
		a.Active = *req.Active
	}
	if err := s.Repo.Create(a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AssessmentService) UpdateAssessment(id uint, req AssessmentRequest) (*model.Assessment, error) {
	a, err := s.Repo.FindByID(id)
	if err != nil {
		return nil, util.ErrAssessmentNotFound
	}

	a.Title = req.Title
	a.Description = req.Description
	if req.Type != "" {
		a.Type = req.Type
	}
	a.CourseID = req.CourseID
	a.LessonID = req.LessonID
	if req.Active != nil {
		a.Active = *req.Active
	}

	if err := s.Repo.Update(a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AssessmentService) DeleteAssessment(id uint) error {
	return s.Repo.Delete(id)
}

func (s *AssessmentService) ListAssessments(courseID uint, page, limit int) ([]model.Assessment, int64, error) {
	return s.Repo.ListByCourse(courseID, page, limit)
}

func (s *AssessmentService) GetAssessment(id uint) (*model.Assessment, error) {
	a, err := s.Repo.FindByID(id)
	if err != nil {
		return nil, util.ErrAssessmentNotFound
	}
	return a, nil
}

type QuestionRequest struct {
	AssessmentID uint               `json:"assessmentId" binding:"required"`
	QuestionType model.QuestionType `json:"questionType" binding:"required"`
	Prompt       string             `json:"prompt" binding:"required"`
	Options      json.RawMessage    `json:"options"`
	Answer       string             `json:"answer" binding:"required"`
	Explanation  string             `json:"explanation"`
	Order        int                `json:"order"`
}

func validateQuestion(req QuestionRequest) error {
	switch req.QuestionType {
	case model.QuestionTrueFalse:
		if ans := canonicalAnswer(req.Answer); ans != "true" && ans != "false" {
			return fmt.Errorf("%w: true/false answer must be \"true\" or \"false\"", util.ErrInvalidAnswers)
		}
	case model.QuestionMultipleChoice:
		if len(req.Options) == 0 {
			return errors.New("multiple choice question needs options")
		}
	case model.QuestionShortAnswer:
		// free-form
	default:
		return fmt.Errorf("unknown question type %q", req.QuestionType)
	}
	return nil
}

func (s *AssessmentService) CreateQuestion(req QuestionRequest) (*model.AssessmentQuestion, error) {
	if err := validateQuestion(req); err != nil {
		return nil, err
	}
	if _, err := s.Repo.FindByID(req.AssessmentID); err != nil {
		return nil, util.ErrAssessmentNotFound
	}

	q := &model.AssessmentQuestion{
		AssessmentID: req.AssessmentID,
		QuestionType: req.QuestionType,
		Prompt:       req.Prompt,
		Options:      req.Options,
		Answer:       req.Answer,
		Explanation:  req.Explanation,
		Order:        req.Order,
	}
	if err := s.Repo.CreateQuestion(q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *AssessmentService) UpdateQuestion(id uint, req QuestionRequest) (*model.AssessmentQuestion, error) {
	if err := validateQuestion(req); err != nil {
		return nil, err
	}

	q, err := s.Repo.FindQuestionByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrAssessmentNotFound
		}
		return nil, err
	}

	q.QuestionType = req.QuestionType
	q.Prompt = req.Prompt
	q.Options = req.Options
	q.Answer = req.Answer
	q.Explanation = req.Explanation
	q.Order = req.Order

	if err := s.Repo.UpdateQuestion(q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *AssessmentService) DeleteQuestion(id uint) error {
	return s.Repo.DeleteQuestion(id)
}

// ListQuestions is the instructor view, answers and explanations included.
func (s *AssessmentService) ListQuestions(assessmentID uint) ([]model.AssessmentQuestion, error) {
	if _, err := s.Repo.FindByID(assessmentID); err != nil {
		return nil, util.ErrAssessmentNotFound
	}
	return s.Repo.ListQuestions(assessmentID)
}

func (s *AssessmentService) ListAssessmentAttempts(assessmentID uint, page, limit int) ([]model.AssessmentAttempt, int64, error) {
	return s.Attempts.ListByAssessment(assessmentID, page, limit)
}
