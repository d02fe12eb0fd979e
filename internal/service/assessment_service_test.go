package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"inr99_academy_backend/internal/model"
	"inr99_academy_backend/internal/repository"
	"inr99_academy_backend/internal/util"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
)

func q(qt model.QuestionType, answer string) model.AssessmentQuestion {
	return model.AssessmentQuestion{QuestionType: qt, Prompt: "p", Answer: answer}
}

func rawAnswers(t *testing.T, entries ...interface{}) []json.RawMessage {
	t.Helper()
	out := make([]json.RawMessage, 0, len(entries))
	for _, e := range entries {
		b, err := json.Marshal(e)
		if err != nil {
			t.Fatalf("marshal answer: %v", err)
		}
		out = append(out, json.RawMessage(b))
	}
	return out
}

func TestGradeAnswers_ScoresAndRounds(t *testing.T) {
	tests := []struct {
		name        string
		questions   []model.AssessmentQuestion
		answers     []json.RawMessage
		wantCorrect int
		wantScore   int
		wantPassed  bool
	}{
		{
			name: "three of four correct rounds to 75 and passes",
			questions: []model.AssessmentQuestion{
				q(model.QuestionMultipleChoice, "B"),
				q(model.QuestionTrueFalse, "true"),
				q(model.QuestionShortAnswer, "Paris"),
				q(model.QuestionMultipleChoice, "D"),
			},
			answers:     rawAnswers(t, "B", "true", "paris", "A"),
			wantCorrect: 3,
			wantScore:   75,
			wantPassed:  true,
		},
		{
			name: "two of three rounds 66.67 up to 67 and fails",
			questions: []model.AssessmentQuestion{
				q(model.QuestionTrueFalse, "true"),
				q(model.QuestionTrueFalse, "false"),
				q(model.QuestionTrueFalse, "true"),
			},
			answers:     rawAnswers(t, "true", "false", "false"),
			wantCorrect: 2,
			wantScore:   67,
			wantPassed:  false,
		},
		{
			name: "one of three rounds 33.33 down to 33",
			questions: []model.AssessmentQuestion{
				q(model.QuestionTrueFalse, "true"),
				q(model.QuestionTrueFalse, "true"),
				q(model.QuestionTrueFalse, "true"),
			},
			answers:     rawAnswers(t, "true", "false", "false"),
			wantCorrect: 1,
			wantScore:   33,
			wantPassed:  false,
		},
		{
			name: "all correct is exactly 100",
			questions: []model.AssessmentQuestion{
				q(model.QuestionShortAnswer, "hello"),
				q(model.QuestionShortAnswer, "world"),
			},
			answers:     rawAnswers(t, "hello", "world"),
			wantCorrect: 2,
			wantScore:   100,
			wantPassed:  true,
		},
		{
			name: "all wrong is exactly 0",
			questions: []model.AssessmentQuestion{
				q(model.QuestionShortAnswer, "hello"),
				q(model.QuestionShortAnswer, "world"),
			},
			answers:     rawAnswers(t, "x", "y"),
			wantCorrect: 0,
			wantScore:   0,
			wantPassed:  false,
		},
		{
			name: "missing trailing answers count as incorrect",
			questions: []model.AssessmentQuestion{
				q(model.QuestionTrueFalse, "true"),
				q(model.QuestionTrueFalse, "true"),
				q(model.QuestionTrueFalse, "true"),
				q(model.QuestionTrueFalse, "true"),
			},
			answers:     rawAnswers(t, "true"),
			wantCorrect: 1,
			wantScore:   25,
			wantPassed:  false,
		},
		{
			name: "extra answers beyond the question count are ignored",
			questions: []model.AssessmentQuestion{
				q(model.QuestionTrueFalse, "true"),
			},
			answers:     rawAnswers(t, "true", "true", "true"),
			wantCorrect: 1,
			wantScore:   100,
			wantPassed:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := gradeAnswers(tt.questions, tt.answers)
			if got.Correct != tt.wantCorrect {
				t.Errorf("correct = %d, want %d", got.Correct, tt.wantCorrect)
			}
			if got.Score != tt.wantScore {
				t.Errorf("score = %d, want %d", got.Score, tt.wantScore)
			}
			if got.Passed != tt.wantPassed {
				t.Errorf("passed = %v, want %v", got.Passed, tt.wantPassed)
			}
			if got.Total != len(tt.questions) {
				t.Errorf("total = %d, want %d", got.Total, len(tt.questions))
			}
		})
	}
}

func TestGradeAnswers_PassBoundary(t *testing.T) {
	// 7/10 is exactly the threshold; 69 via rounding must still fail.
	questions := make([]model.AssessmentQuestion, 10)
	answers := make([]json.RawMessage, 10)
	for i := range questions {
		questions[i] = q(model.QuestionTrueFalse, "true")
		if i < 7 {
			answers[i] = json.RawMessage(`"true"`)
		} else {
			answers[i] = json.RawMessage(`"false"`)
		}
	}

	got := gradeAnswers(questions, answers)
	if got.Score != 70 || !got.Passed {
		t.Fatalf("score = %d passed = %v, want 70 and passed", got.Score, got.Passed)
	}
}

func TestAnswerMatches_Normalization(t *testing.T) {
	tests := []struct {
		name   string
		q      model.AssessmentQuestion
		raw    string
		want   bool
	}{
		{"case-insensitive short answer", q(model.QuestionShortAnswer, "Paris"), `"paris"`, true},
		{"surrounding whitespace trimmed", q(model.QuestionShortAnswer, "Paris"), `"  Paris  "`, true},
		{"true/false accepts case variants", q(model.QuestionTrueFalse, "true"), `"TRUE"`, true},
		{"wrong boolean", q(model.QuestionTrueFalse, "true"), `"false"`, false},
		{"multi-select order does not matter", q(model.QuestionMultipleChoice, "A,C"), `["c","a"]`, true},
		{"multi-select missing element", q(model.QuestionMultipleChoice, "A,C"), `["a"]`, false},
		{"multi-select extra element", q(model.QuestionMultipleChoice, "A,C"), `["a","b","c"]`, false},
		{"empty string is incorrect", q(model.QuestionShortAnswer, "Paris"), `""`, false},
		{"null entry is incorrect", q(model.QuestionShortAnswer, "Paris"), `null`, false},
		{"number entry is incorrect", q(model.QuestionShortAnswer, "42"), `42`, false},
		{"object entry is incorrect", q(model.QuestionShortAnswer, "Paris"), `{"a":1}`, false},
		{"empty array is incorrect", q(model.QuestionMultipleChoice, "A"), `[]`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := answerMatches(tt.q, json.RawMessage(tt.raw)); got != tt.want {
				t.Errorf("answerMatches = %v, want %v", got, tt.want)
			}
		})
	}
}

func newAssessmentFixture(t *testing.T) (*AssessmentService, *model.User, *model.Assessment, *repository.BadgeRepository, *repository.AttemptRepository) {
	t.Helper()
	db := testDB(t)

	instructor := createUser(t, db, "instructor@inr99.test", model.Instructor)
	student := createUser(t, db, "student@inr99.test", model.Student)
	course := createCourse(t, db, instructor.ID, true)

	assessment := &model.Assessment{
		Title:    "Unit 1 Quiz",
		Type:     model.AssessmentQuiz,
		CourseID: course.ID,
		Active:   true,
	}
	if err := db.Create(assessment).Error; err != nil {
		t.Fatalf("create assessment: %v", err)
	}

	questions := []model.AssessmentQuestion{
		{AssessmentID: assessment.ID, QuestionType: model.QuestionMultipleChoice, Prompt: "Pick B", Options: json.RawMessage(`["A","B"]`), Answer: "B", Order: 1},
		{AssessmentID: assessment.ID, QuestionType: model.QuestionTrueFalse, Prompt: "True?", Answer: "true", Order: 2},
		{AssessmentID: assessment.ID, QuestionType: model.QuestionShortAnswer, Prompt: "Capital of France", Answer: "Paris", Order: 3},
		{AssessmentID: assessment.ID, QuestionType: model.QuestionMultipleChoice, Prompt: "Pick D", Options: json.RawMessage(`["C","D"]`), Answer: "D", Order: 4},
	}
	for i := range questions {
		if err := db.Create(&questions[i]).Error; err != nil {
			t.Fatalf("create question: %v", err)
		}
	}

	attempts := repository.NewAttemptRepository(db)
	badges := repository.NewBadgeRepository(db)
	svc := NewAssessmentService(repository.NewAssessmentRepository(db), attempts, NewBadgeService(badges), nil)
	return svc, student, assessment, badges, attempts
}

func TestSubmit_GradesPersistsAndIssuesBadge(t *testing.T) {
	svc, student, assessment, badges, attempts := newAssessmentFixture(t)

	result, err := svc.Submit(student.ID, assessment.ID, SubmitRequest{
		Answers: rawAnswers(t, "B", "true", "paris", "A"),
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if result.Score != 75 || result.CorrectAnswers != 3 || result.TotalQuestions != 4 {
		t.Fatalf("result = %d/%d score %d, want 3/4 score 75", result.CorrectAnswers, result.TotalQuestions, result.Score)
	}
	if !result.Passed {
		t.Fatalf("expected a passing attempt")
	}
	if result.Assessment.ID != assessment.ID || result.Assessment.Title != assessment.Title {
		t.Fatalf("unexpected assessment ref %+v", result.Assessment)
	}

	stored, err := attempts.FindByID(result.ID)
	if err != nil {
		t.Fatalf("attempt not persisted: %v", err)
	}
	if stored.Score != 75 || !stored.Passed {
		t.Fatalf("stored attempt = %+v", stored)
	}

	earned, err := badges.ListByUser(student.ID)
	if err != nil {
		t.Fatalf("list badges: %v", err)
	}
	if len(earned) != 1 || earned[0].AssessmentID != assessment.ID {
		t.Fatalf("expected one badge for the assessment, got %+v", earned)
	}
}

func TestSubmit_RetakeAppendsAndBadgeStaysSingle(t *testing.T) {
	svc, student, assessment, badges, attempts := newAssessmentFixture(t)

	// Fail, pass, then pass again.
	submissions := [][]json.RawMessage{
		rawAnswers(t, "A", "false", "x", "C"),
		rawAnswers(t, "B", "true", "Paris", "D"),
		rawAnswers(t, "B", "true", "Paris", "D"),
	}
	for i, answers := range submissions {
		if _, err := svc.Submit(student.ID, assessment.ID, SubmitRequest{Answers: answers}); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}

	history, err := attempts.ListByUser(student.ID, assessment.ID)
	if err != nil {
		t.Fatalf("list attempts: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("attempt rows = %d, want 3 (append-only)", len(history))
	}

	earned, err := badges.ListByUser(student.ID)
	if err != nil {
		t.Fatalf("list badges: %v", err)
	}
	if len(earned) != 1 {
		t.Fatalf("badges = %d, want exactly 1 after repeat passes", len(earned))
	}
}

func TestSubmit_InactiveAssessmentRejected(t *testing.T) {
	svc, student, assessment, _, _ := newAssessmentFixture(t)

	assessment.Active = false
	if err := svc.Repo.Update(assessment); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	_, err := svc.Submit(student.ID, assessment.ID, SubmitRequest{Answers: rawAnswers(t, "B")})
	if !errors.Is(err, util.ErrAssessmentNotFound) {
		t.Fatalf("err = %v, want ErrAssessmentNotFound", err)
	}
}

func TestSubmit_EmptyAnswerSetScoresZero(t *testing.T) {
	svc, student, assessment, _, _ := newAssessmentFixture(t)

	result, err := svc.Submit(student.ID, assessment.ID, SubmitRequest{})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Score != 0 || result.CorrectAnswers != 0 || result.Passed {
		t.Fatalf("result = %+v, want zero score and no pass", result)
	}
}

func TestGetPlayerView_HidesAnswersAndReportsHistory(t *testing.T) {
	svc, student, assessment, _, _ := newAssessmentFixture(t)

	view, err := svc.GetPlayerView(student.ID, assessment.ID)
	if err != nil {
		t.Fatalf("player view: %v", err)
	}
	if view.AlreadyCompleted || view.PreviousScore != nil {
		t.Fatalf("fresh student should have no history: %+v", view)
	}
	if view.TimeLimitSeconds != 4*SecondsPerQuestion {
		t.Fatalf("time limit = %d, want %d", view.TimeLimitSeconds, 4*SecondsPerQuestion)
	}
	if len(view.Questions) != 4 {
		t.Fatalf("questions = %d, want 4", len(view.Questions))
	}

	// Serialized player questions must not leak the answer.
	b, err := json.Marshal(view)
	if err != nil {
		t.Fatalf("marshal view: %v", err)
	}
	for _, leak := range []string{"Paris", `"answer"`} {
		if strings.Contains(string(b), leak) {
			t.Fatalf("player view leaks %q: %s", leak, b)
		}
	}

	if _, err := svc.Submit(student.ID, assessment.ID, SubmitRequest{
		Answers: rawAnswers(t, "B", "true", "Paris", "D"),
	}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	view, err = svc.GetPlayerView(student.ID, assessment.ID)
	if err != nil {
		t.Fatalf("player view after submit: %v", err)
	}
	if !view.AlreadyCompleted || view.PreviousScore == nil || *view.PreviousScore != 100 {
		t.Fatalf("expected completed with previous score 100, got %+v", view)
	}
}

func TestValidateQuestion(t *testing.T) {
	tests := []struct {
		name    string
		req     QuestionRequest
		wantErr bool
	}{
		{"valid true/false", QuestionRequest{QuestionType: model.QuestionTrueFalse, Answer: "True"}, false},
		{"bad true/false answer", QuestionRequest{QuestionType: model.QuestionTrueFalse, Answer: "yes"}, true},
		{"choice without options", QuestionRequest{QuestionType: model.QuestionMultipleChoice, Answer: "A"}, true},
		{"choice with options", QuestionRequest{QuestionType: model.QuestionMultipleChoice, Answer: "A", Options: json.RawMessage(`["A","B"]`)}, false},
		{"short answer free-form", QuestionRequest{QuestionType: model.QuestionShortAnswer, Answer: "anything"}, false},
		{"unknown type", QuestionRequest{QuestionType: "ESSAY", Answer: "x"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateQuestion(tt.req)
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	err := validateQuestion(QuestionRequest{QuestionType: model.QuestionTrueFalse, Answer: "yes"})
	if !errors.Is(err, util.ErrInvalidAnswers) {
		t.Errorf("bad answer err = %v, want ErrInvalidAnswers", err)
	}
}

func attemptTokenRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	return mr, redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestSubmit_DuplicateAttemptTokenReplaysRecordedAttempt(t *testing.T) {
	svc, student, assessment, _, attempts := newAssessmentFixture(t)
	_, svc.Redis = attemptTokenRedis(t)

	first, err := svc.Submit(student.ID, assessment.ID, SubmitRequest{
		Answers:      rawAnswers(t, "B", "true", "Paris", "D"),
		AttemptToken: "double-click",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	// The duplicate carries a worse answer set; a replay must hand back the
	// already-recorded result, not regrade.
	second, err := svc.Submit(student.ID, assessment.ID, SubmitRequest{
		Answers:      rawAnswers(t, "A", "false", "", ""),
		AttemptToken: "double-click",
	})
	if err != nil {
		t.Fatalf("duplicate submit: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("replayed attempt id = %d, want %d", second.ID, first.ID)
	}
	if second.Score != 100 {
		t.Errorf("replayed score = %d, want 100", second.Score)
	}

	rows, err := attempts.ListByUser(student.ID, assessment.ID)
	if err != nil {
		t.Fatalf("list attempts: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("attempt rows = %d, want 1", len(rows))
	}
}

func TestSubmit_InFlightTokenGradesFreshAttempt(t *testing.T) {
	svc, student, assessment, _, attempts := newAssessmentFixture(t)
	mr, client := attemptTokenRedis(t)
	svc.Redis = client

	// A concurrent submit holds the token but has not recorded its attempt
	// id yet; the second request must not block on it.
	key := fmt.Sprintf("assessment:attempt-token:%d:%s", student.ID, "racing")
	if err := mr.Set(key, "pending"); err != nil {
		t.Fatalf("seed token: %v", err)
	}

	result, err := svc.Submit(student.ID, assessment.ID, SubmitRequest{
		Answers:      rawAnswers(t, "B", "true", "Paris", "D"),
		AttemptToken: "racing",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.ID == 0 {
		t.Fatalf("expected a fresh persisted attempt")
	}

	rows, err := attempts.ListByUser(student.ID, assessment.ID)
	if err != nil {
		t.Fatalf("list attempts: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("attempt rows = %d, want 1", len(rows))
	}

	// The finished submit overwrote the sentinel with its attempt id.
	val, err := mr.Get(key)
	if err != nil {
		t.Fatalf("get token: %v", err)
	}
	if val != strconv.FormatUint(uint64(result.ID), 10) {
		t.Errorf("token value = %q, want attempt id %d", val, result.ID)
	}
}

func TestSubmit_TokenNeverReplaysAnotherUsersAttempt(t *testing.T) {
	svc, student, assessment, _, attempts := newAssessmentFixture(t)
	mr, client := attemptTokenRedis(t)
	svc.Redis = client

	first, err := svc.Submit(student.ID, assessment.ID, SubmitRequest{
		Answers: rawAnswers(t, "B", "true", "Paris", "D"),
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	other := createUser(t, attempts.DB, "other@inr99.test", model.Student)
	key := fmt.Sprintf("assessment:attempt-token:%d:%s", other.ID, "stale")
	if err := mr.Set(key, strconv.FormatUint(uint64(first.ID), 10)); err != nil {
		t.Fatalf("seed token: %v", err)
	}

	result, err := svc.Submit(other.ID, assessment.ID, SubmitRequest{
		Answers:      rawAnswers(t, "A", "false", "", ""),
		AttemptToken: "stale",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.ID == first.ID {
		t.Fatalf("token replayed another user's attempt")
	}
	if result.Score != 0 {
		t.Errorf("score = %d, want 0 for the fresh grading", result.Score)
	}
}
