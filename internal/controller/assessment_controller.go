package controller

import (
	"errors"
	"strconv"

	"inr99_academy_backend/internal/model"
	"inr99_academy_backend/internal/service"
	"inr99_academy_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AssessmentController struct {
	AssessmentService *service.AssessmentService
	BadgeService      *service.BadgeService
}

func NewAssessmentController(assessmentService *service.AssessmentService, badgeService *service.BadgeService) *AssessmentController {
	return &AssessmentController{AssessmentService: assessmentService, BadgeService: badgeService}
}

// GetAssessment godoc
// @Summary Assessment player view
// @Description Questions without answers, the time limit, and whether the caller already passed.
// @Tags assessments
// @Produce json
// @Security BearerAuth
// @Param id path int true "assessment id"
// @Success 200 {object} util.Response{data=service.PlayerView}
// @Failure 404 {object} util.Response
// @Router /api/assessments/{id} [get]
func (c *AssessmentController) GetAssessment(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	view, err := c.AssessmentService.GetPlayerView(claims.UserID, id)
	if err != nil {
		if errors.Is(err, util.ErrAssessmentNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, view)
}

// Submit godoc
// @Summary Submit answers for grading
// @Description Grades positionally against the assessment's questions and records an attempt.
// @Tags assessments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "assessment id"
// @Param body body service.SubmitRequest true "answers in question order"
// @Success 201 {object} util.Response{data=service.AttemptResult}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Failure 422 {object} util.Response
// @Router /api/assessments/{id}/submissions [post]
func (c *AssessmentController) Submit(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req service.SubmitRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.AssessmentService.Submit(claims.UserID, id, req)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrAssessmentNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrAssessmentNoQuestions):
			util.Error(ctx, 422, "assessment has no questions")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Created(ctx, result)
}

// ListAttempts godoc
// @Summary Own attempt history for one assessment
// @Tags assessments
// @Produce json
// @Security BearerAuth
// @Param id path int true "assessment id"
// @Success 200 {object} util.Response
// @Router /api/assessments/{id}/attempts [get]
func (c *AssessmentController) ListAttempts(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	attempts, err := c.AssessmentService.ListAttempts(claims.UserID, id)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, attempts)
}

// ListMyBadges godoc
// @Summary Skill badges earned by the caller
// @Tags assessments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/badges [get]
func (c *AssessmentController) ListMyBadges(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	badges, err := c.BadgeService.ListUserBadges(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, badges)
}

// CreateAssessment godoc
// @Summary Create an assessment
// @Tags instructor
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.AssessmentRequest true "assessment details"
// @Success 201 {object} util.Response{data=model.Assessment}
// @Failure 404 {object} util.Response
// @Router /api/instructor/assessments [post]
func (c *AssessmentController) CreateAssessment(ctx *gin.Context) {
	var req service.AssessmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	a, err := c.AssessmentService.CreateAssessment(req)
	if err != nil {
		if errors.Is(err, util.ErrCourseNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Created(ctx, a)
}

// UpdateAssessment godoc
// @Summary Update an assessment
// @Tags instructor
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "assessment id"
// @Param body body service.AssessmentRequest true "assessment details"
// @Success 200 {object} util.Response{data=model.Assessment}
// @Failure 404 {object} util.Response
// @Router /api/instructor/assessments/{id} [put]
func (c *AssessmentController) UpdateAssessment(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req service.AssessmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	a, err := c.AssessmentService.UpdateAssessment(id, req)
	if err != nil {
		if errors.Is(err, util.ErrAssessmentNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, a)
}

// DeleteAssessment godoc
// @Summary Delete an assessment and its questions
// @Description Recorded attempts are kept.
// @Tags instructor
// @Produce json
// @Security BearerAuth
// @Param id path int true "assessment id"
// @Success 200 {object} util.Response
// @Router /api/instructor/assessments/{id} [delete]
func (c *AssessmentController) DeleteAssessment(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	if err := c.AssessmentService.DeleteAssessment(id); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"id": id})
}

// ListAssessments godoc
// @Summary Assessments for a course
// @Tags instructor
// @Produce json
// @Security BearerAuth
// @Param courseId query int true "course id"
// @Param page query int false "page"
// @Param limit query int false "page size"
// @Success 200 {object} util.Response
// @Router /api/instructor/assessments [get]
func (c *AssessmentController) ListAssessments(ctx *gin.Context) {
	courseID, err := strconv.ParseUint(ctx.Query("courseId"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid courseId")
		return
	}
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	items, total, err := c.AssessmentService.ListAssessments(uint(courseID), page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: items, Total: total, Page: page, Limit: limit})
}

// CreateQuestion godoc
// @Summary Add a question to an assessment
// @Tags instructor
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.QuestionRequest true "question details"
// @Success 201 {object} util.Response{data=model.AssessmentQuestion}
// @Failure 400 {object} util.Response
// @Router /api/instructor/questions [post]
func (c *AssessmentController) CreateQuestion(ctx *gin.Context) {
	var req service.QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	q, err := c.AssessmentService.CreateQuestion(req)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrAssessmentNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrInvalidAnswers):
			util.BadRequest(ctx, err.Error())
		default:
			util.BadRequest(ctx, err.Error())
		}
		return
	}
	util.Created(ctx, q)
}

// UpdateQuestion godoc
// @Summary Update a question
// @Tags instructor
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "question id"
// @Param body body service.QuestionRequest true "question details"
// @Success 200 {object} util.Response{data=model.AssessmentQuestion}
// @Failure 404 {object} util.Response
// @Router /api/instructor/questions/{id} [put]
func (c *AssessmentController) UpdateQuestion(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req service.QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	q, err := c.AssessmentService.UpdateQuestion(id, req)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	util.Success(ctx, q)
}

// DeleteQuestion godoc
// @Summary Delete a question
// @Tags instructor
// @Produce json
// @Security BearerAuth
// @Param id path int true "question id"
// @Success 200 {object} util.Response
// @Router /api/instructor/questions/{id} [delete]
func (c *AssessmentController) DeleteQuestion(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	if err := c.AssessmentService.DeleteQuestion(id); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"id": id})
}

// swagger:model AuthorQuestion
type AuthorQuestion struct {
	model.AssessmentQuestion
	Answer string `json:"answer"`
}

// ListQuestions godoc
// @Summary Questions with answers, for authoring
// @Tags instructor
// @Produce json
// @Security BearerAuth
// @Param id path int true "assessment id"
// @Success 200 {object} util.Response
// @Router /api/instructor/assessments/{id}/questions [get]
func (c *AssessmentController) ListQuestions(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	questions, err := c.AssessmentService.ListQuestions(id)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	// The student-facing serialization hides answers; authoring needs them.
	items := make([]AuthorQuestion, 0, len(questions))
	for _, q := range questions {
		items = append(items, AuthorQuestion{AssessmentQuestion: q, Answer: q.Answer})
	}
	util.Success(ctx, items)
}

// ListAssessmentAttempts godoc
// @Summary All attempts on an assessment
// @Tags instructor
// @Produce json
// @Security BearerAuth
// @Param id path int true "assessment id"
// @Param page query int false "page"
// @Param limit query int false "page size"
// @Success 200 {object} util.Response
// @Router /api/instructor/assessments/{id}/attempts [get]
func (c *AssessmentController) ListAssessmentAttempts(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	attempts, total, err := c.AssessmentService.ListAssessmentAttempts(id, page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: attempts, Total: total, Page: page, Limit: limit})
}
