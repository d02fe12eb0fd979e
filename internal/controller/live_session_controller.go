package controller

import (
	"errors"
	"strconv"

	"inr99_academy_backend/internal/service"
	"inr99_academy_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type LiveSessionController struct {
	LiveSessionService *service.LiveSessionService
}

func NewLiveSessionController(liveSessionService *service.LiveSessionService) *LiveSessionController {
	return &LiveSessionController{LiveSessionService: liveSessionService}
}

// ListUpcoming godoc
// @Summary Upcoming live sessions for enrolled courses
// @Tags live-sessions
// @Produce json
// @Security BearerAuth
// @Param limit query int false "max results"
// @Success 200 {object} util.Response
// @Router /api/live-sessions [get]
func (c *LiveSessionController) ListUpcoming(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "10"))

	sessions, err := c.LiveSessionService.ListUpcoming(claims.UserID, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, sessions)
}

// Join godoc
// @Summary Get the meeting link for a session
// @Description Available from ten minutes before the start until the scheduled end.
// @Tags live-sessions
// @Produce json
// @Security BearerAuth
// @Param id path int true "session id"
// @Success 200 {object} util.Response{data=service.JoinInfo}
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Failure 422 {object} util.Response
// @Router /api/live-sessions/{id}/join [post]
func (c *LiveSessionController) Join(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	info, err := c.LiveSessionService.Join(claims.UserID, id)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrSessionNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrNotEnrolled):
			util.Error(ctx, 403, "not enrolled in this course")
		case errors.Is(err, util.ErrSessionNotJoinable):
			util.Error(ctx, 422, "session is not joinable right now")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, info)
}

// Create godoc
// @Summary Schedule a live session
// @Tags instructor
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.LiveSessionRequest true "session details"
// @Success 201 {object} util.Response{data=model.LiveSession}
// @Failure 404 {object} util.Response
// @Router /api/instructor/live-sessions [post]
func (c *LiveSessionController) Create(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.LiveSessionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	session, err := c.LiveSessionService.Create(claims.UserID, req)
	if err != nil {
		if errors.Is(err, util.ErrCourseNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Created(ctx, session)
}

// Update godoc
// @Summary Reschedule or rename a live session
// @Tags instructor
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "session id"
// @Param body body service.LiveSessionRequest true "session details"
// @Success 200 {object} util.Response{data=model.LiveSession}
// @Failure 404 {object} util.Response
// @Router /api/instructor/live-sessions/{id} [put]
func (c *LiveSessionController) Update(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req service.LiveSessionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	session, err := c.LiveSessionService.Update(claims.UserID, id, req)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrSessionNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrPermissionDenied):
			util.Forbidden(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, session)
}

// Delete godoc
// @Summary Cancel a live session
// @Tags instructor
// @Produce json
// @Security BearerAuth
// @Param id path int true "session id"
// @Success 200 {object} util.Response
// @Router /api/instructor/live-sessions/{id} [delete]
func (c *LiveSessionController) Delete(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	if err := c.LiveSessionService.Delete(claims.UserID, id); err != nil {
		switch {
		case errors.Is(err, util.ErrSessionNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrPermissionDenied):
			util.Forbidden(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, gin.H{"id": id})
}

// ListMine godoc
// @Summary Sessions scheduled by the calling instructor
// @Tags instructor
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/instructor/live-sessions [get]
func (c *LiveSessionController) ListMine(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	sessions, err := c.LiveSessionService.ListByInstructor(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, sessions)
}
