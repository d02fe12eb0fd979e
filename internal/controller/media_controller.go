package controller

import (
	"errors"
	"strconv"

	"inr99_academy_backend/internal/service"
	"inr99_academy_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type MediaController struct {
	MediaService *service.MediaService
}

func NewMediaController(mediaService *service.MediaService) *MediaController {
	return &MediaController{MediaService: mediaService}
}

// GetPlayback godoc
// @Summary Pick a playback mode for a lesson
// @Description Chooses HD, SD, audio-only, or transcript from the reported network conditions.
// @Tags media
// @Produce json
// @Security BearerAuth
// @Param id path int true "lesson id"
// @Param downlinkKbps query int false "measured bandwidth in kbps, 0 when unknown"
// @Param networkType query string false "wifi, ethernet, cellular or unknown"
// @Param saveData query bool false "client data-saver preference"
// @Success 200 {object} util.Response{data=service.PlaybackDecision}
// @Failure 404 {object} util.Response
// @Router /api/lessons/{id}/playback [get]
func (c *MediaController) GetPlayback(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	downlink, _ := strconv.Atoi(ctx.DefaultQuery("downlinkKbps", "0"))
	saveData, _ := strconv.ParseBool(ctx.DefaultQuery("saveData", "false"))
	net := service.NetworkConditions{
		DownlinkKbps: downlink,
		NetworkType:  ctx.DefaultQuery("networkType", "unknown"),
		SaveData:     saveData,
	}

	decision, err := c.MediaService.GetPlayback(id, net)
	if err != nil {
		if errors.Is(err, util.ErrLessonNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, decision)
}

// UploadLessonVideo godoc
// @Summary Attach a video to a lesson
// @Description Stores the file and probes duration, resolution and audio track.
// @Tags instructor
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "lesson id"
// @Param file formData file true "video file"
// @Success 200 {object} util.Response{data=model.Lesson}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/instructor/lessons/{id}/video [post]
func (c *MediaController) UploadLessonVideo(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	file, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "missing file")
		return
	}

	lesson, err := c.MediaService.AttachLessonVideo(ctx.Request.Context(), id, file)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrLessonNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrUnsupportedMedia):
			util.BadRequest(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, lesson)
}
