package service

import (
	"context"
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"inr99_academy_backend/internal/model"
	"inr99_academy_backend/internal/repository"
	"inr99_academy_backend/internal/util"
	"inr99_academy_backend/pkg/logger"

	"go.uber.org/zap"
)

// PlaybackMode is what the client player should render for a lesson under
// the reported network conditions.
type PlaybackMode string

const (
	PlaybackVideoHD PlaybackMode = "video_hd"
	PlaybackVideoSD PlaybackMode = "video_sd"
	PlaybackAudio   PlaybackMode = "audio"
	PlaybackText    PlaybackMode = "text"
)

// Bandwidth cutoffs in kbps for mode selection.
const (
	hdBandwidthKbps    = 4000
	videoBandwidthKbps = 1500
	audioBandwidthKbps = 256
)

type MediaService struct {
	Courses *repository.CourseRepository
	Storage *StorageService
}

func NewMediaService(courses *repository.CourseRepository, storage *StorageService) *MediaService {
	return &MediaService{Courses: courses, Storage: storage}
}

type NetworkConditions struct {
	DownlinkKbps int    // 0 when the client could not measure
	NetworkType  string // wifi, ethernet, cellular, unknown
	SaveData     bool
}

type PlaybackDecision struct {
	Mode       PlaybackMode `json:"mode"`
	MediaURL   string       `json:"mediaUrl,omitempty"`
	PosterURL  string       `json:"posterUrl,omitempty"`
	Transcript string       `json:"transcript,omitempty"`
}

// ChoosePlaybackMode picks the richest rendition the reported conditions can
// carry. Unknown measurements fall back by connection type rather than
// penalizing everyone on a missing reading.
func ChoosePlaybackMode(lesson *model.Lesson, net NetworkConditions) PlaybackMode {
	hasVideo := lesson.VideoObject != ""
	hasAudio := lesson.HasAudioTrack && (lesson.AudioObject != "" || hasVideo)

	if net.SaveData {
		if hasAudio && net.DownlinkKbps >= audioBandwidthKbps {
			return PlaybackAudio
		}
		return PlaybackText
	}

	if net.DownlinkKbps <= 0 {
		// No measurement; wired and wifi connections get video, everything
		// else the transcript.
		switch net.NetworkType {
		case "wifi", "ethernet":
			if hasVideo {
				return PlaybackVideoSD
			}
		}
		return PlaybackText
	}

	switch {
	case hasVideo && net.DownlinkKbps >= hdBandwidthKbps && lesson.Height >= 720:
		return PlaybackVideoHD
	case hasVideo && net.DownlinkKbps >= videoBandwidthKbps:
		return PlaybackVideoSD
	case hasAudio && net.DownlinkKbps >= audioBandwidthKbps:
		return PlaybackAudio
	default:
		return PlaybackText
	}
}

// GetPlayback resolves the lesson and the delivery mode into a playable URL
// (or the transcript for text mode).
func (s *MediaService) GetPlayback(lessonID uint, net NetworkConditions) (*PlaybackDecision, error) {
	lesson, err := s.Courses.FindLessonByID(lessonID)
	if err != nil {
		return nil, util.ErrLessonNotFound
	}

	mode := ChoosePlaybackMode(lesson, net)
	decision := &PlaybackDecision{Mode: mode}

	switch mode {
	case PlaybackVideoHD, PlaybackVideoSD:
		decision.MediaURL = s.Storage.GetURL(lesson.VideoObject)
		if lesson.PosterObject != "" {
			decision.PosterURL = s.Storage.GetURL(lesson.PosterObject)
		}
	case PlaybackAudio:
		object := lesson.AudioObject
		if object == "" {
			object = lesson.VideoObject
		}
		decision.MediaURL = s.Storage.GetURL(object)
	case PlaybackText:
		decision.Transcript = lesson.TranscriptMD
	}

	return decision, nil
}

func allowedVideoFile(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, allowed := range util.AllowedVideoExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// videoContentType maps the upload's extension to the type stored alongside
// the object. Extensions outside the allowed set never reach this.
func videoContentType(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".mp4":
		return util.MimeVideo + "mp4"
	case ".webm":
		return util.MimeVideo + "webm"
	case ".mov":
		return util.MimeVideo + "quicktime"
	case ".avi":
		return util.MimeVideo + "x-msvideo"
	case ".mkv":
		return util.MimeVideo + "x-matroska"
	case ".wmv":
		return util.MimeVideo + "x-ms-wmv"
	case ".flv":
		return util.MimeVideo + "x-flv"
	default:
		return util.MimeOctetStream
	}
}

// AttachLessonVideo stores an uploaded video, probes it, and fills the
// lesson's rendition metadata. A poster frame is grabbed for the player when
// ffmpeg manages to extract one.
func (s *MediaService) AttachLessonVideo(ctx context.Context, lessonID uint, file *multipart.FileHeader) (*model.Lesson, error) {
	if !allowedVideoFile(file.Filename) {
		return nil, util.ErrUnsupportedMedia
	}

	lesson, err := s.Courses.FindLessonByID(lessonID)
	if err != nil {
		return nil, util.ErrLessonNotFound
	}

	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	// Stage to a temp file so ffprobe can read it before upload.
	tmp, err := os.CreateTemp("", "lesson-upload-*"+filepath.Ext(file.Filename))
	if err != nil {
		return nil, err
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	if _, err := tmp.ReadFrom(src); err != nil {
		return nil, err
	}

	objectKey := fmt.Sprintf("lessons/%d/%s", lessonID, filepath.Base(file.Filename))
	if _, err := s.Storage.UploadFile(ctx, objectKey, tmp.Name(), videoContentType(file.Filename)); err != nil {
		return nil, err
	}

	lesson.VideoObject = objectKey
	if info, err := util.GetVideoInfo(tmp.Name()); err == nil {
		lesson.DurationSec = int(info.Duration)
		lesson.Width = info.Width
		lesson.Height = info.Height
		lesson.HasAudioTrack = info.HasAudio
	} else {
		logger.Log.Warn("video probe failed, keeping upload without metadata",
			zap.Uint("lessonID", lessonID), zap.Error(err))
	}

	posterPath := filepath.Join(os.TempDir(), fmt.Sprintf("lesson-poster-%d.jpg", lessonID))
	if err := util.GenerateThumbnail(tmp.Name(), posterPath, "00:00:01"); err == nil {
		defer os.Remove(posterPath)
		posterKey := fmt.Sprintf("lessons/%d/poster.jpg", lessonID)
		if _, err := s.Storage.UploadFile(ctx, posterKey, posterPath, util.MimeImage+"jpeg"); err == nil {
			lesson.PosterObject = posterKey
		}
	} else {
		logger.Log.Warn("poster frame extraction failed",
			zap.Uint("lessonID", lessonID), zap.Error(err))
	}

	if err := s.Courses.UpdateLesson(lesson); err != nil {
		return nil, err
	}
	return lesson, nil
}
