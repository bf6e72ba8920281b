package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"vidshare-api/internal/apperror"
	"vidshare-api/internal/middleware"
	"vidshare-api/internal/services"
	"vidshare-api/internal/utils"

	"github.com/gin-gonic/gin"
)

type VideoHandler struct {
	videos *services.VideoService
}

func NewVideoHandler(videos *services.VideoService) *VideoHandler {
	return &VideoHandler{videos: videos}
}

// ListVideos handles GET /videos?page&limit&query&sortBy&sortType&userId.
func (h *VideoHandler) ListVideos(c *gin.Context) {
	page, err := h.videos.List(c.Request.Context(), services.ListVideosInput{
		Query:    c.Query("query"),
		UserID:   c.Query("userId"),
		SortBy:   c.Query("sortBy"),
		SortType: c.Query("sortType"),
		Page:     queryInt(c, "page"),
		Limit:    queryInt(c, "limit"),
	})
	if err != nil {
		fail(c, err)
		return
	}
	utils.Respond(c, http.StatusOK, page, "Videos fetched successfully.")
}

type publishVideoForm struct {
	Title       string `form:"title"`
	Description string `form:"description"`
	Username    string `form:"username"`
	Duration    string `form:"duration"`
}

// PublishVideo handles the multipart upload of a video and its thumbnail.
func (h *VideoHandler) PublishVideo(c *gin.Context) {
	var form publishVideoForm
	if err := c.ShouldBind(&form); err != nil {
		fail(c, bindError(err))
		return
	}

	var duration float64
	if s := strings.TrimSpace(form.Duration); s != "" {
		d, err := strconv.ParseFloat(s, 64)
		if err != nil {
			fail(c, apperror.Validation("Duration must be a number."))
			return
		}
		duration = d
	}

	videoFile, closeVideo, err := formFile(c, "videoFile")
	defer closeVideo()
	if err != nil {
		fail(c, err)
		return
	}
	thumbnail, closeThumb, err := formFile(c, "thumbnail")
	defer closeThumb()
	if err != nil {
		fail(c, err)
		return
	}

	video, err := h.videos.Create(c.Request.Context(), services.CreateVideoInput{
		Title:         form.Title,
		Description:   form.Description,
		Duration:      duration,
		OwnerUsername: form.Username,
		OwnerID:       middleware.UserID(c),
		Video:         videoFile,
		Thumbnail:     thumbnail,
	})
	if err != nil {
		fail(c, err)
		return
	}
	utils.Respond(c, http.StatusCreated, video, "Video uploaded successfully.")
}

func (h *VideoHandler) GetVideo(c *gin.Context) {
	video, err := h.videos.Get(c.Request.Context(), c.Param("videoId"))
	if err != nil {
		fail(c, err)
		return
	}
	utils.Respond(c, http.StatusOK, video, "Video Details fetched successfully.")
}

// UpdateVideo applies any of title, description and a new thumbnail.
func (h *VideoHandler) UpdateVideo(c *gin.Context) {
	var in services.UpdateVideoInput
	if v, ok := c.GetPostForm("title"); ok {
		in.Title = &v
	}
	if v, ok := c.GetPostForm("description"); ok {
		in.Description = &v
	}
	thumbnail, closeThumb, err := formFile(c, "thumbnail")
	defer closeThumb()
	if err != nil {
		fail(c, err)
		return
	}
	in.Thumbnail = thumbnail

	if in.Title == nil && in.Description == nil && in.Thumbnail == nil {
		fail(c, apperror.Validation("Nothing to update."))
		return
	}

	video, err := h.videos.Update(c.Request.Context(), c.Param("videoId"), in)
	if err != nil {
		fail(c, err)
		return
	}
	utils.Respond(c, http.StatusOK, video, "Video updated successfully.")
}

func (h *VideoHandler) DeleteVideo(c *gin.Context) {
	if err := h.videos.Delete(c.Request.Context(), c.Param("videoId")); err != nil {
		fail(c, err)
		return
	}
	utils.Respond(c, http.StatusOK, nil, "Video deleted successfully.")
}

func (h *VideoHandler) TogglePublish(c *gin.Context) {
	published, err := h.videos.TogglePublish(c.Request.Context(), c.Param("videoId"))
	if err != nil {
		fail(c, err)
		return
	}
	utils.Respond(c, http.StatusOK, published, "Video status changed successfully.")
}
