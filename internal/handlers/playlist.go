package handlers

import (
	"net/http"

	"vidshare-api/internal/middleware"
	"vidshare-api/internal/services"
	"vidshare-api/internal/utils"

	"github.com/gin-gonic/gin"
)

type PlaylistHandler struct {
	playlists *services.PlaylistService
}

func NewPlaylistHandler(playlists *services.PlaylistService) *PlaylistHandler {
	return &PlaylistHandler{playlists: playlists}
}

type playlistRequest struct {
	Name        string `json:"name" form:"name"`
	Description string `json:"description" form:"description"`
}

func (h *PlaylistHandler) CreatePlaylist(c *gin.Context) {
	var req playlistRequest
	if err := c.ShouldBind(&req); err != nil {
		fail(c, bindError(err))
		return
	}
	playlist, err := h.playlists.Create(c.Request.Context(), req.Name, req.Description, middleware.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	utils.Respond(c, http.StatusCreated, playlist, "Playlist created successfully.")
}

func (h *PlaylistHandler) GetUserPlaylists(c *gin.Context) {
	playlists, err := h.playlists.ListByOwner(c.Request.Context(), c.Param("userId"))
	if err != nil {
		fail(c, err)
		return
	}
	utils.Respond(c, http.StatusOK, playlists, "User playlists fetched successfully.")
}

func (h *PlaylistHandler) GetPlaylist(c *gin.Context) {
	playlist, err := h.playlists.Get(c.Request.Context(), c.Param("playlistId"))
	if err != nil {
		fail(c, err)
		return
	}
	utils.Respond(c, http.StatusOK, playlist, "Playlist Details fetched successfully.")
}

func (h *PlaylistHandler) AddVideo(c *gin.Context) {
	playlist, err := h.playlists.AddVideo(c.Request.Context(), c.Param("playlistId"), c.Param("videoId"))
	if err != nil {
		fail(c, err)
		return
	}
	utils.Respond(c, http.StatusOK, playlist, "Video added to playlist successfully.")
}

func (h *PlaylistHandler) RemoveVideo(c *gin.Context) {
	playlist, err := h.playlists.RemoveVideo(c.Request.Context(), c.Param("playlistId"), c.Param("videoId"))
	if err != nil {
		fail(c, err)
		return
	}
	utils.Respond(c, http.StatusOK, playlist, "Video removed from playlist successfully.")
}

func (h *PlaylistHandler) UpdatePlaylist(c *gin.Context) {
	var req playlistRequest
	if err := c.ShouldBind(&req); err != nil {
		fail(c, bindError(err))
		return
	}
	playlist, err := h.playlists.Update(c.Request.Context(), c.Param("playlistId"), req.Name, req.Description)
	if err != nil {
		fail(c, err)
		return
	}
	utils.Respond(c, http.StatusOK, playlist, "Playlist updated successfully.")
}

func (h *PlaylistHandler) DeletePlaylist(c *gin.Context) {
	playlist, err := h.playlists.Delete(c.Request.Context(), c.Param("playlistId"))
	if err != nil {
		fail(c, err)
		return
	}
	utils.Respond(c, http.StatusOK, playlist, "Playlist deleted successfully.")
}
