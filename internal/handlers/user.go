package handlers

import (
	"net/http"

	"vidshare-api/internal/middleware"
	"vidshare-api/internal/services"
	"vidshare-api/internal/utils"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	users        *services.UserService
	secureCookie bool
}

func NewUserHandler(users *services.UserService, secureCookie bool) *UserHandler {
	return &UserHandler{users: users, secureCookie: secureCookie}
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=32,alphanum"`
	Email    string `json:"email" binding:"required,email"`
	FullName string `json:"fullName" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
	Avatar   string `json:"avatar" binding:"omitempty,url"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password" binding:"required"`
}

func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, bindError(err))
		return
	}
	session, err := h.users.Register(c.Request.Context(), services.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		FullName: req.FullName,
		Password: req.Password,
		Avatar:   req.Avatar,
	})
	if err != nil {
		fail(c, err)
		return
	}
	h.setTokenCookie(c, session.AccessToken)
	utils.Respond(c, http.StatusCreated, session, "User registered successfully.")
}

func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, bindError(err))
		return
	}
	identifier := req.Username
	if identifier == "" {
		identifier = req.Email
	}
	session, err := h.users.Login(c.Request.Context(), identifier, req.Password)
	if err != nil {
		fail(c, err)
		return
	}
	h.setTokenCookie(c, session.AccessToken)
	utils.Respond(c, http.StatusOK, session, "User logged in successfully.")
}

func (h *UserHandler) setTokenCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.CookieAccessToken, token, int(h.users.TokenTTL().Seconds()), "/", "", h.secureCookie, true)
}

func (h *UserHandler) CurrentUser(c *gin.Context) {
	user, err := h.users.Current(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	utils.Respond(c, http.StatusOK, user, "User fetched successfully.")
}

// ChannelProfile returns a user's public channel. The caller is optional and
// only affects isSubscribed.
func (h *UserHandler) ChannelProfile(c *gin.Context) {
	channel, err := h.users.Channel(c.Request.Context(), c.Param("username"), middleware.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	utils.Respond(c, http.StatusOK, channel, "User channel fetched successfully.")
}
