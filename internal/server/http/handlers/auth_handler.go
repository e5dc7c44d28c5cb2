package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/veo3store/internal/domain/model"
	"github.com/polkiloo/veo3store/internal/server/http/dto"
	"github.com/polkiloo/veo3store/internal/server/http/middleware"
	"github.com/polkiloo/veo3store/internal/usecase"
)

// AuthHandler processes registration, login and session checks.
type AuthHandler struct {
	facade   AuthFacade
	tokenTTL time.Duration
}

// NewAuthHandler creates AuthHandler instance.
func NewAuthHandler(facade AuthFacade, tokenTTL time.Duration) *AuthHandler {
	return &AuthHandler{facade: facade, tokenTTL: tokenTTL}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := h.facade.Register(c.Request.Context(), usecase.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Phone:    req.Phone,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusCreated, dto.RegisterResponse{Message: "Đăng ký thành công", User: toUserResponse(user)})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.facade.Login(c.Request.Context(), req.Email, req.Password, model.SessionMeta{
		UserAgent: c.Request.UserAgent(),
		IP:        c.ClientIP(),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	middleware.SetAuthCookie(c, result.Token, int(h.tokenTTL.Seconds()))
	respond(c, http.StatusOK, dto.LoginResponse{AccessToken: result.Token, User: toUserResponse(result.User)})
}

// Logout handles POST /api/auth/logout.
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.facade.Logout(c.Request.Context(), CurrentUserID(c)); err != nil {
		respondError(c, err)
		return
	}
	middleware.ClearAuthCookie(c)
	respond(c, http.StatusOK, dto.MessageResponse{Message: "Đăng xuất thành công"})
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.facade.Me(c.Request.Context(), CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, toUserResponse(user))
}

// SessionStatus handles GET /api/auth/session/status. Reaching it means the session is current.
func (h *AuthHandler) SessionStatus(c *gin.Context) {
	claims, _ := middleware.Claims(c)
	respond(c, http.StatusOK, dto.SessionStatusResponse{
		Valid:     true,
		SessionID: claims.SessionID,
		UserID:    strconv.FormatInt(claims.UserID, 10),
	})
}
