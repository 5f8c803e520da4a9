package handler

import (
	"log"
	"net/http"

	"showroom/internal/domain"
	"showroom/internal/handler/respond"
	"showroom/internal/middleware"
	"showroom/internal/service"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	svc *service.AuthService
}

func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

type RegisterRequest struct {
	Email       string `json:"email" binding:"required,email"`
	FullName    string `json:"fullName" binding:"required,min=2,max=128"`
	Password    string `json:"password" binding:"required,min=8"`
	StudentCode string `json:"studentCode"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type tokenPairResponse struct {
	User         interface{} `json:"user,omitempty"`
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
}

// Register self-registers a student account. Instructor and admin
// accounts are created through the admin user endpoints.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	u, access, refresh, err := h.svc.Register(req.Email, req.FullName, req.Password, domain.RoleStudent)
	if err != nil {
		switch err {
		case service.ErrEmailExists:
			respond.FieldErrors(c, http.StatusConflict, map[string][]string{"email": {"already registered"}})
		default:
			log.Printf("[auth] register failed: email=%s err=%v", req.Email, err)
			respond.Error(c, http.StatusInternalServerError, "registration failed")
		}
		return
	}
	if req.StudentCode != "" {
		u.StudentCode = req.StudentCode
	}
	respond.OK(c, http.StatusCreated, tokenPairResponse{User: u, AccessToken: access, RefreshToken: refresh})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	u, access, refresh, err := h.svc.Login(req.Email, req.Password)
	if err != nil {
		switch err {
		case service.ErrInvalidCreds:
			respond.Error(c, http.StatusUnauthorized, err.Error())
		case service.ErrInactive:
			respond.Error(c, http.StatusForbidden, err.Error())
		default:
			respond.Error(c, http.StatusInternalServerError, "login failed")
		}
		return
	}
	respond.OK(c, http.StatusOK, tokenPairResponse{User: u, AccessToken: access, RefreshToken: refresh})
}

// Logout acknowledges the client-side session teardown. Tokens are
// stateless, so there is nothing to invalidate server-side; the call
// exists so clients can treat logout as best effort.
func (h *AuthHandler) Logout(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID != 0 {
		log.Printf("[auth] logout user=%d", userID)
	}
	respond.Message(c, http.StatusOK, "logged out")
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		respond.Error(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req struct {
		CurrentPassword string `json:"currentPassword" binding:"required"`
		NewPassword     string `json:"newPassword" binding:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.svc.ChangePassword(userID, req.CurrentPassword, req.NewPassword); err != nil {
		if err == service.ErrInvalidCreds {
			respond.Error(c, http.StatusUnauthorized, "current password is incorrect")
			return
		}
		respond.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	respond.Message(c, http.StatusOK, "password changed")
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	access, refresh, err := h.svc.RefreshToken(req.RefreshToken)
	if err != nil {
		respond.Error(c, http.StatusUnauthorized, "invalid refresh token")
		return
	}
	respond.OK(c, http.StatusOK, tokenPairResponse{AccessToken: access, RefreshToken: refresh})
}
