package handler

import (
	"net/http"
	"strconv"

	"showroom/internal/domain"
	"showroom/internal/handler/respond"
	"showroom/internal/middleware"
	"showroom/internal/models"
	"showroom/internal/repository"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

type UserHandler struct {
	userRepo *repository.UserRepository
}

func NewUserHandler(userRepo *repository.UserRepository) *UserHandler {
	return &UserHandler{userRepo: userRepo}
}

// Me resolves the identity behind the access token. This is the "who am
// I" call clients use at boot and after profile-affecting actions.
func (h *UserHandler) Me(c *gin.Context) {
	userID := middleware.GetUserID(c)
	u, err := h.userRepo.GetByID(userID)
	if err != nil {
		respond.Error(c, http.StatusUnauthorized, "identity not found")
		return
	}
	respond.OK(c, http.StatusOK, u)
}

func (h *UserHandler) UpdateMe(c *gin.Context) {
	userID := middleware.GetUserID(c)
	u, err := h.userRepo.GetByID(userID)
	if err != nil {
		respond.Error(c, http.StatusUnauthorized, "identity not found")
		return
	}
	var req struct {
		FullName  string `json:"fullName"`
		AvatarURL string `json:"avatarUrl"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	if req.FullName != "" {
		u.FullName = req.FullName
	}
	if req.AvatarURL != "" {
		u.AvatarURL = req.AvatarURL
	}
	if err := h.userRepo.Update(u); err != nil {
		respond.Error(c, http.StatusInternalServerError, "update failed")
		return
	}
	respond.OK(c, http.StatusOK, u)
}

// List is admin-only user management.
func (h *UserHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	role := c.Query("role")
	list, err := h.userRepo.List(role, limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "list failed")
		return
	}
	respond.OK(c, http.StatusOK, list)
}

type createUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	FullName string `json:"fullName" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"required,oneof=Admin Instructor Student"`
}

// Create lets admins provision instructor and admin accounts.
func (h *UserHandler) Create(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "create failed")
		return
	}
	u := &models.User{
		Email:        req.Email,
		FullName:     req.FullName,
		PasswordHash: string(hash),
		Role:         req.Role,
		IsActive:     true,
	}
	if err := h.userRepo.Create(u); err != nil {
		respond.FieldErrors(c, http.StatusConflict, map[string][]string{"email": {"already registered"}})
		return
	}
	respond.OK(c, http.StatusCreated, u)
}

func (h *UserHandler) SetActive(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	u, err := h.userRepo.GetByID(uint(id))
	if err != nil {
		respond.Error(c, http.StatusNotFound, "user not found")
		return
	}
	var req struct {
		IsActive *bool `json:"isActive" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	if u.Role == domain.RoleAdmin && !*req.IsActive {
		respond.Error(c, http.StatusForbidden, "cannot deactivate an admin account")
		return
	}
	u.IsActive = *req.IsActive
	if err := h.userRepo.Update(u); err != nil {
		respond.Error(c, http.StatusInternalServerError, "update failed")
		return
	}
	respond.OK(c, http.StatusOK, u)
}

func (h *UserHandler) Delete(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	if uint(id) == middleware.GetUserID(c) {
		respond.Error(c, http.StatusBadRequest, "cannot delete your own account")
		return
	}
	if err := h.userRepo.Delete(uint(id)); err != nil {
		respond.Error(c, http.StatusInternalServerError, "delete failed")
		return
	}
	respond.Message(c, http.StatusOK, "user deleted")
}
