package handler

import (
	"errors"
	"net/http"
	"strconv"

	"showroom/internal/domain"
	"showroom/internal/handler/respond"
	"showroom/internal/middleware"
	"showroom/internal/models"
	"showroom/internal/repository"
	"showroom/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type GroupHandler struct {
	groupRepo    *repository.GroupRepository
	userRepo     *repository.UserRepository
	academicRepo *repository.AcademicRepository
	notifSvc     *service.NotificationService
}

func NewGroupHandler(groupRepo *repository.GroupRepository, userRepo *repository.UserRepository, academicRepo *repository.AcademicRepository, notifSvc *service.NotificationService) *GroupHandler {
	return &GroupHandler{groupRepo: groupRepo, userRepo: userRepo, academicRepo: academicRepo, notifSvc: notifSvc}
}

type createGroupRequest struct {
	Name    string `json:"name" binding:"required,min=2,max=128"`
	ClassID uint   `json:"classId" binding:"required"`
	MaxSize int    `json:"maxSize"`
}

// Create forms a new group led by the calling student, who must be
// enrolled in the class.
func (h *GroupHandler) Create(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req createGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	enrolled, err := h.academicRepo.IsEnrolled(req.ClassID, userID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "create failed")
		return
	}
	if !enrolled {
		respond.Error(c, http.StatusForbidden, "not enrolled in this class")
		return
	}
	if req.MaxSize <= 0 {
		req.MaxSize = 5
	}
	g := &models.Group{
		Name:     req.Name,
		ClassID:  req.ClassID,
		LeaderID: userID,
		Status:   domain.GroupStatusForming,
		MaxSize:  req.MaxSize,
	}
	if err := h.groupRepo.Create(g); err != nil {
		respond.Error(c, http.StatusInternalServerError, "create failed")
		return
	}
	if err := h.groupRepo.AddMember(&models.GroupMember{GroupID: g.ID, UserID: userID}); err != nil {
		respond.Error(c, http.StatusInternalServerError, "create failed")
		return
	}
	respond.OK(c, http.StatusCreated, g)
}

func (h *GroupHandler) Get(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	g, err := h.groupRepo.GetByID(uint(id))
	if err != nil {
		respond.Error(c, http.StatusNotFound, "group not found")
		return
	}
	respond.OK(c, http.StatusOK, g)
}

func (h *GroupHandler) ListByClass(c *gin.Context) {
	classID, _ := strconv.ParseUint(c.Query("classId"), 10, 64)
	if classID == 0 {
		respond.Error(c, http.StatusBadRequest, "classId required")
		return
	}
	list, err := h.groupRepo.ListByClass(uint(classID))
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "list failed")
		return
	}
	respond.OK(c, http.StatusOK, list)
}

// Mine lists every group the caller belongs to.
func (h *GroupHandler) Mine(c *gin.Context) {
	list, err := h.groupRepo.ListByMember(middleware.GetUserID(c))
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "list failed")
		return
	}
	respond.OK(c, http.StatusOK, list)
}

type inviteRequest struct {
	Emails []string `json:"emails" binding:"required,min=1"`
}

type inviteResult struct {
	Succeeded int      `json:"succeeded"`
	Failed    int      `json:"failed"`
	Errors    []string `json:"errors,omitempty"`
}

// Invite adds a batch of students by email. Each invite is attempted
// independently; successes are never rolled back when others fail.
func (h *GroupHandler) Invite(c *gin.Context) {
	userID := middleware.GetUserID(c)
	groupID, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	g, err := h.groupRepo.GetByID(uint(groupID))
	if err != nil {
		respond.Error(c, http.StatusNotFound, "group not found")
		return
	}
	if g.LeaderID != userID && middleware.GetRole(c) == domain.RoleStudent {
		respond.Error(c, http.StatusForbidden, "only the group leader can invite")
		return
	}
	var req inviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	inviter, _ := h.userRepo.GetByID(userID)
	inviterName := ""
	if inviter != nil {
		inviterName = inviter.FullName
	}

	var result inviteResult
	for _, email := range req.Emails {
		if err := h.inviteOne(g, email, inviterName); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, email+": "+err.Error())
			continue
		}
		result.Succeeded++
	}
	respond.OK(c, http.StatusOK, result)
}

func (h *GroupHandler) inviteOne(g *models.Group, email, inviterName string) error {
	u, err := h.userRepo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("no such user")
		}
		return err
	}
	if u.Role != domain.RoleStudent {
		return errors.New("not a student")
	}
	enrolled, err := h.academicRepo.IsEnrolled(g.ClassID, u.ID)
	if err != nil {
		return err
	}
	if !enrolled {
		return errors.New("not enrolled in this class")
	}
	count, err := h.groupRepo.MemberCount(g.ID)
	if err != nil {
		return err
	}
	if int(count) >= g.MaxSize {
		return errors.New("group is full")
	}
	if err := h.groupRepo.AddMember(&models.GroupMember{GroupID: g.ID, UserID: u.ID}); err != nil {
		return errors.New("already a member")
	}
	_ = h.notifSvc.NotifyGroupInvite(u.ID, g.ID, g.Name, inviterName)
	return nil
}

func (h *GroupHandler) RemoveMember(c *gin.Context) {
	userID := middleware.GetUserID(c)
	groupID, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	memberID, _ := strconv.ParseUint(c.Param("userId"), 10, 64)
	g, err := h.groupRepo.GetByID(uint(groupID))
	if err != nil {
		respond.Error(c, http.StatusNotFound, "group not found")
		return
	}
	// Members may leave; only the leader (or staff) removes others.
	if uint(memberID) != userID && g.LeaderID != userID && middleware.GetRole(c) == domain.RoleStudent {
		respond.Error(c, http.StatusForbidden, "forbidden")
		return
	}
	if err := h.groupRepo.RemoveMember(uint(groupID), uint(memberID)); err != nil {
		respond.Error(c, http.StatusInternalServerError, "remove failed")
		return
	}
	respond.Message(c, http.StatusOK, "member removed")
}

func (h *GroupHandler) Delete(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	if err := h.groupRepo.Delete(uint(id)); err != nil {
		respond.Error(c, http.StatusInternalServerError, "delete failed")
		return
	}
	respond.Message(c, http.StatusOK, "group deleted")
}
