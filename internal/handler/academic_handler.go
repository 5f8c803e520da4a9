package handler

import (
	"net/http"
	"strconv"
	"time"

	"showroom/internal/domain"
	"showroom/internal/handler/respond"
	"showroom/internal/models"
	"showroom/internal/repository"

	"github.com/gin-gonic/gin"
)

// AcademicHandler is the admin surface for semesters, classes and
// enrollments.
type AcademicHandler struct {
	repo     *repository.AcademicRepository
	userRepo *repository.UserRepository
}

func NewAcademicHandler(repo *repository.AcademicRepository, userRepo *repository.UserRepository) *AcademicHandler {
	return &AcademicHandler{repo: repo, userRepo: userRepo}
}

type semesterRequest struct {
	Name      string    `json:"name" binding:"required"`
	StartDate time.Time `json:"startDate" binding:"required"`
	EndDate   time.Time `json:"endDate" binding:"required"`
	IsActive  bool      `json:"isActive"`
}

func (h *AcademicHandler) CreateSemester(c *gin.Context) {
	var req semesterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	if !req.EndDate.After(req.StartDate) {
		respond.FieldErrors(c, http.StatusBadRequest, map[string][]string{"endDate": {"must be after startDate"}})
		return
	}
	s := &models.Semester{Name: req.Name, StartDate: req.StartDate, EndDate: req.EndDate, IsActive: req.IsActive}
	if err := h.repo.CreateSemester(s); err != nil {
		respond.Error(c, http.StatusInternalServerError, "create failed")
		return
	}
	respond.OK(c, http.StatusCreated, s)
}

func (h *AcademicHandler) ListSemesters(c *gin.Context) {
	list, err := h.repo.ListSemesters()
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "list failed")
		return
	}
	respond.OK(c, http.StatusOK, list)
}

func (h *AcademicHandler) UpdateSemester(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	s, err := h.repo.GetSemester(uint(id))
	if err != nil {
		respond.Error(c, http.StatusNotFound, "semester not found")
		return
	}
	var req semesterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	s.Name = req.Name
	s.StartDate = req.StartDate
	s.EndDate = req.EndDate
	s.IsActive = req.IsActive
	if err := h.repo.UpdateSemester(s); err != nil {
		respond.Error(c, http.StatusInternalServerError, "update failed")
		return
	}
	respond.OK(c, http.StatusOK, s)
}

func (h *AcademicHandler) DeleteSemester(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	if err := h.repo.DeleteSemester(uint(id)); err != nil {
		respond.Error(c, http.StatusInternalServerError, "delete failed")
		return
	}
	respond.Message(c, http.StatusOK, "semester deleted")
}

type classRequest struct {
	Name         string `json:"name" binding:"required"`
	SemesterID   uint   `json:"semesterId" binding:"required"`
	InstructorID uint   `json:"instructorId" binding:"required"`
}

func (h *AcademicHandler) CreateClass(c *gin.Context) {
	var req classRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	instructor, err := h.userRepo.GetByID(req.InstructorID)
	if err != nil || instructor.Role != domain.RoleInstructor {
		respond.FieldErrors(c, http.StatusBadRequest, map[string][]string{"instructorId": {"not an instructor"}})
		return
	}
	cl := &models.Class{Name: req.Name, SemesterID: req.SemesterID, InstructorID: req.InstructorID}
	if err := h.repo.CreateClass(cl); err != nil {
		respond.Error(c, http.StatusInternalServerError, "create failed")
		return
	}
	respond.OK(c, http.StatusCreated, cl)
}

func (h *AcademicHandler) ListClasses(c *gin.Context) {
	semesterID, _ := strconv.ParseUint(c.Query("semesterId"), 10, 64)
	list, err := h.repo.ListClasses(uint(semesterID))
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "list failed")
		return
	}
	respond.OK(c, http.StatusOK, list)
}

func (h *AcademicHandler) UpdateClass(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	cl, err := h.repo.GetClass(uint(id))
	if err != nil {
		respond.Error(c, http.StatusNotFound, "class not found")
		return
	}
	var req classRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	instructor, err := h.userRepo.GetByID(req.InstructorID)
	if err != nil || instructor.Role != domain.RoleInstructor {
		respond.FieldErrors(c, http.StatusBadRequest, map[string][]string{"instructorId": {"not an instructor"}})
		return
	}
	cl.Name = req.Name
	cl.SemesterID = req.SemesterID
	cl.InstructorID = req.InstructorID
	if err := h.repo.UpdateClass(cl); err != nil {
		respond.Error(c, http.StatusInternalServerError, "update failed")
		return
	}
	respond.OK(c, http.StatusOK, cl)
}

func (h *AcademicHandler) GetClass(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	cl, err := h.repo.GetClass(uint(id))
	if err != nil {
		respond.Error(c, http.StatusNotFound, "class not found")
		return
	}
	respond.OK(c, http.StatusOK, cl)
}

func (h *AcademicHandler) DeleteClass(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	if err := h.repo.DeleteClass(uint(id)); err != nil {
		respond.Error(c, http.StatusInternalServerError, "delete failed")
		return
	}
	respond.Message(c, http.StatusOK, "class deleted")
}

func (h *AcademicHandler) Enroll(c *gin.Context) {
	classID, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	var req struct {
		StudentID uint `json:"studentId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	student, err := h.userRepo.GetByID(req.StudentID)
	if err != nil || student.Role != domain.RoleStudent {
		respond.FieldErrors(c, http.StatusBadRequest, map[string][]string{"studentId": {"not a student"}})
		return
	}
	e := &models.ClassEnrollment{ClassID: uint(classID), StudentID: req.StudentID}
	if err := h.repo.Enroll(e); err != nil {
		respond.Error(c, http.StatusConflict, "already enrolled")
		return
	}
	respond.OK(c, http.StatusCreated, e)
}

func (h *AcademicHandler) Unenroll(c *gin.Context) {
	classID, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	studentID, _ := strconv.ParseUint(c.Param("studentId"), 10, 64)
	if err := h.repo.Unenroll(uint(classID), uint(studentID)); err != nil {
		respond.Error(c, http.StatusInternalServerError, "unenroll failed")
		return
	}
	respond.Message(c, http.StatusOK, "unenrolled")
}

func (h *AcademicHandler) ListEnrollments(c *gin.Context) {
	classID, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	list, err := h.repo.ListEnrollments(uint(classID))
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "list failed")
		return
	}
	respond.OK(c, http.StatusOK, list)
}
