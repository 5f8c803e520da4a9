package handler

import (
	"net/http"
	"strconv"
	"strings"

	"showroom/internal/handler/respond"
	"showroom/internal/models"
	"showroom/internal/repository"
	"showroom/pkg/cloudinary"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SimulationHandler struct {
	projectRepo *repository.ProjectRepository
	cloud       cloudinary.Client
}

func NewSimulationHandler(projectRepo *repository.ProjectRepository, cloud cloudinary.Client) *SimulationHandler {
	return &SimulationHandler{projectRepo: projectRepo, cloud: cloud}
}

func (h *SimulationHandler) List(c *gin.Context) {
	projectID, _ := strconv.ParseUint(c.Query("projectId"), 10, 64)
	if projectID == 0 {
		respond.Error(c, http.StatusBadRequest, "projectId required")
		return
	}
	list, err := h.projectRepo.ListSimulations(uint(projectID))
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "list failed")
		return
	}
	respond.OK(c, http.StatusOK, list)
}

// Create accepts multipart form data: projectId, file, name,
// description?, displayOrder?.
func (h *SimulationHandler) Create(c *gin.Context) {
	projectID, _ := strconv.ParseUint(c.PostForm("projectId"), 10, 64)
	name := c.PostForm("name")
	if projectID == 0 || name == "" {
		respond.Error(c, http.StatusBadRequest, "projectId and name required")
		return
	}
	if _, err := h.projectRepo.GetByID(uint(projectID)); err != nil {
		respond.Error(c, http.StatusNotFound, "project not found")
		return
	}
	file, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "file required")
		return
	}
	f, err := file.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "could not read file")
		return
	}
	defer f.Close()
	folder := "showroom/simulations/" + strconv.FormatUint(projectID, 10)
	publicID := "sim_" + strings.ReplaceAll(uuid.New().String(), "-", "")[:16]
	url, err := h.cloud.UploadRaw(c.Request.Context(), f, folder, publicID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "upload failed")
		return
	}
	displayOrder, _ := strconv.Atoi(c.DefaultPostForm("displayOrder", "0"))
	s := &models.Simulation{
		ProjectID:    uint(projectID),
		Name:         name,
		Description:  c.PostForm("description"),
		FileURL:      url,
		DisplayOrder: displayOrder,
	}
	if err := h.projectRepo.CreateSimulation(s); err != nil {
		respond.Error(c, http.StatusInternalServerError, "create failed")
		return
	}
	respond.OK(c, http.StatusCreated, s)
}

func (h *SimulationHandler) Update(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	s, err := h.projectRepo.GetSimulation(uint(id))
	if err != nil {
		respond.Error(c, http.StatusNotFound, "simulation not found")
		return
	}
	var req struct {
		Name         string `json:"name"`
		Description  string `json:"description"`
		DisplayOrder *int   `json:"displayOrder"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	if req.Name != "" {
		s.Name = req.Name
	}
	if req.Description != "" {
		s.Description = req.Description
	}
	if req.DisplayOrder != nil {
		s.DisplayOrder = *req.DisplayOrder
	}
	if err := h.projectRepo.UpdateSimulation(s); err != nil {
		respond.Error(c, http.StatusInternalServerError, "update failed")
		return
	}
	respond.OK(c, http.StatusOK, s)
}

func (h *SimulationHandler) Delete(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	s, err := h.projectRepo.GetSimulation(uint(id))
	if err != nil {
		respond.Error(c, http.StatusNotFound, "simulation not found")
		return
	}
	_ = h.cloud.DeleteByURL(c.Request.Context(), s.FileURL)
	if err := h.projectRepo.DeleteSimulation(s.ID); err != nil {
		respond.Error(c, http.StatusInternalServerError, "delete failed")
		return
	}
	respond.Message(c, http.StatusOK, "simulation deleted")
}
