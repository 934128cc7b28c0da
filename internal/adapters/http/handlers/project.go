package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/offermaster-service/internal/adapters/http/dto"
	"github.com/jsamuelsen/offermaster-service/internal/adapters/http/middleware"
	"github.com/jsamuelsen/offermaster-service/internal/app"
	"github.com/jsamuelsen/offermaster-service/internal/domain"
)

// ProjectHandler handles the current user's projects.
type ProjectHandler struct {
	service *app.ProjectService
}

// NewProjectHandler creates a new project handler.
func NewProjectHandler(service *app.ProjectService) *ProjectHandler {
	return &ProjectHandler{service: service}
}

// CreateProjectRequest is the body of POST /api/projects.
// Image is an optional base64 payload, with or without a data URL prefix.
type CreateProjectRequest struct {
	Name    string `json:"name" validate:"required,notempty"`
	Address string `json:"address"`
	Status  string `json:"status"`
	Notes   string `json:"notes"`
	Image   string `json:"image"`
}

// UpdateProjectRequest is the body of PUT /api/projects/{id}.
// Omitted fields are left unchanged.
type UpdateProjectRequest struct {
	Name        *string `json:"name"`
	Address     *string `json:"address"`
	Status      *string `json:"status"`
	Notes       *string `json:"notes"`
	Image       string  `json:"image"`
	RemoveImage bool    `json:"removeImage"`
}

// ProjectResponse is the HTTP view of a project.
type ProjectResponse struct {
	ID        uint         `json:"id"`
	Name      string       `json:"name"`
	Address   string       `json:"address"`
	Status    EnumResponse `json:"status"`
	Notes     string       `json:"notes"`
	ImageURL  string       `json:"imageUrl,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

func toProjectResponse(p *domain.Project) *ProjectResponse {
	return &ProjectResponse{
		ID:        p.ID,
		Name:      p.Name,
		Address:   p.Address,
		Status:    EnumResponse{Code: string(p.Status), Label: p.Status.Label()},
		Notes:     p.Notes,
		ImageURL:  p.ImageURL,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// Create handles POST /api/projects
//
// @Summary Create a project
// @Description Uploads the optional image before saving; the upload is removed if saving fails.
// @Tags projects
// @Accept json
// @Produce json
// @Param request body CreateProjectRequest true "Project"
// @Success 201 {object} ProjectResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /api/projects [post]
func (h *ProjectHandler) Create(c *gin.Context) {
	var req CreateProjectRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleBindError(c, err)
		return
	}

	project, err := h.service.Create(c.Request.Context(), middleware.CurrentActor(c), app.ProjectInput{
		Name:    req.Name,
		Address: req.Address,
		Status:  req.Status,
		Notes:   req.Notes,
		Image:   req.Image,
	})
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toProjectResponse(project))
}

// List handles GET /api/projects
//
// @Summary List own projects
// @Tags projects
// @Produce json
// @Success 200 {array} ProjectResponse
// @Router /api/projects [get]
func (h *ProjectHandler) List(c *gin.Context) {
	projects, err := h.service.List(c.Request.Context(), middleware.CurrentActor(c))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	resp := make([]*ProjectResponse, 0, len(projects))
	for _, p := range projects {
		resp = append(resp, toProjectResponse(p))
	}

	c.JSON(http.StatusOK, resp)
}

// Get handles GET /api/projects/:id
//
// @Summary Get a project
// @Tags projects
// @Produce json
// @Param id path int true "Project ID"
// @Success 200 {object} ProjectResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/projects/{id} [get]
func (h *ProjectHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	project, err := h.service.Get(c.Request.Context(), middleware.CurrentActor(c), id)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, toProjectResponse(project))
}

// Update handles PUT /api/projects/:id
//
// @Summary Update a project
// @Tags projects
// @Accept json
// @Produce json
// @Param id path int true "Project ID"
// @Param request body UpdateProjectRequest true "Changed fields"
// @Success 200 {object} ProjectResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/projects/{id} [put]
func (h *ProjectHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req UpdateProjectRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleBindError(c, err)
		return
	}

	project, err := h.service.Update(c.Request.Context(), middleware.CurrentActor(c), id, app.ProjectUpdate{
		Name:        req.Name,
		Address:     req.Address,
		Status:      req.Status,
		Notes:       req.Notes,
		Image:       req.Image,
		RemoveImage: req.RemoveImage,
	})
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, toProjectResponse(project))
}

// Delete handles DELETE /api/projects/:id
// Quotes and calendar events of the project are kept and detached.
//
// @Summary Delete a project
// @Tags projects
// @Param id path int true "Project ID"
// @Success 204
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/projects/{id} [delete]
func (h *ProjectHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), middleware.CurrentActor(c), id); err != nil {
		dto.HandleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// RegisterProjectRoutes registers project routes on rg.
func (h *ProjectHandler) RegisterProjectRoutes(rg *gin.RouterGroup) {
	projects := rg.Group("/projects")
	projects.POST("", h.Create)
	projects.GET("", h.List)
	projects.GET("/:id", h.Get)
	projects.PUT("/:id", h.Update)
	projects.DELETE("/:id", h.Delete)
}
