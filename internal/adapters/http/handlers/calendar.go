package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/offermaster-service/internal/adapters/http/dto"
	"github.com/jsamuelsen/offermaster-service/internal/adapters/http/middleware"
	"github.com/jsamuelsen/offermaster-service/internal/app"
	"github.com/jsamuelsen/offermaster-service/internal/domain"
)

// CalendarHandler handles the current user's calendar events.
type CalendarHandler struct {
	service *app.CalendarService
}

// NewCalendarHandler creates a new calendar handler.
func NewCalendarHandler(service *app.CalendarService) *CalendarHandler {
	return &CalendarHandler{service: service}
}

// CalendarEventRequest is the body of POST /api/calendar-events.
type CalendarEventRequest struct {
	Title     string `json:"title" validate:"required,notempty"`
	Date      string `json:"date" validate:"required"`
	QuoteID   *uint  `json:"quoteId"`
	ProjectID *uint  `json:"projectId"`
}

// CalendarEventResponse is the HTTP view of a calendar event.
type CalendarEventResponse struct {
	ID        uint   `json:"id"`
	Title     string `json:"title"`
	Date      string `json:"date"`
	QuoteID   *uint  `json:"quoteId"`
	ProjectID *uint  `json:"projectId"`
}

func toCalendarEventResponse(e *domain.CalendarEvent) *CalendarEventResponse {
	return &CalendarEventResponse{
		ID:        e.ID,
		Title:     e.Title,
		Date:      e.Date.Format(domain.DateLayout),
		QuoteID:   e.QuoteID,
		ProjectID: e.ProjectID,
	}
}

// Create handles POST /api/calendar-events
//
// @Summary Create a calendar event
// @Tags calendar
// @Accept json
// @Produce json
// @Param request body CalendarEventRequest true "Event"
// @Success 201 {object} CalendarEventResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/calendar-events [post]
func (h *CalendarHandler) Create(c *gin.Context) {
	var req CalendarEventRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleBindError(c, err)
		return
	}

	event, err := h.service.Create(c.Request.Context(), middleware.CurrentActor(c), app.CalendarEventInput{
		Title:     req.Title,
		Date:      req.Date,
		QuoteID:   req.QuoteID,
		ProjectID: req.ProjectID,
	})
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toCalendarEventResponse(event))
}

// List handles GET /api/calendar-events
//
// @Summary List own calendar events
// @Tags calendar
// @Produce json
// @Success 200 {array} CalendarEventResponse
// @Router /api/calendar-events [get]
func (h *CalendarHandler) List(c *gin.Context) {
	events, err := h.service.List(c.Request.Context(), middleware.CurrentActor(c))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	resp := make([]*CalendarEventResponse, 0, len(events))
	for _, e := range events {
		resp = append(resp, toCalendarEventResponse(e))
	}

	c.JSON(http.StatusOK, resp)
}

// Get handles GET /api/calendar-events/:id
//
// @Summary Get a calendar event
// @Tags calendar
// @Produce json
// @Param id path int true "Event ID"
// @Success 200 {object} CalendarEventResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/calendar-events/{id} [get]
func (h *CalendarHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	event, err := h.service.Get(c.Request.Context(), middleware.CurrentActor(c), id)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, toCalendarEventResponse(event))
}

// Delete handles DELETE /api/calendar-events/:id
//
// @Summary Delete a calendar event
// @Tags calendar
// @Param id path int true "Event ID"
// @Success 204
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/calendar-events/{id} [delete]
func (h *CalendarHandler) Delete(c *gin.Context) {
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

// RegisterCalendarRoutes registers calendar routes on rg.
func (h *CalendarHandler) RegisterCalendarRoutes(rg *gin.RouterGroup) {
	events := rg.Group("/calendar-events")
	events.POST("", h.Create)
	events.GET("", h.List)
	events.GET("/:id", h.Get)
	events.DELETE("/:id", h.Delete)
}
