package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"goalboard/internal/apperr"
	"goalboard/internal/model"
	"goalboard/internal/repository"
	"goalboard/internal/service"
)

type GoalHandler struct {
	goalService *service.GoalService
}

func NewGoalHandler(goalService *service.GoalService) *GoalHandler {
	return &GoalHandler{goalService: goalService}
}

func parseStatusField(c *gin.Context, raw *string) (*model.Status, bool) {
	if raw == nil {
		return nil, true
	}
	s, ok := model.ParseStatus(*raw)
	if !ok {
		respondError(c, apperr.Validation("unknown status %q", *raw))
		return nil, false
	}
	return &s, true
}

func parsePriorityField(c *gin.Context, raw *string) (*model.Priority, bool) {
	if raw == nil {
		return nil, true
	}
	p, ok := model.ParsePriority(*raw)
	if !ok {
		respondError(c, apperr.Validation("unknown priority %q", *raw))
		return nil, false
	}
	return &p, true
}

// Create handles POST /goals
func (h *GoalHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req struct {
		CategoryID  int64      `json:"category_id"`
		Title       string     `json:"title"`
		Description string     `json:"description"`
		Status      *string    `json:"status"`
		Priority    *string    `json:"priority"`
		DueDate     *time.Time `json:"due_date"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	status, ok := parseStatusField(c, req.Status)
	if !ok {
		return
	}
	priority, ok := parsePriorityField(c, req.Priority)
	if !ok {
		return
	}

	goal, err := h.goalService.CreateGoal(c.Request.Context(), userID, service.GoalCreate{
		CategoryID:  req.CategoryID,
		Title:       req.Title,
		Description: req.Description,
		Status:      status,
		Priority:    priority,
		DueDate:     req.DueDate,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"goal": goal})
}

// List handles GET /goals
func (h *GoalHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var filter repository.GoalsFilter
	if filter.BoardID, ok = queryInt64(c, "board_id"); !ok {
		return
	}
	if filter.CategoryID, ok = queryInt64(c, "category_id"); !ok {
		return
	}
	if raw := c.Query("status"); raw != "" {
		s, parsed := model.ParseStatus(raw)
		if !parsed {
			respondError(c, apperr.Validation("unknown status %q", raw))
			return
		}
		filter.Status = &s
	}
	if raw := c.Query("priority"); raw != "" {
		p, parsed := model.ParsePriority(raw)
		if !parsed {
			respondError(c, apperr.Validation("unknown priority %q", raw))
			return
		}
		filter.Priority = &p
	}
	if filter.DueAfter, ok = queryTime(c, "due_after"); !ok {
		return
	}
	if filter.DueBefore, ok = queryTime(c, "due_before"); !ok {
		return
	}

	goals, err := h.goalService.ListGoals(c.Request.Context(), userID, filter, c.Query("search"), queryOrdering(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"goals": goals})
}

// Get handles GET /goals/:id
func (h *GoalHandler) Get(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	goalID, ok := idParam(c, "id")
	if !ok {
		return
	}

	goal, err := h.goalService.GetGoal(c.Request.Context(), userID, goalID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"goal": goal})
}

// Update handles PATCH /goals/:id
func (h *GoalHandler) Update(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	goalID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		CategoryID  *int64     `json:"category_id"`
		Title       *string    `json:"title"`
		Description *string    `json:"description"`
		Status      *string    `json:"status"`
		Priority    *string    `json:"priority"`
		DueDate     *time.Time `json:"due_date"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	status, ok := parseStatusField(c, req.Status)
	if !ok {
		return
	}
	priority, ok := parsePriorityField(c, req.Priority)
	if !ok {
		return
	}

	goal, err := h.goalService.UpdateGoal(c.Request.Context(), userID, goalID, service.GoalUpdate{
		CategoryID:  req.CategoryID,
		Title:       req.Title,
		Description: req.Description,
		Status:      status,
		Priority:    priority,
		DueDate:     req.DueDate,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"goal": goal})
}

// Delete handles DELETE /goals/:id, archiving the goal.
func (h *GoalHandler) Delete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	goalID, ok := idParam(c, "id")
	if !ok {
		return
	}

	if _, err := h.goalService.DeleteGoal(c.Request.Context(), userID, goalID); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
