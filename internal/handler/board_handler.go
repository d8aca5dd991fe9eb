package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"goalboard/internal/apperr"
	"goalboard/internal/model"
	"goalboard/internal/service"
)

type BoardHandler struct {
	boardService *service.BoardService
}

func NewBoardHandler(boardService *service.BoardService) *BoardHandler {
	return &BoardHandler{boardService: boardService}
}

// Create handles POST /boards
func (h *BoardHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req struct {
		Title string `json:"title"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	board, err := h.boardService.CreateBoard(c.Request.Context(), userID, req.Title)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"board": board})
}

// List handles GET /boards
func (h *BoardHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	boards, err := h.boardService.ListBoards(c.Request.Context(), userID, queryOrdering(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"boards": boards})
}

// Get handles GET /boards/:id
func (h *BoardHandler) Get(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	boardID, ok := idParam(c, "id")
	if !ok {
		return
	}

	board, err := h.boardService.GetBoard(c.Request.Context(), userID, boardID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"board": board})
}

// Update handles PUT /boards/:id
func (h *BoardHandler) Update(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	boardID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Title string `json:"title"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	board, err := h.boardService.UpdateBoard(c.Request.Context(), userID, boardID, req.Title)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"board": board})
}

// Delete handles DELETE /boards/:id
func (h *BoardHandler) Delete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	boardID, ok := idParam(c, "id")
	if !ok {
		return
	}

	if _, err := h.boardService.DeleteBoard(c.Request.Context(), userID, boardID); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GrantParticipant handles POST /boards/:id/participants
func (h *BoardHandler) GrantParticipant(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	boardID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		UserID int64  `json:"user_id"`
		Role   string `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	role, ok := model.ParseRole(req.Role)
	if !ok {
		respondError(c, apperr.Validation("unknown role %q", req.Role))
		return
	}

	p, err := h.boardService.GrantParticipant(c.Request.Context(), userID, boardID, req.UserID, role)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"participant": p})
}

// ListParticipants handles GET /boards/:id/participants
func (h *BoardHandler) ListParticipants(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	boardID, ok := idParam(c, "id")
	if !ok {
		return
	}

	participants, err := h.boardService.ListParticipants(c.Request.Context(), userID, boardID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"participants": participants})
}
