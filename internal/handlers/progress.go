package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/readleap/readleap-backend/internal/apierr"
	"github.com/readleap/readleap-backend/internal/logger"
	"github.com/readleap/readleap-backend/internal/requestdata"
	"github.com/readleap/readleap-backend/internal/services"
)

type ProgressHandler struct {
	log         *logger.Logger
	progressSvc services.ProgressService
}

func NewProgressHandler(log *logger.Logger, progressSvc services.ProgressService) *ProgressHandler {
	return &ProgressHandler{
		log:         log.With("handler", "ProgressHandler"),
		progressSvc: progressSvc,
	}
}

type startReadingRequest struct {
	ArticleID uuid.UUID `json:"article_id" binding:"required"`
}

// POST /api/v1/progress/start
func (h *ProgressHandler) Start(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req startReadingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.Validation("invalid request body"))
		return
	}

	result, err := h.progressSvc.Start(c.Request.Context(), userID, req.ArticleID)
	if err != nil {
		h.logFailure("start reading failed", err)
		RespondError(c, err)
		return
	}
	RespondOK(c, result)
}

type submitAnswerRequest struct {
	QuestionID uuid.UUID `json:"question_id" binding:"required"`
	UserAnswer string    `json:"user_answer"`
}

// POST /api/v1/progress/:id/submit
func (h *ProgressHandler) Submit(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	sessionID, ok := pathID(c)
	if !ok {
		return
	}

	var req submitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.Validation("invalid request body"))
		return
	}

	result, err := h.progressSvc.SubmitAnswer(c.Request.Context(), userID, sessionID, req.QuestionID, req.UserAnswer)
	if err != nil {
		h.logFailure("submit answer failed", err)
		RespondError(c, err)
		return
	}
	RespondOK(c, result)
}

type completeReadingRequest struct {
	TimeSpent int `json:"time_spent"`
}

// POST /api/v1/progress/:id/complete
func (h *ProgressHandler) Complete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	sessionID, ok := pathID(c)
	if !ok {
		return
	}

	var req completeReadingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.Validation("invalid request body"))
		return
	}

	result, err := h.progressSvc.Complete(c.Request.Context(), userID, sessionID, req.TimeSpent)
	if err != nil {
		h.logFailure("complete reading failed", err)
		RespondError(c, err)
		return
	}
	RespondOK(c, result)
}

// GET /api/v1/progress/:id
func (h *ProgressHandler) Detail(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	sessionID, ok := pathID(c)
	if !ok {
		return
	}

	result, err := h.progressSvc.Detail(c.Request.Context(), userID, sessionID)
	if err != nil {
		h.logFailure("progress detail failed", err)
		RespondError(c, err)
		return
	}
	RespondOK(c, result)
}

// GET /api/v1/progress/history?page&page_size
func (h *ProgressHandler) History(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	page := queryInt(c, "page", 1)
	pageSize := queryInt(c, "page_size", 20)

	result, err := h.progressSvc.History(c.Request.Context(), userID, page, pageSize)
	if err != nil {
		h.logFailure("history failed", err)
		RespondError(c, err)
		return
	}
	RespondOK(c, result)
}

func (h *ProgressHandler) logFailure(msg string, err error) {
	if apierr.IsValidation(err) || apierr.IsNotFound(err) {
		h.log.Debug(msg, "error", err)
		return
	}
	h.log.Error(msg, "error", err)
}

func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return uuid.Nil, false
	}
	return rd.UserID, true
}

func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, apierr.NotFound("reading session not found"))
		return uuid.Nil, false
	}
	return id, true
}

func queryInt(c *gin.Context, key string, defaultVal int) int {
	raw := c.Query(key)
	if raw == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return defaultVal
	}
	return val
}
