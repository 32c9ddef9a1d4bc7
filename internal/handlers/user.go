package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/readleap/readleap-backend/internal/logger"
	"github.com/readleap/readleap-backend/internal/services"
)

type UserHandler struct {
	log     *logger.Logger
	userSvc services.UserService
}

func NewUserHandler(log *logger.Logger, userSvc services.UserService) *UserHandler {
	return &UserHandler{
		log:     log.With("handler", "UserHandler"),
		userSvc: userSvc,
	}
}

// GET /api/v1/user/stats
func (h *UserHandler) GetStats(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	stats, err := h.userSvc.GetStats(c.Request.Context(), userID)
	if err != nil {
		h.log.Error("get user stats failed", "error", err)
		RespondError(c, err)
		return
	}
	RespondOK(c, stats)
}
