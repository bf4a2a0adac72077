package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/stackit-app/stackit/backend/internal/config"
	"github.com/stackit-app/stackit/backend/internal/notify"
	"github.com/stackit-app/stackit/backend/internal/service"
)

// Handler combines all handler types
type Handler struct {
	Auth         *AuthHandler
	Question     *QuestionHandler
	Answer       *AnswerHandler
	Vote         *VoteHandler
	Notification *NotificationHandler
	User         *UserHandler
	Tag          *TagHandler
	Admin        *AdminHandler
}

// NewHandler wires the services and creates a unified handler with all
// sub-handlers.
func NewHandler(db *gorm.DB, log *logrus.Logger, cfg *config.Config) *Handler {
	sink := notify.NewSink(db, log, cfg.Twilio)
	votes := service.NewVoteService(db, log)
	engagement := service.NewEngagementService(db, log, sink, cfg.Content)

	return &Handler{
		Auth:         NewAuthHandler(db, cfg.JWT),
		Question:     NewQuestionHandler(db, votes, engagement),
		Answer:       NewAnswerHandler(db, votes, engagement),
		Vote:         NewVoteHandler(votes),
		Notification: NewNotificationHandler(db),
		User:         NewUserHandler(db),
		Tag:          NewTagHandler(db),
		Admin:        NewAdminHandler(db, engagement),
	}
}

// respondServiceError maps the service error taxonomy onto HTTP statuses.
func respondServiceError(c *gin.Context, err error) {
	var vErr *service.ValidationError
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized"})
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "Conflicting update, please retry"})
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Error(), "field": vErr.Field})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
	}
}
