package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/stackit-app/stackit/backend/internal/middleware"
	"github.com/stackit-app/stackit/backend/internal/models"
	"github.com/stackit-app/stackit/backend/internal/service"
)

type AnswerHandler struct {
	db         *gorm.DB
	votes      *service.VoteService
	engagement *service.EngagementService
}

func NewAnswerHandler(db *gorm.DB, votes *service.VoteService, engagement *service.EngagementService) *AnswerHandler {
	return &AnswerHandler{db: db, votes: votes, engagement: engagement}
}

// CreateAnswer posts an answer to a question (PROTECTED)
func (h *AnswerHandler) CreateAnswer(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var input models.CreateAnswerRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	answer, err := h.engagement.PostAnswer(user.ID, input.QuestionID, input.Content)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, answer)
}

// UpdateAnswer edits an answer (author or admin)
func (h *AnswerHandler) UpdateAnswer(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	answerID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return
	}

	var input struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	answer, err := h.engagement.UpdateAnswer(user, answerID, input.Content)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, answer)
}

// AcceptAnswer marks an answer as accepted (question author only)
func (h *AnswerHandler) AcceptAnswer(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	answerID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return
	}

	answer, err := h.engagement.AcceptAnswer(user.ID, answerID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, answer)
}

// DeleteAnswer deletes an answer and its votes and comments (author or admin)
func (h *AnswerHandler) DeleteAnswer(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	answerID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return
	}

	if err := h.engagement.DeleteAnswer(user, answerID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Answer deleted successfully"})
}

// GetAnswersByQuestion lists the answers for a question with vote counts
func (h *AnswerHandler) GetAnswersByQuestion(c *gin.Context) {
	questionID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return
	}

	var answers []models.Answer
	if err := h.db.Where("question_id = ?", questionID).
		Preload("Author").
		Order("is_accepted desc, created_at asc").
		Find(&answers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch answers"})
		return
	}

	responses := make([]gin.H, 0, len(answers))
	for _, answer := range answers {
		count, _ := h.votes.Count(service.TargetAnswer, answer.ID)
		responses = append(responses, gin.H{
			"id":          answer.ID,
			"question_id": answer.QuestionID,
			"content":     answer.Content,
			"is_accepted": answer.IsAccepted,
			"author":      publicUser(answer.Author),
			"vote_count":  count,
			"created_at":  answer.CreatedAt,
			"updated_at":  answer.UpdatedAt,
		})
	}

	c.JSON(http.StatusOK, responses)
}

// CreateComment posts a comment on an answer (PROTECTED)
func (h *AnswerHandler) CreateComment(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	answerID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return
	}

	var input models.CreateCommentRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment, err := h.engagement.PostComment(user.ID, answerID, input.Content)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, comment)
}

// GetComments lists the comments on an answer
func (h *AnswerHandler) GetComments(c *gin.Context) {
	answerID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return
	}

	var comments []models.Comment
	if err := h.db.Where("answer_id = ?", answerID).Preload("User").Order("created_at asc").Find(&comments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch comments"})
		return
	}

	c.JSON(http.StatusOK, comments)
}
