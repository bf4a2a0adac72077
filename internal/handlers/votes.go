package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/stackit-app/stackit/backend/internal/middleware"
	"github.com/stackit-app/stackit/backend/internal/models"
	"github.com/stackit-app/stackit/backend/internal/service"
)

type VoteHandler struct {
	votes *service.VoteService
}

func NewVoteHandler(votes *service.VoteService) *VoteHandler {
	return &VoteHandler{votes: votes}
}

// VoteQuestion casts, switches, or retracts a vote on a question
func (h *VoteHandler) VoteQuestion(c *gin.Context) {
	h.vote(c, service.TargetQuestion)
}

// VoteAnswer casts, switches, or retracts a vote on an answer
func (h *VoteHandler) VoteAnswer(c *gin.Context) {
	h.vote(c, service.TargetAnswer)
}

func (h *VoteHandler) vote(c *gin.Context, target service.TargetType) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	targetID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return
	}

	var input models.CastVoteRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Vote type must be UP or DOWN"})
		return
	}

	result, err := h.votes.CastVote(user.ID, target, targetID, input.Type)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"outcome":    result.Outcome,
		"vote_count": result.Count,
	})
}

// GetVotes lists the votes on a question or answer
func (h *VoteHandler) GetVotes(c *gin.Context) {
	if questionID := c.Query("question_id"); questionID != "" {
		h.listVotes(c, service.TargetQuestion, questionID)
		return
	}
	if answerID := c.Query("answer_id"); answerID != "" {
		h.listVotes(c, service.TargetAnswer, answerID)
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "question_id or answer_id is required"})
}

func (h *VoteHandler) listVotes(c *gin.Context, target service.TargetType, rawID string) {
	targetID, err := strconv.Atoi(rawID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return
	}

	votes, err := h.votes.List(target, targetID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch votes"})
		return
	}

	responses := make([]gin.H, 0, len(votes))
	for _, vote := range votes {
		responses = append(responses, gin.H{
			"id":   vote.ID,
			"type": vote.Type,
			"user": gin.H{
				"id":       vote.User.ID,
				"username": vote.User.Username,
			},
			"created_at": vote.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, responses)
}
