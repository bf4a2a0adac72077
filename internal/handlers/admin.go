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

type AdminHandler struct {
	db         *gorm.DB
	engagement *service.EngagementService
}

func NewAdminHandler(db *gorm.DB, engagement *service.EngagementService) *AdminHandler {
	return &AdminHandler{db: db, engagement: engagement}
}

// GetStats returns overview counts for the admin dashboard
func (h *AdminHandler) GetStats(c *gin.Context) {
	var totalUsers, totalQuestions, totalAnswers, totalVotes int64
	h.db.Model(&models.User{}).Count(&totalUsers)
	h.db.Model(&models.Question{}).Count(&totalQuestions)
	h.db.Model(&models.Answer{}).Count(&totalAnswers)
	h.db.Model(&models.Vote{}).Count(&totalVotes)

	c.JSON(http.StatusOK, gin.H{
		"total_users":     totalUsers,
		"total_questions": totalQuestions,
		"total_answers":   totalAnswers,
		"total_votes":     totalVotes,
	})
}

// GetUsers lists users with optional role filter and search
func (h *AdminHandler) GetUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit < 1 || limit > 100 {
		limit = 20
	}

	query := h.db.Model(&models.User{})
	if role := c.Query("role"); role != "" && role != "ALL" {
		query = query.Where("role = ?", role)
	}
	if search := c.Query("search"); search != "" {
		pattern := "%" + search + "%"
		query = query.Where("username ILIKE ? OR email ILIKE ?", pattern, pattern)
	}

	var users []models.User
	if err := query.Order("created_at desc").Offset((page - 1) * limit).Limit(limit).Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
		return
	}

	responses := make([]gin.H, 0, len(users))
	for _, user := range users {
		var questionCount, answerCount, voteCount int64
		h.db.Model(&models.Question{}).Where("author_id = ?", user.ID).Count(&questionCount)
		h.db.Model(&models.Answer{}).Where("author_id = ?", user.ID).Count(&answerCount)
		h.db.Model(&models.Vote{}).Where("user_id = ?", user.ID).Count(&voteCount)

		responses = append(responses, gin.H{
			"id":             user.ID,
			"username":       user.Username,
			"email":          user.Email,
			"role":           user.Role,
			"reputation":     user.Reputation,
			"is_banned":      user.IsBanned,
			"created_at":     user.CreatedAt,
			"question_count": questionCount,
			"answer_count":   answerCount,
			"vote_count":     voteCount,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"users":    responses,
		"has_more": len(users) == limit,
	})
}

// UpdateUserRole changes a user's role
func (h *AdminHandler) UpdateUserRole(c *gin.Context) {
	userID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return
	}

	var input struct {
		Role string `json:"role" binding:"required,oneof=USER MODERATOR ADMIN"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Role must be USER, MODERATOR, or ADMIN"})
		return
	}

	var user models.User
	if err := h.db.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	user.Role = input.Role
	if err := h.db.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update role"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":       user.ID,
		"username": user.Username,
		"email":    user.Email,
		"role":     user.Role,
	})
}

// BanUser bans or unbans a user. Admins cannot be banned.
func (h *AdminHandler) BanUser(c *gin.Context) {
	userID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return
	}

	var input struct {
		Banned *bool `json:"banned" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "banned must be a boolean"})
		return
	}

	var user models.User
	if err := h.db.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if user.Role == models.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "Cannot ban admin users"})
		return
	}

	user.IsBanned = *input.Banned
	if err := h.db.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":        user.ID,
		"username":  user.Username,
		"is_banned": user.IsBanned,
	})
}

// GetQuestions lists questions for moderation
func (h *AdminHandler) GetQuestions(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var questions []models.Question
	if err := h.db.Preload("Author").
		Order("created_at desc").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&questions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch questions"})
		return
	}

	responses := make([]gin.H, 0, len(questions))
	for _, question := range questions {
		var answerCount, voteCount int64
		h.db.Model(&models.Answer{}).Where("question_id = ?", question.ID).Count(&answerCount)
		h.db.Model(&models.Vote{}).Where("question_id = ?", question.ID).Count(&voteCount)

		responses = append(responses, gin.H{
			"id":           question.ID,
			"title":        question.Title,
			"content":      question.Content,
			"views":        question.Views,
			"author":       publicUser(question.Author),
			"answer_count": answerCount,
			"vote_count":   voteCount,
			"created_at":   question.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{"questions": responses})
}

// GetAnswers lists answers for moderation
func (h *AdminHandler) GetAnswers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var answers []models.Answer
	if err := h.db.Preload("Author").Preload("Question").
		Order("created_at desc").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&answers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch answers"})
		return
	}

	responses := make([]gin.H, 0, len(answers))
	for _, answer := range answers {
		var voteCount int64
		h.db.Model(&models.Vote{}).Where("answer_id = ?", answer.ID).Count(&voteCount)

		responses = append(responses, gin.H{
			"id":             answer.ID,
			"content":        answer.Content,
			"is_accepted":    answer.IsAccepted,
			"question_id":    answer.QuestionID,
			"question_title": answer.Question.Title,
			"author":         publicUser(answer.Author),
			"vote_count":     voteCount,
			"created_at":     answer.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{"answers": responses})
}

// DeleteQuestion removes a question and its dependents (admin)
func (h *AdminHandler) DeleteQuestion(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	questionID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return
	}

	if err := h.engagement.DeleteQuestion(user, questionID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Question deleted successfully"})
}

// DeleteAnswer removes an answer and its dependents (admin)
func (h *AdminHandler) DeleteAnswer(c *gin.Context) {
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

// GetAnalytics returns the top users by reputation and top tags by usage
func (h *AdminHandler) GetAnalytics(c *gin.Context) {
	var topUsers []models.User
	if err := h.db.Order("reputation desc").Limit(10).Find(&topUsers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch analytics"})
		return
	}

	userResponses := make([]gin.H, 0, len(topUsers))
	for _, user := range topUsers {
		var questionCount, answerCount int64
		h.db.Model(&models.Question{}).Where("author_id = ?", user.ID).Count(&questionCount)
		h.db.Model(&models.Answer{}).Where("author_id = ?", user.ID).Count(&answerCount)
		userResponses = append(userResponses, gin.H{
			"id":             user.ID,
			"username":       user.Username,
			"reputation":     user.Reputation,
			"question_count": questionCount,
			"answer_count":   answerCount,
		})
	}

	var topTags []tagWithCount
	if err := h.db.Model(&models.Tag{}).
		Select("tags.id, tags.name, count(question_tags.question_id) as question_count").
		Joins("LEFT JOIN question_tags ON question_tags.tag_id = tags.id").
		Group("tags.id").
		Order("question_count desc").
		Limit(10).
		Scan(&topTags).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch analytics"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"top_users": userResponses,
		"top_tags":  topTags,
	})
}
