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

type QuestionHandler struct {
	db         *gorm.DB
	votes      *service.VoteService
	engagement *service.EngagementService
}

func NewQuestionHandler(db *gorm.DB, votes *service.VoteService, engagement *service.EngagementService) *QuestionHandler {
	return &QuestionHandler{db: db, votes: votes, engagement: engagement}
}

// GetQuestions returns a paginated question list with optional search and
// tag filtering
func (h *QuestionHandler) GetQuestions(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if limit < 1 || limit > 100 {
		limit = 10
	}

	query := h.db.Model(&models.Question{})
	if search := c.Query("search"); search != "" {
		pattern := "%" + search + "%"
		query = query.Where("title ILIKE ? OR content ILIKE ?", pattern, pattern)
	}
	if tag := c.Query("tag"); tag != "" {
		query = query.
			Select("questions.*").
			Joins("JOIN question_tags ON question_tags.question_id = questions.id").
			Joins("JOIN tags ON tags.id = question_tags.tag_id").
			Where("tags.name = ?", tag)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch questions"})
		return
	}

	var questions []models.Question
	err := query.Session(&gorm.Session{}).Preload("Author").Preload("Tags").
		Order("created_at desc").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&questions).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch questions"})
		return
	}

	responses := make([]gin.H, 0, len(questions))
	for _, question := range questions {
		count, _ := h.votes.Count(service.TargetQuestion, question.ID)

		var answerCount, acceptedCount int64
		h.db.Model(&models.Answer{}).Where("question_id = ?", question.ID).Count(&answerCount)
		h.db.Model(&models.Answer{}).Where("question_id = ? AND is_accepted = ?", question.ID, true).Count(&acceptedCount)

		responses = append(responses, gin.H{
			"id":                  question.ID,
			"title":               question.Title,
			"content":             question.Content,
			"views":               question.Views,
			"author":              publicUser(question.Author),
			"tags":                question.Tags,
			"vote_count":          count,
			"answer_count":        answerCount,
			"has_accepted_answer": acceptedCount > 0,
			"created_at":          question.CreatedAt,
			"updated_at":          question.UpdatedAt,
		})
	}

	totalPages := (total + int64(limit) - 1) / int64(limit)
	c.JSON(http.StatusOK, gin.H{
		"questions": responses,
		"pagination": gin.H{
			"current":  page,
			"total":    totalPages,
			"has_next": int64(page) < totalPages,
			"has_prev": page > 1,
		},
	})
}

// GetQuestion returns a single question with its answers, comments, and the
// caller's own votes. Every read bumps the view counter.
func (h *QuestionHandler) GetQuestion(c *gin.Context) {
	questionID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return
	}

	var question models.Question
	if err := h.db.Preload("Author").Preload("Tags").First(&question, questionID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Question not found"})
		return
	}

	if err := h.engagement.IncrementViews(questionID); err == nil {
		question.Views++
	}

	currentUser, authenticated := middleware.CurrentUser(c)

	var answers []models.Answer
	h.db.Where("question_id = ?", questionID).
		Preload("Author").
		Order("is_accepted desc, created_at asc").
		Find(&answers)

	answerResponses := make([]gin.H, 0, len(answers))
	for _, answer := range answers {
		count, _ := h.votes.Count(service.TargetAnswer, answer.ID)

		var comments []models.Comment
		h.db.Where("answer_id = ?", answer.ID).Preload("User").Order("created_at asc").Find(&comments)

		entry := gin.H{
			"id":          answer.ID,
			"content":     answer.Content,
			"is_accepted": answer.IsAccepted,
			"author":      publicUser(answer.Author),
			"vote_count":  count,
			"comments":    comments,
			"created_at":  answer.CreatedAt,
			"updated_at":  answer.UpdatedAt,
		}
		if authenticated {
			userVote, _ := h.votes.UserVote(currentUser.ID, service.TargetAnswer, answer.ID)
			entry["user_vote"] = userVote
		}
		answerResponses = append(answerResponses, entry)
	}

	count, _ := h.votes.Count(service.TargetQuestion, question.ID)

	response := gin.H{
		"id":         question.ID,
		"title":      question.Title,
		"content":    question.Content,
		"views":      question.Views,
		"author":     publicUser(question.Author),
		"tags":       question.Tags,
		"vote_count": count,
		"answers":    answerResponses,
		"created_at": question.CreatedAt,
		"updated_at": question.UpdatedAt,
	}
	if authenticated {
		userVote, _ := h.votes.UserVote(currentUser.ID, service.TargetQuestion, question.ID)
		response["user_vote"] = userVote
	}

	c.JSON(http.StatusOK, response)
}

// CreateQuestion creates a new question (PROTECTED)
func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var input models.CreateQuestionRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	question, err := h.engagement.PostQuestion(user.ID, input.Title, input.Content, input.Tags)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, question)
}

// UpdateQuestion edits a question (author or admin)
func (h *QuestionHandler) UpdateQuestion(c *gin.Context) {
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

	var input models.UpdateQuestionRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	question, err := h.engagement.UpdateQuestion(user, questionID, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, question)
}

// DeleteQuestion deletes a question (author or admin)
func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
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

func publicUser(user models.User) gin.H {
	return gin.H{
		"id":         user.ID,
		"username":   user.Username,
		"reputation": user.Reputation,
		"avatar":     user.Avatar,
	}
}
