package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/stackit-app/stackit/backend/internal/models"
)

type TagHandler struct {
	db *gorm.DB
}

func NewTagHandler(db *gorm.DB) *TagHandler {
	return &TagHandler{db: db}
}

type tagWithCount struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	QuestionCount int    `json:"question_count"`
}

// GetTags lists all tags with their question counts
func (h *TagHandler) GetTags(c *gin.Context) {
	tags, err := h.queryTags(h.db.Model(&models.Tag{}))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch tags"})
		return
	}
	c.JSON(http.StatusOK, tags)
}

// SearchTags returns up to ten tags matching the query
func (h *TagHandler) SearchTags(c *gin.Context) {
	q := strings.ToLower(c.Query("q"))
	if len(q) < 2 {
		c.JSON(http.StatusOK, []tagWithCount{})
		return
	}

	tags, err := h.queryTags(h.db.Model(&models.Tag{}).Where("tags.name LIKE ?", "%"+q+"%").Limit(10))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search tags"})
		return
	}
	c.JSON(http.StatusOK, tags)
}

func (h *TagHandler) queryTags(query *gorm.DB) ([]tagWithCount, error) {
	tags := []tagWithCount{}
	err := query.
		Select("tags.id, tags.name, count(question_tags.question_id) as question_count").
		Joins("LEFT JOIN question_tags ON question_tags.tag_id = tags.id").
		Group("tags.id").
		Order("tags.name asc").
		Scan(&tags).Error
	return tags, err
}
