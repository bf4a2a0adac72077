package service

import (
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/stackit-app/stackit/backend/internal/models"
	"github.com/stackit-app/stackit/backend/internal/notify"
)

// Matches @username tokens in plain text or HTML content.
var mentionPattern = regexp.MustCompile(`@(\w+)`)

// ExtractMentions returns the deduplicated usernames mentioned in content.
func ExtractMentions(content string) []string {
	matches := mentionPattern.FindAllStringSubmatch(content, -1)
	seen := make(map[string]struct{}, len(matches))
	var names []string
	for _, m := range matches {
		if _, ok := seen[m[1]]; ok {
			continue
		}
		seen[m[1]] = struct{}{}
		names = append(names, m[1])
	}
	return names
}

// Resolver turns @mentions into notifications.
type Resolver struct {
	db   *gorm.DB
	log  *logrus.Logger
	sink *notify.Sink
}

func NewResolver(db *gorm.DB, log *logrus.Logger, sink *notify.Sink) *Resolver {
	return &Resolver{db: db, log: log, sink: sink}
}

// NotifyMentions resolves the usernames mentioned in content and notifies
// each of them, except the author. Unknown usernames are skipped silently.
// Mentions inside an answer deep-link to the parent question, so the related
// reference is remapped from the answer to its question. Every failure is
// absorbed by the sink; one recipient failing never blocks the rest.
func (r *Resolver) NotifyMentions(content string, authorID, relatedID int, relatedType string) {
	names := ExtractMentions(content)
	if len(names) == 0 {
		return
	}

	var users []models.User
	if err := r.db.Where("username IN ?", names).Find(&users).Error; err != nil {
		r.log.WithError(err).Error("failed to resolve mentioned users")
		return
	}

	targetID := relatedID
	targetType := relatedType
	var title string

	switch relatedType {
	case models.RelatedQuestion:
		var question models.Question
		if err := r.db.First(&question, relatedID).Error; err == nil {
			title = question.Title
		}
	case models.RelatedAnswer:
		targetType = models.RelatedQuestion
		var answer models.Answer
		if err := r.db.Preload("Question").First(&answer, relatedID).Error; err == nil {
			targetID = answer.QuestionID
			title = answer.Question.Title
		}
	}

	for _, user := range users {
		if user.ID == authorID {
			continue
		}
		r.sink.Create(models.Notification{
			Type:        models.NotificationMention,
			Message:     mentionMessage(relatedType, title),
			UserID:      user.ID,
			RelatedID:   &targetID,
			RelatedType: targetType,
		})
	}
}

func mentionMessage(relatedType, title string) string {
	if title != "" {
		if relatedType == models.RelatedAnswer {
			return "You were mentioned in an answer to: " + truncateTitle(title)
		}
		return "You were mentioned in question: " + truncateTitle(title)
	}
	return "You were mentioned in a " + strings.ToLower(relatedType)
}

func truncateTitle(title string) string {
	if len(title) > 60 {
		return title[:60] + "..."
	}
	return title
}
