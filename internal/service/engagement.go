package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/stackit-app/stackit/backend/internal/config"
	"github.com/stackit-app/stackit/backend/internal/models"
	"github.com/stackit-app/stackit/backend/internal/notify"
)

// EngagementService owns question/answer/comment creation, editing, deletion
// and answer acceptance. Notification fan-out is best-effort: a create never
// fails because a downstream notification failed.
type EngagementService struct {
	db       *gorm.DB
	log      *logrus.Logger
	sink     *notify.Sink
	resolver *Resolver
	content  config.ContentConfig
}

func NewEngagementService(db *gorm.DB, log *logrus.Logger, sink *notify.Sink, content config.ContentConfig) *EngagementService {
	return &EngagementService{
		db:       db,
		log:      log,
		sink:     sink,
		resolver: NewResolver(db, log, sink),
		content:  content,
	}
}

// PostQuestion validates, persists the question with its normalized tags,
// then fans out mention notifications over the description.
func (s *EngagementService) PostQuestion(authorID int, title, content string, tagNames []string) (*models.Question, error) {
	if strings.TrimSpace(title) == "" {
		return nil, &ValidationError{Field: "title", Rule: "must not be empty"}
	}
	if strings.TrimSpace(content) == "" {
		return nil, &ValidationError{Field: "content", Rule: "must not be empty"}
	}
	if len(tagNames) == 0 || len(tagNames) > s.content.MaxQuestionTags {
		return nil, &ValidationError{Field: "tags", Rule: fmt.Sprintf("must have between 1 and %d entries", s.content.MaxQuestionTags)}
	}

	question := models.Question{
		Title:    title,
		Content:  content,
		AuthorID: authorID,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		tags, err := upsertTags(tx, tagNames)
		if err != nil {
			return err
		}
		question.Tags = tags
		return tx.Create(&question).Error
	})
	if err != nil {
		return nil, err
	}

	s.resolver.NotifyMentions(content, authorID, question.ID, models.RelatedQuestion)

	if err := s.db.Preload("Author").Preload("Tags").First(&question, question.ID).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

// PostAnswer persists the answer, notifies the question author unless they
// answered their own question, then fans out mention notifications.
func (s *EngagementService) PostAnswer(authorID, questionID int, content string) (*models.Answer, error) {
	if len(content) < s.content.MinAnswerLength {
		return nil, &ValidationError{Field: "content", Rule: fmt.Sprintf("must be at least %d characters", s.content.MinAnswerLength)}
	}

	var question models.Question
	if err := s.db.First(&question, questionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	answer := models.Answer{
		QuestionID: questionID,
		AuthorID:   authorID,
		Content:    content,
	}
	if err := s.db.Create(&answer).Error; err != nil {
		return nil, err
	}

	if question.AuthorID != authorID {
		var actor models.User
		if err := s.db.First(&actor, authorID).Error; err == nil {
			s.sink.Create(models.Notification{
				Type:        models.NotificationAnswer,
				Message:     fmt.Sprintf("%s answered your question: %s", actor.Username, truncateTitle(question.Title)),
				UserID:      question.AuthorID,
				RelatedID:   &question.ID,
				RelatedType: models.RelatedQuestion,
			})
		}
	}

	s.resolver.NotifyMentions(content, authorID, answer.ID, models.RelatedAnswer)

	if err := s.db.Preload("Author").First(&answer, answer.ID).Error; err != nil {
		return nil, err
	}
	return &answer, nil
}

// PostComment persists a comment on an answer, notifies the answer author
// unless they commented on their own answer, then fans out mentions.
func (s *EngagementService) PostComment(userID, answerID int, content string) (*models.Comment, error) {
	if len(content) < s.content.MinCommentLength || len(content) > s.content.MaxCommentLength {
		return nil, &ValidationError{
			Field: "content",
			Rule:  fmt.Sprintf("must be between %d and %d characters", s.content.MinCommentLength, s.content.MaxCommentLength),
		}
	}

	var answer models.Answer
	if err := s.db.First(&answer, answerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	comment := models.Comment{
		AnswerID: answerID,
		UserID:   userID,
		Content:  content,
	}
	if err := s.db.Create(&comment).Error; err != nil {
		return nil, err
	}

	if answer.AuthorID != userID {
		var actor models.User
		if err := s.db.First(&actor, userID).Error; err == nil {
			s.sink.Create(models.Notification{
				Type:        models.NotificationComment,
				Message:     fmt.Sprintf("%s commented on your answer", actor.Username),
				UserID:      answer.AuthorID,
				RelatedID:   &answer.QuestionID,
				RelatedType: models.RelatedQuestion,
			})
		}
	}

	s.resolver.NotifyMentions(content, userID, answerID, models.RelatedAnswer)

	if err := s.db.Preload("User").First(&comment, comment.ID).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// AcceptAnswer marks an answer accepted. Only the question author may accept.
// All sibling answers are unaccepted first inside the same transaction, so at
// most one answer per question ever carries the flag, also under concurrent
// acceptance.
func (s *EngagementService) AcceptAnswer(callerID, answerID int) (*models.Answer, error) {
	var answer models.Answer

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&answer, answerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		// Serializes concurrent accepts for the same question.
		var question models.Question
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&question, answer.QuestionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if question.AuthorID != callerID {
			return ErrForbidden
		}

		if err := tx.Model(&models.Answer{}).
			Where("question_id = ? AND is_accepted = ?", answer.QuestionID, true).
			Update("is_accepted", false).Error; err != nil {
			return err
		}

		return tx.Model(&answer).Update("is_accepted", true).Error
	})
	if err != nil {
		return nil, err
	}

	if err := s.db.Preload("Author").First(&answer, answer.ID).Error; err != nil {
		return nil, err
	}
	return &answer, nil
}

// UpdateQuestion edits title, content, or tags. Author or admin only.
func (s *EngagementService) UpdateQuestion(actor models.User, questionID int, req models.UpdateQuestionRequest) (*models.Question, error) {
	var question models.Question
	if err := s.db.First(&question, questionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if question.AuthorID != actor.ID && actor.Role != models.RoleAdmin {
		return nil, ErrForbidden
	}

	if len(req.Tags) > s.content.MaxQuestionTags {
		return nil, &ValidationError{Field: "tags", Rule: fmt.Sprintf("must have at most %d entries", s.content.MaxQuestionTags)}
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if req.Title != "" {
			question.Title = req.Title
		}
		if req.Content != "" {
			question.Content = req.Content
		}
		if err := tx.Save(&question).Error; err != nil {
			return err
		}

		if len(req.Tags) > 0 {
			tags, err := upsertTags(tx, req.Tags)
			if err != nil {
				return err
			}
			if err := tx.Model(&question).Association("Tags").Replace(tags); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.db.Preload("Author").Preload("Tags").First(&question, question.ID).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

// UpdateAnswer edits an answer's content. Author or admin only.
func (s *EngagementService) UpdateAnswer(actor models.User, answerID int, content string) (*models.Answer, error) {
	if len(content) < s.content.MinAnswerLength {
		return nil, &ValidationError{Field: "content", Rule: fmt.Sprintf("must be at least %d characters", s.content.MinAnswerLength)}
	}

	var answer models.Answer
	if err := s.db.First(&answer, answerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if answer.AuthorID != actor.ID && actor.Role != models.RoleAdmin {
		return nil, ErrForbidden
	}

	answer.Content = content
	if err := s.db.Save(&answer).Error; err != nil {
		return nil, err
	}

	if err := s.db.Preload("Author").First(&answer, answer.ID).Error; err != nil {
		return nil, err
	}
	return &answer, nil
}

// DeleteQuestion removes a question and everything hanging off it: answers,
// their comments and votes, the question's own votes, and notifications that
// point back at it. Author or admin only.
func (s *EngagementService) DeleteQuestion(actor models.User, questionID int) error {
	var question models.Question
	if err := s.db.First(&question, questionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	if question.AuthorID != actor.ID && actor.Role != models.RoleAdmin {
		return ErrForbidden
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var answerIDs []int
		if err := tx.Model(&models.Answer{}).Where("question_id = ?", questionID).Pluck("id", &answerIDs).Error; err != nil {
			return err
		}

		if len(answerIDs) > 0 {
			if err := tx.Where("answer_id IN ?", answerIDs).Delete(&models.Comment{}).Error; err != nil {
				return err
			}
			if err := tx.Where("answer_id IN ?", answerIDs).Delete(&models.Vote{}).Error; err != nil {
				return err
			}
			if err := tx.Where("question_id = ?", questionID).Delete(&models.Answer{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("question_id = ?", questionID).Delete(&models.Vote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("related_id = ? AND related_type = ?", questionID, models.RelatedQuestion).Delete(&models.Notification{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&question).Association("Tags").Clear(); err != nil {
			return err
		}
		return tx.Delete(&question).Error
	})
}

// DeleteAnswer removes an answer with its comments and votes. Author or
// admin only.
func (s *EngagementService) DeleteAnswer(actor models.User, answerID int) error {
	var answer models.Answer
	if err := s.db.First(&answer, answerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	if answer.AuthorID != actor.ID && actor.Role != models.RoleAdmin {
		return ErrForbidden
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("answer_id = ?", answerID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("answer_id = ?", answerID).Delete(&models.Vote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("related_id = ? AND related_type = ?", answerID, models.RelatedAnswer).Delete(&models.Notification{}).Error; err != nil {
			return err
		}
		return tx.Delete(&answer).Error
	})
}

// IncrementViews bumps the monotonic view counter without a read.
func (s *EngagementService) IncrementViews(questionID int) error {
	return s.db.Model(&models.Question{}).
		Where("id = ?", questionID).
		UpdateColumn("views", gorm.Expr("views + 1")).Error
}

// upsertTags normalizes names to lowercase and creates missing tags.
func upsertTags(tx *gorm.DB, names []string) ([]models.Tag, error) {
	tags := make([]models.Tag, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}

		var tag models.Tag
		if err := tx.Where("name = ?", name).FirstOrCreate(&tag, models.Tag{Name: name}).Error; err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	if len(tags) == 0 {
		return nil, &ValidationError{Field: "tags", Rule: "must have at least 1 entry"}
	}
	return tags, nil
}
