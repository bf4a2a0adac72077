package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stackit-app/stackit/backend/internal/models"
)

func TestPostAnswerTooShort(t *testing.T) {
	db := setupTestDB(t)
	engagement := newTestEngagement(db)

	author := createTestUser(t, db, "author")
	question := createTestQuestion(t, db, author.ID, "Short answers")

	_, err := engagement.PostAnswer(author.ID, question.ID, "too short")
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	require.Equal(t, "content", vErr.Field)
}

func TestPostAnswerMissingQuestion(t *testing.T) {
	db := setupTestDB(t)
	engagement := newTestEngagement(db)

	author := createTestUser(t, db, "author")

	_, err := engagement.PostAnswer(author.ID, 99999, strings.Repeat("x", 40))
	require.ErrorIs(t, err, ErrNotFound)
}

func TestPostAnswerNotifiesQuestionAuthor(t *testing.T) {
	db := setupTestDB(t)
	engagement := newTestEngagement(db)

	asker := createTestUser(t, db, "asker")
	responder := createTestUser(t, db, "responder")
	question := createTestQuestion(t, db, asker.ID, "Notify on answer")

	_, err := engagement.PostAnswer(responder.ID, question.ID, strings.Repeat("a", 40))
	require.NoError(t, err)

	var notifications []models.Notification
	require.NoError(t, db.Where("user_id = ?", asker.ID).Find(&notifications).Error)
	require.Len(t, notifications, 1)
	require.Equal(t, models.NotificationAnswer, notifications[0].Type)
	require.Contains(t, notifications[0].Message, "responder")
	require.Equal(t, models.RelatedQuestion, notifications[0].RelatedType)
	require.Equal(t, question.ID, *notifications[0].RelatedID)
}

func TestPostAnswerNoSelfNotification(t *testing.T) {
	db := setupTestDB(t)
	engagement := newTestEngagement(db)

	asker := createTestUser(t, db, "asker")
	question := createTestQuestion(t, db, asker.ID, "Answering my own question")

	_, err := engagement.PostAnswer(asker.ID, question.ID, strings.Repeat("b", 40))
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.Notification{}).Where("user_id = ?", asker.ID).Count(&count).Error)
	require.Zero(t, count)
}

func TestPostCommentValidation(t *testing.T) {
	db := setupTestDB(t)
	engagement := newTestEngagement(db)

	author := createTestUser(t, db, "author")
	question := createTestQuestion(t, db, author.ID, "Comment lengths")
	answer := createTestAnswer(t, db, question.ID, author.ID)

	var vErr *ValidationError

	_, err := engagement.PostComment(author.ID, answer.ID, "short")
	require.ErrorAs(t, err, &vErr)

	_, err = engagement.PostComment(author.ID, answer.ID, strings.Repeat("z", 501))
	require.ErrorAs(t, err, &vErr)

	_, err = engagement.PostComment(author.ID, answer.ID, "a comment of reasonable length")
	require.NoError(t, err)
}

func TestPostCommentNotifiesAnswerAuthor(t *testing.T) {
	db := setupTestDB(t)
	engagement := newTestEngagement(db)

	asker := createTestUser(t, db, "asker")
	responder := createTestUser(t, db, "responder")
	commenter := createTestUser(t, db, "commenter")
	question := createTestQuestion(t, db, asker.ID, "Notify on comment")
	answer := createTestAnswer(t, db, question.ID, responder.ID)

	_, err := engagement.PostComment(commenter.ID, answer.ID, "interesting point about this answer")
	require.NoError(t, err)

	var notifications []models.Notification
	require.NoError(t, db.Where("user_id = ?", responder.ID).Find(&notifications).Error)
	require.Len(t, notifications, 1)
	require.Equal(t, models.NotificationComment, notifications[0].Type)
}

func TestPostQuestionValidatesAndNormalizesTags(t *testing.T) {
	db := setupTestDB(t)
	engagement := newTestEngagement(db)

	author := createTestUser(t, db, "author")

	_, err := engagement.PostQuestion(author.ID, "  ", "some content", []string{"go"})
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	require.Equal(t, "title", vErr.Field)

	_, err = engagement.PostQuestion(author.ID, "A title", "content here", nil)
	require.ErrorAs(t, err, &vErr)
	require.Equal(t, "tags", vErr.Field)

	question, err := engagement.PostQuestion(author.ID, "A title", "content here", []string{"Go", "go", "Databases"})
	require.NoError(t, err)
	require.Len(t, question.Tags, 2)

	names := []string{question.Tags[0].Name, question.Tags[1].Name}
	require.ElementsMatch(t, []string{"go", "databases"}, names)
}

func TestAcceptAnswerAuthorization(t *testing.T) {
	db := setupTestDB(t)
	engagement := newTestEngagement(db)

	asker := createTestUser(t, db, "asker")
	responder := createTestUser(t, db, "responder")
	question := createTestQuestion(t, db, asker.ID, "Who may accept")
	answer := createTestAnswer(t, db, question.ID, responder.ID)

	// Not even the answer's own author may accept it.
	_, err := engagement.AcceptAnswer(responder.ID, answer.ID)
	require.ErrorIs(t, err, ErrForbidden)

	accepted, err := engagement.AcceptAnswer(asker.ID, answer.ID)
	require.NoError(t, err)
	require.True(t, accepted.IsAccepted)
}

func TestAcceptAnswerMissing(t *testing.T) {
	db := setupTestDB(t)
	engagement := newTestEngagement(db)

	asker := createTestUser(t, db, "asker")

	_, err := engagement.AcceptAnswer(asker.ID, 99999)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestAcceptAnswerAtMostOneAccepted(t *testing.T) {
	db := setupTestDB(t)
	engagement := newTestEngagement(db)

	asker := createTestUser(t, db, "asker")
	responder := createTestUser(t, db, "responder")
	question := createTestQuestion(t, db, asker.ID, "Single accepted answer")

	first := createTestAnswer(t, db, question.ID, responder.ID)
	second := createTestAnswer(t, db, question.ID, responder.ID)
	third := createTestAnswer(t, db, question.ID, responder.ID)

	for _, target := range []models.Answer{first, second, third, second} {
		_, err := engagement.AcceptAnswer(asker.ID, target.ID)
		require.NoError(t, err)

		var acceptedCount int64
		require.NoError(t, db.Model(&models.Answer{}).
			Where("question_id = ? AND is_accepted = ?", question.ID, true).
			Count(&acceptedCount).Error)
		require.Equal(t, int64(1), acceptedCount)

		var current models.Answer
		require.NoError(t, db.First(&current, target.ID).Error)
		require.True(t, current.IsAccepted)
	}
}

func TestAcceptAnswerIdempotent(t *testing.T) {
	db := setupTestDB(t)
	engagement := newTestEngagement(db)

	asker := createTestUser(t, db, "asker")
	responder := createTestUser(t, db, "responder")
	question := createTestQuestion(t, db, asker.ID, "Idempotent accept")
	answer := createTestAnswer(t, db, question.ID, responder.ID)

	for i := 0; i < 2; i++ {
		accepted, err := engagement.AcceptAnswer(asker.ID, answer.ID)
		require.NoError(t, err)
		require.True(t, accepted.IsAccepted)
	}
}

func TestDeleteQuestionCascades(t *testing.T) {
	db := setupTestDB(t)
	engagement := newTestEngagement(db)
	votes := NewVoteService(db, testLogger())

	asker := createTestUser(t, db, "asker")
	responder := createTestUser(t, db, "responder")
	question := createTestQuestion(t, db, asker.ID, "Cascade on delete")
	answer := createTestAnswer(t, db, question.ID, responder.ID)

	_, err := engagement.PostComment(asker.ID, answer.ID, "a comment that will be cascaded")
	require.NoError(t, err)
	_, err = votes.CastVote(responder.ID, TargetQuestion, question.ID, models.VoteUp)
	require.NoError(t, err)
	_, err = votes.CastVote(asker.ID, TargetAnswer, answer.ID, models.VoteUp)
	require.NoError(t, err)

	require.NoError(t, engagement.DeleteQuestion(asker, question.ID))

	var questionCount, answerCount, commentCount, voteCount int64
	db.Model(&models.Question{}).Where("id = ?", question.ID).Count(&questionCount)
	db.Model(&models.Answer{}).Where("question_id = ?", question.ID).Count(&answerCount)
	db.Model(&models.Comment{}).Where("answer_id = ?", answer.ID).Count(&commentCount)
	db.Model(&models.Vote{}).Where("question_id = ? OR answer_id = ?", question.ID, answer.ID).Count(&voteCount)

	require.Zero(t, questionCount)
	require.Zero(t, answerCount)
	require.Zero(t, commentCount)
	require.Zero(t, voteCount)
}

func TestDeleteAnswerRequiresAuthorOrAdmin(t *testing.T) {
	db := setupTestDB(t)
	engagement := newTestEngagement(db)

	asker := createTestUser(t, db, "asker")
	responder := createTestUser(t, db, "responder")
	stranger := createTestUser(t, db, "stranger")
	question := createTestQuestion(t, db, asker.ID, "Delete authorization")
	answer := createTestAnswer(t, db, question.ID, responder.ID)

	require.ErrorIs(t, engagement.DeleteAnswer(stranger, answer.ID), ErrForbidden)

	admin := createTestUser(t, db, "moderator")
	admin.Role = models.RoleAdmin
	require.NoError(t, db.Save(&admin).Error)

	require.NoError(t, engagement.DeleteAnswer(admin, answer.ID))
}

// Exercises the full ask-answer-accept-reassign flow.
func TestQuestionLifecycleScenario(t *testing.T) {
	db := setupTestDB(t)
	engagement := newTestEngagement(db)

	userA := createTestUser(t, db, "alice")
	userB := createTestUser(t, db, "bob")
	userC := createTestUser(t, db, "carol")

	question, err := engagement.PostQuestion(userA.ID, "How do I cascade deletes?", "Looking for the right approach here.", []string{"databases"})
	require.NoError(t, err)

	answer1, err := engagement.PostAnswer(userB.ID, question.ID, strings.Repeat("first answer ", 5))
	require.NoError(t, err)

	var notifications []models.Notification
	require.NoError(t, db.Where("user_id = ? AND type = ?", userA.ID, models.NotificationAnswer).Find(&notifications).Error)
	require.Len(t, notifications, 1)

	accepted, err := engagement.AcceptAnswer(userA.ID, answer1.ID)
	require.NoError(t, err)
	require.True(t, accepted.IsAccepted)

	answer2, err := engagement.PostAnswer(userC.ID, question.ID, strings.Repeat("second answer ", 5))
	require.NoError(t, err)

	_, err = engagement.AcceptAnswer(userA.ID, answer2.ID)
	require.NoError(t, err)

	var first, second models.Answer
	require.NoError(t, db.First(&first, answer1.ID).Error)
	require.NoError(t, db.First(&second, answer2.ID).Error)
	require.False(t, first.IsAccepted)
	require.True(t, second.IsAccepted)
}
