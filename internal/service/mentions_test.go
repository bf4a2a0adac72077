package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stackit-app/stackit/backend/internal/models"
)

func TestExtractMentions(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{"none", "no mentions here", nil},
		{"single", "thanks @alice for the tip", []string{"alice"}},
		{"deduplicated", "@alice @alice @bob", []string{"alice", "bob"}},
		{"inside html", "<p>ping @carol_1 about this</p>", []string{"carol_1"}},
		{"bare at sign", "send mail to @ nobody", nil},
		{"punctuation boundary", "hey @dave, have a look", []string{"dave"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ExtractMentions(tt.content))
		})
	}
}

func TestTruncateTitle(t *testing.T) {
	short := "a short title"
	require.Equal(t, short, truncateTitle(short))

	long := strings.Repeat("t", 80)
	got := truncateTitle(long)
	require.Len(t, got, 63)
	require.True(t, strings.HasSuffix(got, "..."))
}

func TestMentionFanoutDedupAndSelfExclusion(t *testing.T) {
	db := setupTestDB(t)
	engagement := newTestEngagement(db)

	asker := createTestUser(t, db, "asker")
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	question := createTestQuestion(t, db, asker.ID, "Mention fan-out")

	_, err := engagement.PostAnswer(bob.ID, question.ID, "@alice @alice @bob this should work")
	require.NoError(t, err)

	var aliceNotifications []models.Notification
	require.NoError(t, db.Where("user_id = ? AND type = ?", alice.ID, models.NotificationMention).Find(&aliceNotifications).Error)
	require.Len(t, aliceNotifications, 1)

	var bobCount int64
	require.NoError(t, db.Model(&models.Notification{}).
		Where("user_id = ? AND type = ?", bob.ID, models.NotificationMention).
		Count(&bobCount).Error)
	require.Zero(t, bobCount)
}

func TestMentionUnknownUserIgnored(t *testing.T) {
	db := setupTestDB(t)
	engagement := newTestEngagement(db)

	asker := createTestUser(t, db, "asker")
	responder := createTestUser(t, db, "responder")
	question := createTestQuestion(t, db, asker.ID, "Unknown mentions")

	_, err := engagement.PostAnswer(responder.ID, question.ID, "@doesnotexist should be silently skipped")
	require.NoError(t, err)

	var mentionCount int64
	require.NoError(t, db.Model(&models.Notification{}).
		Where("type = ?", models.NotificationMention).
		Count(&mentionCount).Error)
	require.Zero(t, mentionCount)
}

func TestMentionInAnswerLinksToParentQuestion(t *testing.T) {
	db := setupTestDB(t)
	engagement := newTestEngagement(db)

	asker := createTestUser(t, db, "asker")
	responder := createTestUser(t, db, "responder")
	mentioned := createTestUser(t, db, "mentioned")
	question := createTestQuestion(t, db, asker.ID, "Deep links go to the question")

	_, err := engagement.PostAnswer(responder.ID, question.ID, "@mentioned might know more about this one")
	require.NoError(t, err)

	var notification models.Notification
	require.NoError(t, db.Where("user_id = ? AND type = ?", mentioned.ID, models.NotificationMention).First(&notification).Error)
	require.Equal(t, models.RelatedQuestion, notification.RelatedType)
	require.Equal(t, question.ID, *notification.RelatedID)
	require.Contains(t, notification.Message, "Deep links go to the question")
}

func TestMentionInCommentLinksToParentQuestion(t *testing.T) {
	db := setupTestDB(t)
	engagement := newTestEngagement(db)

	asker := createTestUser(t, db, "asker")
	responder := createTestUser(t, db, "responder")
	mentioned := createTestUser(t, db, "mentioned")
	question := createTestQuestion(t, db, asker.ID, "Comment mentions")
	answer := createTestAnswer(t, db, question.ID, responder.ID)

	_, err := engagement.PostComment(asker.ID, answer.ID, "@mentioned see this comment thread")
	require.NoError(t, err)

	var notification models.Notification
	require.NoError(t, db.Where("user_id = ? AND type = ?", mentioned.ID, models.NotificationMention).First(&notification).Error)
	require.Equal(t, models.RelatedQuestion, notification.RelatedType)
	require.Equal(t, question.ID, *notification.RelatedID)
}
