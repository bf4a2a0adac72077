package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stackit-app/stackit/backend/internal/models"
)

func TestCastVoteToggleOff(t *testing.T) {
	db := setupTestDB(t)
	votes := NewVoteService(db, testLogger())

	author := createTestUser(t, db, "author")
	voter := createTestUser(t, db, "voter")
	question := createTestQuestion(t, db, author.ID, "Toggling votes")

	first, err := votes.CastVote(voter.ID, TargetQuestion, question.ID, models.VoteUp)
	require.NoError(t, err)
	require.Equal(t, VoteCreated, first.Outcome)
	require.Equal(t, 1, first.Count)

	second, err := votes.CastVote(voter.ID, TargetQuestion, question.ID, models.VoteUp)
	require.NoError(t, err)
	require.Equal(t, VoteRemoved, second.Outcome)
	require.Equal(t, 0, second.Count)

	var remaining int64
	require.NoError(t, db.Model(&models.Vote{}).Where("question_id = ?", question.ID).Count(&remaining).Error)
	require.Zero(t, remaining)
}

func TestCastVoteSwitchDirection(t *testing.T) {
	db := setupTestDB(t)
	votes := NewVoteService(db, testLogger())

	author := createTestUser(t, db, "author")
	voter := createTestUser(t, db, "voter")
	question := createTestQuestion(t, db, author.ID, "Switching votes")

	up, err := votes.CastVote(voter.ID, TargetQuestion, question.ID, models.VoteUp)
	require.NoError(t, err)
	require.Equal(t, 1, up.Count)

	down, err := votes.CastVote(voter.ID, TargetQuestion, question.ID, models.VoteDown)
	require.NoError(t, err)
	require.Equal(t, VoteChanged, down.Outcome)
	// Switching direction moves the net count by exactly two.
	require.Equal(t, up.Count-2, down.Count)
}

func TestCastVoteAtMostOneRecordPerTarget(t *testing.T) {
	db := setupTestDB(t)
	votes := NewVoteService(db, testLogger())

	author := createTestUser(t, db, "author")
	voter := createTestUser(t, db, "voter")
	question := createTestQuestion(t, db, author.ID, "One vote per user")
	answer := createTestAnswer(t, db, question.ID, author.ID)

	sequence := []string{models.VoteUp, models.VoteDown, models.VoteDown, models.VoteUp, models.VoteUp}
	for _, direction := range sequence {
		_, err := votes.CastVote(voter.ID, TargetAnswer, answer.ID, direction)
		require.NoError(t, err)

		var count int64
		require.NoError(t, db.Model(&models.Vote{}).
			Where("answer_id = ? AND user_id = ?", answer.ID, voter.ID).
			Count(&count).Error)
		require.LessOrEqual(t, count, int64(1))
	}
}

func TestVoteCountDerivation(t *testing.T) {
	db := setupTestDB(t)
	votes := NewVoteService(db, testLogger())

	author := createTestUser(t, db, "author")
	question := createTestQuestion(t, db, author.ID, "Counting votes")

	for i, direction := range []string{models.VoteUp, models.VoteDown, models.VoteUp, models.VoteUp} {
		voter := createTestUser(t, db, "voter"+string(rune('a'+i)))
		result, err := votes.CastVote(voter.ID, TargetQuestion, question.ID, direction)
		require.NoError(t, err)
		require.Equal(t, VoteCreated, result.Outcome)
	}

	count, err := votes.Count(TargetQuestion, question.ID)
	require.NoError(t, err)
	require.Equal(t, 2, count)
}

func TestCastVoteMissingTarget(t *testing.T) {
	db := setupTestDB(t)
	votes := NewVoteService(db, testLogger())

	voter := createTestUser(t, db, "voter")

	_, err := votes.CastVote(voter.ID, TargetQuestion, 99999, models.VoteUp)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = votes.CastVote(voter.ID, TargetAnswer, 99999, models.VoteDown)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCastVoteRejectsBadDirection(t *testing.T) {
	db := setupTestDB(t)
	votes := NewVoteService(db, testLogger())

	author := createTestUser(t, db, "author")
	question := createTestQuestion(t, db, author.ID, "Bad direction")

	_, err := votes.CastVote(author.ID, TargetQuestion, question.ID, "SIDEWAYS")
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	require.Equal(t, "type", vErr.Field)
}

func TestVotesOnQuestionAndAnswerAreIndependent(t *testing.T) {
	db := setupTestDB(t)
	votes := NewVoteService(db, testLogger())

	author := createTestUser(t, db, "author")
	voter := createTestUser(t, db, "voter")
	question := createTestQuestion(t, db, author.ID, "Independent targets")
	answer := createTestAnswer(t, db, question.ID, author.ID)

	_, err := votes.CastVote(voter.ID, TargetQuestion, question.ID, models.VoteUp)
	require.NoError(t, err)
	_, err = votes.CastVote(voter.ID, TargetAnswer, answer.ID, models.VoteDown)
	require.NoError(t, err)

	questionCount, err := votes.Count(TargetQuestion, question.ID)
	require.NoError(t, err)
	require.Equal(t, 1, questionCount)

	answerCount, err := votes.Count(TargetAnswer, answer.ID)
	require.NoError(t, err)
	require.Equal(t, -1, answerCount)
}
