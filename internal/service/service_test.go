package service

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/stackit-app/stackit/backend/internal/config"
	"github.com/stackit-app/stackit/backend/internal/database"
	"github.com/stackit-app/stackit/backend/internal/models"
	"github.com/stackit-app/stackit/backend/internal/notify"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("stackit_test"),
		tcpostgres.WithUsername("stackit"),
		tcpostgres.WithPassword("stackit"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		),
	)
	if err != nil {
		t.Skipf("could not start postgres container: %v", err)
	}
	t.Cleanup(func() {
		_ = testcontainers.TerminateContainer(container)
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	return db
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func testContentConfig() config.ContentConfig {
	return config.ContentConfig{
		MinAnswerLength:  30,
		MinCommentLength: 10,
		MaxCommentLength: 500,
		MaxQuestionTags:  5,
	}
}

func newTestEngagement(db *gorm.DB) *EngagementService {
	log := testLogger()
	sink := notify.NewSink(db, log, config.TwilioConfig{})
	return NewEngagementService(db, log, sink, testContentConfig())
}

func createTestUser(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	user := models.User{
		Username: username,
		Email:    fmt.Sprintf("%s@example.com", username),
		Password: string(hash),
		Role:     models.RoleUser,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func createTestQuestion(t *testing.T, db *gorm.DB, authorID int, title string) models.Question {
	t.Helper()
	question := models.Question{
		Title:    title,
		Content:  "How do I do the thing that this question is about?",
		AuthorID: authorID,
	}
	require.NoError(t, db.Create(&question).Error)
	return question
}

func createTestAnswer(t *testing.T, db *gorm.DB, questionID, authorID int) models.Answer {
	t.Helper()
	answer := models.Answer{
		QuestionID: questionID,
		AuthorID:   authorID,
		Content:    "This is an answer that easily clears the length floor.",
	}
	require.NoError(t, db.Create(&answer).Error)
	return answer
}
