package config

import (
	"os"
	"strconv"
	"time"

	_ "github.com/joho/godotenv/autoload"
)

type Config struct {
	Port    string
	Env     string
	JWT     JWTConfig
	Content ContentConfig
	Twilio  TwilioConfig
}

type JWTConfig struct {
	Secret string
	TTL    time.Duration
}

// ContentConfig holds the validation thresholds for user-submitted content.
// These are tunable per deployment, not constants.
type ContentConfig struct {
	MinAnswerLength  int
	MinCommentLength int
	MaxCommentLength int
	MaxQuestionTags  int
}

// TwilioConfig enables the optional SMS notification channel. Empty values
// leave SMS delivery disabled.
type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	FromNumber string
}

func Load() *Config {
	cfg := &Config{
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("APP_ENV", "development"),
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", ""),
			TTL:    time.Duration(getEnvInt("JWT_TTL_HOURS", 24)) * time.Hour,
		},
		Content: ContentConfig{
			MinAnswerLength:  getEnvInt("MIN_ANSWER_LENGTH", 30),
			MinCommentLength: getEnvInt("MIN_COMMENT_LENGTH", 10),
			MaxCommentLength: getEnvInt("MAX_COMMENT_LENGTH", 500),
			MaxQuestionTags:  getEnvInt("MAX_QUESTION_TAGS", 5),
		},
		Twilio: TwilioConfig{
			AccountSID: getEnv("TWILIO_ACCOUNT_SID", ""),
			AuthToken:  getEnv("TWILIO_AUTH_TOKEN", ""),
			FromNumber: getEnv("TWILIO_FROM_NUMBER", ""),
		},
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}
