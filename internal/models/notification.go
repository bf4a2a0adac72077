package models

import "time"

const (
	NotificationAnswer  = "ANSWER"
	NotificationComment = "COMMENT"
	NotificationVote    = "VOTE"
	NotificationMention = "MENTION"
)

const (
	RelatedQuestion = "QUESTION"
	RelatedAnswer   = "ANSWER"
)

type Notification struct {
	ID          int    `gorm:"primaryKey" json:"id"`
	UserID      int    `gorm:"index" json:"user_id"`
	Type        string `gorm:"not null" json:"type"`
	Message     string `gorm:"not null" json:"message"`
	IsRead      bool   `gorm:"default:false" json:"is_read"`
	RelatedID   *int   `json:"related_id,omitempty"`
	RelatedType string `json:"related_type,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
