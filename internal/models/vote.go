package models

import "time"

const (
	VoteUp   = "UP"
	VoteDown = "DOWN"
)

// Vote targets exactly one of a question or an answer. The nullable foreign
// keys plus the composite unique indexes enforce one vote per (user, target).
type Vote struct {
	ID         int    `gorm:"primaryKey" json:"id"`
	UserID     int    `gorm:"not null;uniqueIndex:idx_votes_user_question;uniqueIndex:idx_votes_user_answer" json:"user_id"`
	User       User   `gorm:"foreignKey:UserID" json:"user"`
	QuestionID *int   `gorm:"uniqueIndex:idx_votes_user_question" json:"question_id,omitempty"`
	AnswerID   *int   `gorm:"uniqueIndex:idx_votes_user_answer" json:"answer_id,omitempty"`
	Type       string `gorm:"not null" json:"type"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CastVoteRequest struct {
	Type string `json:"type" binding:"required,oneof=UP DOWN"`
}
