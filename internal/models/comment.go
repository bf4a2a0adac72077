package models

import "time"

type Comment struct {
	ID       int    `gorm:"primaryKey" json:"id"`
	AnswerID int    `gorm:"index" json:"answer_id"`
	Answer   Answer `gorm:"foreignKey:AnswerID" json:"-"`
	UserID   int    `gorm:"index" json:"user_id"`
	User     User   `gorm:"foreignKey:UserID" json:"user"`
	Content  string `gorm:"not null" json:"content"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateCommentRequest struct {
	Content string `json:"content" binding:"required"`
}
