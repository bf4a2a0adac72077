package models

import "time"

// Answer — at most one answer per question has IsAccepted set.
type Answer struct {
	ID         int      `gorm:"primaryKey" json:"id"`
	QuestionID int      `gorm:"index" json:"question_id"`
	Question   Question `gorm:"foreignKey:QuestionID" json:"-"`
	AuthorID   int      `gorm:"index" json:"author_id"`
	Author     User     `gorm:"foreignKey:AuthorID" json:"author"`
	Content    string   `gorm:"not null" json:"content"`
	IsAccepted bool     `gorm:"default:false" json:"is_accepted"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateAnswerRequest struct {
	QuestionID int    `json:"question_id" binding:"required"`
	Content    string `json:"content" binding:"required"`
}
