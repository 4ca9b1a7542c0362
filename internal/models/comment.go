package models

import "time"

// Comment is a user's remark on an article.
type Comment struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	ArticleID string    `json:"article_id" gorm:"type:varchar(36);index"`
	AuthorID  string    `json:"-" gorm:"type:varchar(36)"`
	Author    *User     `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
	Body      string    `json:"body" gorm:"type:text" validate:"required,min=1"`
	CreatedAt time.Time `json:"created_at"`
	Replies   []Reply   `json:"replies,omitempty" gorm:"foreignKey:CommentID"`
}

// Reply is a user's response to a comment.
type Reply struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	CommentID string    `json:"comment_id" gorm:"type:varchar(36);index"`
	AuthorID  string    `json:"-" gorm:"type:varchar(36)"`
	Author    *User     `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
	Content   string    `json:"content" gorm:"type:text" validate:"required,min=1"`
	CreatedAt time.Time `json:"created_at"`
}
