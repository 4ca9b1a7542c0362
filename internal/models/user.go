package models

import "gorm.io/gorm"

// User represents an author or reader of the platform.
type User struct {
	ID         string `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Username   string `json:"username" gorm:"uniqueIndex;type:varchar(100)" validate:"required,min=3,max=100"`
	Email      string `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	Password   string `json:"-" gorm:"type:varchar(255)" validate:"required,min=8,max=128"`
	Bio        string `json:"bio" gorm:"type:text" validate:"omitempty,max=500"`
	Image      string `json:"image" gorm:"type:varchar(255)" validate:"omitempty,url"`
	Active     bool   `json:"active" gorm:"default:true"`
	Verified   bool   `json:"verified" gorm:"default:false"`
	Superuser  bool   `json:"-" gorm:"default:false"`
	gorm.Model `json:"-"` // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}
