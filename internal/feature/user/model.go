package user

import (
	"gin-gorm-scaffold/internal/core/database"
)

type UserModel struct {
	database.Base
	Email        string `gorm:"uniqueIndex;size:255;not null"`
	Name         string `gorm:"size:64;not null"`
	PasswordHash string `gorm:"size:100;not null"`
	Role         string `gorm:"size:16;not null;default:user"`
}

func (UserModel) TableName() string { return "users" }
