package models

import "time"

type User struct {
	ID           string `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Username     string `gorm:"column:username;type:varchar(150);not null;uniqueIndex" json:"username"`
	PasswordHash string `gorm:"column:password_hash;type:text;not null" json:"-"`
	Role         string `gorm:"column:role;type:varchar(32);not null" json:"role"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz;not null" json:"created_at"`
}

func (User) TableName() string { return "app_user" }
