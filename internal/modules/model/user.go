package model

import "time"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User is the profile of an identity provider subject.
type User struct {
	ID    string `gorm:"type:varchar(128);primaryKey" json:"id"`
	Name  string `gorm:"type:varchar(255);not null" json:"name"`
	Email string `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"`
	Role  Role   `gorm:"type:varchar(16);not null;default:'user';check:role IN ('user','admin')" json:"role"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string { return "users" }
