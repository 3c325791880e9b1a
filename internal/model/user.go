package model

import "time"

const (
	RoleAdvisor = "advisor"
	RoleAdmin   = "admin"
)

// User 仅作为审计日志的外键目标，系统不做登录认证。
type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Role         string    `gorm:"type:varchar(20);not null;default:'advisor'" json:"role"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (User) TableName() string {
	return "users"
}
