package model

import "time"

type Role string

const (
	RoleAdmin Role = "ADMIN"
)

// 管理画面のユーザー（注文確定/却下を行う人）。購入者はここに入らない。
type User struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"column:password_hash;not null"`
	Role         Role   `gorm:"type:varchar(20);not null;default:'ADMIN'"`
	//上がると発行済みトークンが全部無効
	TokenVersion int  `gorm:"not null;default:0"`
	IsActive     bool `gorm:"not null;default:true"`
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (User) TableName() string { return "admin_users" }

// CanManageOrders は注文の確定/却下をしてよいか
func (u User) CanManageOrders() bool {
	return u.IsActive && u.Role == RoleAdmin
}

// RevokeTokens はlogout時に呼ぶ
func (u *User) RevokeTokens() {
	u.TokenVersion++
}
