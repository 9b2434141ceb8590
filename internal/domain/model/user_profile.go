package model

import "time"

// 購入者のプロフィール。注文時の連絡先を埋めるのに使う。
type UserProfile struct {
	ID              int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID          int64     `gorm:"not null;uniqueIndex" json:"user_id"`
	Name            string    `gorm:"type:varchar(255)" json:"name"`
	PhoneNumber     string    `gorm:"type:varchar(20)" json:"phone_number"`
	DeliveryAddress string    `gorm:"type:text" json:"delivery_address"`
	CreatedAt       time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
