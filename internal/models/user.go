package models

import (
	"time"

	"gorm.io/gorm"
)

// User 用户表
type User struct {
	ID            uint           `gorm:"primarykey" json:"id"`                    // 主键
	Email         string         `gorm:"uniqueIndex;not null" json:"email"`       // 邮箱
	DisplayName   string         `gorm:"default:''" json:"displayName"`           // 昵称
	Status        string         `gorm:"default:'active'" json:"status"`          // 账号状态
	LoyaltyPoints int64          `gorm:"not null;default:0" json:"loyaltyPoints"` // 积分余额
	CreatedAt     time.Time      `gorm:"index" json:"createdAt"`                  // 创建时间
	UpdatedAt     time.Time      `gorm:"index" json:"updatedAt"`                  // 更新时间
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`                          // 软删除时间
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}
