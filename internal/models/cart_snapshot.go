package models

import "time"

// CartSnapshot 用户购物车持久化快照
type CartSnapshot struct {
	ID        uint      `gorm:"primarykey" json:"id"`               // 主键
	UserID    uint      `gorm:"uniqueIndex;not null" json:"userId"` // 用户ID
	Version   int       `gorm:"not null" json:"version"`            // 编码版本
	Payload   string    `gorm:"type:text;not null" json:"-"`        // 序列化内容
	UpdatedAt time.Time `gorm:"index" json:"updatedAt"`             // 更新时间
}

// TableName 指定表名
func (CartSnapshot) TableName() string {
	return "cart_snapshots"
}
