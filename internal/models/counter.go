package models

import "time"

// Counter 命名序列计数器
type Counter struct {
	Name      string    `gorm:"primaryKey;type:varchar(64)" json:"name"` // 计数器名称
	Value     int64     `gorm:"not null;default:0" json:"value"`         // 当前值
	UpdatedAt time.Time `json:"updatedAt"`                               // 更新时间
}

// TableName 指定表名
func (Counter) TableName() string {
	return "counters"
}
