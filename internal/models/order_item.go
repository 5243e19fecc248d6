package models

import (
	"time"
)

// OrderItem 订单项表
type OrderItem struct {
	ID          uint        `gorm:"primarykey" json:"id"`                                   // 主键
	OrderID     uint        `gorm:"index;not null" json:"orderId"`                          // 订单ID
	ProductID   uint        `gorm:"index;not null" json:"productId"`                        // 商品ID
	ProductName string      `gorm:"type:varchar(255);not null" json:"productName"`          // 商品名称快照
	Variant     *VariantRef `gorm:"type:json" json:"variant,omitempty"`                     // 变体快照
	Quantity    int         `gorm:"not null" json:"quantity"`                               // 数量
	UnitPrice   Money       `gorm:"type:decimal(20,2);not null;default:0" json:"unitPrice"` // 单价
	LineTotal   Money       `gorm:"type:decimal(20,2);not null;default:0" json:"lineTotal"` // 小计
	CreatedAt   time.Time   `gorm:"index" json:"createdAt"`                                 // 创建时间
}

// TableName 指定表名
func (OrderItem) TableName() string {
	return "order_items"
}
