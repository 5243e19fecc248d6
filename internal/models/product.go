package models

import (
	"time"

	"gorm.io/gorm"
)

// Product 商品表
type Product struct {
	ID            uint           `gorm:"primarykey" json:"id"`                               // 主键
	Slug          string         `gorm:"uniqueIndex;not null" json:"slug"`                   // 唯一标识
	Name          string         `gorm:"type:varchar(255);not null" json:"name"`             // 商品名称
	Price         Money          `gorm:"type:decimal(20,2);not null;default:0" json:"price"` // 价格
	OriginalPrice *Money         `gorm:"type:decimal(20,2)" json:"originalPrice,omitempty"`  // 划线价
	StockQuantity int            `gorm:"not null;default:0" json:"stockQuantity"`            // 商品级库存（无变体时生效）
	TrackStock    bool           `gorm:"not null" json:"trackStock"`                         // 是否跟踪库存
	Variants      VariantList    `gorm:"type:json" json:"variants"`                          // 变体列表
	IsActive      bool           `gorm:"not null;index" json:"isActive"`                     // 是否上架
	CreatedAt     time.Time      `gorm:"index" json:"createdAt"`                             // 创建时间
	UpdatedAt     time.Time      `json:"updatedAt"`                                          // 更新时间
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`                                     // 软删除时间
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}
