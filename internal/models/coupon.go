package models

import (
	"time"

	"gorm.io/gorm"
)

// Coupon 优惠券
type Coupon struct {
	ID                 uint           `gorm:"primarykey" json:"id"`                                            // 主键
	Code               string         `gorm:"uniqueIndex;not null" json:"code"`                                // 优惠码（大写存储）
	Type               string         `gorm:"not null" json:"type"`                                            // 类型（percentage/fixed）
	Value              Money          `gorm:"type:decimal(20,2);not null" json:"value"`                        // 数值（百分比或固定金额）
	MinimumOrderAmount Money          `gorm:"type:decimal(20,2);not null;default:0" json:"minimumOrderAmount"` // 使用门槛
	MaxDiscount        Money          `gorm:"type:decimal(20,2);not null;default:0" json:"maxDiscount"`        // 最大优惠金额（0 不限制）
	TotalUsageLimit    int            `gorm:"not null;default:0" json:"totalUsageLimit"`                       // 总使用上限（0 不限制）
	PerUserUsageLimit  int            `gorm:"not null;default:0" json:"perUserUsageLimit"`                     // 每人使用上限（0 不限制）
	UsageCount         int            `gorm:"not null;default:0" json:"usageCount"`                            // 已使用次数
	ValidFrom          *time.Time     `gorm:"index" json:"validFrom"`                                          // 生效时间
	ValidUntil         *time.Time     `gorm:"index" json:"validUntil"`                                         // 失效时间
	IsActive           bool           `gorm:"not null" json:"isActive"`                                        // 是否启用
	CreatedAt          time.Time      `gorm:"index" json:"createdAt"`                                          // 创建时间
	UpdatedAt          time.Time      `gorm:"index" json:"updatedAt"`                                          // 更新时间
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`                                                  // 软删除时间
}

// TableName 指定表名
func (Coupon) TableName() string {
	return "coupons"
}
