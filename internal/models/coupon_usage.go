package models

import (
	"time"
)

// CouponUsage 优惠券使用记录
type CouponUsage struct {
	ID             uint      `gorm:"primarykey" json:"id"`                                        // 主键
	CouponID       uint      `gorm:"index;not null" json:"couponId"`                              // 优惠券ID
	UserID         *uint     `gorm:"index" json:"userId,omitempty"`                               // 用户ID（游客为空）
	OrderID        uint      `gorm:"uniqueIndex;not null" json:"orderId"`                         // 订单ID
	DiscountAmount Money     `gorm:"type:decimal(20,2);not null;default:0" json:"discountAmount"` // 优惠金额
	CreatedAt      time.Time `gorm:"index" json:"createdAt"`                                      // 创建时间
}

// TableName 指定表名
func (CouponUsage) TableName() string {
	return "coupon_usages"
}
