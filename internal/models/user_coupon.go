package models

import (
	"time"
)

// UserCoupon 用户领取的优惠券实例
type UserCoupon struct {
	ID        uint       `gorm:"primarykey" json:"id"`                     // 主键
	UserID    uint       `gorm:"index;not null" json:"userId"`             // 用户ID
	CouponID  uint       `gorm:"index;not null" json:"couponId"`           // 优惠券ID
	Used      bool       `gorm:"not null;default:false;index" json:"used"` // 是否已使用
	UsedAt    *time.Time `json:"usedAt,omitempty"`                         // 使用时间
	OrderID   *uint      `gorm:"index" json:"orderId,omitempty"`           // 使用订单ID
	CreatedAt time.Time  `gorm:"index" json:"createdAt"`                   // 创建时间
	UpdatedAt time.Time  `json:"updatedAt"`                                // 更新时间

	Coupon *Coupon `gorm:"foreignKey:CouponID" json:"coupon,omitempty"` // 关联优惠券
}

// TableName 指定表名
func (UserCoupon) TableName() string {
	return "user_coupons"
}
