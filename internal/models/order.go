package models

import (
	"time"

	"gorm.io/gorm"
)

// Order 订单表
type Order struct {
	ID                   uint            `gorm:"primarykey" json:"id"`                                         // 主键
	OrderNo              string          `gorm:"uniqueIndex;not null" json:"orderNo"`                          // 订单编号
	InvoiceNumber        int64           `gorm:"uniqueIndex;not null" json:"invoiceNumber"`                    // 发票号（单调递增）
	UserID               *uint           `gorm:"index" json:"userId,omitempty"`                                // 用户ID（游客为空）
	CustomerEmail        string          `gorm:"type:varchar(255);index" json:"customerEmail,omitempty"`       // 联系邮箱
	Status               string          `gorm:"index;not null" json:"status"`                                 // 订单状态
	Currency             string          `gorm:"type:varchar(10);not null" json:"currency"`                    // 币种
	Subtotal             Money           `gorm:"type:decimal(20,2);not null;default:0" json:"subtotal"`        // 商品小计
	Shipping             Money           `gorm:"type:decimal(20,2);not null;default:0" json:"shipping"`        // 运费
	Tax                  Money           `gorm:"type:decimal(20,2);not null;default:0" json:"tax"`             // 税费（预留）
	DiscountAmount       Money           `gorm:"type:decimal(20,2);not null;default:0" json:"discount"`        // 优惠金额
	StoreCreditUsed      Money           `gorm:"type:decimal(20,2);not null;default:0" json:"storeCreditUsed"` // 店铺余额抵扣
	Total                Money           `gorm:"type:decimal(20,2);not null;default:0" json:"total"`           // 应付总额
	CouponCode           string          `gorm:"type:varchar(64);index" json:"couponCode,omitempty"`           // 优惠码（大写）
	Coupon               *CouponSnapshot `gorm:"type:json" json:"appliedCoupon,omitempty"`                     // 优惠券快照
	UserCouponID         *uint           `gorm:"index" json:"userCouponId,omitempty"`                          // 用户券实例ID
	ShippingAddress      ShippingAddress `gorm:"type:json" json:"shippingAddress"`                             // 收货地址
	LoyaltyPointsAwarded bool            `gorm:"not null;default:false" json:"loyaltyPointsAwarded"`           // 是否已发放积分
	LoyaltyPointsEarned  int64           `gorm:"not null;default:0" json:"loyaltyPointsEarned"`                // 发放积分数
	Tracking             TrackingList    `gorm:"type:json" json:"tracking"`                                    // 物流单号列表
	TrackingCarrier      string          `gorm:"type:varchar(64)" json:"trackingCarrier,omitempty"`            // 当前物流公司
	TrackingNumber       string          `gorm:"type:varchar(128)" json:"trackingNumber,omitempty"`            // 当前物流单号
	CancelledAt          *time.Time      `gorm:"index" json:"cancelledAt,omitempty"`                           // 取消时间
	CompletedAt          *time.Time      `gorm:"index" json:"completedAt,omitempty"`                           // 完成时间
	CreatedAt            time.Time       `gorm:"index" json:"createdAt"`                                       // 创建时间
	UpdatedAt            time.Time       `gorm:"index" json:"updatedAt"`                                       // 更新时间
	DeletedAt            gorm.DeletedAt  `gorm:"index" json:"-"`                                               // 软删除时间

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"` // 订单项
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}
