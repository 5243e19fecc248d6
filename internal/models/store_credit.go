package models

import (
	"time"
)

// StoreCreditAccount 店铺余额账户
type StoreCreditAccount struct {
	ID        uint      `gorm:"primarykey" json:"id"`                                 // 主键
	UserID    uint      `gorm:"uniqueIndex;not null" json:"userId"`                   // 用户ID
	Balance   Money     `gorm:"type:decimal(20,2);not null;default:0" json:"balance"` // 余额
	CreatedAt time.Time `gorm:"index" json:"createdAt"`                               // 创建时间
	UpdatedAt time.Time `gorm:"index" json:"updatedAt"`                               // 更新时间
}

// TableName 指定表名
func (StoreCreditAccount) TableName() string {
	return "store_credit_accounts"
}

// StoreCreditTransaction 店铺余额流水
type StoreCreditTransaction struct {
	ID            uint      `gorm:"primarykey" json:"id"`                                       // 主键
	UserID        uint      `gorm:"index;not null" json:"userId"`                               // 用户ID
	OrderID       *uint     `gorm:"index" json:"orderId,omitempty"`                             // 关联订单
	Type          string    `gorm:"type:varchar(32);not null;index" json:"type"`                // 流水类型
	Direction     string    `gorm:"type:varchar(8);not null" json:"direction"`                  // 方向（in/out）
	Amount        Money     `gorm:"type:decimal(20,2);not null" json:"amount"`                  // 金额
	BalanceBefore Money     `gorm:"type:decimal(20,2);not null;default:0" json:"balanceBefore"` // 变动前余额
	BalanceAfter  Money     `gorm:"type:decimal(20,2);not null;default:0" json:"balanceAfter"`  // 变动后余额
	Reference     string    `gorm:"type:varchar(128);uniqueIndex" json:"reference"`             // 幂等引用
	Remark        string    `gorm:"type:varchar(255)" json:"remark,omitempty"`                  // 备注
	CreatedAt     time.Time `gorm:"index" json:"createdAt"`                                     // 创建时间
}

// TableName 指定表名
func (StoreCreditTransaction) TableName() string {
	return "store_credit_transactions"
}
