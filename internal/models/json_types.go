package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// scanJSON 解析数据库中的 JSON 列（兼容 []byte 与 string）
func scanJSON(value interface{}, dest interface{}) error {
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		if len(v) == 0 {
			return nil
		}
		return json.Unmarshal(v, dest)
	case string:
		if v == "" {
			return nil
		}
		return json.Unmarshal([]byte(v), dest)
	default:
		return fmt.Errorf("unsupported json column type %T", value)
	}
}

// VariantRef 商品变体引用（商品规格或购物车/订单快照）
type VariantRef struct {
	ID             string `json:"id,omitempty"`             // 变体ID
	SKU            string `json:"sku,omitempty"`            // SKU 编码
	AttributeName  string `json:"attributeName,omitempty"`  // 规格名（如 Size）
	AttributeValue string `json:"attributeValue,omitempty"` // 规格值（如 XL）
	Price          Money  `json:"price"`                    // 变体价格
	OriginalPrice  *Money `json:"originalPrice,omitempty"`  // 划线价
	Stock          int    `json:"stock"`                    // 变体库存
}

// Value 实现 driver.Valuer 接口
func (v VariantRef) Value() (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan 实现 sql.Scanner 接口
func (v *VariantRef) Scan(value interface{}) error {
	return scanJSON(value, v)
}

// VariantList 商品变体列表
type VariantList []VariantRef

// Value 实现 driver.Valuer 接口
func (l VariantList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan 实现 sql.Scanner 接口
func (l *VariantList) Scan(value interface{}) error {
	*l = VariantList{}
	return scanJSON(value, l)
}

// TrackingEntry 物流单号记录
type TrackingEntry struct {
	Carrier string    `json:"carrier"`
	Number  string    `json:"number"`
	AddedAt time.Time `json:"addedAt"`
}

// TrackingList 物流单号列表（按追加顺序）
type TrackingList []TrackingEntry

// Value 实现 driver.Valuer 接口
func (l TrackingList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan 实现 sql.Scanner 接口
func (l *TrackingList) Scan(value interface{}) error {
	*l = TrackingList{}
	return scanJSON(value, l)
}

// ShippingAddress 收货地址快照
type ShippingAddress struct {
	Name       string `json:"name"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	Region     string `json:"region,omitempty"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
	Phone      string `json:"phone,omitempty"`
}

// Value 实现 driver.Valuer 接口
func (a ShippingAddress) Value() (driver.Value, error) {
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan 实现 sql.Scanner 接口
func (a *ShippingAddress) Scan(value interface{}) error {
	return scanJSON(value, a)
}

// CouponSnapshot 下单时的优惠券快照
type CouponSnapshot struct {
	CouponID     uint   `json:"couponId"`
	Code         string `json:"code"`
	Type         string `json:"type"`
	Amount       Money  `json:"value"` // 面额或百分比
	UserCouponID *uint  `json:"userCouponId,omitempty"`
}

// Value 实现 driver.Valuer 接口
func (s CouponSnapshot) Value() (driver.Value, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan 实现 sql.Scanner 接口
func (s *CouponSnapshot) Scan(value interface{}) error {
	return scanJSON(value, s)
}
