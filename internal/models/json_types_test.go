package models

import (
	"testing"
)

func TestCouponSnapshotColumnRoundTrip(t *testing.T) {
	userCouponID := uint(4)
	snapshot := CouponSnapshot{
		CouponID:     9,
		Code:         "SAVE10",
		Type:         "fixed",
		Amount:       NewMoneyFromInt(10),
		UserCouponID: &userCouponID,
	}
	raw, err := snapshot.Value()
	if err != nil {
		t.Fatalf("value failed: %v", err)
	}
	text, ok := raw.(string)
	if !ok {
		t.Fatalf("expected string column value, got %T", raw)
	}

	var restored CouponSnapshot
	if err := restored.Scan([]byte(text)); err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if restored.Code != "SAVE10" || restored.Amount.String() != "10.00" {
		t.Fatalf("unexpected snapshot: %+v", restored)
	}
	if restored.UserCouponID == nil || *restored.UserCouponID != 4 {
		t.Fatalf("user coupon id lost: %+v", restored.UserCouponID)
	}
}

func TestCouponSnapshotKeepsValueJSONKey(t *testing.T) {
	var restored CouponSnapshot
	if err := restored.Scan(`{"couponId":1,"code":"PCT","type":"percentage","value":"20.00"}`); err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if restored.Amount.String() != "20.00" {
		t.Fatalf("amount = %s, want 20.00", restored.Amount)
	}
	var empty CouponSnapshot
	if err := empty.Scan(nil); err != nil || empty.Code != "" {
		t.Fatalf("nil column should leave snapshot empty: %+v %v", empty, err)
	}
}
