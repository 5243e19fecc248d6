package service

import (
	"context"
	"errors"
	"testing"

	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/queue"
)

func strPtr(v string) *string {
	return &v
}

func TestNormalizeOrderStatus(t *testing.T) {
	if got, ok := NormalizeOrderStatus("  Shipped "); !ok || got != constants.OrderStatusShipped {
		t.Fatalf("NormalizeOrderStatus() = %q, %v", got, ok)
	}
	if _, ok := NormalizeOrderStatus("lost"); ok {
		t.Fatalf("unknown status should be rejected")
	}
	if _, ok := NormalizeOrderStatus(""); ok {
		t.Fatalf("empty status should be rejected")
	}
}

func TestLoyaltyPoints(t *testing.T) {
	cases := []struct {
		name     string
		subtotal int64
		discount int64
		want     int64
	}{
		{name: "plain", subtotal: 150, discount: 10, want: 140},
		{name: "discount_exceeds", subtotal: 10, discount: 30, want: 0},
		{name: "zero", subtotal: 0, discount: 0, want: 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := LoyaltyPoints(models.NewMoneyFromInt(1).Decimal, models.NewMoneyFromInt(tc.subtotal).Decimal, models.NewMoneyFromInt(tc.discount).Decimal)
			if got != tc.want {
				t.Fatalf("LoyaltyPoints() = %d, want %d", got, tc.want)
			}
		})
	}
	if got := LoyaltyPoints(models.NewMoneyFromFloat(0.5).Decimal, models.NewMoneyFromFloat(99.99).Decimal, models.NewMoneyFromInt(0).Decimal); got != 49 {
		t.Fatalf("fractional points should floor, got %d", got)
	}
}

func TestUpdateOrderRejectsInvalidStatus(t *testing.T) {
	env := setupOrderServiceTest(t)
	product := seedTestProduct(t, env.db, "ring", 10, 5, nil)
	order, err := env.orders.CreateOrder(context.Background(), checkoutInput(nil, CreateOrderItem{ProductID: product.ID, Quantity: 1}))
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	if _, err := env.orders.UpdateOrder(context.Background(), order.ID, UpdateOrderInput{Status: strPtr("teleported")}); !errors.Is(err, ErrOrderStatusInvalid) {
		t.Fatalf("expected ErrOrderStatusInvalid, got %v", err)
	}
	if _, err := env.orders.UpdateOrder(context.Background(), 9999, UpdateOrderInput{Status: strPtr("shipped")}); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestUpdateOrderCancellationRestocksOnce(t *testing.T) {
	env := setupOrderServiceTest(t)
	ctx := context.Background()
	plain := seedTestProduct(t, env.db, "p1", 10, 10, nil)
	variantProduct := seedTestProduct(t, env.db, "p2", 20, 0, models.VariantList{
		{ID: "v1", AttributeName: "Color", AttributeValue: "Red", Price: models.NewMoneyFromInt(20), Stock: 5},
	})

	order, err := env.orders.CreateOrder(ctx, checkoutInput(nil,
		CreateOrderItem{ProductID: plain.ID, Quantity: 2},
		CreateOrderItem{ProductID: variantProduct.ID, Quantity: 1, Variant: &models.VariantRef{ID: "v1"}},
	))
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if got := reloadProduct(t, env.db, plain.ID).StockQuantity; got != 8 {
		t.Fatalf("stock after checkout = %d, want 8", got)
	}
	if got := reloadProduct(t, env.db, variantProduct.ID).Variants[0].Stock; got != 4 {
		t.Fatalf("variant stock after checkout = %d, want 4", got)
	}

	updated, err := env.orders.UpdateOrder(ctx, order.ID, UpdateOrderInput{Status: strPtr("cancelled")})
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if updated.Status != constants.OrderStatusCancelled || updated.CancelledAt == nil {
		t.Fatalf("unexpected cancelled order: %+v", updated)
	}
	if got := reloadProduct(t, env.db, plain.ID).StockQuantity; got != 10 {
		t.Fatalf("stock after cancel = %d, want 10", got)
	}
	if got := reloadProduct(t, env.db, variantProduct.ID).Variants[0].Stock; got != 5 {
		t.Fatalf("variant stock after cancel = %d, want 5", got)
	}
	if env.notifier.count(queue.NotificationCancelled) != 1 {
		t.Fatalf("expected one cancellation notification")
	}

	if _, err := env.orders.UpdateOrder(ctx, order.ID, UpdateOrderInput{Status: strPtr("cancelled")}); err != nil {
		t.Fatalf("repeat cancel failed: %v", err)
	}
	if got := reloadProduct(t, env.db, plain.ID).StockQuantity; got != 10 {
		t.Fatalf("repeat cancel must not restock again, stock = %d", got)
	}
	if env.notifier.count(queue.NotificationCancelled) != 1 {
		t.Fatalf("repeat cancel must not notify again")
	}
}

func TestUpdateOrderCompletionAwardsLoyaltyOnce(t *testing.T) {
	env := setupOrderServiceTest(t)
	ctx := context.Background()
	user := seedTestUser(t, env.db, "points@example.com")
	product := seedTestProduct(t, env.db, "vase", 50, 10, nil)
	seedTestCoupon(t, env.db, models.Coupon{Code: "SAVE10", Type: constants.CouponTypeFixed, Value: models.NewMoneyFromInt(10)})

	input := checkoutInput(&user.ID, CreateOrderItem{ProductID: product.ID, Quantity: 3})
	input.AppliedCoupon = &AppliedCouponInput{Code: "SAVE10"}
	order, err := env.orders.CreateOrder(ctx, input)
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	completed, err := env.orders.UpdateOrder(ctx, order.ID, UpdateOrderInput{Status: strPtr("completed")})
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if !completed.LoyaltyPointsAwarded || completed.LoyaltyPointsEarned != 140 || completed.CompletedAt == nil {
		t.Fatalf("unexpected completed order: awarded=%v earned=%d", completed.LoyaltyPointsAwarded, completed.LoyaltyPointsEarned)
	}

	for _, status := range []string{"shipped", "completed"} {
		if _, err := env.orders.UpdateOrder(ctx, order.ID, UpdateOrderInput{Status: strPtr(status)}); err != nil {
			t.Fatalf("transition to %s failed: %v", status, err)
		}
	}

	var stored models.User
	if err := env.db.First(&stored, user.ID).Error; err != nil {
		t.Fatalf("reload user failed: %v", err)
	}
	if stored.LoyaltyPoints != 140 {
		t.Fatalf("loyalty points = %d, want 140", stored.LoyaltyPoints)
	}
	if env.notifier.count(queue.NotificationCompleted) != 1 {
		t.Fatalf("expected exactly one completion notification, got %d", env.notifier.count(queue.NotificationCompleted))
	}
}

func TestUpdateOrderGuestCompletionSetsFlag(t *testing.T) {
	env := setupOrderServiceTest(t)
	product := seedTestProduct(t, env.db, "kite", 30, 10, nil)
	order, err := env.orders.CreateOrder(context.Background(), checkoutInput(nil, CreateOrderItem{ProductID: product.ID, Quantity: 1}))
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	completed, err := env.orders.UpdateOrder(context.Background(), order.ID, UpdateOrderInput{Status: strPtr("completed")})
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if !completed.LoyaltyPointsAwarded || completed.LoyaltyPointsEarned != 0 {
		t.Fatalf("guest completion should set flag with zero points: %+v", completed)
	}
}

func TestUpdateOrderSameStatusIsNoop(t *testing.T) {
	env := setupOrderServiceTest(t)
	product := seedTestProduct(t, env.db, "bell", 10, 10, nil)
	order, err := env.orders.CreateOrder(context.Background(), checkoutInput(nil, CreateOrderItem{ProductID: product.ID, Quantity: 1}))
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	before := len(env.notifier.calls)

	updated, err := env.orders.UpdateOrder(context.Background(), order.ID, UpdateOrderInput{Status: strPtr("PENDING")})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Status != constants.OrderStatusPending {
		t.Fatalf("status = %s, want pending", updated.Status)
	}
	if len(env.notifier.calls) != before {
		t.Fatalf("no-op update must not notify")
	}
	if got := reloadProduct(t, env.db, product.ID).StockQuantity; got != 9 {
		t.Fatalf("no-op update must not touch stock, got %d", got)
	}
}

func TestUpdateOrderTracking(t *testing.T) {
	env := setupOrderServiceTest(t)
	ctx := context.Background()
	product := seedTestProduct(t, env.db, "box", 10, 10, nil)
	order, err := env.orders.CreateOrder(ctx, checkoutInput(nil, CreateOrderItem{ProductID: product.ID, Quantity: 1}))
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	add := func(carrier, number string) *models.Order {
		t.Helper()
		updated, err := env.orders.UpdateOrder(ctx, order.ID, UpdateOrderInput{AddTracking: &TrackingInput{Carrier: carrier, Number: number}})
		if err != nil {
			t.Fatalf("add tracking failed: %v", err)
		}
		return updated
	}

	add("UPS", "1Z001")
	updated := add("DHL", "JD002")
	if len(updated.Tracking) != 2 || updated.TrackingNumber != "JD002" || updated.TrackingCarrier != "DHL" {
		t.Fatalf("unexpected tracking after add: %+v / %s %s", updated.Tracking, updated.TrackingCarrier, updated.TrackingNumber)
	}

	updated = add("DHL", "JD002")
	if len(updated.Tracking) != 2 {
		t.Fatalf("duplicate tracking must be ignored, got %d entries", len(updated.Tracking))
	}

	updated, err = env.orders.UpdateOrder(ctx, order.ID, UpdateOrderInput{DeleteTracking: &TrackingInput{Carrier: "DHL", Number: "JD002"}})
	if err != nil {
		t.Fatalf("delete tracking failed: %v", err)
	}
	if len(updated.Tracking) != 1 || updated.TrackingNumber != "1Z001" || updated.TrackingCarrier != "UPS" {
		t.Fatalf("mirror should fall back to remaining entry: %+v / %s %s", updated.Tracking, updated.TrackingCarrier, updated.TrackingNumber)
	}

	updated, err = env.orders.UpdateOrder(ctx, order.ID, UpdateOrderInput{DeleteTracking: &TrackingInput{Carrier: "UPS", Number: "1Z001"}})
	if err != nil {
		t.Fatalf("delete last tracking failed: %v", err)
	}
	if len(updated.Tracking) != 0 || updated.TrackingNumber != "" || updated.TrackingCarrier != "" {
		t.Fatalf("mirror should be cleared: %+v / %s %s", updated.Tracking, updated.TrackingCarrier, updated.TrackingNumber)
	}

	if _, err := env.orders.UpdateOrder(ctx, order.ID, UpdateOrderInput{AddTracking: &TrackingInput{Carrier: "UPS"}}); !errors.Is(err, ErrTrackingInvalid) {
		t.Fatalf("expected ErrTrackingInvalid, got %v", err)
	}

	updated, err = env.orders.UpdateOrder(ctx, order.ID, UpdateOrderInput{
		Status:          strPtr("shipped"),
		TrackingCarrier: strPtr("FedEx"),
		TrackingNumber:  strPtr("FX1"),
	})
	if err != nil {
		t.Fatalf("update with mirror fields failed: %v", err)
	}
	if updated.Status != constants.OrderStatusShipped || updated.TrackingNumber != "FX1" || updated.TrackingCarrier != "FedEx" {
		t.Fatalf("unexpected order: %s %s %s", updated.Status, updated.TrackingCarrier, updated.TrackingNumber)
	}
}
