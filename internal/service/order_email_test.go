package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/storefront-next/internal/metrics"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/queue"
	"github.com/storefront-next/internal/repository"
)

type sentEmail struct {
	to      string
	subject string
	body    string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentEmail
	err  error
}

func (m *fakeMailer) SendHTML(_ context.Context, to, subject, htmlBody string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentEmail{to: to, subject: subject, body: htmlBody})
	return m.err
}

func TestRenderOrderEmailEscapesContent(t *testing.T) {
	order := &models.Order{
		OrderNo:        "SF2601010000000001",
		InvoiceNumber:  12000,
		Currency:       "USD",
		Subtotal:       models.NewMoneyFromInt(150),
		Total:          models.NewMoneyFromInt(140),
		DiscountAmount: models.NewMoneyFromInt(10),
		ShippingAddress: models.ShippingAddress{
			Name:    "<script>alert(1)</script>",
			Line1:   "1 Main St",
			City:    "Springfield",
			Country: "US",
		},
		Items: []models.OrderItem{
			{ProductName: "Mug & Spoon", Quantity: 3, LineTotal: models.NewMoneyFromInt(150),
				Variant: &models.VariantRef{AttributeName: "Color", AttributeValue: "Blue"}},
		},
	}

	subject, body, err := renderOrderEmail(queue.NotificationConfirmation, order)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if subject != "Order #12000 confirmed" {
		t.Fatalf("subject = %q", subject)
	}
	if strings.Contains(body, "<script>") {
		t.Fatalf("address must be escaped: %s", body)
	}
	for _, want := range []string{"Mug &amp; Spoon", "Color: Blue", "Discount: -10.00", "Total: 140.00 USD"} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in body: %s", want, body)
		}
	}

	if _, _, err := renderOrderEmail(queue.NotificationKind("refund"), order); err == nil {
		t.Fatalf("unknown kind should fail")
	}
}

func TestRenderCompletedEmailListsTracking(t *testing.T) {
	order := &models.Order{
		InvoiceNumber:       12001,
		LoyaltyPointsEarned: 140,
		Tracking: models.TrackingList{
			{Carrier: "UPS", Number: "1Z001"},
			{Carrier: "DHL", Number: "JD002"},
		},
	}
	subject, body, err := renderOrderEmail(queue.NotificationCompleted, order)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if subject != "Order #12001 completed" {
		t.Fatalf("subject = %q", subject)
	}
	for _, want := range []string{"UPS: 1Z001", "DHL: JD002", "You earned 140 loyalty points."} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in body", want)
		}
	}
}

func TestOrderMailerSendsOperatorCopyOnlyForConfirmation(t *testing.T) {
	env := setupOrderServiceTest(t)
	product := seedTestProduct(t, env.db, "globe", 10, 10, nil)
	order, err := env.orders.CreateOrder(context.Background(), checkoutInput(nil, CreateOrderItem{ProductID: product.ID, Quantity: 1}))
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	mailer := &fakeMailer{}
	orderMailer := NewOrderMailer(repository.NewOrderRepository(env.db), mailer, "ops@example.com", metrics.New("test"))

	if err := orderMailer.Send(context.Background(), queue.NotificationConfirmation, order.ID); err != nil {
		t.Fatalf("send confirmation failed: %v", err)
	}
	if len(mailer.sent) != 2 {
		t.Fatalf("expected customer and operator emails, got %d", len(mailer.sent))
	}
	if mailer.sent[0].to != "buyer@example.com" || mailer.sent[1].to != "ops@example.com" {
		t.Fatalf("unexpected recipients: %+v", mailer.sent)
	}
	if !strings.HasPrefix(mailer.sent[1].subject, "[Operator] ") {
		t.Fatalf("operator subject = %q", mailer.sent[1].subject)
	}

	if err := orderMailer.Send(context.Background(), queue.NotificationCancelled, order.ID); err != nil {
		t.Fatalf("send cancellation failed: %v", err)
	}
	if len(mailer.sent) != 3 || mailer.sent[2].to != "buyer@example.com" {
		t.Fatalf("cancellation should go to the customer only: %+v", mailer.sent)
	}

	if err := orderMailer.Send(context.Background(), queue.NotificationConfirmation, 9999); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestOrderMailerPrefersAccountEmail(t *testing.T) {
	env := setupOrderServiceTest(t)
	user := seedTestUser(t, env.db, "account@example.com")
	product := seedTestProduct(t, env.db, "atlas", 10, 10, nil)
	order, err := env.orders.CreateOrder(context.Background(), checkoutInput(&user.ID, CreateOrderItem{ProductID: product.ID, Quantity: 1}))
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	mailer := &fakeMailer{err: errors.New("smtp down")}
	orderMailer := NewOrderMailer(repository.NewOrderRepository(env.db), mailer, "", nil)
	if err := orderMailer.Send(context.Background(), queue.NotificationCompleted, order.ID); err == nil {
		t.Fatalf("mailer error should be returned")
	}
	if len(mailer.sent) != 1 || mailer.sent[0].to != "account@example.com" {
		t.Fatalf("unexpected recipients: %+v", mailer.sent)
	}
}
