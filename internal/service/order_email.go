package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/metrics"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/queue"
	"github.com/storefront-next/internal/repository"
)

const orderEmailTemplates = `
{{define "header"}}<div style="font-family:Arial,sans-serif;max-width:600px;margin:0 auto">
<h2>{{.Heading}}</h2>
<p>Order <strong>{{.OrderNo}}</strong> &middot; Invoice #{{.InvoiceNumber}}</p>{{end}}

{{define "items"}}<table style="width:100%;border-collapse:collapse">
<tr><th align="left">Item</th><th align="right">Qty</th><th align="right">Amount</th></tr>
{{range .Items}}<tr><td>{{.Name}}{{if .Variant}} ({{.Variant}}){{end}}</td><td align="right">{{.Quantity}}</td><td align="right">{{.LineTotal}}</td></tr>
{{end}}</table>
<p>Subtotal: {{.Subtotal}}<br>Shipping: {{.Shipping}}{{if .HasDiscount}}<br>Discount: -{{.Discount}}{{end}}{{if .HasCredit}}<br>Store credit: -{{.StoreCredit}}{{end}}<br><strong>Total: {{.Total}} {{.Currency}}</strong></p>{{end}}

{{define "footer"}}<p style="color:#888">Thank you for shopping with us.</p></div>{{end}}

{{define "confirmation"}}{{template "header" .}}
<p>We received your order and will let you know when it ships.</p>
{{template "items" .}}
<p>Shipping to:<br>{{.Address.Name}}<br>{{.Address.Line1}}{{if .Address.Line2}}<br>{{.Address.Line2}}{{end}}<br>{{.Address.City}} {{.Address.Region}} {{.Address.PostalCode}}<br>{{.Address.Country}}</p>
{{template "footer" .}}{{end}}

{{define "completed"}}{{template "header" .}}
<p>Your order is complete.</p>
{{if .Tracking}}<p>Tracking:</p><ul>{{range .Tracking}}<li>{{.Carrier}}: {{.Number}}</li>{{end}}</ul>{{end}}
{{if .LoyaltyPoints}}<p>You earned {{.LoyaltyPoints}} loyalty points.</p>{{end}}
{{template "items" .}}
{{template "footer" .}}{{end}}

{{define "cancelled"}}{{template "header" .}}
<p>Your order has been cancelled.</p>
{{template "items" .}}
{{template "footer" .}}{{end}}
`

var orderEmailTmpl = template.Must(template.New("order_email").Parse(orderEmailTemplates))

type orderEmailItem struct {
	Name      string
	Variant   string
	Quantity  int
	LineTotal string
}

type orderEmailView struct {
	Heading       string
	OrderNo       string
	InvoiceNumber int64
	Items         []orderEmailItem
	Subtotal      string
	Shipping      string
	Discount      string
	HasDiscount   bool
	StoreCredit   string
	HasCredit     bool
	Total         string
	Currency      string
	Address       models.ShippingAddress
	Tracking      models.TrackingList
	LoyaltyPoints int64
}

// renderOrderEmail 渲染订单通知邮件标题与 HTML 正文
func renderOrderEmail(kind queue.NotificationKind, order *models.Order) (string, string, error) {
	if order == nil {
		return "", "", ErrOrderNotFound
	}
	var subject, heading string
	switch kind {
	case queue.NotificationConfirmation:
		subject = fmt.Sprintf("Order #%d confirmed", order.InvoiceNumber)
		heading = "Thanks for your order"
	case queue.NotificationCompleted:
		subject = fmt.Sprintf("Order #%d completed", order.InvoiceNumber)
		heading = "Your order is complete"
	case queue.NotificationCancelled:
		subject = fmt.Sprintf("Order #%d cancelled", order.InvoiceNumber)
		heading = "Your order was cancelled"
	default:
		return "", "", fmt.Errorf("unknown notification kind: %s", kind)
	}

	view := orderEmailView{
		Heading:       heading,
		OrderNo:       order.OrderNo,
		InvoiceNumber: order.InvoiceNumber,
		Subtotal:      order.Subtotal.String(),
		Shipping:      order.Shipping.String(),
		Discount:      order.DiscountAmount.String(),
		HasDiscount:   order.DiscountAmount.IsPositive(),
		StoreCredit:   order.StoreCreditUsed.String(),
		HasCredit:     order.StoreCreditUsed.IsPositive(),
		Total:         order.Total.String(),
		Currency:      order.Currency,
		Address:       order.ShippingAddress,
		Tracking:      order.Tracking,
		LoyaltyPoints: order.LoyaltyPointsEarned,
	}
	for _, item := range order.Items {
		view.Items = append(view.Items, orderEmailItem{
			Name:      item.ProductName,
			Variant:   describeVariant(item.Variant),
			Quantity:  item.Quantity,
			LineTotal: item.LineTotal.String(),
		})
	}

	var buf bytes.Buffer
	if err := orderEmailTmpl.ExecuteTemplate(&buf, string(kind), view); err != nil {
		return "", "", err
	}
	return subject, buf.String(), nil
}

func describeVariant(ref *models.VariantRef) string {
	if ref == nil {
		return ""
	}
	if ref.AttributeName != "" && ref.AttributeValue != "" {
		return ref.AttributeName + ": " + ref.AttributeValue
	}
	if ref.AttributeValue != "" {
		return ref.AttributeValue
	}
	return ref.SKU
}

// OrderMailer 读取订单并发送通知邮件
type OrderMailer struct {
	orderRepo     repository.OrderRepository
	mailer        Mailer
	operatorEmail string
	metrics       *metrics.Metrics
}

// NewOrderMailer 创建订单邮件发送器
func NewOrderMailer(orderRepo repository.OrderRepository, mailer Mailer, operatorEmail string, m *metrics.Metrics) *OrderMailer {
	return &OrderMailer{
		orderRepo:     orderRepo,
		mailer:        mailer,
		operatorEmail: strings.TrimSpace(operatorEmail),
		metrics:       m,
	}
}

// Send 发送订单通知；下单确认同时抄送运营邮箱
func (m *OrderMailer) Send(ctx context.Context, kind queue.NotificationKind, orderID uint) error {
	if m == nil || m.mailer == nil {
		return nil
	}
	order, err := m.orderRepo.GetByID(orderID)
	if err != nil {
		return err
	}
	if order == nil {
		return ErrOrderNotFound
	}

	subject, body, err := renderOrderEmail(kind, order)
	if err != nil {
		return err
	}

	receiver, err := m.orderRepo.ResolveReceiverEmail(order)
	if err != nil {
		return err
	}
	receiver = strings.TrimSpace(receiver)

	var errs []error
	if receiver == "" {
		logger.Ctx(ctx).Warnw("order_email_receiver_missing", "order_id", orderID, "kind", string(kind))
	} else {
		err := m.mailer.SendHTML(ctx, receiver, subject, body)
		m.metrics.EmailSent(string(kind), err)
		if err != nil {
			errs = append(errs, err)
		}
	}

	if kind == queue.NotificationConfirmation && m.operatorEmail != "" && !strings.EqualFold(m.operatorEmail, receiver) {
		err := m.mailer.SendHTML(ctx, m.operatorEmail, "[Operator] "+subject, body)
		m.metrics.EmailSent("operator_"+string(kind), err)
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
