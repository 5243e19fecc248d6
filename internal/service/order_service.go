package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/storefront-next/internal/cart"
	"github.com/storefront-next/internal/catalog"
	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/metrics"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/queue"
	"github.com/storefront-next/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CartClearer 下单成功后清空购物车
type CartClearer interface {
	Clear(ctx context.Context, userID uint) error
}

// OrderOptions 订单计价与副作用参数
type OrderOptions struct {
	Currency          string
	Pricing           cart.Pricing
	LoyaltyRate       decimal.Decimal // 每 1 元积分数
	SideEffectTimeout time.Duration
}

// OrderServiceDeps 订单服务依赖
type OrderServiceDeps struct {
	OrderRepo   repository.OrderRepository
	ProductRepo repository.ProductRepository
	UserRepo    repository.UserRepository
	Coupons     *CouponService
	StoreCredit *StoreCreditService
	Invoices    *InvoiceSequencer
	Inventory   *InventoryService
	Notifier    OrderNotifier
	Carts       CartClearer
	Metrics     *metrics.Metrics
	Options     OrderOptions
}

// OrderService 订单服务
type OrderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	userRepo    repository.UserRepository
	coupons     *CouponService
	storeCredit *StoreCreditService
	invoices    *InvoiceSequencer
	inventory   *InventoryService
	notifier    OrderNotifier
	carts       CartClearer
	metrics     *metrics.Metrics
	postCommit  *postCommitRunner
	validate    *validator.Validate
	options     OrderOptions
}

// NewOrderService 创建订单服务
func NewOrderService(deps OrderServiceDeps) *OrderService {
	options := deps.Options
	options.Currency = strings.ToUpper(strings.TrimSpace(options.Currency))
	if options.Currency == "" {
		options.Currency = "USD"
	}
	return &OrderService{
		orderRepo:   deps.OrderRepo,
		productRepo: deps.ProductRepo,
		userRepo:    deps.UserRepo,
		coupons:     deps.Coupons,
		storeCredit: deps.StoreCredit,
		invoices:    deps.Invoices,
		inventory:   deps.Inventory,
		notifier:    deps.Notifier,
		carts:       deps.Carts,
		metrics:     deps.Metrics,
		postCommit:  newPostCommitRunner(deps.Metrics, options.SideEffectTimeout),
		validate:    validator.New(),
		options:     options,
	}
}

// CreateOrderInput 下单输入；小计、运费、总额必须存在，但以服务端计算为准
type CreateOrderInput struct {
	UserID          *uint
	CustomerEmail   string            `validate:"omitempty,email,max=255"`
	Items           []CreateOrderItem `validate:"required,min=1,max=100,dive"`
	Subtotal        *models.Money     `validate:"required"`
	Shipping        *models.Money     `validate:"required"`
	Total           *models.Money     `validate:"required"`
	ShippingAddress ShippingAddressInput
	AppliedCoupon   *AppliedCouponInput `validate:"omitempty"`
	StoreCreditUsed *models.Money
}

// CreateOrderItem 下单商品行
type CreateOrderItem struct {
	ProductID uint               `validate:"required"`
	Variant   *models.VariantRef `validate:"-"`
	Quantity  int                `validate:"min=1,max=10000"`
}

// ShippingAddressInput 收货地址
type ShippingAddressInput struct {
	Name       string `validate:"required,max=128"`
	Line1      string `validate:"required,max=255"`
	Line2      string `validate:"max=255"`
	City       string `validate:"required,max=128"`
	Region     string `validate:"max=128"`
	PostalCode string `validate:"required,max=32"`
	Country    string `validate:"required,max=64"`
	Phone      string `validate:"max=32"`
}

// AppliedCouponInput 下单使用的优惠券
type AppliedCouponInput struct {
	Code         string `validate:"max=64"`
	UserCouponID *uint
}

type pricedOrder struct {
	items    []models.OrderItem
	subtotal decimal.Decimal
}

// orderRejections 下单前的业务拒绝，原样返回给调用方
var orderRejections = []error{
	ErrInvalidPayload,
	ErrInvalidOrderItem,
	ErrProductNotFound,
	ErrCouponNotFound,
	ErrCouponInactive,
	ErrCouponNotStarted,
	ErrCouponExpired,
	ErrCouponMinAmount,
	ErrCouponPerUserLimit,
	ErrCouponUsageLimit,
	ErrUserCouponUnavailable,
	ErrStoreCreditInsufficient,
	ErrStoreCreditGuest,
}

func isOrderRejection(err error) bool {
	for _, target := range orderRejections {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// CreateOrder 创建订单：事务内分配发票号、占用优惠券、扣减余额；提交后扣库存、发确认邮件、清空购物车
func (s *OrderService) CreateOrder(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPayload, describeValidationError(err))
	}
	requestedCredit := decimal.Zero
	if input.StoreCreditUsed != nil {
		requestedCredit = input.StoreCreditUsed.Decimal.Round(2)
		if requestedCredit.IsNegative() {
			return nil, fmt.Errorf("%w: storeCreditUsed must not be negative", ErrInvalidPayload)
		}
	}
	userID := normalizeUserID(input.UserID)

	priced, err := s.priceItems(input.Items)
	if err != nil {
		return nil, err
	}
	shipping := cart.ShippingFor(priced.subtotal, len(priced.items) > 0, s.options.Pricing).Round(2)

	var order *models.Order
	err = models.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoiceNumber, err := s.invoices.Next(tx)
		if err != nil {
			return err
		}

		var quote *CouponQuote
		discount := decimal.Zero
		if req, ok := couponRequestFrom(input.AppliedCoupon, userID); ok {
			quote, err = s.coupons.Validate(tx, req, priced.subtotal)
			if err != nil {
				return err
			}
			discount = quote.Discount.Decimal
		}

		due := clampZero(priced.subtotal.Add(shipping).Sub(discount))
		credit := requestedCredit
		if credit.GreaterThan(due) {
			credit = due
		}
		if credit.IsPositive() && userID == nil {
			return ErrStoreCreditGuest
		}
		total := clampZero(due.Sub(credit))

		now := time.Now()
		order = &models.Order{
			OrderNo:         generateOrderNo(now),
			InvoiceNumber:   invoiceNumber,
			UserID:          userID,
			CustomerEmail:   strings.ToLower(strings.TrimSpace(input.CustomerEmail)),
			Status:          constants.OrderStatusPending,
			Currency:        s.options.Currency,
			Subtotal:        models.NewMoneyFromDecimal(priced.subtotal),
			Shipping:        models.NewMoneyFromDecimal(shipping),
			Tax:             models.NewMoneyFromInt(0),
			DiscountAmount:  models.NewMoneyFromDecimal(discount),
			StoreCreditUsed: models.NewMoneyFromDecimal(credit),
			Total:           models.NewMoneyFromDecimal(total),
			ShippingAddress: input.ShippingAddress.toModel(),
			Tracking:        models.TrackingList{},
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if quote != nil {
			order.Coupon = quote.Snapshot()
			order.CouponCode = strings.ToUpper(quote.Coupon.Code)
			if quote.UserCoupon != nil {
				id := quote.UserCoupon.ID
				order.UserCouponID = &id
			}
		}

		if err := s.orderRepo.WithTx(tx).Create(order, priced.items); err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		if err := s.coupons.Reserve(tx, quote, order); err != nil {
			return err
		}
		if credit.IsPositive() {
			if _, err := s.storeCredit.ApplyOrderCredit(tx, order, credit); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if isOrderRejection(err) {
			return nil, err
		}
		logger.Ctx(ctx).Errorw("order_create_failed", "user_id", userID, "error", err)
		return nil, ErrOrderCreateFailed
	}

	s.metrics.OrderCreated(order.Currency, userID == nil, order.Total.InexactFloat64())
	logger.Ctx(ctx).Infow("order_created",
		"order_id", order.ID,
		"order_no", order.OrderNo,
		"invoice_number", order.InvoiceNumber,
		"total", order.Total.String(),
	)

	s.postCommit.Run(ctx, order.ID, s.createSideEffects(order)...)
	return order, nil
}

func (s *OrderService) createSideEffects(order *models.Order) []postCommitTask {
	items := append([]models.OrderItem(nil), order.Items...)
	orderID := order.ID
	tasks := []postCommitTask{
		{name: "inventory_decrement", run: func(ctx context.Context) error {
			return s.inventory.ApplyLines(inventoryDirectionDecrement, stockLinesFromItems(items))
		}},
		{name: "confirmation_notify", run: func(ctx context.Context) error {
			return s.notify(ctx, queue.NotificationConfirmation, orderID)
		}},
	}
	if order.UserID != nil && s.carts != nil {
		userID := *order.UserID
		tasks = append(tasks, postCommitTask{name: "cart_clear", run: func(ctx context.Context) error {
			return s.carts.Clear(ctx, userID)
		}})
	}
	return tasks
}

func (s *OrderService) notify(ctx context.Context, kind queue.NotificationKind, orderID uint) error {
	if s.notifier == nil {
		return nil
	}
	return s.notifier.Notify(ctx, kind, orderID)
}

// priceItems 以商品目录价格重新计价
func (s *OrderService) priceItems(inputs []CreateOrderItem) (*pricedOrder, error) {
	ids := make([]uint, 0, len(inputs))
	seen := make(map[uint]struct{}, len(inputs))
	for _, item := range inputs {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}
	products, err := s.productRepo.ListByIDs(ids)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	byID := make(map[uint]*models.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	priced := &pricedOrder{items: make([]models.OrderItem, 0, len(inputs)), subtotal: decimal.Zero}
	for _, input := range inputs {
		product, ok := byID[input.ProductID]
		if !ok || !product.IsActive {
			return nil, fmt.Errorf("%w: product %d", ErrProductNotFound, input.ProductID)
		}

		unitPrice := product.Price.Decimal
		var variant *models.VariantRef
		if !catalog.IsEmptyRef(input.Variant) {
			if len(product.Variants) > 0 {
				resolved := catalog.ResolveProductVariant(product, input.Variant)
				if resolved == nil {
					return nil, fmt.Errorf("%w: unknown variant for product %d", ErrInvalidOrderItem, product.ID)
				}
				snapshot := *resolved
				variant = &snapshot
				unitPrice = resolved.Price.Decimal
			} else {
				variant = identityOnly(input.Variant)
			}
		} else if len(product.Variants) > 0 {
			return nil, fmt.Errorf("%w: variant required for product %d", ErrInvalidOrderItem, product.ID)
		}
		if unitPrice.IsNegative() {
			return nil, fmt.Errorf("%w: invalid price for product %d", ErrInvalidOrderItem, product.ID)
		}

		lineTotal := unitPrice.Mul(decimal.NewFromInt(int64(input.Quantity))).Round(2)
		priced.subtotal = priced.subtotal.Add(lineTotal)
		priced.items = append(priced.items, models.OrderItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			Variant:     variant,
			Quantity:    input.Quantity,
			UnitPrice:   models.NewMoneyFromDecimal(unitPrice),
			LineTotal:   models.NewMoneyFromDecimal(lineTotal),
		})
	}
	priced.subtotal = priced.subtotal.Round(2)
	return priced, nil
}

func identityOnly(ref *models.VariantRef) *models.VariantRef {
	return &models.VariantRef{
		ID:             strings.TrimSpace(ref.ID),
		SKU:            strings.TrimSpace(ref.SKU),
		AttributeName:  strings.TrimSpace(ref.AttributeName),
		AttributeValue: strings.TrimSpace(ref.AttributeValue),
	}
}

func couponRequestFrom(input *AppliedCouponInput, userID *uint) (CouponRequest, bool) {
	if input == nil {
		return CouponRequest{}, false
	}
	code := strings.TrimSpace(input.Code)
	hasUserCoupon := input.UserCouponID != nil && *input.UserCouponID != 0
	if code == "" && !hasUserCoupon {
		return CouponRequest{}, false
	}
	req := CouponRequest{Code: code, UserID: userID}
	if hasUserCoupon {
		req.UserCouponID = input.UserCouponID
	}
	return req, true
}

func (a ShippingAddressInput) toModel() models.ShippingAddress {
	return models.ShippingAddress{
		Name:       strings.TrimSpace(a.Name),
		Line1:      strings.TrimSpace(a.Line1),
		Line2:      strings.TrimSpace(a.Line2),
		City:       strings.TrimSpace(a.City),
		Region:     strings.TrimSpace(a.Region),
		PostalCode: strings.TrimSpace(a.PostalCode),
		Country:    strings.ToUpper(strings.TrimSpace(a.Country)),
		Phone:      strings.TrimSpace(a.Phone),
	}
}

func describeValidationError(err error) string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return err.Error()
	}
	fields := make([]string, 0, len(validationErrs))
	for _, fieldErr := range validationErrs {
		fields = append(fields, fmt.Sprintf("%s(%s)", fieldErr.Namespace(), fieldErr.Tag()))
	}
	return strings.Join(fields, ", ")
}

func normalizeUserID(userID *uint) *uint {
	if userID == nil || *userID == 0 {
		return nil
	}
	id := *userID
	return &id
}

func clampZero(amount decimal.Decimal) decimal.Decimal {
	if amount.IsNegative() {
		return decimal.Zero
	}
	return amount.Round(2)
}

func generateOrderNo(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:10]
	return "SF" + now.Format("060102") + suffix
}
