package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/storefront-next/internal/cache"
	"github.com/storefront-next/internal/cart"
	"github.com/storefront-next/internal/catalog"
	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/metrics"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"
)

// CartView 购物车响应
type CartView struct {
	Items   []cart.LineItem `json:"items"`
	Totals  cart.Totals     `json:"totals"`
	Warning string          `json:"warning,omitempty"`
}

// CartItemInput 购物车行变更输入
type CartItemInput struct {
	ProductID uint
	Variant   *models.VariantRef
	Quantity  int
}

// CartService 服务端购物车（数据库快照 + Redis 缓存）
type CartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	pricing     cart.Pricing
	ttl         time.Duration
	metrics     *metrics.Metrics
}

// NewCartService 创建购物车服务
func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository, pricing cart.Pricing, ttl time.Duration, m *metrics.Metrics) *CartService {
	return &CartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		pricing:     pricing,
		ttl:         ttl,
		metrics:     m,
	}
}

// Get 读取用户购物车；快照损坏或版本过旧时返回空购物车
func (s *CartService) Get(ctx context.Context, userID uint) (*CartView, error) {
	c, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return viewOf(c, ""), nil
}

// AddItem 加入商品，超出库存时截断并返回 quantity_clamped 提示
func (s *CartService) AddItem(ctx context.Context, userID uint, input CartItemInput) (*CartView, error) {
	product, err := s.loadProduct(input.ProductID)
	if err != nil {
		return nil, err
	}
	if catalog.VariantUnresolved(product, input.Variant) {
		return nil, ErrCartItemInvalid
	}
	c, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	result := c.AddItem(cart.SnapshotOf(product), input.Quantity, input.Variant)
	if err := s.save(ctx, userID, c); err != nil {
		return nil, err
	}
	return viewOf(c, s.warningFor(result)), nil
}

// UpdateItem 修改数量；数量不大于 0 时移除该行
func (s *CartService) UpdateItem(ctx context.Context, userID uint, input CartItemInput) (*CartView, error) {
	if input.ProductID == 0 {
		return nil, ErrCartItemInvalid
	}
	c, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if input.Quantity > 0 {
		product, err := s.loadProduct(input.ProductID)
		if err != nil {
			return nil, err
		}
		if catalog.VariantUnresolved(product, input.Variant) {
			return nil, ErrCartItemInvalid
		}
		c.RefreshProduct(cart.SnapshotOf(product))
	}
	result, found := c.UpdateQuantity(input.ProductID, input.Quantity, input.Variant)
	if !found {
		return nil, ErrCartItemInvalid
	}
	if err := s.save(ctx, userID, c); err != nil {
		return nil, err
	}
	return viewOf(c, s.warningFor(result)), nil
}

// RemoveItem 移除购物车行
func (s *CartService) RemoveItem(ctx context.Context, userID uint, productID uint, variant *models.VariantRef) (*CartView, error) {
	c, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if c.RemoveItem(productID, variant) {
		if err := s.save(ctx, userID, c); err != nil {
			return nil, err
		}
	}
	return viewOf(c, ""), nil
}

// Clear 清空购物车
func (s *CartService) Clear(ctx context.Context, userID uint) error {
	if userID == 0 {
		return nil
	}
	if err := s.cartRepo.DeleteByUserID(userID); err != nil {
		return fmt.Errorf("delete cart snapshot: %w", err)
	}
	if err := cache.DelCart(ctx, userID); err != nil {
		logger.Ctx(ctx).Warnw("cart_cache_delete_failed", "user_id", userID, "error", err)
	}
	return nil
}

func (s *CartService) warningFor(result cart.Result) string {
	if !result.Clamped {
		return ""
	}
	s.metrics.CartClamped()
	return constants.CartWarningQuantityClamp
}

func (s *CartService) loadProduct(productID uint) (*models.Product, error) {
	if productID == 0 {
		return nil, ErrCartItemInvalid
	}
	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil || !product.IsActive {
		return nil, ErrProductNotFound
	}
	return product, nil
}

func (s *CartService) load(ctx context.Context, userID uint) (*cart.Cart, error) {
	if userID == 0 {
		return nil, ErrUnauthorized
	}

	payload, hit, err := cache.GetCartPayload(ctx, userID)
	if err != nil {
		logger.Ctx(ctx).Warnw("cart_cache_read_failed", "user_id", userID, "error", err)
		hit = false
	}
	if !hit {
		snapshot, err := s.cartRepo.GetByUserID(userID)
		if err != nil {
			return nil, fmt.Errorf("load cart snapshot: %w", err)
		}
		if snapshot == nil {
			return cart.New(s.pricing), nil
		}
		payload = snapshot.Payload
	}

	c, err := cart.Decode([]byte(payload), s.pricing)
	if err != nil {
		if errors.Is(err, cart.ErrSnapshotRejected) {
			logger.Ctx(ctx).Warnw("cart_snapshot_rejected", "user_id", userID, "error", err)
			return c, nil
		}
		return nil, err
	}
	if !hit {
		s.cachePayload(ctx, userID, payload)
	}
	return c, nil
}

func (s *CartService) save(ctx context.Context, userID uint, c *cart.Cart) error {
	data, err := cart.Encode(c)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	payload := string(data)
	if err := s.cartRepo.Upsert(userID, constants.CartSchemaVersion, payload); err != nil {
		return fmt.Errorf("save cart snapshot: %w", err)
	}
	s.cachePayload(ctx, userID, payload)
	return nil
}

func (s *CartService) cachePayload(ctx context.Context, userID uint, payload string) {
	if err := cache.SetCartPayload(ctx, userID, payload, s.ttl); err != nil {
		logger.Ctx(ctx).Warnw("cart_cache_write_failed", "user_id", userID, "error", err)
	}
}

func viewOf(c *cart.Cart, warning string) *CartView {
	items := c.Items
	if items == nil {
		items = []cart.LineItem{}
	}
	return &CartView{Items: items, Totals: c.Totals, Warning: warning}
}
