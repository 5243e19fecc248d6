package service

import (
	"fmt"

	"github.com/storefront-next/internal/catalog"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/metrics"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"

	"gorm.io/gorm"
)

const (
	inventoryDirectionDecrement = "decrement"
	inventoryDirectionRestock   = "restock"
)

// InventoryService 商品库存读写（变体优先，平铺库存兜底）
type InventoryService struct {
	productRepo repository.ProductRepository
	metrics     *metrics.Metrics
}

// NewInventoryService 创建库存服务
func NewInventoryService(productRepo repository.ProductRepository, m *metrics.Metrics) *InventoryService {
	return &InventoryService{productRepo: productRepo, metrics: m}
}

// StockLine 一次库存调整的行
type StockLine struct {
	ProductID uint
	Variant   *models.VariantRef
	Quantity  int
}

// Decrement 扣减库存；商品不存在时记录日志并跳过
func (s *InventoryService) Decrement(line StockLine) (catalog.Adjustment, error) {
	return s.adjust(inventoryDirectionDecrement, line)
}

// Restock 回补库存，与扣减使用同一套变体匹配规则
func (s *InventoryService) Restock(line StockLine) (catalog.Adjustment, error) {
	return s.adjust(inventoryDirectionRestock, line)
}

// ApplyLines 逐行调整库存，单行失败不影响其余行，返回首个错误
func (s *InventoryService) ApplyLines(direction string, lines []StockLine) error {
	var firstErr error
	for _, line := range lines {
		if _, err := s.adjust(direction, line); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (s *InventoryService) adjust(direction string, line StockLine) (catalog.Adjustment, error) {
	result := catalog.Adjustment{Target: catalog.TargetNone, VariantIndex: -1}
	if line.ProductID == 0 || line.Quantity <= 0 {
		return result, nil
	}

	err := s.productRepo.Transaction(func(tx *gorm.DB) error {
		repo := s.productRepo.WithTx(tx)
		product, err := repo.GetByIDForUpdate(line.ProductID)
		if err != nil {
			return fmt.Errorf("lock product %d: %w", line.ProductID, err)
		}
		if product == nil {
			logger.Warnw("inventory_product_missing",
				"product_id", line.ProductID,
				"direction", direction,
				"quantity", line.Quantity,
			)
			s.metrics.InventoryAdjusted(direction, "missing")
			return nil
		}

		if direction == inventoryDirectionRestock {
			result = catalog.Restock(product, line.Variant, line.Quantity)
		} else {
			result = catalog.Decrement(product, line.Variant, line.Quantity)
		}
		if !result.Changed() {
			s.metrics.InventoryAdjusted(direction, "noop")
			return nil
		}
		if err := repo.SaveStock(product); err != nil {
			return fmt.Errorf("save product %d stock: %w", line.ProductID, err)
		}
		s.metrics.InventoryAdjusted(direction, result.Target)
		return nil
	})
	if err != nil {
		s.metrics.InventoryAdjusted(direction, "error")
		logger.Errorw("inventory_adjust_failed",
			"product_id", line.ProductID,
			"direction", direction,
			"quantity", line.Quantity,
			"error", err,
		)
		return result, err
	}
	return result, nil
}

func stockLinesFromItems(items []models.OrderItem) []StockLine {
	lines := make([]StockLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, StockLine{
			ProductID: item.ProductID,
			Variant:   item.Variant,
			Quantity:  item.Quantity,
		})
	}
	return lines
}
