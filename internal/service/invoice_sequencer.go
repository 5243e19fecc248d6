package service

import (
	"fmt"

	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/repository"

	"gorm.io/gorm"
)

// InvoiceSequencer 发票号分配器
type InvoiceSequencer struct {
	counterRepo repository.CounterRepository
	orderRepo   repository.OrderRepository
	floor       int64
}

// NewInvoiceSequencer 创建发票号分配器，floor 非正时使用默认下限
func NewInvoiceSequencer(counterRepo repository.CounterRepository, orderRepo repository.OrderRepository, floor int64) *InvoiceSequencer {
	if floor <= 0 {
		floor = constants.DefaultInvoiceFloor
	}
	return &InvoiceSequencer{counterRepo: counterRepo, orderRepo: orderRepo, floor: floor}
}

// Next 在订单事务内取下一个发票号：max(floor, 已分配最大值+1)
func (s *InvoiceSequencer) Next(tx *gorm.DB) (int64, error) {
	orderRepo := s.orderRepo.WithTx(tx)
	value, err := s.counterRepo.WithTx(tx).Next(constants.CounterInvoice, s.floor, orderRepo.MaxInvoiceNumber)
	if err != nil {
		return 0, fmt.Errorf("next invoice number: %w", err)
	}
	return value, nil
}
