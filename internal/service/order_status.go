package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/queue"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// UpdateOrderInput 管理员更新订单输入
type UpdateOrderInput struct {
	Status          *string
	TrackingNumber  *string
	TrackingCarrier *string
	AddTracking     *TrackingInput
	DeleteTracking  *TrackingInput
}

// TrackingInput 物流单号
type TrackingInput struct {
	Carrier string
	Number  string
}

// orderTransition 状态变更在事务内产生的副作用标记
type orderTransition struct {
	from          string
	to            string
	restock       bool
	completed     bool
	pointsAwarded int64
}

// NormalizeOrderStatus 规范化订单状态，非法状态返回 false
func NormalizeOrderStatus(raw string) (string, bool) {
	status := strings.ToLower(strings.TrimSpace(raw))
	for _, allowed := range constants.OrderStatuses {
		if status == allowed {
			return status, true
		}
	}
	return "", false
}

// UpdateOrder 更新订单状态与物流信息。
// 进入 cancelled 时回补库存并发送取消邮件；首次进入 completed 时在同一事务内发放积分并发送完成邮件。
func (s *OrderService) UpdateOrder(ctx context.Context, orderID uint, input UpdateOrderInput) (*models.Order, error) {
	target := ""
	if input.Status != nil {
		status, ok := NormalizeOrderStatus(*input.Status)
		if !ok {
			return nil, ErrOrderStatusInvalid
		}
		target = status
	}
	if err := validateTrackingInput(input.AddTracking); err != nil {
		return nil, err
	}
	if err := validateTrackingInput(input.DeleteTracking); err != nil {
		return nil, err
	}

	var transition orderTransition
	err := models.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.orderRepo.WithTx(tx)
		order, err := repo.GetByIDForUpdate(orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return ErrOrderNotFound
		}

		now := time.Now()
		updates := map[string]interface{}{}
		if applyTrackingChanges(order, input, now) {
			updates["tracking"] = order.Tracking
			updates["tracking_carrier"] = order.TrackingCarrier
			updates["tracking_number"] = order.TrackingNumber
		}

		transition.from = order.Status
		transition.to = order.Status
		if target != "" && target != order.Status {
			transition.to = target
			updates["status"] = target
			switch target {
			case constants.OrderStatusCancelled:
				updates["cancelled_at"] = now
				transition.restock = true
			case constants.OrderStatusCompleted:
				updates["completed_at"] = now
				if !order.LoyaltyPointsAwarded {
					points := s.loyaltyPointsFor(order)
					awarded, err := repo.MarkLoyaltyAwarded(order.ID, points)
					if err != nil {
						return fmt.Errorf("mark loyalty awarded: %w", err)
					}
					if awarded {
						if points > 0 && order.UserID != nil {
							if err := s.userRepo.WithTx(tx).AddLoyaltyPoints(*order.UserID, points); err != nil {
								return fmt.Errorf("add loyalty points: %w", err)
							}
						}
						transition.completed = true
						transition.pointsAwarded = points
					}
				}
			}
		}

		if len(updates) == 0 {
			return nil
		}
		updates["updated_at"] = now
		return repo.UpdateFields(order.ID, updates)
	})
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return nil, err
		}
		logger.Ctx(ctx).Errorw("order_update_failed", "order_id", orderID, "error", err)
		return nil, ErrOrderUpdateFailed
	}

	order, err := s.orderRepo.GetByID(orderID)
	if err != nil || order == nil {
		logger.Ctx(ctx).Errorw("order_reload_failed", "order_id", orderID, "error", err)
		return nil, ErrOrderFetchFailed
	}

	if transition.from != transition.to {
		s.metrics.StatusTransition(transition.from, transition.to)
		logger.Ctx(ctx).Infow("order_status_changed",
			"order_id", orderID,
			"from", transition.from,
			"to", transition.to,
		)
	}
	if transition.pointsAwarded > 0 {
		s.metrics.LoyaltyAwarded(transition.pointsAwarded)
	}

	s.postCommit.Run(ctx, orderID, s.transitionSideEffects(order, transition)...)
	return order, nil
}

func (s *OrderService) transitionSideEffects(order *models.Order, transition orderTransition) []postCommitTask {
	orderID := order.ID
	var tasks []postCommitTask
	if transition.restock {
		items := append([]models.OrderItem(nil), order.Items...)
		tasks = append(tasks,
			postCommitTask{name: "inventory_restock", run: func(ctx context.Context) error {
				return s.inventory.ApplyLines(inventoryDirectionRestock, stockLinesFromItems(items))
			}},
			postCommitTask{name: "cancellation_notify", run: func(ctx context.Context) error {
				return s.notify(ctx, queue.NotificationCancelled, orderID)
			}},
		)
	}
	if transition.completed {
		tasks = append(tasks, postCommitTask{name: "completion_notify", run: func(ctx context.Context) error {
			return s.notify(ctx, queue.NotificationCompleted, orderID)
		}})
	}
	return tasks
}

// loyaltyPointsFor 积分 = floor(比例 × max(0, 小计 − 优惠))；游客为 0
func (s *OrderService) loyaltyPointsFor(order *models.Order) int64 {
	if order == nil || order.UserID == nil {
		return 0
	}
	return LoyaltyPoints(s.options.LoyaltyRate, order.Subtotal.Decimal, order.DiscountAmount.Decimal)
}

// LoyaltyPoints 计算积分
func LoyaltyPoints(rate, subtotal, discount decimal.Decimal) int64 {
	base := subtotal.Sub(discount)
	if !base.IsPositive() || !rate.IsPositive() {
		return 0
	}
	return rate.Mul(base).Floor().IntPart()
}

func validateTrackingInput(input *TrackingInput) error {
	if input == nil {
		return nil
	}
	if strings.TrimSpace(input.Carrier) == "" || strings.TrimSpace(input.Number) == "" {
		return ErrTrackingInvalid
	}
	return nil
}

// applyTrackingChanges 追加/删除物流单号并同步当前单号，返回是否有变化
func applyTrackingChanges(order *models.Order, input UpdateOrderInput, now time.Time) bool {
	changed := false

	if input.TrackingCarrier != nil {
		carrier := strings.TrimSpace(*input.TrackingCarrier)
		if carrier != order.TrackingCarrier {
			order.TrackingCarrier = carrier
			changed = true
		}
	}
	if input.TrackingNumber != nil {
		number := strings.TrimSpace(*input.TrackingNumber)
		if number != order.TrackingNumber {
			order.TrackingNumber = number
			changed = true
		}
	}

	if input.AddTracking != nil {
		entry := models.TrackingEntry{
			Carrier: strings.TrimSpace(input.AddTracking.Carrier),
			Number:  strings.TrimSpace(input.AddTracking.Number),
			AddedAt: now,
		}
		if list, added := appendTracking(order.Tracking, entry); added {
			order.Tracking = list
			order.TrackingCarrier = entry.Carrier
			order.TrackingNumber = entry.Number
			changed = true
		}
	}

	if input.DeleteTracking != nil {
		carrier := strings.TrimSpace(input.DeleteTracking.Carrier)
		number := strings.TrimSpace(input.DeleteTracking.Number)
		if list, removed := removeTracking(order.Tracking, carrier, number); removed {
			order.Tracking = list
			if len(list) > 0 {
				order.TrackingCarrier = list[0].Carrier
				order.TrackingNumber = list[0].Number
			} else {
				order.TrackingCarrier = ""
				order.TrackingNumber = ""
			}
			changed = true
		}
	}
	return changed
}

// appendTracking 按 (carrier, number) 精确去重追加
func appendTracking(list models.TrackingList, entry models.TrackingEntry) (models.TrackingList, bool) {
	for _, existing := range list {
		if existing.Carrier == entry.Carrier && existing.Number == entry.Number {
			return list, false
		}
	}
	next := make(models.TrackingList, 0, len(list)+1)
	next = append(next, list...)
	return append(next, entry), true
}

func removeTracking(list models.TrackingList, carrier, number string) (models.TrackingList, bool) {
	next := make(models.TrackingList, 0, len(list))
	removed := false
	for _, existing := range list {
		if existing.Carrier == carrier && existing.Number == number {
			removed = true
			continue
		}
		next = append(next, existing)
	}
	return next, removed
}
