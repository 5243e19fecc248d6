package repository

import (
	"errors"
	"strings"

	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderRepository 订单数据访问接口
type OrderRepository interface {
	Create(order *models.Order, items []models.OrderItem) error
	GetByID(id uint) (*models.Order, error)
	GetByIDForUpdate(id uint) (*models.Order, error)
	GetByIDAndUser(id uint, userID uint) (*models.Order, error)
	ResolveReceiverEmail(order *models.Order) (string, error)
	ListAdmin(filter OrderListFilter) ([]models.Order, int64, error)
	UpdateFields(id uint, updates map[string]interface{}) error
	MarkLoyaltyAwarded(id uint, points int64) (bool, error)
	CountActiveByUserCoupon(userID uint, couponCode string) (int64, error)
	MaxInvoiceNumber() (int64, error)
	WithTx(tx *gorm.DB) *GormOrderRepository
}

// GormOrderRepository GORM 实现
type GormOrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓库
func NewOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// WithTx 绑定事务
func (r *GormOrderRepository) WithTx(tx *gorm.DB) *GormOrderRepository {
	if tx == nil {
		return r
	}
	return &GormOrderRepository{db: tx}
}

// Create 创建订单与订单项
func (r *GormOrderRepository) Create(order *models.Order, items []models.OrderItem) error {
	if err := r.db.Omit("Items").Create(order).Error; err != nil {
		return err
	}
	for i := range items {
		items[i].OrderID = order.ID
	}
	if len(items) > 0 {
		if err := r.db.Create(&items).Error; err != nil {
			return err
		}
	}
	order.Items = items
	return nil
}

// GetByID 根据 ID 获取订单（含订单项）
func (r *GormOrderRepository) GetByID(id uint) (*models.Order, error) {
	return firstOrNil[models.Order](r.db.Preload("Items"), id)
}

// GetByIDForUpdate 加锁获取订单（含订单项）
func (r *GormOrderRepository) GetByIDForUpdate(id uint) (*models.Order, error) {
	order, err := firstOrNil[models.Order](r.db.Clauses(clause.Locking{Strength: "UPDATE"}), id)
	if err != nil || order == nil {
		return nil, err
	}
	if err := r.db.Where("order_id = ?", order.ID).Order("id asc").Find(&order.Items).Error; err != nil {
		return nil, err
	}
	return order, nil
}

// GetByIDAndUser 获取用户自己的订单
func (r *GormOrderRepository) GetByIDAndUser(id uint, userID uint) (*models.Order, error) {
	return firstOrNil[models.Order](r.db.Preload("Items").Where("id = ? AND user_id = ?", id, userID))
}

// ResolveReceiverEmail 解析通知收件邮箱：登录用户取账号邮箱，否则取下单邮箱
func (r *GormOrderRepository) ResolveReceiverEmail(order *models.Order) (string, error) {
	if order == nil {
		return "", nil
	}
	if order.UserID == nil || *order.UserID == 0 {
		return strings.TrimSpace(order.CustomerEmail), nil
	}

	var userRow struct {
		Email string
	}
	if err := r.db.Model(&models.User{}).
		Select("email").
		Where("id = ?", *order.UserID).
		Take(&userRow).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return strings.TrimSpace(order.CustomerEmail), nil
		}
		return "", err
	}
	if email := strings.TrimSpace(userRow.Email); email != "" {
		return email, nil
	}
	return strings.TrimSpace(order.CustomerEmail), nil
}

// ListAdmin 管理端订单列表
func (r *GormOrderRepository) ListAdmin(filter OrderListFilter) ([]models.Order, int64, error) {
	query := r.db.Model(&models.Order{})
	dialect := dialectOf(r.db)
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("status = ?", status)
	}
	if orderNo := strings.TrimSpace(filter.OrderNo); orderNo != "" {
		query = query.Where("order_no = ?", orderNo)
	}
	if email := strings.TrimSpace(filter.CustomerEmail); email != "" {
		query = query.Where(dialect.containsFold("customer_email"), "%"+email+"%")
	}
	if country := strings.TrimSpace(filter.Country); country != "" {
		query = query.Where("UPPER("+dialect.jsonText("shipping_address", "country")+") = ?", strings.ToUpper(country))
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	query = query.Scopes(newestFirstPage(filter.Page, filter.PageSize))
	if err := query.Preload("Items").Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// UpdateFields 更新订单字段
func (r *GormOrderRepository) UpdateFields(id uint, updates map[string]interface{}) error {
	if id == 0 || len(updates) == 0 {
		return nil
	}
	return r.db.Model(&models.Order{}).Where("id = ?", id).Updates(updates).Error
}

// MarkLoyaltyAwarded 条件置位积分发放标记，返回是否由本次调用置位
func (r *GormOrderRepository) MarkLoyaltyAwarded(id uint, points int64) (bool, error) {
	result := r.db.Model(&models.Order{}).
		Where("id = ? AND loyalty_points_awarded = ?", id, false).
		Updates(map[string]interface{}{
			"loyalty_points_awarded": true,
			"loyalty_points_earned":  points,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// CountActiveByUserCoupon 统计用户使用该优惠码且未取消的订单数
func (r *GormOrderRepository) CountActiveByUserCoupon(userID uint, couponCode string) (int64, error) {
	code := strings.ToUpper(strings.TrimSpace(couponCode))
	if userID == 0 || code == "" {
		return 0, nil
	}
	var count int64
	err := r.db.Model(&models.Order{}).
		Where("user_id = ? AND coupon_code = ? AND status <> ?", userID, code, constants.OrderStatusCancelled).
		Count(&count).Error
	return count, err
}

// MaxInvoiceNumber 当前最大发票号（无订单返回 0）
func (r *GormOrderRepository) MaxInvoiceNumber() (int64, error) {
	var max int64
	if err := r.db.Unscoped().Model(&models.Order{}).
		Select("COALESCE(MAX(invoice_number), 0)").
		Scan(&max).Error; err != nil {
		return 0, err
	}
	return max, nil
}
