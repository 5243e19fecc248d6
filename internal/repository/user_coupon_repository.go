package repository

import (
	"time"

	"github.com/storefront-next/internal/models"

	"gorm.io/gorm"
)

// UserCouponRepository 用户券实例数据访问接口
type UserCouponRepository interface {
	GetByIDAndUser(id, userID uint) (*models.UserCoupon, error)
	Create(userCoupon *models.UserCoupon) error
	ConsumeIfUnused(id, userID, orderID uint, usedAt time.Time) (bool, error)
	WithTx(tx *gorm.DB) *GormUserCouponRepository
}

// GormUserCouponRepository GORM 实现
type GormUserCouponRepository struct {
	db *gorm.DB
}

// NewUserCouponRepository 创建用户券仓库
func NewUserCouponRepository(db *gorm.DB) *GormUserCouponRepository {
	return &GormUserCouponRepository{db: db}
}

// WithTx 绑定事务
func (r *GormUserCouponRepository) WithTx(tx *gorm.DB) *GormUserCouponRepository {
	if tx == nil {
		return r
	}
	return &GormUserCouponRepository{db: tx}
}

// GetByIDAndUser 获取用户名下的券实例（含优惠券）
func (r *GormUserCouponRepository) GetByIDAndUser(id, userID uint) (*models.UserCoupon, error) {
	return firstOrNil[models.UserCoupon](r.db.Preload("Coupon").Where("id = ? AND user_id = ?", id, userID))
}

// Create 发放券实例
func (r *GormUserCouponRepository) Create(userCoupon *models.UserCoupon) error {
	return r.db.Create(userCoupon).Error
}

// ConsumeIfUnused 条件核销券实例，返回是否由本次调用核销
func (r *GormUserCouponRepository) ConsumeIfUnused(id, userID, orderID uint, usedAt time.Time) (bool, error) {
	result := r.db.Model(&models.UserCoupon{}).
		Where("id = ? AND user_id = ? AND used = ?", id, userID, false).
		Updates(map[string]interface{}{
			"used":       true,
			"used_at":    usedAt,
			"order_id":   orderID,
			"updated_at": usedAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
