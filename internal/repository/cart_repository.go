package repository

import (
	"time"

	"github.com/storefront-next/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CartRepository 购物车快照数据访问接口
type CartRepository interface {
	GetByUserID(userID uint) (*models.CartSnapshot, error)
	Upsert(userID uint, version int, payload string) error
	DeleteByUserID(userID uint) error
}

// GormCartRepository GORM 实现
type GormCartRepository struct {
	db *gorm.DB
}

// NewCartRepository 创建购物车仓库
func NewCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

// GetByUserID 获取用户购物车快照
func (r *GormCartRepository) GetByUserID(userID uint) (*models.CartSnapshot, error) {
	return firstOrNil[models.CartSnapshot](r.db.Where("user_id = ?", userID))
}

// Upsert 写入或覆盖用户购物车快照
func (r *GormCartRepository) Upsert(userID uint, version int, payload string) error {
	snapshot := models.CartSnapshot{
		UserID:    userID,
		Version:   version,
		Payload:   payload,
		UpdatedAt: time.Now(),
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"version", "payload", "updated_at"}),
	}).Create(&snapshot).Error
}

// DeleteByUserID 删除用户购物车快照
func (r *GormCartRepository) DeleteByUserID(userID uint) error {
	return r.db.Where("user_id = ?", userID).Delete(&models.CartSnapshot{}).Error
}
