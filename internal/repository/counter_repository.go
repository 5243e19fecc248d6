package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/storefront-next/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrCounterMissing 计数器行不存在
var ErrCounterMissing = errors.New("counter row missing")

// CounterSeedFunc 首次创建计数器时提供已占用的最大值
type CounterSeedFunc func() (int64, error)

// CounterRepository 命名序列计数器数据访问接口
type CounterRepository interface {
	Next(name string, floor int64, seed CounterSeedFunc) (int64, error)
	Current(name string) (int64, error)
	WithTx(tx *gorm.DB) *GormCounterRepository
}

// GormCounterRepository GORM 实现
type GormCounterRepository struct {
	db *gorm.DB
}

// NewCounterRepository 创建计数器仓库
func NewCounterRepository(db *gorm.DB) *GormCounterRepository {
	return &GormCounterRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCounterRepository) WithTx(tx *gorm.DB) *GormCounterRepository {
	if tx == nil {
		return r
	}
	return &GormCounterRepository{db: tx}
}

// Next 原子推进计数器并返回新值，结果不小于 floor。
// 调用方应在业务事务内执行，行锁持有到提交为止。
func (r *GormCounterRepository) Next(name string, floor int64, seed CounterSeedFunc) (int64, error) {
	if err := r.ensure(name, floor, seed); err != nil {
		return 0, err
	}

	result := r.db.Model(&models.Counter{}).
		Where("name = ?", name).
		Updates(map[string]interface{}{
			"value":      gorm.Expr("CASE WHEN value + 1 < ? THEN ? ELSE value + 1 END", floor, floor),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return 0, fmt.Errorf("advance counter %s: %w", name, result.Error)
	}
	if result.RowsAffected == 0 {
		return 0, ErrCounterMissing
	}
	return r.Current(name)
}

// Current 读取计数器当前值
func (r *GormCounterRepository) Current(name string) (int64, error) {
	var counter models.Counter
	if err := r.db.Where("name = ?", name).Take(&counter).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrCounterMissing
		}
		return 0, err
	}
	return counter.Value, nil
}

func (r *GormCounterRepository) ensure(name string, floor int64, seed CounterSeedFunc) error {
	var count int64
	if err := r.db.Model(&models.Counter{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	start := floor - 1
	if seed != nil {
		used, err := seed()
		if err != nil {
			return fmt.Errorf("seed counter %s: %w", name, err)
		}
		if used > start {
			start = used
		}
	}
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.Counter{Name: name, Value: start, UpdatedAt: time.Now()}).Error
}
