package repository

import (
	"strings"

	"github.com/storefront-next/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StoreCreditRepository 店铺余额数据访问接口
type StoreCreditRepository interface {
	GetAccountByUserID(userID uint) (*models.StoreCreditAccount, error)
	GetAccountByUserIDForUpdate(userID uint) (*models.StoreCreditAccount, error)
	CreateAccount(account *models.StoreCreditAccount) error
	UpdateAccount(account *models.StoreCreditAccount) error
	CreateTransaction(txn *models.StoreCreditTransaction) error
	GetTransactionByReference(reference string) (*models.StoreCreditTransaction, error)
	ListTransactionsByUser(userID uint, page, pageSize int) ([]models.StoreCreditTransaction, int64, error)
	WithTx(tx *gorm.DB) *GormStoreCreditRepository
}

// GormStoreCreditRepository GORM 实现
type GormStoreCreditRepository struct {
	db *gorm.DB
}

// NewStoreCreditRepository 创建店铺余额仓库
func NewStoreCreditRepository(db *gorm.DB) *GormStoreCreditRepository {
	return &GormStoreCreditRepository{db: db}
}

// WithTx 绑定事务
func (r *GormStoreCreditRepository) WithTx(tx *gorm.DB) *GormStoreCreditRepository {
	if tx == nil {
		return r
	}
	return &GormStoreCreditRepository{db: tx}
}

// GetAccountByUserID 按用户ID获取余额账户
func (r *GormStoreCreditRepository) GetAccountByUserID(userID uint) (*models.StoreCreditAccount, error) {
	if userID == 0 {
		return nil, nil
	}
	return firstOrNil[models.StoreCreditAccount](r.db.Where("user_id = ?", userID))
}

// GetAccountByUserIDForUpdate 按用户ID加锁获取余额账户
func (r *GormStoreCreditRepository) GetAccountByUserIDForUpdate(userID uint) (*models.StoreCreditAccount, error) {
	if userID == 0 {
		return nil, nil
	}
	return firstOrNil[models.StoreCreditAccount](r.db.Clauses(clause.Locking{Strength: "UPDATE"}).Where("user_id = ?", userID))
}

// CreateAccount 创建余额账户
func (r *GormStoreCreditRepository) CreateAccount(account *models.StoreCreditAccount) error {
	return r.db.Create(account).Error
}

// UpdateAccount 更新余额账户
func (r *GormStoreCreditRepository) UpdateAccount(account *models.StoreCreditAccount) error {
	return r.db.Save(account).Error
}

// CreateTransaction 写入余额流水
func (r *GormStoreCreditRepository) CreateTransaction(txn *models.StoreCreditTransaction) error {
	return r.db.Create(txn).Error
}

// GetTransactionByReference 按幂等引用获取流水
func (r *GormStoreCreditRepository) GetTransactionByReference(reference string) (*models.StoreCreditTransaction, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, nil
	}
	return firstOrNil[models.StoreCreditTransaction](r.db.Where("reference = ?", reference))
}

// ListTransactionsByUser 用户余额流水列表
func (r *GormStoreCreditRepository) ListTransactionsByUser(userID uint, page, pageSize int) ([]models.StoreCreditTransaction, int64, error) {
	query := r.db.Model(&models.StoreCreditTransaction{}).Where("user_id = ?", userID)
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var txns []models.StoreCreditTransaction
	if err := query.Scopes(newestFirstPage(page, pageSize)).Find(&txns).Error; err != nil {
		return nil, 0, err
	}
	return txns, total, nil
}
