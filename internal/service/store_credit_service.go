package service

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// StoreCreditService 店铺余额服务
type StoreCreditService struct {
	repo repository.StoreCreditRepository
}

// NewStoreCreditService 创建店铺余额服务
func NewStoreCreditService(repo repository.StoreCreditRepository) *StoreCreditService {
	return &StoreCreditService{repo: repo}
}

// StoreCreditAdjustInput 管理员调整余额输入
type StoreCreditAdjustInput struct {
	UserID uint
	Amount decimal.Decimal // 正数入账，负数扣减
	Remark string
}

// GetBalance 查询用户余额，无账户视为 0
func (s *StoreCreditService) GetBalance(userID uint) (models.Money, error) {
	account, err := s.repo.GetAccountByUserID(userID)
	if err != nil {
		return models.Money{}, err
	}
	if account == nil {
		return models.NewMoneyFromInt(0), nil
	}
	return account.Balance, nil
}

// ListTransactions 查询用户余额流水
func (s *StoreCreditService) ListTransactions(userID uint, page, pageSize int) ([]models.StoreCreditTransaction, int64, error) {
	return s.repo.ListTransactionsByUser(userID, page, pageSize)
}

// ApplyOrderCredit 在订单事务内扣减余额，余额不足时拒绝；同一订单只扣一次
func (s *StoreCreditService) ApplyOrderCredit(tx *gorm.DB, order *models.Order, amount decimal.Decimal) (decimal.Decimal, error) {
	if tx == nil {
		return decimal.Zero, ErrOrderCreateFailed
	}
	if order == nil {
		return decimal.Zero, ErrOrderNotFound
	}
	amount = amount.Round(2)
	if !amount.IsPositive() {
		return decimal.Zero, nil
	}
	if order.UserID == nil || *order.UserID == 0 {
		return decimal.Zero, ErrStoreCreditGuest
	}

	repo := s.repo.WithTx(tx)
	reference := buildOrderCreditReference(order.ID)
	exists, err := repo.GetTransactionByReference(reference)
	if err != nil {
		return decimal.Zero, err
	}
	if exists != nil {
		return exists.Amount.Decimal.Round(2), nil
	}

	account, err := repo.GetAccountByUserIDForUpdate(*order.UserID)
	if err != nil {
		return decimal.Zero, err
	}
	if account == nil {
		return decimal.Zero, ErrStoreCreditInsufficient
	}

	before := account.Balance.Decimal.Round(2)
	if amount.GreaterThan(before) {
		return decimal.Zero, ErrStoreCreditInsufficient
	}
	after := before.Sub(amount).Round(2)
	if after.IsNegative() {
		after = decimal.Zero
	}

	now := time.Now()
	account.Balance = models.NewMoneyFromDecimal(after)
	account.UpdatedAt = now
	if err := repo.UpdateAccount(account); err != nil {
		return decimal.Zero, ErrStoreCreditUpdateFailed
	}

	orderID := order.ID
	txn := &models.StoreCreditTransaction{
		UserID:        *order.UserID,
		OrderID:       &orderID,
		Type:          constants.CreditTxnTypeOrderUse,
		Direction:     constants.CreditTxnDirectionOut,
		Amount:        models.NewMoneyFromDecimal(amount),
		BalanceBefore: models.NewMoneyFromDecimal(before),
		BalanceAfter:  models.NewMoneyFromDecimal(after),
		Reference:     reference,
		Remark:        "order store credit",
		CreatedAt:     now,
	}
	if err := repo.CreateTransaction(txn); err != nil {
		return decimal.Zero, ErrStoreCreditUpdateFailed
	}
	return amount, nil
}

// AdminAdjust 管理员调整余额
func (s *StoreCreditService) AdminAdjust(input StoreCreditAdjustInput) (*models.StoreCreditAccount, *models.StoreCreditTransaction, error) {
	if input.UserID == 0 {
		return nil, nil, ErrInvalidPayload
	}
	delta := input.Amount.Round(2)
	if delta.IsZero() {
		return nil, nil, ErrInvalidPayload
	}

	var account *models.StoreCreditAccount
	var txn *models.StoreCreditTransaction
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		now := time.Now()
		var err error
		account, err = s.ensureAccountForUpdate(repo, input.UserID, now)
		if err != nil {
			return err
		}

		before := account.Balance.Decimal.Round(2)
		after := before.Add(delta).Round(2)
		if after.IsNegative() {
			return ErrStoreCreditInsufficient
		}
		account.Balance = models.NewMoneyFromDecimal(after)
		account.UpdatedAt = now
		if err := repo.UpdateAccount(account); err != nil {
			return ErrStoreCreditUpdateFailed
		}

		direction := constants.CreditTxnDirectionIn
		if delta.IsNegative() {
			direction = constants.CreditTxnDirectionOut
		}
		txn = &models.StoreCreditTransaction{
			UserID:        input.UserID,
			Type:          constants.CreditTxnTypeAdminAdjust,
			Direction:     direction,
			Amount:        models.NewMoneyFromDecimal(delta.Abs()),
			BalanceBefore: models.NewMoneyFromDecimal(before),
			BalanceAfter:  models.NewMoneyFromDecimal(after),
			Reference:     "admin_adjust:" + uuid.NewString(),
			Remark:        cleanCreditRemark(input.Remark, "admin adjustment"),
			CreatedAt:     now,
		}
		if err := repo.CreateTransaction(txn); err != nil {
			return ErrStoreCreditUpdateFailed
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return account, txn, nil
}

func (s *StoreCreditService) ensureAccountForUpdate(repo *repository.GormStoreCreditRepository, userID uint, now time.Time) (*models.StoreCreditAccount, error) {
	account, err := repo.GetAccountByUserIDForUpdate(userID)
	if err != nil {
		return nil, err
	}
	if account != nil {
		return account, nil
	}
	account = &models.StoreCreditAccount{
		UserID:    userID,
		Balance:   models.NewMoneyFromInt(0),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := repo.CreateAccount(account); err != nil {
		return nil, err
	}
	return repo.GetAccountByUserIDForUpdate(userID)
}

// maxCreditRemarkRunes 备注列 varchar(255) 按字符计长
const maxCreditRemarkRunes = 255

func cleanCreditRemark(raw string, fallback string) string {
	remark := strings.TrimSpace(raw)
	if remark == "" {
		return fallback
	}
	if utf8.RuneCountInString(remark) > maxCreditRemarkRunes {
		return string([]rune(remark)[:maxCreditRemarkRunes])
	}
	return remark
}

func buildOrderCreditReference(orderID uint) string {
	return fmt.Sprintf("order:%d:%s", orderID, constants.CreditTxnTypeOrderUse)
}
