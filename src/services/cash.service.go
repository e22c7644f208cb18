package services

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"store-ledger/src/models"
	"store-ledger/src/repositories"
)

// CashService appends income/expense entries to the journal. Entries are
// never edited; corrections are new entries in the opposite direction.
type CashService struct {
	DB   *gorm.DB
	Repo *repositories.CashRepository
	Docs *repositories.DocumentRepository
}

type CashEntryRequest struct {
	Type          models.TransactionType
	Amount        decimal.Decimal
	Method        models.PaymentMethod
	ReferenceCode string
	Description   string
	PartnerName   string
	Actor         string
}

func (s *CashService) Record(tx *gorm.DB, req CashEntryRequest) (*models.Transaction, error) {
	if req.Type != models.TransactionTypeIncome && req.Type != models.TransactionTypeExpense {
		return nil, fmt.Errorf("%w: unknown transaction type %q", ErrValidation, req.Type)
	}
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: cash amount must be positive", ErrInvalidAmount)
	}

	prefix := models.CodePrefixCashIncome
	if req.Type == models.TransactionTypeExpense {
		prefix = models.CodePrefixCashExpense
	}
	code, err := s.Docs.NextCode(tx, prefix)
	if err != nil {
		return nil, translateDBError(err)
	}

	entry := &models.Transaction{
		Code:          code,
		Type:          req.Type,
		Amount:        req.Amount,
		Method:        req.Method,
		ReferenceCode: req.ReferenceCode,
		Description:   req.Description,
		PartnerName:   req.PartnerName,
		CreatedBy:     req.Actor,
		CreatedAt:     time.Now(),
	}
	if err := tx.Create(entry).Error; err != nil {
		return nil, translateDBError(err)
	}
	return entry, nil
}

type CashTotals struct {
	From    time.Time       `json:"from"`
	To      time.Time       `json:"to"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Net     decimal.Decimal `json:"net"`
}

// TotalsBetween - Derived on demand from the entries; no stored balance
// exists that could drift from them.
func (s *CashService) TotalsBetween(from, to time.Time) (*CashTotals, error) {
	income, err := s.Repo.SumBetween(models.TransactionTypeIncome, from, to)
	if err != nil {
		return nil, translateDBError(err)
	}
	expense, err := s.Repo.SumBetween(models.TransactionTypeExpense, from, to)
	if err != nil {
		return nil, translateDBError(err)
	}
	return &CashTotals{
		From:    from,
		To:      to,
		Income:  income,
		Expense: expense,
		Net:     income.Sub(expense),
	}, nil
}
