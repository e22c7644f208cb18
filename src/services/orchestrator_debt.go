package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"store-ledger/src/models"
)

type AddPaymentRequest struct {
	DebtID uuid.UUID
	Amount decimal.Decimal
	Method models.PaymentMethod
	Date   time.Time
	Notes  *string
	Actor  string
}

// AddPaymentToDebt - One debt payment plus its paired cash journal entry
// (income for receivables, expense for payables) and audit entry, in one
// atomic scope.
func (o *Orchestrator) AddPaymentToDebt(req AddPaymentRequest) (*models.DebtRecord, error) {
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: payment amount must be positive", ErrInvalidAmount)
	}

	var debt *models.DebtRecord
	err := o.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		debt, err = o.Debt.RecordPayment(tx, req.DebtID, PaymentInput{
			Amount: req.Amount,
			Method: req.Method,
			Date:   req.Date,
			Notes:  req.Notes,
		})
		if err != nil {
			return err
		}

		if err := o.recordDebtCashEntry(tx, debt, req.Amount, req.Method, req.Actor); err != nil {
			return err
		}

		o.Audit.BestEffort(tx, &models.AuditLog{
			Actor:      req.Actor,
			Module:     "debts",
			EntityType: "debt_record",
			EntityID:   debt.ID.String(),
			EntityCode: debt.OrderCode,
			Action:     models.AuditActionPayment,
			Summary:    fmt.Sprintf("Payment of %s against debt for %s, remaining %s", req.Amount.String(), debt.OrderCode, debt.RemainingAmount.String()),
			DataAfter:  models.Snapshot(debt),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return debt, nil
}

type BatchPaymentRequest struct {
	PartnerID uuid.UUID
	Type      models.DebtType
	Amount    decimal.Decimal
	Method    models.PaymentMethod
	Date      time.Time
	// Optional explicit allocation; when empty the amount flows
	// oldest-due-first across the partner's open debts.
	Allocations map[uuid.UUID]decimal.Decimal
	Notes       *string
	Actor       string
}

type BatchPaymentResult struct {
	Debts     []models.DebtRecord `json:"debts"`
	Allocated decimal.Decimal     `json:"allocated"`
	Unapplied decimal.Decimal     `json:"unapplied"`
}

// BatchProcessDebtPayment - One physical payment spread across several of a
// partner's debts. The allocations always sum to the applied amount exactly;
// anything beyond the partner's total open balance is reported back
// unapplied instead of being swallowed.
func (o *Orchestrator) BatchProcessDebtPayment(req BatchPaymentRequest) (*BatchPaymentResult, error) {
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: payment amount must be positive", ErrInvalidAmount)
	}
	if req.Type == "" {
		req.Type = models.DebtTypeReceivable
	}

	result := &BatchPaymentResult{Allocated: decimal.Zero}
	err := o.DB.Transaction(func(tx *gorm.DB) error {
		debts, err := o.Debt.Repo.OpenDebtsOldestFirst(tx, req.PartnerID, req.Type)
		if err != nil {
			return translateDBError(err)
		}
		if len(debts) == 0 {
			return fmt.Errorf("%w: partner has no open %s debts", ErrNotFound, req.Type)
		}

		var allocations []decimal.Decimal
		if len(req.Allocations) > 0 {
			allocations = make([]decimal.Decimal, len(debts))
			sum := decimal.Zero
			for i, debt := range debts {
				amount, ok := req.Allocations[debt.ID]
				if !ok {
					allocations[i] = decimal.Zero
					continue
				}
				if amount.IsNegative() || amount.GreaterThan(debt.RemainingAmount) {
					return fmt.Errorf("%w: allocation for %s out of range", ErrInvalidAmount, debt.OrderCode)
				}
				allocations[i] = amount
				sum = sum.Add(amount)
			}
			if !sum.Equal(req.Amount) {
				return fmt.Errorf("%w: allocations sum to %s, payment is %s", ErrInvalidAmount, sum.String(), req.Amount.String())
			}
		} else {
			remainings := make([]decimal.Decimal, len(debts))
			for i, debt := range debts {
				remainings[i] = debt.RemainingAmount
			}
			allocations = AllocateOldestFirst(req.Amount, remainings)
		}

		for i := range debts {
			if allocations[i].LessThanOrEqual(decimal.Zero) {
				continue
			}
			updated, err := o.Debt.applyPayment(tx, &debts[i], PaymentInput{
				Amount: allocations[i],
				Method: req.Method,
				Date:   req.Date,
				Notes:  req.Notes,
			})
			if err != nil {
				return err
			}
			result.Debts = append(result.Debts, *updated)
			result.Allocated = result.Allocated.Add(allocations[i])
		}
		result.Unapplied = req.Amount.Sub(result.Allocated)
		if result.Unapplied.IsPositive() {
			o.Log.WithFields(logrus.Fields{
				"partner_id": req.PartnerID,
				"unapplied":  result.Unapplied.String(),
			}).Warn("batch payment exceeds partner's open debt")
		}

		if result.Allocated.GreaterThan(decimal.Zero) {
			entryType := models.TransactionTypeIncome
			if req.Type == models.DebtTypePayable {
				entryType = models.TransactionTypeExpense
			}
			_, err := o.Cash.Record(tx, CashEntryRequest{
				Type:        entryType,
				Amount:      result.Allocated,
				Method:      req.Method,
				Description: fmt.Sprintf("Batch debt payment across %d documents", len(result.Debts)),
				PartnerName: debts[0].PartnerName,
				Actor:       req.Actor,
			})
			if err != nil {
				return err
			}
		}

		o.Audit.BestEffort(tx, &models.AuditLog{
			Actor:      req.Actor,
			Module:     "debts",
			EntityType: "debt_record",
			EntityID:   req.PartnerID.String(),
			Action:     models.AuditActionPayment,
			Summary:    fmt.Sprintf("Batch payment of %s allocated across %d debts", result.Allocated.String(), len(result.Debts)),
			DataAfter:  models.Snapshot(result),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// recordDebtCashEntry - Receivable payments are money in, payable payments
// are money out. Return deductions never touch the journal.
func (o *Orchestrator) recordDebtCashEntry(tx *gorm.DB, debt *models.DebtRecord, amount decimal.Decimal, method models.PaymentMethod, actor string) error {
	if method == models.PaymentMethodReturnDeduction || method == models.PaymentMethodDebtDeduction {
		return nil
	}
	entryType := models.TransactionTypeIncome
	description := fmt.Sprintf("Debt collection for %s", debt.OrderCode)
	if debt.Type == models.DebtTypePayable {
		entryType = models.TransactionTypeExpense
		description = fmt.Sprintf("Debt payment for %s", debt.OrderCode)
	}
	_, err := o.Cash.Record(tx, CashEntryRequest{
		Type:          entryType,
		Amount:        amount,
		Method:        method,
		ReferenceCode: debt.OrderCode,
		Description:   description,
		PartnerName:   debt.PartnerName,
		Actor:         actor,
	})
	return err
}
