package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"store-ledger/src/models"
	"store-ledger/src/repositories"
)

// DebtService owns debt balances and their payment sub-ledgers, plus the
// partner's cached debt total.
type DebtService struct {
	DB   *gorm.DB
	Repo *repositories.DebtRepository
	Log  *logrus.Logger
}

type CreateDebtRequest struct {
	PartnerID   uuid.UUID
	PartnerName string
	OrderCode   string
	Type        models.DebtType
	TotalAmount decimal.Decimal
	AmountPaid  decimal.Decimal
	DueInDays   int
	Notes       *string
}

// CreateDebt - Opens a debt record for the unpaid remainder of a document.
// Fully paid documents never produce a record.
func (s *DebtService) CreateDebt(tx *gorm.DB, req CreateDebtRequest) (*models.DebtRecord, error) {
	if req.TotalAmount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: debt total must be positive", ErrInvalidAmount)
	}
	if req.AmountPaid.GreaterThanOrEqual(req.TotalAmount) {
		return nil, fmt.Errorf("%w: nothing remains unpaid", ErrValidation)
	}

	dueInDays := req.DueInDays
	if dueInDays <= 0 {
		dueInDays = 30
	}

	remaining := req.TotalAmount.Sub(req.AmountPaid)
	now := time.Now()
	debt := &models.DebtRecord{
		PartnerID:       req.PartnerID,
		PartnerName:     req.PartnerName,
		OrderCode:       req.OrderCode,
		Type:            req.Type,
		TotalAmount:     req.TotalAmount,
		RemainingAmount: remaining,
		DueDate:         now.AddDate(0, 0, dueInDays),
		Notes:           req.Notes,
	}
	debt.Status = models.ComputeDebtStatus(debt.TotalAmount, remaining, debt.DueDate, now)
	if !req.AmountPaid.IsZero() {
		debt.Status = models.DebtStatusPartial
	}

	if err := tx.Create(debt).Error; err != nil {
		return nil, translateDBError(err)
	}

	if err := s.adjustPartnerTotal(tx, req.PartnerID, remaining); err != nil {
		return nil, err
	}
	return debt, nil
}

type PaymentInput struct {
	Amount decimal.Decimal
	Method models.PaymentMethod
	Date   time.Time
	Notes  *string
}

// RecordPayment - Appends a payment and recomputes the balance and status.
// The balance clamps at zero; any excess is flagged on the payment row and
// logged, never turned into a negative balance.
func (s *DebtService) RecordPayment(tx *gorm.DB, debtID uuid.UUID, input PaymentInput) (*models.DebtRecord, error) {
	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: payment amount must be positive", ErrInvalidAmount)
	}

	debt, err := s.Repo.GetDebtForUpdate(tx, debtID)
	if err != nil {
		return nil, translateDBError(err)
	}
	return s.applyPayment(tx, debt, input)
}

// DeductForReturn - Payment variant used by purchase returns; tagged with the
// return_deduction method so the sub-ledger shows its provenance.
func (s *DebtService) DeductForReturn(tx *gorm.DB, debtID uuid.UUID, amount decimal.Decimal, referenceCode string) (*models.DebtRecord, error) {
	note := fmt.Sprintf("deducted by purchase return %s", referenceCode)
	return s.RecordPayment(tx, debtID, PaymentInput{
		Amount: amount,
		Method: models.PaymentMethodReturnDeduction,
		Date:   time.Now(),
		Notes:  &note,
	})
}

func (s *DebtService) applyPayment(tx *gorm.DB, debt *models.DebtRecord, input PaymentInput) (*models.DebtRecord, error) {
	date := input.Date
	if date.IsZero() {
		date = time.Now()
	}

	applied := input.Amount
	excess := decimal.Zero
	if applied.GreaterThan(debt.RemainingAmount) {
		excess = applied.Sub(debt.RemainingAmount)
		applied = debt.RemainingAmount
		s.Log.WithFields(logrus.Fields{
			"debt_id":    debt.ID,
			"order_code": debt.OrderCode,
			"excess":     excess.String(),
		}).Warn("payment exceeds remaining debt, clamping balance at zero")
	}

	payment := models.DebtPayment{
		DebtID:       debt.ID,
		Date:         date,
		Amount:       input.Amount,
		Method:       input.Method,
		Notes:        input.Notes,
		ExcessAmount: excess,
	}
	if err := tx.Create(&payment).Error; err != nil {
		return nil, translateDBError(err)
	}

	newRemaining := debt.RemainingAmount.Sub(applied)
	if newRemaining.IsNegative() {
		newRemaining = decimal.Zero
	}
	newStatus := models.ComputeDebtStatus(debt.TotalAmount, newRemaining, debt.DueDate, time.Now())

	err := tx.Model(&models.DebtRecord{}).
		Where("id = ?", debt.ID).
		Updates(map[string]interface{}{
			"remaining_amount": newRemaining,
			"status":           newStatus,
		}).Error
	if err != nil {
		return nil, translateDBError(err)
	}

	if err := s.adjustPartnerTotal(tx, debt.PartnerID, applied.Neg()); err != nil {
		return nil, err
	}

	debt.RemainingAmount = newRemaining
	debt.Status = newStatus
	debt.Payments = append(debt.Payments, payment)
	return debt, nil
}

// adjustPartnerTotal - Keeps the partner's cached open-debt total in step
// with the records. The cache is display-only; reconciliation always goes
// back to the debt rows.
func (s *DebtService) adjustPartnerTotal(tx *gorm.DB, partnerID uuid.UUID, delta decimal.Decimal) error {
	if partnerID == uuid.Nil || delta.IsZero() {
		return nil
	}
	partner, err := s.Repo.GetPartnerForUpdate(tx, partnerID)
	if err != nil {
		return translateDBError(err)
	}
	total := partner.DebtTotal.Add(delta)
	if total.IsNegative() {
		total = decimal.Zero
	}
	err = tx.Model(&models.Partner{}).
		Where("id = ?", partnerID).
		Update("debt_total", total).Error
	return translateDBError(err)
}
