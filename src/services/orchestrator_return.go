package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"store-ledger/src/models"
)

type ReturnLineInput struct {
	ProductID uuid.UUID
	Quantity  int
	Price     decimal.Decimal
}

type AddReturnNoteRequest struct {
	OrderID      uuid.UUID
	Items        []ReturnLineInput
	RefundAmount decimal.Decimal
	Method       models.PaymentMethod
	Note         *string
	Actor        string
}

// AddReturnNote - Customer return. Goods come back to stock as
// return_customer movements bounded by the quantities the order actually
// sold; the refund is either deducted from the customer's receivable or paid
// back out through the cash journal.
func (o *Orchestrator) AddReturnNote(req AddReturnNoteRequest) (*models.ReturnNote, error) {
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: return note has no items", ErrValidation)
	}
	if req.RefundAmount.IsNegative() {
		return nil, fmt.Errorf("%w: refund amount cannot be negative", ErrInvalidAmount)
	}

	var note *models.ReturnNote
	err := o.DB.Transaction(func(tx *gorm.DB) error {
		order, err := o.Docs.GetOrderForUpdate(tx, req.OrderID)
		if err != nil {
			return translateDBError(err)
		}
		if order.Status == models.OrderStatusCancelled {
			return fmt.Errorf("%w: order %s is cancelled", ErrValidation, order.Code)
		}
		if order.LockedAt != nil {
			return fmt.Errorf("%w: order %s", ErrDocumentLocked, order.Code)
		}

		soldByProduct := make(map[uuid.UUID]*models.OrderItem, len(order.Items))
		for i := range order.Items {
			soldByProduct[order.Items[i].ProductID] = &order.Items[i]
		}

		requested := make(map[uuid.UUID]int, len(req.Items))
		for _, line := range req.Items {
			if line.Quantity <= 0 {
				return fmt.Errorf("%w: return quantity must be positive", ErrValidation)
			}
			sold, ok := soldByProduct[line.ProductID]
			if !ok {
				return fmt.Errorf("%w: product %s is not on order %s", ErrValidation, line.ProductID, order.Code)
			}
			requested[line.ProductID] += line.Quantity
			returnable := sold.Quantity - sold.ReturnedQuantity
			if requested[line.ProductID] > returnable {
				return &ReturnExceedsError{
					ProductName: sold.ProductName,
					Requested:   requested[line.ProductID],
					Received:    returnable,
				}
			}
		}

		code, err := o.Docs.NextCode(tx, models.CodePrefixReturnNote)
		if err != nil {
			return translateDBError(err)
		}

		noteItems := make([]models.ReturnNoteItem, 0, len(req.Items))
		for _, line := range req.Items {
			sold := soldByProduct[line.ProductID]
			price := line.Price
			if price.IsZero() {
				price = sold.Price
			}
			noteItems = append(noteItems, models.ReturnNoteItem{
				ProductID:   line.ProductID,
				ProductName: sold.ProductName,
				Quantity:    line.Quantity,
				Price:       price,
				Total:       price.Mul(decimal.NewFromInt(int64(line.Quantity))),
			})

			_, err = o.Stock.ApplyMovement(tx, MovementRequest{
				ProductID:     line.ProductID,
				Type:          models.MovementTypeReturnCustomer,
				ChangeAmount:  line.Quantity,
				ReferenceCode: code,
				Actor:         req.Actor,
			})
			if err != nil {
				return err
			}

			err = tx.Model(&models.OrderItem{}).
				Where("id = ?", sold.ID).
				Update("returned_quantity", gorm.Expr("returned_quantity + ?", line.Quantity)).Error
			if err != nil {
				return translateDBError(err)
			}
			sold.ReturnedQuantity += line.Quantity
		}

		note = &models.ReturnNote{
			Code:         code,
			OrderID:      &order.ID,
			OrderCode:    order.Code,
			CustomerName: order.CustomerName,
			Items:        noteItems,
			RefundAmount: req.RefundAmount,
			Method:       req.Method,
			Note:         req.Note,
			CreatedBy:    req.Actor,
		}
		if err := tx.Create(note).Error; err != nil {
			return translateDBError(err)
		}

		if req.RefundAmount.GreaterThan(decimal.Zero) {
			if req.Method == models.PaymentMethodDebtDeduction {
				debt, err := o.Debt.Repo.GetDebtByOrderCode(tx, order.Code, models.DebtTypeReceivable)
				if err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return fmt.Errorf("%w: no receivable debt found for order %s", ErrNotFound, order.Code)
					}
					return translateDBError(err)
				}
				if _, err := o.Debt.DeductForReturn(tx, debt.ID, req.RefundAmount, code); err != nil {
					return err
				}
			} else {
				_, err := o.Cash.Record(tx, CashEntryRequest{
					Type:          models.TransactionTypeExpense,
					Amount:        req.RefundAmount,
					Method:        req.Method,
					ReferenceCode: code,
					Description:   fmt.Sprintf("Refund to customer for return %s (order %s)", code, order.Code),
					PartnerName:   order.CustomerName,
					Actor:         req.Actor,
				})
				if err != nil {
					return err
				}
			}
		}

		o.Audit.BestEffort(tx, &models.AuditLog{
			Actor:      req.Actor,
			Module:     "sales",
			EntityType: "return_note",
			EntityID:   note.ID.String(),
			EntityCode: note.Code,
			Action:     models.AuditActionReturn,
			Summary:    fmt.Sprintf("Customer returned %d lines against order %s (refund %s via %s)", len(noteItems), order.Code, req.RefundAmount.String(), req.Method),
			DataAfter:  models.Snapshot(note),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return note, nil
}
