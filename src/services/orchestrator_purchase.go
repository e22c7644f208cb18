package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"store-ledger/src/models"
)

// ============ IMPORT ORDERS ============

type ImportLineInput struct {
	ProductID uuid.UUID
	Quantity  int
	Price     decimal.Decimal
}

type CreateImportOrderRequest struct {
	SupplierID    *uuid.UUID
	SupplierName  string
	Items         []ImportLineInput
	AmountPaid    decimal.Decimal
	PaymentMethod models.PaymentMethod
	Status        models.ImportStatus
	DueInDays     int
	Note          *string
	Actor         string
}

// CreateImportOrder - Creates the document; when the caller says the goods
// are already in hand (received/completed) the inbound movements and the
// last-cost price updates apply immediately, and the unpaid remainder opens
// a payable. A pending import moves no stock until a receiving note arrives.
func (o *Orchestrator) CreateImportOrder(req CreateImportOrderRequest) (*models.ImportOrder, error) {
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: import order has no items", ErrValidation)
	}
	if req.Status == "" {
		req.Status = models.ImportStatusPending
	}
	if req.PaymentMethod == "" {
		req.PaymentMethod = models.PaymentMethodCash
	}
	for _, line := range req.Items {
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("%w: line quantity must be positive", ErrValidation)
		}
		if line.Price.IsNegative() {
			return nil, fmt.Errorf("%w: line price cannot be negative", ErrInvalidAmount)
		}
	}

	receiveNow := req.Status == models.ImportStatusReceived || req.Status == models.ImportStatusCompleted

	var imp *models.ImportOrder
	err := o.DB.Transaction(func(tx *gorm.DB) error {
		code, err := o.Docs.NextCode(tx, models.CodePrefixImportOrder)
		if err != nil {
			return translateDBError(err)
		}

		items := make([]models.ImportOrderItem, 0, len(req.Items))
		total := decimal.Zero
		for _, line := range req.Items {
			product, err := o.Stock.Repo.GetProductForUpdate(tx, line.ProductID)
			if err != nil {
				return translateDBError(err)
			}
			lineTotal := line.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
			received := 0
			if receiveNow {
				received = line.Quantity
			}
			items = append(items, models.ImportOrderItem{
				ProductID:        product.ID,
				ProductName:      product.Name,
				Quantity:         line.Quantity,
				ReceivedQuantity: received,
				Price:            line.Price,
				Total:            lineTotal,
			})
			total = total.Add(lineTotal)
		}

		imp = &models.ImportOrder{
			Code:          code,
			SupplierID:    req.SupplierID,
			SupplierName:  req.SupplierName,
			Items:         items,
			Total:         total,
			AmountPaid:    req.AmountPaid,
			PaymentMethod: req.PaymentMethod,
			Status:        req.Status,
			Note:          req.Note,
			CreatedBy:     req.Actor,
		}
		if err := tx.Create(imp).Error; err != nil {
			return translateDBError(err)
		}

		if receiveNow {
			for _, item := range imp.Items {
				_, err := o.Stock.ApplyMovement(tx, MovementRequest{
					ProductID:     item.ProductID,
					Type:          models.MovementTypeImport,
					ChangeAmount:  item.Quantity,
					ReferenceCode: imp.Code,
					Actor:         req.Actor,
				})
				if err != nil {
					return err
				}
				if err := o.Stock.UpdateImportPrice(tx, item.ProductID, item.Price); err != nil {
					return err
				}
			}
		}

		if req.AmountPaid.LessThan(total) && req.SupplierID != nil {
			_, err := o.Debt.CreateDebt(tx, CreateDebtRequest{
				PartnerID:   *req.SupplierID,
				PartnerName: req.SupplierName,
				OrderCode:   imp.Code,
				Type:        models.DebtTypePayable,
				TotalAmount: total,
				AmountPaid:  req.AmountPaid,
				DueInDays:   req.DueInDays,
			})
			if err != nil {
				return err
			}
		}

		if req.AmountPaid.GreaterThan(decimal.Zero) {
			_, err := o.Cash.Record(tx, CashEntryRequest{
				Type:          models.TransactionTypeExpense,
				Amount:        req.AmountPaid,
				Method:        req.PaymentMethod,
				ReferenceCode: imp.Code,
				Description:   fmt.Sprintf("Payment for import order %s", imp.Code),
				PartnerName:   req.SupplierName,
				Actor:         req.Actor,
			})
			if err != nil {
				return err
			}
		}

		o.Audit.BestEffort(tx, &models.AuditLog{
			Actor:      req.Actor,
			Module:     "purchasing",
			EntityType: "import_order",
			EntityID:   imp.ID.String(),
			EntityCode: imp.Code,
			Action:     models.AuditActionCreate,
			Summary:    fmt.Sprintf("Created import order %s (%d lines, total %s, status %s)", imp.Code, len(imp.Items), total.String(), imp.Status),
			DataAfter:  models.Snapshot(imp),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	o.Log.WithFields(logrus.Fields{
		"code":   imp.Code,
		"status": imp.Status,
	}).Info("import order created")
	return imp, nil
}

// ============ RECEIVING ============

type ReceivingLineInput struct {
	ProductID uuid.UUID
	Quantity  int
}

type AddReceivingNoteRequest struct {
	ImportOrderID uuid.UUID
	Items         []ReceivingLineInput
	LandedCost    decimal.Decimal
	Note          *string
	Actor         string
}

// AddReceivingNote - Books a partial (or full) receipt against a pending
// import. Each line is bounded by the still-receivable quantity; landed cost
// is allocated pro-rata by line value and folded into the effective unit
// cost before the last-cost price update. The allocation sums to the input
// exactly.
func (o *Orchestrator) AddReceivingNote(req AddReceivingNoteRequest) (*models.ReceivingNote, error) {
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: receiving note has no items", ErrValidation)
	}
	if req.LandedCost.IsNegative() {
		return nil, fmt.Errorf("%w: landed cost cannot be negative", ErrInvalidAmount)
	}

	var note *models.ReceivingNote
	err := o.DB.Transaction(func(tx *gorm.DB) error {
		imp, err := o.Docs.GetImportOrderForUpdate(tx, req.ImportOrderID)
		if err != nil {
			return translateDBError(err)
		}
		if imp.Status == models.ImportStatusCancelled {
			return fmt.Errorf("%w: import order %s is cancelled", ErrValidation, imp.Code)
		}

		itemsByProduct := make(map[uuid.UUID]*models.ImportOrderItem, len(imp.Items))
		for i := range imp.Items {
			itemsByProduct[imp.Items[i].ProductID] = &imp.Items[i]
		}

		// Bound check before any write.
		lineValues := make([]decimal.Decimal, 0, len(req.Items))
		for _, line := range req.Items {
			if line.Quantity <= 0 {
				return fmt.Errorf("%w: received quantity must be positive", ErrValidation)
			}
			orderItem, ok := itemsByProduct[line.ProductID]
			if !ok {
				return fmt.Errorf("%w: product %s is not on import order %s", ErrValidation, line.ProductID, imp.Code)
			}
			remaining := orderItem.Quantity - orderItem.ReceivedQuantity
			if line.Quantity > remaining {
				return &OverReceiptError{
					ProductName: orderItem.ProductName,
					Requested:   line.Quantity,
					Remaining:   remaining,
				}
			}
			lineValues = append(lineValues, orderItem.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
		}

		allocations := AllocateProRata(req.LandedCost, lineValues)

		code, err := o.Docs.NextCode(tx, models.CodePrefixReceivingNote)
		if err != nil {
			return translateDBError(err)
		}

		noteItems := make([]models.ReceivingNoteItem, 0, len(req.Items))
		for i, line := range req.Items {
			orderItem := itemsByProduct[line.ProductID]
			qty := decimal.NewFromInt(int64(line.Quantity))
			effectiveCost := lineValues[i].Add(allocations[i]).Div(qty).Round(2)

			noteItems = append(noteItems, models.ReceivingNoteItem{
				ProductID:         line.ProductID,
				ProductName:       orderItem.ProductName,
				Quantity:          line.Quantity,
				UnitPrice:         orderItem.Price,
				AllocatedCost:     allocations[i],
				EffectiveUnitCost: effectiveCost,
			})

			newReceived := orderItem.ReceivedQuantity + line.Quantity
			err = tx.Model(&models.ImportOrderItem{}).
				Where("id = ?", orderItem.ID).
				Update("received_quantity", newReceived).Error
			if err != nil {
				return translateDBError(err)
			}
			orderItem.ReceivedQuantity = newReceived

			_, err = o.Stock.ApplyMovement(tx, MovementRequest{
				ProductID:     line.ProductID,
				Type:          models.MovementTypeImport,
				ChangeAmount:  line.Quantity,
				ReferenceCode: code,
				Actor:         req.Actor,
			})
			if err != nil {
				return err
			}
			if err := o.Stock.UpdateImportPrice(tx, line.ProductID, effectiveCost); err != nil {
				return err
			}
		}

		note = &models.ReceivingNote{
			Code:          code,
			ImportOrderID: imp.ID,
			ImportCode:    imp.Code,
			Items:         noteItems,
			LandedCost:    req.LandedCost,
			Note:          req.Note,
			CreatedBy:     req.Actor,
		}
		if err := tx.Create(note).Error; err != nil {
			return translateDBError(err)
		}

		// Fully received imports advance to received.
		fullyReceived := true
		for _, item := range imp.Items {
			if item.ReceivedQuantity < item.Quantity {
				fullyReceived = false
				break
			}
		}
		if fullyReceived && imp.Status == models.ImportStatusPending {
			err = tx.Model(&models.ImportOrder{}).
				Where("id = ?", imp.ID).
				Update("status", models.ImportStatusReceived).Error
			if err != nil {
				return translateDBError(err)
			}
		}

		o.Audit.BestEffort(tx, &models.AuditLog{
			Actor:      req.Actor,
			Module:     "purchasing",
			EntityType: "receiving_note",
			EntityID:   note.ID.String(),
			EntityCode: note.Code,
			Action:     models.AuditActionReceive,
			Summary:    fmt.Sprintf("Received %d lines against import %s (landed cost %s)", len(noteItems), imp.Code, req.LandedCost.String()),
			DataAfter:  models.Snapshot(note),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return note, nil
}

// ============ PURCHASE RETURNS ============

type PurchaseReturnLineInput struct {
	ProductID uuid.UUID
	Quantity  int
	Price     decimal.Decimal
}

type AddPurchaseReturnNoteRequest struct {
	ImportOrderID uuid.UUID
	Items         []PurchaseReturnLineInput
	RefundAmount  decimal.Decimal
	Method        models.PaymentMethod
	Note          *string
	Actor         string
}

// AddPurchaseReturnNote - Returns stock actually taken in back to the
// supplier. Settlement runs exactly one of two paths: a deduction against
// the import's payable, or a cash/transfer refund into the journal.
func (o *Orchestrator) AddPurchaseReturnNote(req AddPurchaseReturnNoteRequest) (*models.PurchaseReturnNote, error) {
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: purchase return has no items", ErrValidation)
	}
	if req.RefundAmount.IsNegative() {
		return nil, fmt.Errorf("%w: refund amount cannot be negative", ErrInvalidAmount)
	}

	var note *models.PurchaseReturnNote
	err := o.DB.Transaction(func(tx *gorm.DB) error {
		imp, err := o.Docs.GetImportOrderForUpdate(tx, req.ImportOrderID)
		if err != nil {
			return translateDBError(err)
		}

		itemsByProduct := make(map[uuid.UUID]*models.ImportOrderItem, len(imp.Items))
		for i := range imp.Items {
			itemsByProduct[imp.Items[i].ProductID] = &imp.Items[i]
		}

		// You can only return what was actually received.
		for _, line := range req.Items {
			if line.Quantity <= 0 {
				return fmt.Errorf("%w: return quantity must be positive", ErrValidation)
			}
			orderItem, ok := itemsByProduct[line.ProductID]
			if !ok {
				return fmt.Errorf("%w: product %s is not on import order %s", ErrValidation, line.ProductID, imp.Code)
			}
			if line.Quantity > orderItem.ReceivedQuantity {
				return &ReturnExceedsError{
					ProductName: orderItem.ProductName,
					Requested:   line.Quantity,
					Received:    orderItem.ReceivedQuantity,
				}
			}
		}

		code, err := o.Docs.NextCode(tx, models.CodePrefixPurchaseReturn)
		if err != nil {
			return translateDBError(err)
		}

		noteItems := make([]models.PurchaseReturnNoteItem, 0, len(req.Items))
		for _, line := range req.Items {
			orderItem := itemsByProduct[line.ProductID]
			price := line.Price
			if price.IsZero() {
				price = orderItem.Price
			}
			noteItems = append(noteItems, models.PurchaseReturnNoteItem{
				ProductID:   line.ProductID,
				ProductName: orderItem.ProductName,
				Quantity:    line.Quantity,
				Price:       price,
				Total:       price.Mul(decimal.NewFromInt(int64(line.Quantity))),
			})

			newReceived := orderItem.ReceivedQuantity - line.Quantity
			err = tx.Model(&models.ImportOrderItem{}).
				Where("id = ?", orderItem.ID).
				Update("received_quantity", newReceived).Error
			if err != nil {
				return translateDBError(err)
			}
			orderItem.ReceivedQuantity = newReceived

			_, err = o.Stock.ApplyMovement(tx, MovementRequest{
				ProductID:     line.ProductID,
				Type:          models.MovementTypeReturnSupplier,
				ChangeAmount:  -line.Quantity,
				ReferenceCode: code,
				Actor:         req.Actor,
			})
			if err != nil {
				return err
			}
		}

		note = &models.PurchaseReturnNote{
			Code:          code,
			ImportOrderID: imp.ID,
			ImportCode:    imp.Code,
			SupplierName:  imp.SupplierName,
			Items:         noteItems,
			RefundAmount:  req.RefundAmount,
			Method:        req.Method,
			Note:          req.Note,
			CreatedBy:     req.Actor,
		}
		if err := tx.Create(note).Error; err != nil {
			return translateDBError(err)
		}

		if req.RefundAmount.GreaterThan(decimal.Zero) {
			if req.Method == models.PaymentMethodDebtDeduction {
				debt, err := o.Debt.Repo.GetDebtByOrderCode(tx, imp.Code, models.DebtTypePayable)
				if err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return fmt.Errorf("%w: no payable debt found for import %s", ErrNotFound, imp.Code)
					}
					return translateDBError(err)
				}
				if _, err := o.Debt.DeductForReturn(tx, debt.ID, req.RefundAmount, code); err != nil {
					return err
				}
			} else {
				_, err := o.Cash.Record(tx, CashEntryRequest{
					Type:          models.TransactionTypeIncome,
					Amount:        req.RefundAmount,
					Method:        req.Method,
					ReferenceCode: code,
					Description:   fmt.Sprintf("Refund from supplier for return %s (import %s)", code, imp.Code),
					PartnerName:   imp.SupplierName,
					Actor:         req.Actor,
				})
				if err != nil {
					return err
				}
			}
		}

		o.Audit.BestEffort(tx, &models.AuditLog{
			Actor:      req.Actor,
			Module:     "purchasing",
			EntityType: "purchase_return_note",
			EntityID:   note.ID.String(),
			EntityCode: note.Code,
			Action:     models.AuditActionReturn,
			Summary:    fmt.Sprintf("Returned %d lines to supplier against import %s (refund %s via %s)", len(noteItems), imp.Code, req.RefundAmount.String(), req.Method),
			DataAfter:  models.Snapshot(note),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return note, nil
}
