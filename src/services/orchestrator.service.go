package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"store-ledger/src/models"
	"store-ledger/src/repositories"
)

// Orchestrator is the only component that mutates more than one ledger.
// Every business operation runs as one db.Transaction scope spanning the
// document store and whichever ledgers it touches: all writes commit
// together or none do.
type Orchestrator struct {
	DB    *gorm.DB
	Stock *StockService
	Debt  *DebtService
	Cash  *CashService
	Audit *AuditService
	Docs  *repositories.DocumentRepository
	Log   *logrus.Logger
}

// NewOrchestrator wires the four ledger services against one database
// handle. No global state: independent instances can coexist.
func NewOrchestrator(db *gorm.DB, log *logrus.Logger) *Orchestrator {
	return &Orchestrator{
		DB:    db,
		Stock: &StockService{DB: db, Repo: &repositories.StockRepository{DB: db}},
		Debt:  &DebtService{DB: db, Repo: &repositories.DebtRepository{DB: db}, Log: log},
		Cash: &CashService{
			DB:   db,
			Repo: &repositories.CashRepository{DB: db},
			Docs: &repositories.DocumentRepository{DB: db},
		},
		Audit: &AuditService{Log: log},
		Docs:  &repositories.DocumentRepository{DB: db},
		Log:   log,
	}
}

// ============ SALE ORDERS ============

type OrderLineInput struct {
	ProductID uuid.UUID
	Quantity  int
	Price     decimal.Decimal
}

type CreateSaleOrderRequest struct {
	PartnerID     *uuid.UUID
	CustomerName  string
	Items         []OrderLineInput
	Discount      decimal.Decimal
	VATRate       decimal.Decimal
	AmountPaid    decimal.Decimal
	PaymentMethod models.PaymentMethod
	DueInDays     int
	Note          *string
	Actor         string
}

// CreateSaleOrder - Validates the cart against available stock, creates the
// order document, applies outbound movements per line, opens a receivable
// for any unpaid remainder and records the paid part in the cash journal.
func (o *Orchestrator) CreateSaleOrder(req CreateSaleOrderRequest) (*models.Order, error) {
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: order has no items", ErrValidation)
	}
	if req.AmountPaid.IsNegative() {
		return nil, fmt.Errorf("%w: amount paid cannot be negative", ErrInvalidAmount)
	}
	for _, line := range req.Items {
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("%w: line quantity must be positive", ErrValidation)
		}
		if line.Price.IsNegative() {
			return nil, fmt.Errorf("%w: line price cannot be negative", ErrInvalidAmount)
		}
	}

	var order *models.Order
	err := o.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		order, err = o.createSaleOrderInScope(tx, req)
		return err
	})
	if err != nil {
		return nil, err
	}

	o.Log.WithFields(logrus.Fields{
		"code":  order.Code,
		"total": order.Total.String(),
		"lines": len(order.Items),
	}).Info("sale order created")
	return order, nil
}

// createSaleOrderInScope carries the sale-order body so callers that already
// hold an atomic scope (quote conversion) can reuse it.
func (o *Orchestrator) createSaleOrderInScope(tx *gorm.DB, req CreateSaleOrderRequest) (*models.Order, error) {
	// Availability check under the same locks the movements will take.
	items := make([]models.OrderItem, 0, len(req.Items))
	subtotal := decimal.Zero
	for _, line := range req.Items {
		product, err := o.Stock.Repo.GetProductForUpdate(tx, line.ProductID)
		if err != nil {
			return nil, translateDBError(err)
		}
		if line.Quantity > product.AvailableStock() {
			return nil, &StockShortError{
				ProductName: product.Name,
				Requested:   line.Quantity,
				Available:   product.AvailableStock(),
			}
		}
		lineTotal := line.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		items = append(items, models.OrderItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    line.Quantity,
			Price:       line.Price,
			Total:       lineTotal,
		})
		subtotal = subtotal.Add(lineTotal)
	}

	vatAmount := subtotal.Sub(req.Discount).Mul(req.VATRate).Round(2)
	if vatAmount.IsNegative() {
		vatAmount = decimal.Zero
	}
	total := subtotal.Sub(req.Discount).Add(vatAmount)
	if total.IsNegative() {
		return nil, fmt.Errorf("%w: discount exceeds order value", ErrInvalidAmount)
	}

	code, err := o.Docs.NextCode(tx, models.CodePrefixOrder)
	if err != nil {
		return nil, translateDBError(err)
	}

	status := models.OrderStatusProcessing
	paymentStatus := models.PaymentStatusUnpaid
	switch {
	case req.AmountPaid.GreaterThanOrEqual(total):
		status = models.OrderStatusCompleted
		paymentStatus = models.PaymentStatusPaid
	case req.AmountPaid.GreaterThan(decimal.Zero):
		paymentStatus = models.PaymentStatusPartial
	}

	order := &models.Order{
		Code:          code,
		PartnerID:     req.PartnerID,
		CustomerName:  req.CustomerName,
		Items:         items,
		Subtotal:      subtotal,
		Discount:      req.Discount,
		VATAmount:     vatAmount,
		Total:         total,
		AmountPaid:    req.AmountPaid,
		PaymentMethod: req.PaymentMethod,
		Status:        status,
		PaymentStatus: paymentStatus,
		Note:          req.Note,
		CreatedBy:     req.Actor,
	}
	if err := tx.Create(order).Error; err != nil {
		return nil, translateDBError(err)
	}

	for _, item := range order.Items {
		_, err := o.Stock.ApplyMovement(tx, MovementRequest{
			ProductID:     item.ProductID,
			Type:          models.MovementTypeSale,
			ChangeAmount:  -item.Quantity,
			ReferenceCode: order.Code,
			Actor:         req.Actor,
		})
		if err != nil {
			return nil, err
		}
	}

	if req.AmountPaid.LessThan(total) && req.PartnerID != nil {
		_, err := o.Debt.CreateDebt(tx, CreateDebtRequest{
			PartnerID:   *req.PartnerID,
			PartnerName: req.CustomerName,
			OrderCode:   order.Code,
			Type:        models.DebtTypeReceivable,
			TotalAmount: total,
			AmountPaid:  req.AmountPaid,
			DueInDays:   req.DueInDays,
		})
		if err != nil {
			return nil, err
		}
	}

	if req.AmountPaid.GreaterThan(decimal.Zero) {
		_, err := o.Cash.Record(tx, CashEntryRequest{
			Type:          models.TransactionTypeIncome,
			Amount:        req.AmountPaid,
			Method:        req.PaymentMethod,
			ReferenceCode: order.Code,
			Description:   fmt.Sprintf("Payment for sale order %s", order.Code),
			PartnerName:   req.CustomerName,
			Actor:         req.Actor,
		})
		if err != nil {
			return nil, err
		}
	}

	o.Audit.BestEffort(tx, &models.AuditLog{
		Actor:      req.Actor,
		Module:     "sales",
		EntityType: "order",
		EntityID:   order.ID.String(),
		EntityCode: order.Code,
		Action:     models.AuditActionCreate,
		Summary:    fmt.Sprintf("Created sale order %s (%d lines, total %s)", order.Code, len(order.Items), total.String()),
		DataAfter:  models.Snapshot(order),
	})
	return order, nil
}

// CancelSaleOrder - Restores stock line by line with inverse movements and
// marks the order cancelled. Idempotent: a cancelled order is never reversed
// a second time, so stock cannot creep upward from repeated cancels.
func (o *Orchestrator) CancelSaleOrder(orderID uuid.UUID, actor string) (*models.Order, error) {
	var order *models.Order
	err := o.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		order, err = o.Docs.GetOrderForUpdate(tx, orderID)
		if err != nil {
			return translateDBError(err)
		}
		if order.LockedAt != nil {
			return fmt.Errorf("%w: order %s", ErrDocumentLocked, order.Code)
		}
		if order.Status == models.OrderStatusCancelled {
			// Already reversed; nothing further to undo.
			return nil
		}

		before := models.Snapshot(order)

		for _, item := range order.Items {
			// Goods already taken back by return notes are not restored twice.
			restore := item.Quantity - item.ReturnedQuantity
			if restore <= 0 {
				continue
			}
			_, err := o.Stock.ApplyMovement(tx, MovementRequest{
				ProductID:     item.ProductID,
				Type:          models.MovementTypeSale,
				ChangeAmount:  restore,
				ReferenceCode: order.Code,
				Actor:         actor,
			})
			if err != nil {
				return err
			}
		}

		// Void any open receivable raised by this order; a settled one stays
		// on record, its collected amount joins the refund below.
		refund := order.AmountPaid
		debt, err := o.Debt.Repo.GetDebtByOrderCode(tx, order.Code, models.DebtTypeReceivable)
		switch {
		case err == nil:
			collected := debt.TotalAmount.Sub(debt.RemainingAmount)
			if collected.IsNegative() {
				collected = decimal.Zero
			}
			switch debt.Status {
			case models.DebtStatusVoid:
				// previous cancel attempt already handled it
			case models.DebtStatusPaid:
				refund = refund.Add(collected)
			default:
				if err := o.Debt.adjustPartnerTotal(tx, debt.PartnerID, debt.RemainingAmount.Neg()); err != nil {
					return err
				}
				err = tx.Model(&models.DebtRecord{}).
					Where("id = ?", debt.ID).
					Updates(map[string]interface{}{
						"remaining_amount": decimal.Zero,
						"status":           models.DebtStatusVoid,
					}).Error
				if err != nil {
					return translateDBError(err)
				}
				refund = refund.Add(collected)
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			// fully paid order, no debt to void
		default:
			return translateDBError(err)
		}

		// Everything collected, upfront and via later debt payments, goes
		// back out as one expense entry.
		if refund.GreaterThan(decimal.Zero) {
			_, err := o.Cash.Record(tx, CashEntryRequest{
				Type:          models.TransactionTypeExpense,
				Amount:        refund,
				Method:        order.PaymentMethod,
				ReferenceCode: order.Code,
				Description:   fmt.Sprintf("Refund for cancelled order %s", order.Code),
				PartnerName:   order.CustomerName,
				Actor:         actor,
			})
			if err != nil {
				return err
			}
		}

		err = tx.Model(&models.Order{}).
			Where("id = ?", order.ID).
			Update("status", models.OrderStatusCancelled).Error
		if err != nil {
			return translateDBError(err)
		}
		order.Status = models.OrderStatusCancelled

		o.Audit.BestEffort(tx, &models.AuditLog{
			Actor:      actor,
			Module:     "sales",
			EntityType: "order",
			EntityID:   order.ID.String(),
			EntityCode: order.Code,
			Action:     models.AuditActionCancel,
			Summary:    fmt.Sprintf("Cancelled sale order %s, stock restored for %d lines", order.Code, len(order.Items)),
			DataBefore: before,
			DataAfter:  models.Snapshot(order),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// DeleteSaleOrder - Hard delete, allowed only after the reversal path has
// run. Anything still live must go through CancelSaleOrder first.
func (o *Orchestrator) DeleteSaleOrder(orderID uuid.UUID, actor string) error {
	return o.DB.Transaction(func(tx *gorm.DB) error {
		order, err := o.Docs.GetOrderForUpdate(tx, orderID)
		if err != nil {
			return translateDBError(err)
		}
		if order.Status != models.OrderStatusCancelled {
			return fmt.Errorf("%w: only cancelled orders can be deleted", ErrValidation)
		}

		if err := tx.Where("order_id = ?", order.ID).Delete(&models.OrderItem{}).Error; err != nil {
			return translateDBError(err)
		}
		if err := tx.Delete(&models.Order{}, "id = ?", order.ID).Error; err != nil {
			return translateDBError(err)
		}

		o.Audit.BestEffort(tx, &models.AuditLog{
			Actor:      actor,
			Module:     "sales",
			EntityType: "order",
			EntityID:   order.ID.String(),
			EntityCode: order.Code,
			Action:     models.AuditActionDelete,
			Summary:    fmt.Sprintf("Deleted cancelled sale order %s", order.Code),
			DataBefore: models.Snapshot(order),
		})
		return nil
	})
}

// UpdateOrderStatus - Walks the state machine one step. A locked document
// refuses all transitions. Cancellation is not a plain status write, so it
// always goes through CancelSaleOrder, which also accepts completed orders
// (a fully paid sale can still be unwound).
func (o *Orchestrator) UpdateOrderStatus(orderID uuid.UUID, next models.OrderStatus, actor string) (*models.Order, error) {
	if next == models.OrderStatusCancelled {
		return o.CancelSaleOrder(orderID, actor)
	}

	var order *models.Order
	err := o.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		order, err = o.Docs.GetOrderForUpdate(tx, orderID)
		if err != nil {
			return translateDBError(err)
		}
		if order.LockedAt != nil {
			return fmt.Errorf("%w: order %s", ErrDocumentLocked, order.Code)
		}
		if !models.CanTransitionOrder(order.Status, next) {
			return fmt.Errorf("%w: cannot move order %s from %s to %s",
				ErrValidation, order.Code, order.Status, next)
		}

		previous := order.Status
		err = tx.Model(&models.Order{}).
			Where("id = ?", order.ID).
			Update("status", next).Error
		if err != nil {
			return translateDBError(err)
		}
		order.Status = next

		o.Audit.BestEffort(tx, &models.AuditLog{
			Actor:      actor,
			Module:     "sales",
			EntityType: "order",
			EntityID:   order.ID.String(),
			EntityCode: order.Code,
			Action:     models.AuditActionUpdate,
			Summary:    fmt.Sprintf("Order %s moved from %s to %s", order.Code, previous, next),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// LockOrder - Sets lockedAt; from then on the document refuses status
// transitions and item edits.
func (o *Orchestrator) LockOrder(orderID uuid.UUID, actor string) (*models.Order, error) {
	var order *models.Order
	err := o.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		order, err = o.Docs.GetOrderForUpdate(tx, orderID)
		if err != nil {
			return translateDBError(err)
		}
		if order.LockedAt != nil {
			return nil
		}
		now := time.Now()
		err = tx.Model(&models.Order{}).
			Where("id = ?", order.ID).
			Update("locked_at", now).Error
		if err != nil {
			return translateDBError(err)
		}
		order.LockedAt = &now

		o.Audit.BestEffort(tx, &models.AuditLog{
			Actor:      actor,
			Module:     "sales",
			EntityType: "order",
			EntityID:   order.ID.String(),
			EntityCode: order.Code,
			Action:     models.AuditActionUpdate,
			Summary:    fmt.Sprintf("Order %s locked", order.Code),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// AdjustStock - Manual correction (stock take). One adjustment movement plus
// its audit entry in one scope.
func (o *Orchestrator) AdjustStock(productID uuid.UUID, change int, note *string, actor string) (*models.InventoryLog, error) {
	var entry *models.InventoryLog
	err := o.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		entry, err = o.Stock.ApplyMovement(tx, MovementRequest{
			ProductID:    productID,
			Type:         models.MovementTypeAdjustment,
			ChangeAmount: change,
			Note:         note,
			Actor:        actor,
		})
		if err != nil {
			return err
		}

		o.Audit.BestEffort(tx, &models.AuditLog{
			Actor:      actor,
			Module:     "inventory",
			EntityType: "product",
			EntityID:   productID.String(),
			Action:     models.AuditActionAdjust,
			Summary:    fmt.Sprintf("Stock adjusted by %d (%d -> %d)", change, entry.OldStock, entry.NewStock),
			DataAfter:  models.Snapshot(entry),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}
