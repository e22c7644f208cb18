package services

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"store-ledger/src/models"
)

type CreateQuoteRequest struct {
	PartnerID    *uuid.UUID
	CustomerName string
	Items        []OrderLineInput
	ReserveStock bool
	Note         *string
	Actor        string
}

// CreateQuote - A quote moves no stock and opens no debt; it may hold stock
// against its lines so a later conversion cannot be starved by other sales.
func (o *Orchestrator) CreateQuote(req CreateQuoteRequest) (*models.Quote, error) {
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: quote has no items", ErrValidation)
	}

	var quote *models.Quote
	err := o.DB.Transaction(func(tx *gorm.DB) error {
		code, err := o.Docs.NextCode(tx, models.CodePrefixQuote)
		if err != nil {
			return translateDBError(err)
		}

		items := make([]models.QuoteItem, 0, len(req.Items))
		total := decimal.Zero
		for _, line := range req.Items {
			if line.Quantity <= 0 {
				return fmt.Errorf("%w: line quantity must be positive", ErrValidation)
			}
			product, err := o.Stock.Repo.GetProductForUpdate(tx, line.ProductID)
			if err != nil {
				return translateDBError(err)
			}
			price := line.Price
			if price.IsZero() {
				price = product.RetailPrice
			}
			lineTotal := price.Mul(decimal.NewFromInt(int64(line.Quantity)))
			items = append(items, models.QuoteItem{
				ProductID:   product.ID,
				ProductName: product.Name,
				Quantity:    line.Quantity,
				Price:       price,
				Total:       lineTotal,
			})
			total = total.Add(lineTotal)

			if req.ReserveStock {
				if err := o.Stock.Reserve(tx, product.ID, line.Quantity); err != nil {
					return err
				}
			}
		}

		quote = &models.Quote{
			Code:          code,
			PartnerID:     req.PartnerID,
			CustomerName:  req.CustomerName,
			Items:         items,
			Total:         total,
			Status:        models.QuoteStatusDraft,
			StockReserved: req.ReserveStock,
			Note:          req.Note,
			CreatedBy:     req.Actor,
		}
		if err := tx.Create(quote).Error; err != nil {
			return translateDBError(err)
		}

		o.Audit.BestEffort(tx, &models.AuditLog{
			Actor:      req.Actor,
			Module:     "sales",
			EntityType: "quote",
			EntityID:   quote.ID.String(),
			EntityCode: quote.Code,
			Action:     models.AuditActionCreate,
			Summary:    fmt.Sprintf("Created quote %s (%d lines, total %s)", quote.Code, len(items), total.String()),
			DataAfter:  models.Snapshot(quote),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return quote, nil
}

type ConvertQuoteRequest struct {
	QuoteID       uuid.UUID
	AmountPaid    decimal.Decimal
	PaymentMethod models.PaymentMethod
	DueInDays     int
	Actor         string
}

// ConvertQuoteToOrder - Releases any hold the quote placed, then runs the
// full sale-order path on its lines in the same scope.
func (o *Orchestrator) ConvertQuoteToOrder(req ConvertQuoteRequest) (*models.Order, error) {
	var order *models.Order
	err := o.DB.Transaction(func(tx *gorm.DB) error {
		quote, err := o.Docs.GetQuoteForUpdate(tx, req.QuoteID)
		if err != nil {
			return translateDBError(err)
		}
		if quote.Status != models.QuoteStatusDraft {
			return fmt.Errorf("%w: quote %s is %s", ErrValidation, quote.Code, quote.Status)
		}

		if quote.StockReserved {
			for _, item := range quote.Items {
				if err := o.Stock.Release(tx, item.ProductID, item.Quantity); err != nil {
					return err
				}
			}
		}

		order, err = o.createSaleOrderInScope(tx, CreateSaleOrderRequest{
			PartnerID:     quote.PartnerID,
			CustomerName:  quote.CustomerName,
			Items:         quoteLines(quote),
			AmountPaid:    req.AmountPaid,
			PaymentMethod: req.PaymentMethod,
			DueInDays:     req.DueInDays,
			Actor:         req.Actor,
		})
		if err != nil {
			return err
		}

		err = tx.Model(&models.Quote{}).
			Where("id = ?", quote.ID).
			Updates(map[string]interface{}{
				"status":         models.QuoteStatusConverted,
				"stock_reserved": false,
				"order_id":       order.ID,
			}).Error
		if err != nil {
			return translateDBError(err)
		}

		o.Audit.BestEffort(tx, &models.AuditLog{
			Actor:      req.Actor,
			Module:     "sales",
			EntityType: "quote",
			EntityID:   quote.ID.String(),
			EntityCode: quote.Code,
			Action:     models.AuditActionUpdate,
			Summary:    fmt.Sprintf("Quote %s converted to order %s", quote.Code, order.Code),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// CancelQuote - Drops the document and gives back any held stock.
func (o *Orchestrator) CancelQuote(quoteID uuid.UUID, actor string) error {
	return o.DB.Transaction(func(tx *gorm.DB) error {
		quote, err := o.Docs.GetQuoteForUpdate(tx, quoteID)
		if err != nil {
			return translateDBError(err)
		}
		if quote.Status != models.QuoteStatusDraft {
			return fmt.Errorf("%w: quote %s is %s", ErrValidation, quote.Code, quote.Status)
		}

		if quote.StockReserved {
			for _, item := range quote.Items {
				if err := o.Stock.Release(tx, item.ProductID, item.Quantity); err != nil {
					return err
				}
			}
		}

		err = tx.Model(&models.Quote{}).
			Where("id = ?", quote.ID).
			Updates(map[string]interface{}{
				"status":         models.QuoteStatusCancelled,
				"stock_reserved": false,
			}).Error
		if err != nil {
			return translateDBError(err)
		}

		o.Audit.BestEffort(tx, &models.AuditLog{
			Actor:      actor,
			Module:     "sales",
			EntityType: "quote",
			EntityID:   quote.ID.String(),
			EntityCode: quote.Code,
			Action:     models.AuditActionCancel,
			Summary:    fmt.Sprintf("Quote %s cancelled", quote.Code),
		})
		return nil
	})
}

func quoteLines(quote *models.Quote) []OrderLineInput {
	lines := make([]OrderLineInput, 0, len(quote.Items))
	for _, item := range quote.Items {
		lines = append(lines, OrderLineInput{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}
	return lines
}
