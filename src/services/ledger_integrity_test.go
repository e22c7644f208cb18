package services_test

import (
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"store-ledger/src/models"
	"store-ledger/src/services"
)

var (
	testDB  *gorm.DB
	testSvc *services.Orchestrator
)

func setupTestDB(dsn string) *gorm.DB {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		panic("failed to connect database")
	}

	// Auto migrate
	db.AutoMigrate(
		&models.Product{},
		&models.Partner{},
		&models.InventoryLog{},
		&models.DebtRecord{},
		&models.DebtPayment{},
		&models.Transaction{},
		&models.AuditLog{},
		&models.DocumentSequence{},
		&models.Order{},
		&models.OrderItem{},
		&models.ImportOrder{},
		&models.ImportOrderItem{},
		&models.ReceivingNote{},
		&models.ReceivingNoteItem{},
		&models.ReturnNote{},
		&models.ReturnNoteItem{},
		&models.PurchaseReturnNote{},
		&models.PurchaseReturnNoteItem{},
		&models.Quote{},
		&models.QuoteItem{},
	)

	return db
}

func cleanupTestDB(db *gorm.DB) {
	db.Exec(`TRUNCATE products, partners, inventory_logs, debt_records, debt_payments,
		transactions, audit_logs, document_sequences, orders, order_items,
		import_orders, import_order_items, receiving_notes, receiving_note_items,
		return_notes, return_note_items, purchase_return_notes,
		purchase_return_note_items, quotes, quote_items RESTART IDENTITY CASCADE`)
}

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn != "" {
		fmt.Println("Setting up test database...")
		testDB = setupTestDB(dsn)
		cleanupTestDB(testDB)

		log := logrus.New()
		log.SetLevel(logrus.ErrorLevel)
		testSvc = services.NewOrchestrator(testDB, log)
	}

	code := m.Run()

	if testDB != nil {
		cleanupTestDB(testDB)
	}

	os.Exit(code)
}

// requireDB skips DB-backed scenarios when TEST_DATABASE_URL is not set, so
// the pure tests in this package still run everywhere.
func requireDB(t *testing.T) {
	t.Helper()
	if testDB == nil {
		t.Skip("TEST_DATABASE_URL not set")
	}
}

func createTestProduct(t *testing.T, sku string, stock int, retailPrice int64) *models.Product {
	t.Helper()
	product := &models.Product{
		SKU:         sku,
		Name:        "Test Product " + sku,
		Unit:        "pcs",
		Stock:       stock,
		ImportPrice: decimal.NewFromInt(retailPrice / 2),
		RetailPrice: decimal.NewFromInt(retailPrice),
	}
	require.NoError(t, testDB.Create(product).Error)
	return product
}

func createTestPartner(t *testing.T, name string, partnerType models.PartnerType) *models.Partner {
	t.Helper()
	partner := &models.Partner{Name: name, Type: partnerType}
	require.NoError(t, testDB.Create(partner).Error)
	return partner
}

func reloadProduct(t *testing.T, id uuid.UUID) *models.Product {
	t.Helper()
	var product models.Product
	require.NoError(t, testDB.First(&product, "id = ?", id).Error)
	return &product
}

func countLogs(t *testing.T, productID uuid.UUID) int64 {
	t.Helper()
	var n int64
	require.NoError(t, testDB.Model(&models.InventoryLog{}).
		Where("product_id = ?", productID).Count(&n).Error)
	return n
}

func countCashEntries(t *testing.T, refCode string, txnType models.TransactionType) int64 {
	t.Helper()
	var n int64
	require.NoError(t, testDB.Model(&models.Transaction{}).
		Where("reference_code = ? AND type = ?", refCode, txnType).Count(&n).Error)
	return n
}

func assertZeroDrift(t *testing.T, productID uuid.UUID) {
	t.Helper()
	result, err := testSvc.Stock.Reconcile(productID)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Drift, "stock drifted from its movement log")
}

// ============ TEST SCENARIO 1: SALE ORDER LIFECYCLE ============
func TestSaleOrderLifecycle(t *testing.T) {
	requireDB(t)

	product := createTestProduct(t, "LIFE-001", 50, 20000)
	partner := createTestPartner(t, "Lifecycle Customer", models.PartnerTypeCustomer)

	var order *models.Order

	t.Run("SC1: Partial payment opens a receivable and books the cash", func(t *testing.T) {
		var err error
		order, err = testSvc.CreateSaleOrder(services.CreateSaleOrderRequest{
			PartnerID:    &partner.ID,
			CustomerName: partner.Name,
			Items: []services.OrderLineInput{
				{ProductID: product.ID, Quantity: 10, Price: decimal.NewFromInt(20000)},
			},
			AmountPaid:    decimal.NewFromInt(100000),
			PaymentMethod: models.PaymentMethodCash,
			Actor:         "tester",
		})
		require.NoError(t, err)
		assert.Regexp(t, `^DH-\d{6}$`, order.Code)
		assert.Equal(t, models.OrderStatusProcessing, order.Status)
		assert.True(t, decimal.NewFromInt(200000).Equal(order.Total))

		assert.Equal(t, 40, reloadProduct(t, product.ID).Stock)

		var debt models.DebtRecord
		require.NoError(t, testDB.First(&debt, "order_code = ?", order.Code).Error)
		assert.Equal(t, models.DebtTypeReceivable, debt.Type)
		assert.True(t, decimal.NewFromInt(100000).Equal(debt.RemainingAmount))
		assert.Equal(t, models.DebtStatusPartial, debt.Status)

		assert.Equal(t, int64(1), countCashEntries(t, order.Code, models.TransactionTypeIncome))
	})

	t.Run("SC2: Cancel restores stock, voids the debt and refunds the cash", func(t *testing.T) {
		cancelled, err := testSvc.CancelSaleOrder(order.ID, "tester")
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusCancelled, cancelled.Status)

		assert.Equal(t, 50, reloadProduct(t, product.ID).Stock)

		var debt models.DebtRecord
		require.NoError(t, testDB.First(&debt, "order_code = ?", order.Code).Error)
		assert.Equal(t, models.DebtStatusVoid, debt.Status)
		assert.True(t, debt.RemainingAmount.IsZero())

		assert.Equal(t, int64(1), countCashEntries(t, order.Code, models.TransactionTypeExpense))
	})

	t.Run("SC3: Cancelling again is a no-op", func(t *testing.T) {
		logsBefore := countLogs(t, product.ID)

		_, err := testSvc.CancelSaleOrder(order.ID, "tester")
		require.NoError(t, err)

		assert.Equal(t, logsBefore, countLogs(t, product.ID))
		assert.Equal(t, int64(1), countCashEntries(t, order.Code, models.TransactionTypeExpense))
		assert.Equal(t, 50, reloadProduct(t, product.ID).Stock)
	})

	t.Run("SC4: Stock replays to zero drift after the round trip", func(t *testing.T) {
		assertZeroDrift(t, product.ID)
	})
}

// ============ TEST SCENARIO 2: NO NEGATIVE STOCK ============
func TestNoNegativeStock(t *testing.T) {
	requireDB(t)

	product := createTestProduct(t, "NEG-001", 5, 10000)

	t.Run("SC1: Oversized sale is rejected and leaves no trace", func(t *testing.T) {
		_, err := testSvc.CreateSaleOrder(services.CreateSaleOrderRequest{
			CustomerName: "Walk-in",
			Items: []services.OrderLineInput{
				{ProductID: product.ID, Quantity: 10, Price: decimal.NewFromInt(10000)},
			},
			AmountPaid: decimal.NewFromInt(100000),
			Actor:      "tester",
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, services.ErrInsufficientStock)

		var short *services.StockShortError
		require.ErrorAs(t, err, &short)
		assert.Equal(t, 10, short.Requested)
		assert.Equal(t, 5, short.Available)

		assert.Equal(t, 5, reloadProduct(t, product.ID).Stock)
		assert.Equal(t, int64(0), countLogs(t, product.ID))

		var orders int64
		testDB.Model(&models.Order{}).Where("customer_name = ?", "Walk-in").Count(&orders)
		assert.Equal(t, int64(0), orders)
	})

	t.Run("SC2: Selling exactly the on-hand quantity is fine", func(t *testing.T) {
		order, err := testSvc.CreateSaleOrder(services.CreateSaleOrderRequest{
			CustomerName: "Walk-in",
			Items: []services.OrderLineInput{
				{ProductID: product.ID, Quantity: 5, Price: decimal.NewFromInt(10000)},
			},
			AmountPaid:    decimal.NewFromInt(50000),
			PaymentMethod: models.PaymentMethodCash,
			Actor:         "tester",
		})
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusCompleted, order.Status)
		assert.Equal(t, 0, reloadProduct(t, product.ID).Stock)
	})
}

// ============ TEST SCENARIO 3: PARTIAL RECEIPT AND SUPPLIER RETURN ============
func TestPartialReceiptAndSupplierReturn(t *testing.T) {
	requireDB(t)

	product := createTestProduct(t, "IMP-001", 0, 20000)
	supplier := createTestPartner(t, "Receipt Supplier", models.PartnerTypeSupplier)

	imp, err := testSvc.CreateImportOrder(services.CreateImportOrderRequest{
		SupplierID:   &supplier.ID,
		SupplierName: supplier.Name,
		Items: []services.ImportLineInput{
			{ProductID: product.ID, Quantity: 20, Price: decimal.NewFromInt(10000)},
		},
		Actor: "tester",
	})
	require.NoError(t, err)
	require.Equal(t, models.ImportStatusPending, imp.Status)

	t.Run("SC1: Pending import opens a payable but moves no stock", func(t *testing.T) {
		assert.Equal(t, 0, reloadProduct(t, product.ID).Stock)

		var debt models.DebtRecord
		require.NoError(t, testDB.First(&debt, "order_code = ?", imp.Code).Error)
		assert.Equal(t, models.DebtTypePayable, debt.Type)
		assert.True(t, decimal.NewFromInt(200000).Equal(debt.RemainingAmount))
	})

	t.Run("SC2: Receiving 12 of 20 folds landed cost into unit cost", func(t *testing.T) {
		note, err := testSvc.AddReceivingNote(services.AddReceivingNoteRequest{
			ImportOrderID: imp.ID,
			Items: []services.ReceivingLineInput{
				{ProductID: product.ID, Quantity: 12},
			},
			LandedCost: decimal.NewFromInt(30000),
			Actor:      "tester",
		})
		require.NoError(t, err)
		assert.Regexp(t, `^NK-\d{6}$`, note.Code)

		// (12*10000 + 30000) / 12 = 12500
		require.Len(t, note.Items, 1)
		assert.True(t, decimal.NewFromInt(12500).Equal(note.Items[0].EffectiveUnitCost))

		updated := reloadProduct(t, product.ID)
		assert.Equal(t, 12, updated.Stock)
		assert.True(t, decimal.NewFromInt(12500).Equal(updated.ImportPrice))
	})

	t.Run("SC3: Receiving more than the remainder is rejected", func(t *testing.T) {
		_, err := testSvc.AddReceivingNote(services.AddReceivingNoteRequest{
			ImportOrderID: imp.ID,
			Items: []services.ReceivingLineInput{
				{ProductID: product.ID, Quantity: 10},
			},
			Actor: "tester",
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, services.ErrOverReceipt)

		var over *services.OverReceiptError
		require.ErrorAs(t, err, &over)
		assert.Equal(t, 8, over.Remaining)
	})

	t.Run("SC4: Returning more than was received is rejected", func(t *testing.T) {
		_, err := testSvc.AddPurchaseReturnNote(services.AddPurchaseReturnNoteRequest{
			ImportOrderID: imp.ID,
			Items: []services.PurchaseReturnLineInput{
				{ProductID: product.ID, Quantity: 13},
			},
			RefundAmount: decimal.NewFromInt(130000),
			Method:       models.PaymentMethodCash,
			Actor:        "tester",
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, services.ErrReturnExceeds)
	})

	t.Run("SC5: Returning 5 with a cash refund books supplier money in", func(t *testing.T) {
		note, err := testSvc.AddPurchaseReturnNote(services.AddPurchaseReturnNoteRequest{
			ImportOrderID: imp.ID,
			Items: []services.PurchaseReturnLineInput{
				{ProductID: product.ID, Quantity: 5},
			},
			RefundAmount: decimal.NewFromInt(50000),
			Method:       models.PaymentMethodCash,
			Actor:        "tester",
		})
		require.NoError(t, err)
		assert.Regexp(t, `^THN-\d{6}$`, note.Code)

		assert.Equal(t, 7, reloadProduct(t, product.ID).Stock)
		assert.Equal(t, int64(1), countCashEntries(t, note.Code, models.TransactionTypeIncome))

		var item models.ImportOrderItem
		require.NoError(t, testDB.First(&item, "import_order_id = ?", imp.ID).Error)
		assert.Equal(t, 7, item.ReceivedQuantity)
	})

	t.Run("SC6: The movement log still replays cleanly", func(t *testing.T) {
		assertZeroDrift(t, product.ID)
	})
}

// ============ TEST SCENARIO 4: DEBT OVERPAYMENT CLAMP ============
func TestDebtOverpaymentClamp(t *testing.T) {
	requireDB(t)

	product := createTestProduct(t, "DEBT-001", 30, 15000)
	partner := createTestPartner(t, "Clamp Customer", models.PartnerTypeCustomer)

	order, err := testSvc.CreateSaleOrder(services.CreateSaleOrderRequest{
		PartnerID:    &partner.ID,
		CustomerName: partner.Name,
		Items: []services.OrderLineInput{
			{ProductID: product.ID, Quantity: 10, Price: decimal.NewFromInt(15000)},
		},
		AmountPaid:    decimal.NewFromInt(50000),
		PaymentMethod: models.PaymentMethodCash,
		Actor:         "tester",
	})
	require.NoError(t, err)

	var debt models.DebtRecord
	require.NoError(t, testDB.First(&debt, "order_code = ?", order.Code).Error)
	require.True(t, decimal.NewFromInt(100000).Equal(debt.RemainingAmount))

	t.Run("SC1: Paying more than remaining clamps at zero and flags the excess", func(t *testing.T) {
		updated, err := testSvc.AddPaymentToDebt(services.AddPaymentRequest{
			DebtID: debt.ID,
			Amount: decimal.NewFromInt(150000),
			Method: models.PaymentMethodTransfer,
			Date:   time.Now(),
			Actor:  "tester",
		})
		require.NoError(t, err)

		assert.True(t, updated.RemainingAmount.IsZero())
		assert.Equal(t, models.DebtStatusPaid, updated.Status)

		var payment models.DebtPayment
		require.NoError(t, testDB.First(&payment, "debt_id = ?", debt.ID).Error)
		assert.True(t, decimal.NewFromInt(50000).Equal(payment.ExcessAmount))
	})

	t.Run("SC2: Partner's cached total returns to zero, not negative", func(t *testing.T) {
		var reloaded models.Partner
		require.NoError(t, testDB.First(&reloaded, "id = ?", partner.ID).Error)
		assert.True(t, reloaded.DebtTotal.IsZero())
	})

	t.Run("SC3: Zero and negative payments are rejected", func(t *testing.T) {
		_, err := testSvc.AddPaymentToDebt(services.AddPaymentRequest{
			DebtID: debt.ID,
			Amount: decimal.Zero,
			Method: models.PaymentMethodCash,
			Actor:  "tester",
		})
		assert.ErrorIs(t, err, services.ErrInvalidAmount)
	})
}

// ============ TEST SCENARIO 5: BATCH PAYMENT ============
func TestBatchPayment(t *testing.T) {
	requireDB(t)

	product := createTestProduct(t, "BATCH-001", 100, 10000)
	partner := createTestPartner(t, "Batch Customer", models.PartnerTypeCustomer)

	makeDebt := func(qty int, dueInDays int) *models.Order {
		order, err := testSvc.CreateSaleOrder(services.CreateSaleOrderRequest{
			PartnerID:    &partner.ID,
			CustomerName: partner.Name,
			Items: []services.OrderLineInput{
				{ProductID: product.ID, Quantity: qty, Price: decimal.NewFromInt(10000)},
			},
			DueInDays: dueInDays,
			Actor:     "tester",
		})
		require.NoError(t, err)
		return order
	}

	oldOrder := makeDebt(10, 10) // 100000, due sooner
	newOrder := makeDebt(5, 20)  // 50000, due later

	t.Run("SC1: Payment flows oldest due first", func(t *testing.T) {
		result, err := testSvc.BatchProcessDebtPayment(services.BatchPaymentRequest{
			PartnerID: partner.ID,
			Type:      models.DebtTypeReceivable,
			Amount:    decimal.NewFromInt(120000),
			Method:    models.PaymentMethodTransfer,
			Date:      time.Now(),
			Actor:     "tester",
		})
		require.NoError(t, err)

		assert.True(t, decimal.NewFromInt(120000).Equal(result.Allocated))
		assert.True(t, result.Unapplied.IsZero())

		var oldDebt, newDebt models.DebtRecord
		require.NoError(t, testDB.First(&oldDebt, "order_code = ?", oldOrder.Code).Error)
		require.NoError(t, testDB.First(&newDebt, "order_code = ?", newOrder.Code).Error)

		assert.Equal(t, models.DebtStatusPaid, oldDebt.Status)
		assert.True(t, decimal.NewFromInt(30000).Equal(newDebt.RemainingAmount))
	})

	t.Run("SC2: Overshoot reports the unapplied remainder", func(t *testing.T) {
		result, err := testSvc.BatchProcessDebtPayment(services.BatchPaymentRequest{
			PartnerID: partner.ID,
			Type:      models.DebtTypeReceivable,
			Amount:    decimal.NewFromInt(40000),
			Method:    models.PaymentMethodTransfer,
			Date:      time.Now(),
			Actor:     "tester",
		})
		require.NoError(t, err)

		assert.True(t, decimal.NewFromInt(30000).Equal(result.Allocated))
		assert.True(t, decimal.NewFromInt(10000).Equal(result.Unapplied))
	})

	t.Run("SC3: Nothing left to pay is a not-found", func(t *testing.T) {
		_, err := testSvc.BatchProcessDebtPayment(services.BatchPaymentRequest{
			PartnerID: partner.ID,
			Type:      models.DebtTypeReceivable,
			Amount:    decimal.NewFromInt(1000),
			Method:    models.PaymentMethodCash,
			Actor:     "tester",
		})
		assert.ErrorIs(t, err, services.ErrNotFound)
	})
}

// ============ TEST SCENARIO 6: CUSTOMER RETURN ============
func TestCustomerReturn(t *testing.T) {
	requireDB(t)

	product := createTestProduct(t, "RET-001", 20, 20000)

	order, err := testSvc.CreateSaleOrder(services.CreateSaleOrderRequest{
		CustomerName: "Returning Customer",
		Items: []services.OrderLineInput{
			{ProductID: product.ID, Quantity: 10, Price: decimal.NewFromInt(20000)},
		},
		AmountPaid:    decimal.NewFromInt(200000),
		PaymentMethod: models.PaymentMethodCash,
		Actor:         "tester",
	})
	require.NoError(t, err)

	t.Run("SC1: Returning more than was sold is rejected", func(t *testing.T) {
		_, err := testSvc.AddReturnNote(services.AddReturnNoteRequest{
			OrderID: order.ID,
			Items: []services.ReturnLineInput{
				{ProductID: product.ID, Quantity: 11},
			},
			RefundAmount: decimal.NewFromInt(220000),
			Method:       models.PaymentMethodCash,
			Actor:        "tester",
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, services.ErrReturnExceeds)
	})

	t.Run("SC2: A valid return restores stock and refunds through the journal", func(t *testing.T) {
		note, err := testSvc.AddReturnNote(services.AddReturnNoteRequest{
			OrderID: order.ID,
			Items: []services.ReturnLineInput{
				{ProductID: product.ID, Quantity: 3},
			},
			RefundAmount: decimal.NewFromInt(60000),
			Method:       models.PaymentMethodCash,
			Actor:        "tester",
		})
		require.NoError(t, err)
		assert.Regexp(t, `^TH-\d{6}$`, note.Code)

		assert.Equal(t, 13, reloadProduct(t, product.ID).Stock)
		assert.Equal(t, int64(1), countCashEntries(t, note.Code, models.TransactionTypeExpense))
		assertZeroDrift(t, product.ID)
	})

	t.Run("SC3: The bound is cumulative across notes", func(t *testing.T) {
		_, err := testSvc.AddReturnNote(services.AddReturnNoteRequest{
			OrderID: order.ID,
			Items: []services.ReturnLineInput{
				{ProductID: product.ID, Quantity: 8},
			},
			RefundAmount: decimal.NewFromInt(160000),
			Method:       models.PaymentMethodCash,
			Actor:        "tester",
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, services.ErrReturnExceeds)

		var exceeds *services.ReturnExceedsError
		require.ErrorAs(t, err, &exceeds)
		assert.Equal(t, 8, exceeds.Requested)
		assert.Equal(t, 7, exceeds.Received)

		assert.Equal(t, 13, reloadProduct(t, product.ID).Stock)
	})

	t.Run("SC4: Duplicate lines for one product count together", func(t *testing.T) {
		_, err := testSvc.AddReturnNote(services.AddReturnNoteRequest{
			OrderID: order.ID,
			Items: []services.ReturnLineInput{
				{ProductID: product.ID, Quantity: 4},
				{ProductID: product.ID, Quantity: 4},
			},
			RefundAmount: decimal.NewFromInt(160000),
			Method:       models.PaymentMethodCash,
			Actor:        "tester",
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, services.ErrReturnExceeds)
		assert.Equal(t, 13, reloadProduct(t, product.ID).Stock)
	})

	t.Run("SC5: The remainder can come back, then the line is exhausted", func(t *testing.T) {
		_, err := testSvc.AddReturnNote(services.AddReturnNoteRequest{
			OrderID: order.ID,
			Items: []services.ReturnLineInput{
				{ProductID: product.ID, Quantity: 7},
			},
			RefundAmount: decimal.NewFromInt(140000),
			Method:       models.PaymentMethodCash,
			Actor:        "tester",
		})
		require.NoError(t, err)
		assert.Equal(t, 20, reloadProduct(t, product.ID).Stock)

		_, err = testSvc.AddReturnNote(services.AddReturnNoteRequest{
			OrderID: order.ID,
			Items: []services.ReturnLineInput{
				{ProductID: product.ID, Quantity: 1},
			},
			RefundAmount: decimal.NewFromInt(20000),
			Method:       models.PaymentMethodCash,
			Actor:        "tester",
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, services.ErrReturnExceeds)

		assert.Equal(t, 20, reloadProduct(t, product.ID).Stock)
		assertZeroDrift(t, product.ID)
	})
}

// Cancelling after a partial return must not restore the returned goods a
// second time.
func TestCancelAfterPartialReturn(t *testing.T) {
	requireDB(t)

	product := createTestProduct(t, "RETC-001", 20, 20000)

	order, err := testSvc.CreateSaleOrder(services.CreateSaleOrderRequest{
		CustomerName: "Returning Customer",
		Items: []services.OrderLineInput{
			{ProductID: product.ID, Quantity: 10, Price: decimal.NewFromInt(20000)},
		},
		AmountPaid:    decimal.NewFromInt(200000),
		PaymentMethod: models.PaymentMethodCash,
		Actor:         "tester",
	})
	require.NoError(t, err)
	require.Equal(t, 10, reloadProduct(t, product.ID).Stock)

	_, err = testSvc.AddReturnNote(services.AddReturnNoteRequest{
		OrderID: order.ID,
		Items: []services.ReturnLineInput{
			{ProductID: product.ID, Quantity: 4},
		},
		RefundAmount: decimal.NewFromInt(80000),
		Method:       models.PaymentMethodCash,
		Actor:        "tester",
	})
	require.NoError(t, err)
	require.Equal(t, 14, reloadProduct(t, product.ID).Stock)

	_, err = testSvc.CancelSaleOrder(order.ID, "tester")
	require.NoError(t, err)

	assert.Equal(t, 20, reloadProduct(t, product.ID).Stock)
	assertZeroDrift(t, product.ID)
}

// A fully paid order completes on creation; unwinding it goes through the
// status endpoint's cancel route even though completed takes no forward steps.
func TestCancelCompletedOrder(t *testing.T) {
	requireDB(t)

	product := createTestProduct(t, "DONE-001", 10, 15000)

	order, err := testSvc.CreateSaleOrder(services.CreateSaleOrderRequest{
		CustomerName: "Paid Up Front",
		Items: []services.OrderLineInput{
			{ProductID: product.ID, Quantity: 4, Price: decimal.NewFromInt(15000)},
		},
		AmountPaid:    decimal.NewFromInt(60000),
		PaymentMethod: models.PaymentMethodCash,
		Actor:         "tester",
	})
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusCompleted, order.Status)

	_, err = testSvc.UpdateOrderStatus(order.ID, models.OrderStatusShipping, "tester")
	require.Error(t, err)
	assert.ErrorIs(t, err, services.ErrValidation)

	cancelled, err := testSvc.UpdateOrderStatus(order.ID, models.OrderStatusCancelled, "tester")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, cancelled.Status)

	assert.Equal(t, 10, reloadProduct(t, product.ID).Stock)
	assert.Equal(t, int64(1), countCashEntries(t, order.Code, models.TransactionTypeExpense))
	assertZeroDrift(t, product.ID)
}

// Cancelling after the receivable was settled leaves the settled debt on
// record and refunds the later payments along with the upfront one.
func TestCancelAfterSettlement(t *testing.T) {
	requireDB(t)

	product := createTestProduct(t, "SETT-001", 30, 20000)
	partner := createTestPartner(t, "Settled Customer", models.PartnerTypeCustomer)

	order, err := testSvc.CreateSaleOrder(services.CreateSaleOrderRequest{
		PartnerID:    &partner.ID,
		CustomerName: partner.Name,
		Items: []services.OrderLineInput{
			{ProductID: product.ID, Quantity: 10, Price: decimal.NewFromInt(20000)},
		},
		AmountPaid:    decimal.NewFromInt(50000),
		PaymentMethod: models.PaymentMethodCash,
		Actor:         "tester",
	})
	require.NoError(t, err)

	var debt models.DebtRecord
	require.NoError(t, testDB.First(&debt, "order_code = ?", order.Code).Error)

	_, err = testSvc.AddPaymentToDebt(services.AddPaymentRequest{
		DebtID: debt.ID,
		Amount: decimal.NewFromInt(150000),
		Method: models.PaymentMethodTransfer,
		Date:   time.Now(),
		Actor:  "tester",
	})
	require.NoError(t, err)

	require.NoError(t, testDB.First(&debt, "id = ?", debt.ID).Error)
	require.Equal(t, models.DebtStatusPaid, debt.Status)

	_, err = testSvc.CancelSaleOrder(order.ID, "tester")
	require.NoError(t, err)

	// The settled debt keeps its history instead of being voided.
	require.NoError(t, testDB.First(&debt, "id = ?", debt.ID).Error)
	assert.Equal(t, models.DebtStatusPaid, debt.Status)

	// Refund covers the upfront payment and the later settlement.
	var refund models.Transaction
	require.NoError(t, testDB.First(&refund,
		"reference_code = ? AND type = ?", order.Code, models.TransactionTypeExpense).Error)
	assert.True(t, decimal.NewFromInt(200000).Equal(refund.Amount))

	assert.Equal(t, 30, reloadProduct(t, product.ID).Stock)
	assertZeroDrift(t, product.ID)
}

// The upfront import payment books in the journal under the method the
// caller paid with, not a hard-coded one.
func TestImportPaymentMethod(t *testing.T) {
	requireDB(t)

	product := createTestProduct(t, "IMPM-001", 0, 24000)
	supplier := createTestPartner(t, "Transfer Supplier", models.PartnerTypeSupplier)

	imp, err := testSvc.CreateImportOrder(services.CreateImportOrderRequest{
		SupplierID:   &supplier.ID,
		SupplierName: supplier.Name,
		Items: []services.ImportLineInput{
			{ProductID: product.ID, Quantity: 10, Price: decimal.NewFromInt(12000)},
		},
		AmountPaid:    decimal.NewFromInt(120000),
		PaymentMethod: models.PaymentMethodTransfer,
		Status:        models.ImportStatusReceived,
		Actor:         "tester",
	})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentMethodTransfer, imp.PaymentMethod)

	var entry models.Transaction
	require.NoError(t, testDB.First(&entry,
		"reference_code = ? AND type = ?", imp.Code, models.TransactionTypeExpense).Error)
	assert.Equal(t, models.PaymentMethodTransfer, entry.Method)
}

// ============ TEST SCENARIO 7: QUOTES AND RESERVATIONS ============
func TestQuoteFlow(t *testing.T) {
	requireDB(t)

	product := createTestProduct(t, "QUO-001", 10, 30000)

	quote, err := testSvc.CreateQuote(services.CreateQuoteRequest{
		CustomerName: "Quoted Customer",
		Items: []services.OrderLineInput{
			{ProductID: product.ID, Quantity: 4, Price: decimal.NewFromInt(30000)},
		},
		ReserveStock: true,
		Actor:        "tester",
	})
	require.NoError(t, err)
	assert.Regexp(t, `^BG-\d{6}$`, quote.Code)

	t.Run("SC1: Reservation shrinks what other sales may take", func(t *testing.T) {
		assert.Equal(t, 4, reloadProduct(t, product.ID).StockReserved)

		_, err := testSvc.CreateSaleOrder(services.CreateSaleOrderRequest{
			CustomerName: "Competitor",
			Items: []services.OrderLineInput{
				{ProductID: product.ID, Quantity: 8, Price: decimal.NewFromInt(30000)},
			},
			AmountPaid: decimal.NewFromInt(240000),
			Actor:      "tester",
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, services.ErrInsufficientStock)
	})

	t.Run("SC2: Conversion releases the hold and runs the sale", func(t *testing.T) {
		order, err := testSvc.ConvertQuoteToOrder(services.ConvertQuoteRequest{
			QuoteID:       quote.ID,
			AmountPaid:    decimal.NewFromInt(120000),
			PaymentMethod: models.PaymentMethodCash,
			Actor:         "tester",
		})
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusCompleted, order.Status)

		updated := reloadProduct(t, product.ID)
		assert.Equal(t, 6, updated.Stock)
		assert.Equal(t, 0, updated.StockReserved)

		var reloaded models.Quote
		require.NoError(t, testDB.First(&reloaded, "id = ?", quote.ID).Error)
		assert.Equal(t, models.QuoteStatusConverted, reloaded.Status)
		require.NotNil(t, reloaded.OrderID)
		assert.Equal(t, order.ID, *reloaded.OrderID)
	})

	t.Run("SC3: A converted quote cannot convert again", func(t *testing.T) {
		_, err := testSvc.ConvertQuoteToOrder(services.ConvertQuoteRequest{
			QuoteID: quote.ID,
			Actor:   "tester",
		})
		assert.ErrorIs(t, err, services.ErrValidation)
	})
}

// ============ TEST SCENARIO 8: DOCUMENT LOCKING ============
func TestDocumentLock(t *testing.T) {
	requireDB(t)

	product := createTestProduct(t, "LOCK-001", 10, 10000)

	order, err := testSvc.CreateSaleOrder(services.CreateSaleOrderRequest{
		CustomerName: "Locked Customer",
		Items: []services.OrderLineInput{
			{ProductID: product.ID, Quantity: 2, Price: decimal.NewFromInt(10000)},
		},
		AmountPaid:    decimal.NewFromInt(20000),
		PaymentMethod: models.PaymentMethodCash,
		Actor:         "tester",
	})
	require.NoError(t, err)

	locked, err := testSvc.LockOrder(order.ID, "tester")
	require.NoError(t, err)
	require.NotNil(t, locked.LockedAt)

	t.Run("SC1: A locked order refuses cancellation", func(t *testing.T) {
		_, err := testSvc.CancelSaleOrder(order.ID, "tester")
		require.Error(t, err)
		assert.ErrorIs(t, err, services.ErrDocumentLocked)
	})

	t.Run("SC2: Locking twice keeps the original timestamp", func(t *testing.T) {
		again, err := testSvc.LockOrder(order.ID, "tester")
		require.NoError(t, err)
		require.NotNil(t, again.LockedAt)
		assert.WithinDuration(t, *locked.LockedAt, *again.LockedAt, time.Second)
	})
}

// ============ TEST SCENARIO 9: CASH TOTALS ============
func TestCashTotals(t *testing.T) {
	requireDB(t)

	product := createTestProduct(t, "CASH-001", 40, 25000)

	_, err := testSvc.CreateSaleOrder(services.CreateSaleOrderRequest{
		CustomerName: "Cash Customer",
		Items: []services.OrderLineInput{
			{ProductID: product.ID, Quantity: 2, Price: decimal.NewFromInt(25000)},
		},
		AmountPaid:    decimal.NewFromInt(50000),
		PaymentMethod: models.PaymentMethodCash,
		Actor:         "tester",
	})
	require.NoError(t, err)

	t.Run("SC1: Totals derive from the entries in range", func(t *testing.T) {
		from := time.Now().Add(-time.Hour)
		to := time.Now().Add(time.Hour)

		totals, err := testSvc.Cash.TotalsBetween(from, to)
		require.NoError(t, err)

		assert.True(t, totals.Income.GreaterThanOrEqual(decimal.NewFromInt(50000)))
		assert.True(t, totals.Net.Equal(totals.Income.Sub(totals.Expense)))
	})
}
