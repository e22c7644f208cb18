package main

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"store-ledger/src/config"
	"store-ledger/src/handlers"
	"store-ledger/src/models"
	"store-ledger/src/repositories"
	"store-ledger/src/requests"
	"store-ledger/src/routes"
	"store-ledger/src/services"
)

func main() {
	log := config.NewLogger()
	db := config.InitDB()

	if err := db.AutoMigrate(
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
	); err != nil {
		log.WithError(err).Fatal("migration failed")
	}

	// Insert sample data jika kosong
	if err := seedSampleData(db); err != nil {
		log.WithError(err).Warn("failed to seed sample data")
	}

	if err := requests.RegisterValidators(); err != nil {
		log.WithError(err).Fatal("failed to register validators")
	}

	orchestrator := services.NewOrchestrator(db, log)

	orderHandler := &handlers.OrderHandler{Service: orchestrator}
	purchaseHandler := &handlers.PurchaseHandler{Service: orchestrator}
	debtHandler := &handlers.DebtHandler{Service: orchestrator}
	ledgerHandler := &handlers.LedgerHandler{
		Service: orchestrator,
		Audit:   &repositories.AuditRepository{DB: db},
	}

	// Setup router dengan recovery middleware
	router := gin.Default()

	api := router.Group("/api/v1")
	routes.RegisterOrderRoutes(api, orderHandler)
	routes.RegisterPurchaseRoutes(api, purchaseHandler)
	routes.RegisterDebtRoutes(api, debtHandler)
	routes.RegisterLedgerRoutes(api, ledgerHandler)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.WithField("port", port).Info("starting server")
	if err := router.Run(":" + port); err != nil {
		log.WithError(err).Fatal("failed to start server")
	}
}

func seedSampleData(db *gorm.DB) error {
	var productCount int64
	db.Model(&models.Product{}).Count(&productCount)

	if productCount == 0 {
		products := []models.Product{
			{SKU: "SKU-001", Name: "Gạo ST25 5kg", Unit: "bag", Stock: 120, ImportPrice: decimal.NewFromInt(135000), RetailPrice: decimal.NewFromInt(165000)},
			{SKU: "SKU-002", Name: "Nước mắm Nam Ngư 500ml", Unit: "bottle", Stock: 200, ImportPrice: decimal.NewFromInt(28000), RetailPrice: decimal.NewFromInt(38000)},
			{SKU: "SKU-003", Name: "Dầu ăn Tường An 1L", Unit: "bottle", Stock: 80, ImportPrice: decimal.NewFromInt(42000), RetailPrice: decimal.NewFromInt(55000)},
			{SKU: "SKU-004", Name: "Đường trắng 1kg", Unit: "bag", Stock: 150, ImportPrice: decimal.NewFromInt(18000), RetailPrice: decimal.NewFromInt(25000)},
		}

		for _, product := range products {
			if err := db.FirstOrCreate(&product, "sku = ?", product.SKU).Error; err != nil {
				return err
			}
		}
	}

	var partnerCount int64
	db.Model(&models.Partner{}).Count(&partnerCount)

	if partnerCount == 0 {
		partners := []models.Partner{
			{Name: "Chị Hoa - Quán ăn", Type: models.PartnerTypeCustomer, Phone: "0901234567"},
			{Name: "Anh Tùng - Tạp hóa", Type: models.PartnerTypeCustomer, Phone: "0907654321"},
			{Name: "Công ty TNHH Thực phẩm Minh Phát", Type: models.PartnerTypeSupplier, Phone: "0281234567"},
		}

		for _, partner := range partners {
			if err := db.FirstOrCreate(&partner, "name = ?", partner.Name).Error; err != nil {
				return err
			}
		}
	}

	return nil
}
