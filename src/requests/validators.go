package requests

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"store-ledger/src/models"
)

// RegisterValidators - Hooks document-status validation into gin's binding
// engine. Call once before the router starts serving.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation("docstatus", func(fl validator.FieldLevel) bool {
		switch models.OrderStatus(fl.Field().String()) {
		case models.OrderStatusProcessing, models.OrderStatusShipping,
			models.OrderStatusCompleted, models.OrderStatusCancelled:
			return true
		}
		return false
	})
}
