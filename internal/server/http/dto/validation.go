package dto

import (
	"fmt"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/polkiloo/veo3store/internal/domain/model"
)

// RegisterValidators installs the custom binding tags on gin's validator.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	return registerOn(v)
}

func registerOn(v *validator.Validate) error {
	if err := v.RegisterValidation("paymentmethod", validPaymentMethod); err != nil {
		return err
	}
	return v.RegisterValidation("deliverymethod", validDeliveryMethod)
}

func validPaymentMethod(fl validator.FieldLevel) bool {
	switch model.PaymentMethod(fl.Field().String()) {
	case model.PaymentMethodBankTransfer, model.PaymentMethodUSDT:
		return true
	}
	return false
}

func validDeliveryMethod(fl validator.FieldLevel) bool {
	return model.DeliveryMethod(fl.Field().String()).Valid()
}
