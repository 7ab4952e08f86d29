package api

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"agrimarket/internal/domain/entity"
)

type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator reports fields by their JSON names and adds the paymentid tag
// for UPI handles.
func NewValidator() *CustomValidator {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	v.RegisterValidation("paymentid", func(fl validator.FieldLevel) bool {
		return entity.ValidPaymentID(fl.Field().String())
	})

	return &CustomValidator{validator: v}
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
