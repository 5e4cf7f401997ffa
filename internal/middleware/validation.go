package middleware

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/clinicore/booking-api/internal/model"
)

// RegisterValidators installs custom binding validators on gin's
// validator engine. "clock" accepts time-of-day values like "09:00".
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}

	return v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		_, _, err := model.ParseClock(fl.Field().String())
		return err == nil
	})
}
