package validator

import (
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/carebook/clinic-api/internal/model"
)

// RegisterCustomValidators installs the clinic wire-format tags on gin's
// binding engine. Call once at startup, before any request binding.
//
//	dateymd  calendar date, 2006-01-02
//	timehm   slot time, 15:04
func RegisterCustomValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	if err := v.RegisterValidation("dateymd", validDate); err != nil {
		return err
	}
	return v.RegisterValidation("timehm", validTime)
}

func validDate(fl validator.FieldLevel) bool {
	_, err := time.Parse(model.DateFormat, fl.Field().String())
	return err == nil
}

func validTime(fl validator.FieldLevel) bool {
	_, err := time.Parse(model.TimeFormat, fl.Field().String())
	return err == nil
}
