package httpserver

import (
	"errors"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	validatorsOnce sync.Once
	validatorsErr  error
)

// registerValidators adds the custom tags request structs use to gin's
// shared validator engine.
func registerValidators() error {
	validatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			validatorsErr = errors.New("httpserver: unexpected validator engine")
			return
		}
		validatorsErr = v.RegisterValidation("phone", validPhone)
	})
	return validatorsErr
}

// validPhone accepts digits with spaces or dashes between them and an
// optional leading +. How many digits are enough is a checkout rule.
func validPhone(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9', r == ' ', r == '-':
		case r == '+' && i == 0:
		default:
			return false
		}
	}
	return true
}
