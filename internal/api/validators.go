package api

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/fatbomb/MealManagement/internal/core"
)

// RegisterValidators adds the yyyymmdd and yyyymm tags to gin's validator.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin binding validator is not go-playground/validator")
	}
	if err := v.RegisterValidation("yyyymmdd", isDate); err != nil {
		return fmt.Errorf("registering yyyymmdd validator: %w", err)
	}
	if err := v.RegisterValidation("yyyymm", isMonth); err != nil {
		return fmt.Errorf("registering yyyymm validator: %w", err)
	}
	return nil
}

func isDate(fl validator.FieldLevel) bool {
	_, err := core.ParseDate(fl.Field().String())
	return err == nil
}

func isMonth(fl validator.FieldLevel) bool {
	_, err := core.ParseMonth(fl.Field().String())
	return err == nil
}
