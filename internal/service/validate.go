package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/shopspring/decimal"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// report fields by their json names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}

	return v
}

// validateRequest checks the validate tags of a request payload.
func validateRequest(req any) error {
	return asValidationError(validate.Struct(req), "")
}

func validateField(field string, value any, tag string) error {
	return asValidationError(validate.Var(value, tag), field)
}

func asValidationError(err error, field string) error {
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}

	fe := fieldErrs[0]
	if field == "" {
		field = fe.Field()
	}
	if fe.Param() != "" {
		return fmt.Errorf("%s must satisfy %s=%s: %w", field, fe.Tag(), fe.Param(), ErrValidation)
	}
	return fmt.Errorf("%s must satisfy %s: %w", field, fe.Tag(), ErrValidation)
}

// validateMoney covers what tags cannot express on decimals: sign and cents precision.
func validateMoney(field string, amount decimal.Decimal, allowZero bool) error {
	if amount.IsNegative() || (!allowZero && amount.IsZero()) {
		if allowZero {
			return fmt.Errorf("%s must not be negative: %w", field, ErrValidation)
		}
		return fmt.Errorf("%s must be greater than 0: %w", field, ErrValidation)
	}
	if !amount.Equal(amount.Round(2)) {
		return fmt.Errorf("%s must have at most 2 decimal places: %w", field, ErrValidation)
	}
	return nil
}
