package model

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// checkStruct runs struct-tag validation and wraps the first failure with the
// sentinel registered for that field, or fallback when none is registered.
func checkStruct(v any, fallback error, byField map[string]error) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("%w: %v", fallback, err)
	}
	first := fieldErrs[0]
	base := fallback
	if sentinel, ok := byField[first.Field()]; ok {
		base = sentinel
	}
	if first.Param() != "" {
		return fmt.Errorf("%w: %s failed %s=%s (got %v)", base, first.Namespace(), first.Tag(), first.Param(), first.Value())
	}
	return fmt.Errorf("%w: %s failed %s", base, first.Namespace(), first.Tag())
}
