package http

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	// report the name clients actually send
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"param", "query", "json"} {
			name := strings.Split(f.Tag.Get(tag), ",")[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
}

// messages maps a validator tag to its message; %[1]s is the field, %[2]s the tag parameter.
var messages = map[string]string{
	"required": "%[1]s is required",
	"min":      "%[1]s must be at least %[2]s",
	"max":      "%[1]s must be at most %[2]s",
	"gte":      "%[1]s must be greater than or equal to %[2]s",
	"lte":      "%[1]s must be less than or equal to %[2]s",
	"oneof":    "%[1]s must be one of: %[2]s",
}

// ReadAndValidateRequest binds path and query parameters into req, fills
// defaults and validates it. It returns nil when req is valid.
func ReadAndValidateRequest(c echo.Context, req any) []ValidationError {
	if err := c.Bind(req); err != nil {
		return toValidationErrors(err)
	}
	if err := defaults.Set(req); err != nil {
		return toValidationErrors(err)
	}
	if err := validate.StructCtx(c.Request().Context(), req); err != nil {
		return toValidationErrors(err)
	}
	return nil
}

func toValidationErrors(err error) []ValidationError {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		out := make([]ValidationError, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			out = append(out, fieldError(fe))
		}
		return out
	}

	msg := err.Error()
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg = fmt.Sprint(he.Message)
	}
	return []ValidationError{{Code: "ERR_BIND", Message: msg}}
}

func fieldError(fe validator.FieldError) ValidationError {
	ve := ValidationError{
		Code:  "ERR_" + strings.ToUpper(fe.Tag()),
		Field: fe.Field(),
	}
	param := fe.Param()
	if fe.Tag() == "oneof" {
		param = strings.ReplaceAll(param, " ", ", ")
	}
	if tmpl, ok := messages[fe.Tag()]; ok {
		ve.Message = fmt.Sprintf(tmpl, fe.Field(), param)
	} else {
		ve.Message = fmt.Sprintf("%s failed validation: %s", fe.Field(), fe.Tag())
	}
	if fe.Param() != "" {
		ve.Params = map[string]any{"limit": fe.Param()}
	}
	return ve
}
