package validation

import (
	"errors"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/studyhub/collab/ecode"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(jsonName)
	if err := validate.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
}

// jsonName reports fields by their wire name so messages match the document fields.
func jsonName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "" || name == "-" {
		return f.Name
	}
	return name
}

// checkTags runs the struct tag rules and reports each failure as a friendly message,
// in struct field order.
func checkTags(c *collector, s any) {
	err := validate.Struct(s)
	if err == nil {
		return
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		c.add(ecode.FieldIsInvalid(c.entity))
		return
	}
	for _, fe := range fieldErrs {
		c.add(parseMessage(fe))
	}
}

// parseMessage maps a validation tag to the matching ecode message.
func parseMessage(fe validator.FieldError) string {
	field := fe.Field()
	n, _ := strconv.Atoi(fe.Param())

	switch fe.Tag() {
	case "notblank", "required":
		return ecode.FieldIsRequired(field)
	case "max":
		if fe.Kind() == reflect.Slice {
			return ecode.FieldTooMany(field, n)
		}
		return ecode.FieldTooLong(field, n)
	case "min":
		return ecode.FieldTooFew(field, n)
	case "len":
		return ecode.FieldExactLength(field, n)
	case "alphanum":
		return ecode.FieldIsInvalid(field) + " (letters and digits only)"
	case "oneof":
		return ecode.FieldNotOneOf(field, strings.Fields(fe.Param())...)
	default:
		return ecode.FieldIsInvalid(field)
	}
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
