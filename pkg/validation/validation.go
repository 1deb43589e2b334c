// Package validation builds the go-playground validator shared by request
// decoding and the domain services, so struct tags mean the same thing on
// every path.
package validation

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// TagNotBlank rejects strings that are empty once trimmed.
const TagNotBlank = "notblank"

// New returns a validator that reports json field names and understands
// the custom tags used across the service.
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(JSONFieldName)
	if err := v.RegisterValidation(TagNotBlank, notBlank); err != nil {
		panic(err)
	}
	return v
}

// JSONFieldName names a struct field by its json tag.
func JSONFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return f.Name
	}
	return name
}

func notBlank(fl validator.FieldLevel) bool {
	f := fl.Field()
	return f.Kind() != reflect.String || strings.TrimSpace(f.String()) != ""
}
