package models

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// newRunValidator builds the request validator with the domain checks
// registered. Error messages use json field names.
func newRunValidator() *validator.Validate {
	v := validator.New()
	v.RegisterValidation("alias", isValidAlias)
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// isValidAlias accepts a non-blank player alias. Aliases end up as
// report directory names, so anything that could escape the report tree
// is rejected here.
func isValidAlias(fl validator.FieldLevel) bool {
	alias := strings.TrimSpace(fl.Field().String())
	if alias == "" {
		return false
	}
	if strings.Contains(alias, "..") || strings.ContainsAny(alias, `/\`) {
		return false
	}
	return len(alias) <= 64
}
