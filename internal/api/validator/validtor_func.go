package validator

import (
	"reflect"
	"strings"

	"github.com/Behyna/bankgateway/pkg/gateway"
	"github.com/go-playground/validator/v10"
)

const (
	PortTag = "port"
)

var valid = map[string]func(fl validator.FieldLevel) bool{
	PortTag: ValidatePort,
}

func ValidatePort(fl validator.FieldLevel) bool {
	_, ok := gateway.ParsePortName(fl.Field().String())
	return ok
}

func jsonTagName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return field.Name
	}
	return name
}
