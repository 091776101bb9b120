package validator

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// FieldError describes why a single field was rejected.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

func (e FieldError) String() string {
	if e.Param != "" {
		return fmt.Sprintf("%s violates %s(%s)", e.Field, e.Rule, e.Param)
	}
	return fmt.Sprintf("%s violates %s", e.Field, e.Rule)
}

// ValidationErrors aggregates every rejected field from one struct check.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return "validation failed"
	}

	var b strings.Builder
	for i, fe := range v {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(fe.String())
	}
	return b.String()
}

var instance = struct {
	once sync.Once
	v    *validator.Validate
}{}

func shared() *validator.Validate {
	instance.once.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(jsonFieldName)
		instance.v = v
	})
	return instance.v
}

// jsonFieldName reports the wire name of a struct field so error messages
// match what callers actually sent.
func jsonFieldName(field reflect.StructField) string {
	tag, ok := field.Tag.Lookup("json")
	if !ok {
		return field.Name
	}

	name, _, _ := strings.Cut(tag, ",")
	if name == "" || name == "-" {
		return field.Name
	}
	return name
}

// ValidateStruct checks s against its validate tags and returns
// ValidationErrors when any rule fails.
func ValidateStruct(s interface{}) error {
	err := shared().Struct(s)
	if err == nil {
		return nil
	}

	ve, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	out := make(ValidationErrors, len(ve))
	for i, fe := range ve {
		out[i] = FieldError{Field: fe.Field(), Rule: fe.Tag(), Param: fe.Param()}
	}
	return out
}

// RegisterValidation installs a custom rule under tag.
func RegisterValidation(tag string, fn validator.Func) error {
	return shared().RegisterValidation(tag, fn)
}
