package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterBindings installs the custom tags on gin's validator engine and makes
// field errors report json names. Called once at startup.
func RegisterBindings() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return f.Name
	})
	_ = v.RegisterValidation("rut", validateRUTTag)
}

// validateRUTTag `binding:"rut"` on a "12345678-5" string
func validateRUTTag(fl validator.FieldLevel) bool {
	rut, dv, ok := ParseRUT(fl.Field().String())
	return ok && ValidRUT(rut, dv)
}

// FromBinding converts a gin bind error into field errors.
func FromBinding(err error) Errors {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return Errors{{Field: "body", Message: "malformed request"}}
	}
	out := make(Errors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fe.Field(), Message: message(fe)})
	}
	return out
}

func message(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + e.Param()
	case "max":
		return "must be at most " + e.Param()
	case "email":
		return "must be a valid email address"
	case "oneof":
		return "must be one of: " + e.Param()
	case "rut":
		return "RUT check digit is invalid"
	case "datetime":
		return "must match " + e.Param()
	default:
		return "failed " + e.Tag() + " validation"
	}
}
