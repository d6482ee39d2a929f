// Package validation registers the custom binding tags used by request
// forms.
package validation

import (
	"convenios-dashboard/internal/convenio"
	"errors"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Register installs the custom tags on gin's validator:
//
//	role            a role name or dashboard label accepted by convenio.ParseRole
//	editable_field  a field name accepted by convenio.IsEditableField
func Register() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin validator is not go-playground/validator")
	}
	return RegisterOn(v)
}

// RegisterOn installs the custom tags on v.
func RegisterOn(v *validator.Validate) error {
	if err := v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		_, ok := convenio.ParseRole(fl.Field().String())
		return ok
	}); err != nil {
		return err
	}
	return v.RegisterValidation("editable_field", func(fl validator.FieldLevel) bool {
		return convenio.IsEditableField(fl.Field().String())
	})
}
