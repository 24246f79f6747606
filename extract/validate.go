package extract

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"go-docextract/models"
)

// newValidator builds the schema validator with json tag names so the field
// lists inside validation_failed errors match the wire format.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func validationFields(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{"record"}
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return fields
}

func (o *Orchestrator) validatePassport(record *models.PassportRecord) []string {
	if err := o.validate.Struct(record); err != nil {
		return validationFields(err)
	}
	return nil
}

func (o *Orchestrator) validateAuthForm(record *models.AuthFormRecord) []string {
	if err := o.validate.Struct(record); err != nil {
		return validationFields(err)
	}
	return nil
}
