package tag

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// tagkey: lowercase letters, digits, '_' and '-' only.
	_ = v.RegisterValidation("tagkey", func(fl validator.FieldLevel) bool {
		return ValidKey(fl.Field().String())
	})
	return v
}

// Validate checks a tag definition and reports every failing field.
func Validate(t *Tag) error {
	err := validate.Struct(t)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors) //nolint:errorlint // validator returns the concrete type
	if !ok {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, validationMessage(fe))
	}
	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Namespace() + " is required"
	case "min":
		return fe.Namespace() + " needs at least " + fe.Param() + " entry"
	case "tagkey":
		return fe.Namespace() + " may only contain a-z, 0-9, '_' and '-'"
	}
	return fe.Namespace() + " failed " + fe.Tag()
}
