package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("abspath", func(fl validator.FieldLevel) bool {
		return filepath.IsAbs(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

// Validate checks a loaded model against the configuration schema.
func Validate(m *Model) error {
	if m == nil {
		return errors.New("configuration is empty")
	}

	err := validate.Struct(m)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("failed to validate configuration: %w", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}

// describe turns a validator field error into a readable message.
func describe(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "Model.")
	switch fe.Tag() {
	case "gt":
		return fmt.Sprintf("%s must be above %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be %s or above", field, fe.Param())
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "abspath":
		return fmt.Sprintf("%s %q must be an absolute path", field, fe.Value())
	case "dir":
		return fmt.Sprintf("%s %q must be an existing directory", field, fe.Value())
	case "startswith":
		return fmt.Sprintf("%s %q must start with a dash", field, fe.Value())
	default:
		return fmt.Sprintf("%s failed %q validation", field, fe.Tag())
	}
}
