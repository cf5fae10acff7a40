package serverutils

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"acaradar-web/internal/dto"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("interest_term", func(fl validator.FieldLevel) bool {
			return dto.InterestTermPattern.MatchString(strings.TrimSpace(fl.Field().String()))
		})
	})
	return validate
}

func ValidateRequest(req any) error {
	return getValidator().Struct(req)
}

// ValidationMessage turns the first validation failure into a sentence for a flash
// message or JSON acknowledgement.
func ValidationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		if err == nil {
			return ""
		}
		return err.Error()
	}

	fe := verrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "interest_term":
		return "Research interest may only contain letters, numbers, spaces and hyphens."
	case "uuid":
		return fmt.Sprintf("%s must be a UUID", field)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
