package engine

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"example.com/adaptive-budget/backend/internal/models"
)

const maxLifestyleAnswers = 50

// InputValidationError is returned when a profile is outside the declared bounds.
type InputValidationError struct {
	Errors []string
}

func (e *InputValidationError) Error() string {
	return "invalid profile: " + strings.Join(e.Errors, "; ")
}

var profileValidator = newProfileValidator()

var fieldLabels = map[string]string{
	"monthlyIncome": "monthly income",
	"city":          "city",
	"familySize":    "family size",
	"age":           "age",
	"occupation":    "occupation",
}

func newProfileValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	return v
}

// ValidateInput проверяет профиль до начала расчета и возвращает список понятных ошибок.
func ValidateInput(profile models.UserProfile) models.InputValidation {
	messages := make([]string, 0)

	if math.IsNaN(profile.MonthlyIncome) || math.IsInf(profile.MonthlyIncome, 0) {
		messages = append(messages, "monthly income must be a finite number")
	} else if err := profileValidator.Struct(profile); err != nil {
		var fieldErrors validator.ValidationErrors
		if !errors.As(err, &fieldErrors) {
			messages = append(messages, err.Error())
		}
		for _, fieldError := range fieldErrors {
			messages = append(messages, describeFieldError(fieldError))
		}
	}

	if profile.City != "" && strings.TrimSpace(profile.City) == "" {
		messages = append(messages, "city is required")
	}
	if len(profile.LifestyleAnswers) > maxLifestyleAnswers {
		messages = append(messages, fmt.Sprintf("lifestyle answers must not exceed %d entries", maxLifestyleAnswers))
	}

	return models.InputValidation{
		IsValid: len(messages) == 0,
		Errors:  messages,
	}
}

func describeFieldError(fieldError validator.FieldError) string {
	label, ok := fieldLabels[fieldError.Field()]
	if !ok {
		label = fieldError.Field()
	}

	switch fieldError.Tag() {
	case "required":
		return label + " is required"
	case "gte":
		if fieldError.Field() == "monthlyIncome" {
			return fmt.Sprintf("monthly income must be at least the minimum of %s", fieldError.Param())
		}
		return fmt.Sprintf("%s must be at least %s", label, fieldError.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", label, fieldError.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", label, fieldError.Param())
	default:
		return fmt.Sprintf("%s is invalid", label)
	}
}
