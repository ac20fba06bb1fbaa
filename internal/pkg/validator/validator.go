package validator

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()

	// Use JSON tag names in error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Register custom validations
	registerCustomValidations()
}

// featureKeyPattern is the shape of metered feature identifiers, e.g. "relatorio.exportar".
var featureKeyPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*(\.[a-z][a-z0-9_]*)*$`)

func registerCustomValidations() {
	// Role validation
	validate.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		role := fl.Field().String()
		validRoles := []string{"discipulo", "lider_celula", "supervisor", "pastor"}
		for _, r := range validRoles {
			if role == r {
				return true
			}
		}
		return false
	})

	// Advancement request status
	validate.RegisterValidation("solicitacao_status", func(fl validator.FieldLevel) bool {
		switch fl.Field().String() {
		case "PENDENTE", "APROVADA", "REJEITADA":
			return true
		}
		return false
	})

	validate.RegisterValidation("feature_key", func(fl validator.FieldLevel) bool {
		return featureKeyPattern.MatchString(fl.Field().String())
	})
}

// Validate validates a struct and returns a map of field errors
func Validate(s interface{}) map[string]string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	errors := make(map[string]string)
	for _, err := range err.(validator.ValidationErrors) {
		field := err.Field()
		switch err.Tag() {
		case "required":
			errors[field] = "This field is required"
		case "email":
			errors[field] = "Invalid email format"
		case "min":
			errors[field] = "Value is too short (min: " + err.Param() + ")"
		case "max":
			errors[field] = "Value is too long (max: " + err.Param() + ")"
		case "gte":
			errors[field] = "Value must be at least " + err.Param()
		case "lte":
			errors[field] = "Value must be at most " + err.Param()
		case "url":
			errors[field] = "Invalid URL format"
		case "oneof":
			errors[field] = "Must be one of: " + err.Param()
		case "uuid":
			errors[field] = "Invalid identifier"
		case "role":
			errors[field] = "Invalid role. Must be: discipulo, lider_celula, supervisor, or pastor"
		case "solicitacao_status":
			errors[field] = "Invalid status. Must be: PENDENTE, APROVADA, or REJEITADA"
		case "feature_key":
			errors[field] = "Invalid feature key"
		default:
			errors[field] = "Invalid value"
		}
	}

	return errors
}
