package validator

import (
	"reflect"
	"strings"
	"time"

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

	registerCustomValidations()
}

func registerCustomValidations() {
	// Gender segment of a hall tariff
	validate.RegisterValidation("gender_preference", func(fl validator.FieldLevel) bool {
		pref := fl.Field().String()
		validPrefs := []string{"male", "female", "both"}
		for _, p := range validPrefs {
			if pref == p {
				return true
			}
		}
		return false
	})

	// Time of day as HH:MM (24h)
	validate.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		_, err := time.Parse("15:04", fl.Field().String())
		return err == nil
	})

	// Calendar date as YYYY-MM-DD
	validate.RegisterValidation("date", func(fl validator.FieldLevel) bool {
		_, err := time.Parse("2006-01-02", fl.Field().String())
		return err == nil
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
		case "uuid":
			errors[field] = "Must be a valid UUID"
		case "gender_preference":
			errors[field] = "Must be one of: male, female, both"
		case "hhmm":
			errors[field] = "Must be a time of day in HH:MM format"
		case "date":
			errors[field] = "Must be a date in YYYY-MM-DD format"
		case "min":
			errors[field] = "Value is below the allowed minimum"
		case "max":
			errors[field] = "Value is above the allowed maximum"
		case "gt":
			errors[field] = "Must be greater than " + err.Param()
		default:
			errors[field] = "Invalid value"
		}
	}
	return errors
}
