package utils

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"techlympics/models"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var icRegex = regexp.MustCompile(`^[0-9]{12}$`)

// NormalizeIC strips dashes and spaces from a Malaysian IC number
func NormalizeIC(ic string) string {
	ic = strings.ReplaceAll(ic, "-", "")
	return strings.ReplaceAll(strings.TrimSpace(ic), " ", "")
}

// IsValidIC reports whether ic is a 12 digit IC number once normalized
func IsValidIC(ic string) bool {
	return icRegex.MatchString(NormalizeIC(ic))
}

// IsValidEduLevel reports whether level is one of the accepted education levels
func IsValidEduLevel(level string) bool {
	level = strings.ToLower(strings.TrimSpace(level))
	for _, l := range models.EduLevels {
		if l == level {
			return true
		}
	}
	return false
}

func validateICNumber(fl validator.FieldLevel) bool {
	return IsValidIC(fl.Field().String())
}

func validateEduLevel(fl validator.FieldLevel) bool {
	return IsValidEduLevel(fl.Field().String())
}

// RegisterValidators adds the custom rules to a validator and reports fields by their json name
func RegisterValidators(v *validator.Validate) error {
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	if err := v.RegisterValidation("ic_number", validateICNumber); err != nil {
		return err
	}
	return v.RegisterValidation("edu_level", validateEduLevel)
}

// SetupBindingValidators installs the custom rules on gin's binding validator
func SetupBindingValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("unexpected binding validator engine")
	}
	return RegisterValidators(v)
}

// ValidationMessages turns a binding error into field messages; nil when err is not a validation error
func ValidationMessages(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = validationMessage(fe)
	}
	return out
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email address"
	case "ic_number":
		return "IC number must contain 12 digits"
	case "edu_level":
		return "Education level must be one of: " + strings.Join(models.EduLevels, ", ")
	case "min":
		return fmt.Sprintf("Must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("Must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("Must be one of: %s", fe.Param())
	}
	return fmt.Sprintf("Failed on the %s rule", fe.Tag())
}
