package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode"

	govalidator "github.com/go-playground/validator/v10"
)

// New returns a validator with the custom tags used by the web forms registered.
func New() *govalidator.Validate {
	v := govalidator.New(govalidator.WithRequiredStructEnabled())
	v.RegisterValidation("notblank", ValidateNotBlank)
	v.RegisterValidation("notfutureyear", validateNotFutureYear(time.Now))
	return v
}

func camelToSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

func tagName(field reflect.StructField, key string) string {
	tag := field.Tag.Get(key)
	if tag == "" || tag == "-" {
		return ""
	}
	return strings.Split(tag, ",")[0]
}

func getFieldName(obj any, origFieldName string) string {
	t := reflect.Indirect(reflect.ValueOf(obj)).Type()
	field, found := t.FieldByName(origFieldName)
	if !found {
		panic(fmt.Sprintf("Field %s not found in type %s", origFieldName, t.Name()))
	}
	for _, key := range []string{"schema", "json"} {
		if name := tagName(field, key); name != "" {
			return name
		}
	}
	return camelToSnake(origFieldName)
}

func ProcessValidationErrors(obj any, errs govalidator.ValidationErrors) map[string]string {
	processedErrors := make(map[string]string)
	for _, e := range errs {
		name := getFieldName(obj, e.StructField())
		if _, seen := processedErrors[name]; seen {
			continue
		}
		processedErrors[name] = GetErrorMsgForField(obj, e)
	}
	return processedErrors
}

// ValidateStruct returns field name -> message for every failed rule, or nil.
func ValidateStruct(validator *govalidator.Validate, obj any) (validationErrs map[string]string) {
	err := validator.Struct(obj)
	if err == nil {
		return nil
	}
	var errs govalidator.ValidationErrors
	if !errors.As(err, &errs) {
		panic(err)
	}
	return ProcessValidationErrors(obj, errs)
}

func GetErrorMsgForField(obj any, err govalidator.FieldError) (errorMsg string) {
	t := reflect.Indirect(reflect.ValueOf(obj)).Type()
	field, found := t.FieldByName(err.StructField())
	if !found {
		panic(fmt.Sprintf("Field %s not found in type %s", err.StructField(), t.Name()))
	}
	errorMsg = field.Tag.Get("errorMsg")
	if errorMsg == "" {
		switch err.Tag() {
		case "required", "notblank":
			errorMsg = "This field is required"
		case "max":
			errorMsg = fmt.Sprintf("The maximum value is %s", err.Param())
		case "min":
			errorMsg = fmt.Sprintf("The minimum value is %s", err.Param())
		case "gte":
			errorMsg = fmt.Sprintf("Value should be greater than or equal to %s", err.Param())
		case "lte":
			errorMsg = fmt.Sprintf("Value should be less than or equal to %s", err.Param())
		case "eqfield":
			errorMsg = "Passwords do not match"
		case "email":
			errorMsg = "Value must be a valid email address"
		case "notfutureyear":
			errorMsg = "Year cannot be in the future"
		default:
			errorMsg = "This field is invalid"
		}
	}
	return
}

// CUSTOM VALIDATORS

func ValidateNotBlank(fl govalidator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

func validateNotFutureYear(now func() time.Time) govalidator.Func {
	return func(fl govalidator.FieldLevel) bool {
		var year int64
		switch fl.Field().Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			year = fl.Field().Int()
		case reflect.String:
			parsed, err := strconv.ParseInt(fl.Field().String(), 10, 64)
			if err != nil {
				return false
			}
			year = parsed
		default:
			return false
		}
		return year <= int64(now().Year())
	}
}
