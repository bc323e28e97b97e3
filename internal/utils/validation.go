package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/yasinhessnawi1/backoffice-auth/internal/constants"
)

var (
	// validate is a singleton validator instance
	validate *validator.Validate
)

// InitValidator initializes the validator and makes it report json field names.
func InitValidator() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	log.Debug().Msg("Validator initialized")
}

// GetValidator returns the singleton validator instance
func GetValidator() *validator.Validate {
	if validate == nil {
		InitValidator()
	}
	return validate
}

// DecodeJSON decodes a JSON request body into the struct pointed to by v.
// An empty body decodes to the zero value, so required fields are reported by
// validation rather than rejected as malformed input. Unknown fields are ignored.
// Every member whose JSON type does not fit its field is reported in a single
// 422 error.
func DecodeJSON(r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(nil, r.Body, constants.MaxRequestBodySize)

	dec := json.NewDecoder(r.Body)

	var members map[string]json.RawMessage
	if err := dec.Decode(&members); err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var maxBytesError *http.MaxBytesError

		switch {
		case errors.As(err, &maxBytesError):
			return NewBadRequestError(constants.MsgRequestBodyTooLarge)

		case errors.Is(err, io.EOF):
			return nil

		case errors.Is(err, io.ErrUnexpectedEOF):
			return NewBadRequestError(constants.MsgMalformedJSON)

		case errors.As(err, &syntaxError):
			return NewBadRequestError(fmt.Sprintf("%s (at position %d)", constants.MsgMalformedJSON, syntaxError.Offset))

		case errors.As(err, &unmarshalTypeError):
			return NewBadRequestError("Request body must be a JSON object")

		default:
			return NewBadRequestError(fmt.Sprintf("Error decoding JSON: %s", err.Error()))
		}
	}

	if dec.More() {
		return NewBadRequestError("Request body must only contain a single JSON object")
	}

	return decodeMembers(members, v)
}

// decodeMembers assigns each JSON member to the field carrying its json tag.
func decodeMembers(members map[string]json.RawMessage, v interface{}) error {
	target := reflect.ValueOf(v)
	if target.Kind() != reflect.Ptr || target.IsNil() || target.Elem().Kind() != reflect.Struct {
		return NewInternalServerError(&json.InvalidUnmarshalError{Type: reflect.TypeOf(v)})
	}

	elem := target.Elem()
	typeErrors := ValidationErrors{}

	for i := 0; i < elem.NumField(); i++ {
		field := elem.Type().Field(i)
		name := jsonName(field)
		if name == "" || !field.IsExported() {
			continue
		}

		raw, ok := members[name]
		if !ok {
			continue
		}

		if err := json.Unmarshal(raw, elem.Field(i).Addr().Interface()); err != nil {
			var unmarshalTypeError *json.UnmarshalTypeError
			if errors.As(err, &unmarshalTypeError) {
				typeErrors.Add(name, typeMessage(name, field.Type))
				continue
			}
			return NewBadRequestError(fmt.Sprintf("Error decoding JSON: %s", err.Error()))
		}
	}

	if len(typeErrors) > 0 {
		return NewValidationErrors(typeErrors)
	}
	return nil
}

func jsonName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return field.Name
	}
	return name
}

// CollectValidationErrors runs the struct rules and returns the failures per
// field. A nil map means the struct is valid.
func CollectValidationErrors(v interface{}) (ValidationErrors, error) {
	err := GetValidator().Struct(v)
	if err == nil {
		return nil, nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil, err
	}

	fields := ValidationErrors{}
	for _, e := range validationErrors {
		fields.Add(e.Field(), getErrorMessage(e))
	}
	return fields, nil
}

// ValidateStruct validates a struct and returns a 422 AppError on failure.
func ValidateStruct(v interface{}) error {
	fields, err := CollectValidationErrors(v)
	if err != nil {
		return NewBadRequestError(err.Error())
	}
	if len(fields) > 0 {
		return NewValidationErrors(fields)
	}
	return nil
}

// AttributeName turns a json field name into the wording used in messages.
func AttributeName(field string) string {
	return strings.ReplaceAll(field, "_", " ")
}

// getErrorMessage returns a user-friendly error message for a validation error
func getErrorMessage(e validator.FieldError) string {
	attribute := AttributeName(e.Field())

	switch e.Tag() {
	case "required":
		return fmt.Sprintf(constants.MsgFieldRequired, attribute)
	case "email":
		return fmt.Sprintf(constants.MsgFieldEmail, attribute)
	case "min":
		return fmt.Sprintf(constants.MsgFieldMin, attribute, e.Param())
	case "max":
		return fmt.Sprintf(constants.MsgFieldMax, attribute, e.Param())
	case "eqfield":
		return fmt.Sprintf(constants.MsgFieldConfirmation, attribute)
	default:
		return fmt.Sprintf(constants.MsgFieldInvalid, attribute)
	}
}

func typeMessage(field string, target reflect.Type) string {
	attribute := AttributeName(field)
	if target.Kind() == reflect.String {
		return fmt.Sprintf(constants.MsgFieldString, attribute)
	}
	return fmt.Sprintf(constants.MsgFieldInvalid, attribute)
}
