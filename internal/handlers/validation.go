package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	pkghttp "github.com/mbnr/matrimonial/pkg/http"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// Global validator instance (reused across all handlers). Field errors are
// reported under their JSON names.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// RequestValidationError carries per-field messages for the response details.
type RequestValidationError struct {
	Fields map[string]string
}

func (e *RequestValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, field+": "+msg)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// ValidateRequest validates a request struct using go-playground/validator
func ValidateRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return fmt.Errorf("validation failed: %w", err)
	}

	fields := make(map[string]string, len(ve))
	for _, fe := range ve {
		fields[fieldPath(fe)] = formatValidationError(fe)
	}
	return &RequestValidationError{Fields: fields}
}

// decodeJSON reads the body into dst and validates it. On failure the error
// response has been written and false is returned.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	return decodeBody(w, r, dst, false)
}

// decodeOptionalJSON is decodeJSON for endpoints where the body may be omitted.
func decodeOptionalJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	return decodeBody(w, r, dst, true)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}, optional bool) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !(optional && errors.Is(err, io.EOF)) {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return false
	}

	if err := ValidateRequest(dst); err != nil {
		var rve *RequestValidationError
		if errors.As(err, &rve) {
			pkghttp.WriteValidationError(w, "Please correct the highlighted fields", rve.Fields)
			return false
		}
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return false
	}

	return true
}

// fieldPath drops the top-level struct name, e.g. "RegisterAgentRequest.contactInfo.email".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, found := strings.Cut(ns, "."); found {
		return rest
	}
	return fe.Field()
}

// formatValidationError converts a validator FieldError to a user-friendly message
func formatValidationError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "must be a valid email address"
	case "uuid", "uuid4":
		return "must be a valid id"
	case "min":
		return fmt.Sprintf("must have a minimum of %s", fe.Param())
	case "max":
		return fmt.Sprintf("must have a maximum of %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "datetime":
		return fmt.Sprintf("must be a date in the form %s", fe.Param())
	default:
		return fmt.Sprintf("failed validation: %s", fe.Tag())
	}
}
