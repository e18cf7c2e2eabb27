package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/lorrc/studyspace-backend/internal/core/errors"
)

var validate = newStructValidator()

func newStructValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		switch name {
		case "-":
			return ""
		case "":
			return field.Name
		}
		return name
	})

	return v
}

// Struct runs the `validate` tags of s and returns field errors keyed by JSON name.
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.NewBadRequestError(err, "Invalid request body")
	}

	errs := apperrors.NewValidationErrors()
	for _, fe := range fieldErrs {
		errs.Add(fieldPath(fe), message(fe))
	}
	return errs
}

// fieldPath drops the top-level struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "max":
		if fe.Kind() == reflect.String {
			return "Must be at most " + fe.Param() + " characters"
		}
		return "Must be at most " + fe.Param()
	case "min":
		if fe.Kind() == reflect.String {
			return "Must be at least " + fe.Param() + " characters"
		}
		return "Must be at least " + fe.Param()
	case "len":
		return "Must be exactly " + fe.Param() + " characters"
	case "oneof":
		return "Must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "excludes":
		return fmt.Sprintf("Must not contain %q", fe.Param())
	case "uppercase":
		return "Must be uppercase"
	case "gtfield":
		return "Must be after " + fe.Param()
	default:
		return "Failed the " + fe.Tag() + " check"
	}
}

// DecodeAndValidate decodes the JSON request body and runs its `validate` tags
func DecodeAndValidate[T any](r *http.Request) (*T, error) {
	req := new(T)
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		return nil, apperrors.NewBadRequestError(err, "Invalid request body")
	}
	if err := Struct(req); err != nil {
		return nil, err
	}
	return req, nil
}

const defaultPageSize = 25

// PaginationParams is a limit/offset window.
type PaginationParams struct {
	Limit  int
	Offset int
}

// ParsePagination reads ?limit= and ?offset=. A missing or non-positive
// limit means defaultPageSize; limits above maxLimit are clamped.
func ParsePagination(r *http.Request, maxLimit int) PaginationParams {
	limit := ParseIntQueryParam(r, "limit", defaultPageSize)
	if limit == 0 {
		limit = defaultPageSize
	}
	return PaginationParams{
		Limit:  min(limit, maxLimit),
		Offset: ParseIntQueryParam(r, "offset", 0),
	}
}

// ParseIntQueryParam returns the non-negative integer in ?key=, or def.
func ParseIntQueryParam(r *http.Request, key string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || v < 0 {
		return def
	}
	return v
}
