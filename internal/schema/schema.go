// Package schema provides the shared struct validator and the field-path keyed
// validation report used by every write path in the service.
package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// BodyField is the report key used for problems that concern the document as
// a whole rather than one of its fields.
const BodyField = "body"

// UnknownFieldMessage is reported for keys a document may not carry.
const UnknownFieldMessage = "is not a recognized field"

const unknownFieldPrefix = "json: unknown field "

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate

	hrefPattern   = regexp.MustCompile(`^(/|#|https?://|mailto:|tel:)`)
	handlePattern = regexp.MustCompile(`^@[A-Za-z0-9_]{1,15}$`)
)

// Validator returns the process-wide validator. Field names in reports follow
// the json tags of the validated structs.
func Validator() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())

		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			switch name {
			case "-":
				return ""
			case "":
				return f.Name
			}
			return name
		})

		_ = v.RegisterValidation("href", func(fl validator.FieldLevel) bool {
			return hrefPattern.MatchString(fl.Field().String())
		})

		_ = v.RegisterValidation("handle", func(fl validator.FieldLevel) bool {
			return handlePattern.MatchString(fl.Field().String())
		})

		validateInst = v
	})

	return validateInst
}

// ValidationError is a structured validation report: dotted field paths mapped
// to every constraint the value at that path violates.
type ValidationError struct {
	Fields map[string][]string `json:"fields"`
}

// NewValidationError returns an empty report.
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string][]string)}
}

// Add records a violation for path.
func (e *ValidationError) Add(path, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	if path == "" {
		path = BodyField
	}
	for _, existing := range e.Fields[path] {
		if existing == msg {
			return
		}
	}
	e.Fields[path] = append(e.Fields[path], msg)
}

// Merge copies every violation of other into e, prefixing its paths.
func (e *ValidationError) Merge(prefix string, other *ValidationError) {
	if other == nil {
		return
	}
	for path, msgs := range other.Fields {
		for _, msg := range msgs {
			e.Add(Join(prefix, path), msg)
		}
	}
}

// Len returns the number of offending paths.
func (e *ValidationError) Len() int {
	if e == nil {
		return 0
	}
	return len(e.Fields)
}

// Has reports whether path has at least one violation.
func (e *ValidationError) Has(path string) bool {
	if e == nil {
		return false
	}
	return len(e.Fields[path]) > 0
}

// Paths returns the offending paths in lexical order.
func (e *ValidationError) Paths() []string {
	paths := make([]string, 0, len(e.Fields))
	for p := range e.Fields {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Err returns e as an error, or nil when the report is empty.
func (e *ValidationError) Err() error {
	if e.Len() == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, p := range e.Paths() {
		parts = append(parts, p+": "+strings.Join(e.Fields[p], ", "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// AsValidationError unwraps err into a report when it carries one.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// Struct validates v and returns every violation, with paths rooted at prefix.
func Struct(v any, prefix string) *ValidationError {
	report := NewValidationError()
	if err := Validator().Struct(v); err != nil {
		report.Merge(prefix, FromValidator(err))
	}
	return report
}

// FromValidator converts validator errors into a report. Unlike a first-error
// conversion, every FieldError is kept.
func FromValidator(err error) *ValidationError {
	report := NewValidationError()
	if err == nil {
		return report
	}

	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		report.Add(BodyField, err.Error())
		return report
	}

	for _, fe := range ves {
		report.Add(fieldPath(fe), Message(fe))
	}
	return report
}

// FromDecodeError turns a JSON or YAML decoding failure into a report entry.
func FromDecodeError(err error, prefix string) *ValidationError {
	report := NewValidationError()

	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError
	switch {
	case errors.As(err, &typeErr):
		report.Add(Join(prefix, typeErr.Field), "must be "+kindName(typeErr.Type))
	case errors.As(err, &syntaxErr):
		report.Add(Join(prefix, BodyField), fmt.Sprintf("malformed JSON at offset %d", syntaxErr.Offset))
	case strings.HasPrefix(err.Error(), unknownFieldPrefix):
		// encoding/json has no typed error for DisallowUnknownFields.
		name := strings.Trim(strings.TrimPrefix(err.Error(), unknownFieldPrefix), `"`)
		report.Add(Join(prefix, name), UnknownFieldMessage)
	default:
		report.Add(Join(prefix, BodyField), err.Error())
	}
	return report
}

// Join concatenates two dotted path fragments.
func Join(prefix, path string) string {
	switch {
	case prefix == "":
		return path
	case path == "" || path == BodyField:
		return prefix
	}
	return prefix + "." + path
}

// fieldPath drops the root struct name from the validator namespace:
// "ThemeTokens.typography.fontSizeScale" becomes "typography.fontSizeScale".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

// Message renders a human-readable constraint message for fe.
func Message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min", "gte":
		return boundMessage(fe, "at least")
	case "max", "lte":
		return boundMessage(fe, "at most")
	case "oneof":
		return "must be one of: " + strings.Join(strings.Fields(fe.Param()), ", ")
	case "url", "http_url":
		return "must be an absolute URL"
	case "href":
		return "must be a relative path, an anchor, or an http(s), mailto: or tel: link"
	case "handle":
		return "must be a handle like @brand"
	case "contains":
		return fmt.Sprintf("must contain %q", fe.Param())
	}
	return fmt.Sprintf("failed %q constraint", fe.Tag())
}

func boundMessage(fe validator.FieldError, bound string) string {
	switch fe.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return fmt.Sprintf("must contain %s %s items", bound, fe.Param())
	case reflect.String:
		return fmt.Sprintf("must be %s %s characters", bound, fe.Param())
	}
	return fmt.Sprintf("must be %s %s", bound, fe.Param())
}

func kindName(t reflect.Type) string {
	if t == nil {
		return "a valid value"
	}
	switch t.Kind() {
	case reflect.String:
		return "a string"
	case reflect.Bool:
		return "a boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "a number"
	case reflect.Slice, reflect.Array:
		return "an array"
	case reflect.Struct, reflect.Map:
		return "an object"
	}
	return "a " + t.Kind().String()
}
