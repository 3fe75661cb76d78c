package common

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/joseph-ayodele/plan-parser/constants"
)

// ValidationError is one failed rule on one request field.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s %q: %s", e.Field, fmt.Sprint(e.Value), e.Message)
}

// ValidationRule checks a single field value.
type ValidationRule func(field string, value any) *ValidationError

// Validator collects rule failures across the fields of one request.
type Validator struct {
	errs []ValidationError
}

func NewValidator() *Validator {
	return &Validator{}
}

// Field runs every rule against value and keeps the failures.
func (v *Validator) Field(field string, value any, rules ...ValidationRule) *Validator {
	for _, rule := range rules {
		if err := rule(field, value); err != nil {
			v.errs = append(v.errs, *err)
		}
	}
	return v
}

func (v *Validator) HasErrors() bool { return len(v.errs) > 0 }

func (v *Validator) Errors() []ValidationError { return v.errs }

// ErrorMessage joins all failures with "; ".
func (v *Validator) ErrorMessage() string {
	msgs := make([]string, len(v.errs))
	for i, e := range v.errs {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

func (v *Validator) Error() error {
	if !v.HasErrors() {
		return nil
	}
	return errors.New(v.ErrorMessage())
}

// Required rejects nil and blank strings.
func Required(field string, value any) *ValidationError {
	blank := value == nil
	switch s := value.(type) {
	case string:
		blank = strings.TrimSpace(s) == ""
	case *string:
		blank = s == nil || strings.TrimSpace(*s) == ""
	}
	if blank {
		return &ValidationError{Field: field, Value: value, Message: "is required"}
	}
	return nil
}

// MaxLen limits a string to max runes.
func MaxLen(max int) ValidationRule {
	return func(field string, value any) *ValidationError {
		s, ok := value.(string)
		if ok && utf8.RuneCountInString(s) > max {
			return &ValidationError{Field: field, Value: value, Message: fmt.Sprintf("must be at most %d characters", max)}
		}
		return nil
	}
}

// DrawingFile accepts a file name with a supported drawing extension.
func DrawingFile(field string, value any) *ValidationError {
	s, ok := value.(string)
	if !ok {
		return &ValidationError{Field: field, Value: value, Message: "must be a string"}
	}
	if strings.ContainsRune(filepath.Base(s), 0) {
		return &ValidationError{Field: field, Value: value, Message: "contains a NUL byte"}
	}
	if !constants.IsAllowedPath(s) {
		return &ValidationError{Field: field, Value: value, Message: "must be a .pdf, .jpg, .jpeg or .png file"}
	}
	return nil
}

// ValidateAndReturnError turns collected failures into an InvalidArgument status.
func ValidateAndReturnError(v *Validator) error {
	if v.HasErrors() {
		return InvalidArgumentError(v.ErrorMessage())
	}
	return nil
}
