package member

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dimasma0305/edmcli/internal/edmcli/errors"
)

// Code classifies a field-level validation failure
type Code string

const (
	CodeMissingColumn Code = "MissingColumn"
	CodeEmptyName     Code = "EmptyName"
	CodeMissingValue  Code = "MissingValue"
	CodeInvalidEmail  Code = "InvalidEmail"
	CodeInvalidMobile Code = "InvalidMobile"
	CodeInvalidStatus Code = "InvalidStatus"
	CodeUnreadable    Code = "Unreadable"
)

// ValidationError is one rejected field of one row
type ValidationError struct {
	Field   Field
	Code    Code
	Value   string
	Message string
}

func (e ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s: %s (%s)", e.Field, e.Message, e.Code)
	}
	return fmt.Sprintf("%s: %s %q (%s)", e.Field, e.Message, e.Value, e.Code)
}

// ValidationErrors collects every failed field of a row. It is never empty when returned as
// an error and unwraps to errors.ErrValidation.
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	parts := make([]string, len(errs))
	for i, e := range errs {
		parts[i] = e.Error()
	}
	return strings.Join(parts, "; ")
}

func (errs ValidationErrors) Unwrap() error {
	return errors.ErrValidation
}

// Has reports whether errs contains a failure with code
func (errs ValidationErrors) Has(code Code) bool {
	for _, e := range errs {
		if e.Code == code {
			return true
		}
	}
	return false
}

var (
	validate = validator.New()

	mobilePattern = regexp.MustCompile(`^[0-9+\-() .#]+$`)
	digitPattern  = regexp.MustCompile(`[0-9]`)
)

// ValidateName checks a trimmed display name
func ValidateName(name string) *ValidationError {
	if strings.TrimSpace(name) == "" {
		return &ValidationError{Field: FieldName, Code: CodeEmptyName, Message: "name is empty"}
	}
	return nil
}

// ValidateEmail checks that email has the usual local@domain shape
func ValidateEmail(email string) *ValidationError {
	email = strings.TrimSpace(email)
	if email == "" {
		return &ValidationError{Field: FieldEmail, Code: CodeMissingValue, Message: "email is empty"}
	}
	if err := validate.Var(email, "email"); err != nil {
		return &ValidationError{Field: FieldEmail, Code: CodeInvalidEmail, Value: email, Message: "not a valid email address"}
	}
	return nil
}

// ValidateMobile accepts digits plus common phone punctuation. Empty is allowed.
func ValidateMobile(mobile string) *ValidationError {
	mobile = strings.TrimSpace(mobile)
	if mobile == "" {
		return nil
	}
	if !mobilePattern.MatchString(mobile) || !digitPattern.MatchString(mobile) {
		return &ValidationError{Field: FieldMobile, Code: CodeInvalidMobile, Value: mobile, Message: "mobile may only hold digits and punctuation"}
	}
	return nil
}
