package util

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// EVMAddressPattern is the address format accepted for wallets (Ethereum and
// other EVM chains). The settings page renders it into the client-side check.
const EVMAddressPattern = `^0x[0-9a-fA-F]{40}$`

var (
	evmAddressRe = regexp.MustCompile(EVMAddressPattern)
	usernameRe   = regexp.MustCompile(`^[A-Za-z0-9_]{3,20}$`)
)

// IsEVMAddress reports whether s is a 0x-prefixed 40 hex digit address.
func IsEVMAddress(s string) bool {
	return evmAddressRe.MatchString(s)
}

// FieldError describes one violated field of a request.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// RegisterValidators installs the custom tags on gin's validator engine and
// makes error fields report JSON/form/uri names instead of Go field names.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	v.RegisterTagNameFunc(tagName)
	if err := v.RegisterValidation("evm_address", func(fl validator.FieldLevel) bool {
		return IsEVMAddress(fl.Field().String())
	}); err != nil {
		return fmt.Errorf("register evm_address: %w", err)
	}
	if err := v.RegisterValidation("flexdate", func(fl validator.FieldLevel) bool {
		_, err := ParseDate(fl.Field().String())
		return err == nil
	}); err != nil {
		return fmt.Errorf("register flexdate: %w", err)
	}
	if err := v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	}); err != nil {
		return fmt.Errorf("register notblank: %w", err)
	}
	if err := v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernameRe.MatchString(fl.Field().String())
	}); err != nil {
		return fmt.Errorf("register username: %w", err)
	}
	if err := v.RegisterValidation("strongpassword", func(fl validator.FieldLevel) bool {
		return IsStrongPassword(fl.Field().String())
	}); err != nil {
		return fmt.Errorf("register strongpassword: %w", err)
	}
	return nil
}

// IsStrongPassword requires 8-32 characters with upper case, lower case and a digit.
func IsStrongPassword(pwd string) bool {
	if len(pwd) < 8 || len(pwd) > 32 {
		return false
	}
	var hasUpper, hasLower, hasDigit bool
	for _, ch := range pwd {
		switch {
		case ch >= 'A' && ch <= 'Z':
			hasUpper = true
		case ch >= 'a' && ch <= 'z':
			hasLower = true
		case ch >= '0' && ch <= '9':
			hasDigit = true
		}
	}
	return hasUpper && hasLower && hasDigit
}

func tagName(f reflect.StructField) string {
	for _, key := range []string{"json", "form", "uri"} {
		name := strings.SplitN(f.Tag.Get(key), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return f.Name
}

// FieldErrors converts a binding error into per-field details.
func FieldErrors(err error) []FieldError {
	var serrs binding.SliceValidationError
	if errors.As(err, &serrs) {
		// one entry per failing element; gin does not keep the element index
		var out []FieldError
		for _, e := range serrs {
			if e != nil {
				out = append(out, FieldErrors(e)...)
			}
		}
		return out
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make([]FieldError, 0, len(verrs))
		for _, fe := range verrs {
			out = append(out, FieldError{Field: fieldPath(fe), Message: fieldMessage(fe)})
		}
		return out
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return []FieldError{{Field: typeErr.Field, Message: "must be of type " + typeErr.Type.String()}}
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return []FieldError{{Field: "body", Message: "must be a valid JSON document"}}
	}
	return []FieldError{{Field: "request", Message: err.Error()}}
}

// fieldPath drops the top-level struct name: "WalletInput.walletAddress" -> "walletAddress".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "notblank":
		return "must not be blank"
	case "evm_address":
		return "must be a 0x-prefixed address of 40 hex characters"
	case "flexdate":
		return "must be a date (YYYY-MM-DD or RFC 3339)"
	case "username":
		return "must be 3-20 letters, digits or underscores"
	case "strongpassword":
		return "must be 8-32 characters with upper case, lower case and a digit"
	case "eqfield":
		return "must match " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "min":
		return "must be at least " + fe.Param()
	case "datetime":
		return "must match the layout " + fe.Param()
	case "oneof":
		return "must be one of " + fe.Param()
	case "dive":
		return "is invalid"
	default:
		return "failed the " + fe.Tag() + " check"
	}
}

// ParseDate accepts RFC 3339 timestamps and plain YYYY-MM-DD dates and returns UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("date is empty")
	}
	layouts := []string{
		time.RFC3339,          // 2025-12-03T00:00:00+08:00
		"2006-01-02T15:04:05", // 2025-12-03T00:00:00
		"2006-01-02",          // 2025-12-03
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}
