// Package validation holds the pure field rules for the console forms.
// Every function here is side-effect free; form errors are data, not Go errors.
package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Errors maps a field name to a human-readable message. A missing key means
// the field is valid; messages are never empty.
type Errors map[string]string

// Has reports whether field currently has an error.
func (e Errors) Has(field string) bool {
	_, ok := e[field]
	return ok
}

// Form field names.
const (
	FieldName     = "name"
	FieldEmail    = "email"
	FieldPassword = "password"
	FieldRole     = "role"
	FieldStatus   = "status"
)

const (
	MsgEmailRequired    = "Email is required"
	MsgEmailInvalid     = "Invalid email address"
	MsgPasswordRequired = "Password is required"
	MsgPasswordShort    = "Password must be at least 6 characters"
	MsgNameRequired     = "Name is required"
	MsgRoleRequired     = "Role is required"
)

// MinPasswordLength is the shortest password accepted by the forms.
const MinPasswordLength = 6

var emailRe = regexp.MustCompile(`(?i)^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidateEmail reports whether s looks like local@domain.tld.
func ValidateEmail(s string) bool {
	return emailRe.MatchString(s)
}

// ValidatePassword reports whether s has at least MinPasswordLength runes.
func ValidatePassword(s string) bool {
	return s != "" && utf8.RuneCountInString(s) >= MinPasswordLength
}

// ValidateRequired reports whether s has any non-whitespace content.
func ValidateRequired(s string) bool {
	return len(strings.TrimSpace(s)) > 0
}

// ValidateLoginForm checks the "email" and "password" fields.
func ValidateLoginForm(values map[string]string) Errors {
	errs := Errors{}
	checkEmail(values, errs)
	checkPassword(values, errs)
	return errs
}

// ValidateUserForm checks the create/edit user form. The password is only
// checked when creating: editing an account never forces a password change.
func ValidateUserForm(values map[string]string, isEditing bool) Errors {
	errs := Errors{}

	if !ValidateRequired(values[FieldName]) {
		errs[FieldName] = MsgNameRequired
	}

	checkEmail(values, errs)

	if !isEditing {
		checkPassword(values, errs)
	}

	if values[FieldRole] == "" {
		errs[FieldRole] = MsgRoleRequired
	}

	return errs
}

// UserFormValidator binds isEditing so the result fits form.Validator.
func UserFormValidator(isEditing bool) func(map[string]string) Errors {
	return func(values map[string]string) Errors {
		return ValidateUserForm(values, isEditing)
	}
}

func checkEmail(values map[string]string, errs Errors) {
	switch email := values[FieldEmail]; {
	case email == "":
		errs[FieldEmail] = MsgEmailRequired
	case !ValidateEmail(email):
		errs[FieldEmail] = MsgEmailInvalid
	}
}

func checkPassword(values map[string]string, errs Errors) {
	switch password := values[FieldPassword]; {
	case password == "":
		errs[FieldPassword] = MsgPasswordRequired
	case !ValidatePassword(password):
		errs[FieldPassword] = MsgPasswordShort
	}
}
