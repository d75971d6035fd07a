package workflow

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	ReasonMin = 3
	ReasonMax = 100
	// NameMin applies to person names.
	NameMin = 2
)

// ValidationError rejects a single input field. It never reaches the store.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, msg string) *ValidationError {
	return &ValidationError{Field: field, Message: msg}
}

// ValidateReason trims reason and checks its length in characters.
func ValidateReason(reason string) (string, error) {
	r := strings.TrimSpace(reason)
	n := utf8.RuneCountInString(r)
	if n < ReasonMin {
		return "", invalid("reason", fmt.Sprintf("O motivo deve ter pelo menos %d caracteres.", ReasonMin))
	}
	if n > ReasonMax {
		return "", invalid("reason", fmt.Sprintf("O motivo deve ter no máximo %d caracteres.", ReasonMax))
	}
	return r, nil
}

// ValidateName trims a space or room name, which must not be blank.
func ValidateName(field, name string) (string, error) {
	n := strings.TrimSpace(name)
	if n == "" {
		return "", invalid(field, "O nome é obrigatório.")
	}
	return n, nil
}

// ValidatePersonName trims a user's display name.
func ValidatePersonName(name string) (string, error) {
	n := strings.TrimSpace(name)
	if utf8.RuneCountInString(n) < NameMin {
		return "", invalid("name", fmt.Sprintf("O nome deve ter pelo menos %d caracteres.", NameMin))
	}
	return n, nil
}

// ValidateEmail lowercases email and, when domain is set, requires the
// address to end with it.
func ValidateEmail(email, domain string) (string, error) {
	e := strings.ToLower(strings.TrimSpace(email))
	at := strings.LastIndex(e, "@")
	if at <= 0 || at == len(e)-1 {
		return "", invalid("email", "E-mail inválido.")
	}
	if domain != "" && !strings.HasSuffix(e, strings.ToLower(domain)) {
		return "", invalid("email", fmt.Sprintf("Use um e-mail %s.", domain))
	}
	return e, nil
}
