package schema

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

const (
	maxContactNameLen = 100
	maxSubjectLen     = 150
	minMessageLen     = 10
	maxMessageLen     = 4000
)

type ContactRequest struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Subject        string `json:"subject"`
	Message        string `json:"message"`
	TurnstileToken string `json:"cf-turnstile-response"`
}

// ParseContact decodes and validates a contact submission. On failure it
// returns the first failing field only.
func ParseContact(r io.Reader) (*ContactRequest, *FieldError) {
	var req ContactRequest
	if ferr := decodeStrict(r, &req); ferr != nil {
		return nil, ferr
	}
	if ferr := req.validate(); ferr != nil {
		return nil, ferr
	}
	return &req, nil
}

func (r *ContactRequest) validate() *FieldError {
	if utf8.RuneCountInString(r.Email) > maxEmailLen || !validEmail(r.Email) {
		return &FieldError{Field: "email", Message: "must be a valid email address"}
	}

	if r.Name == "" {
		return &FieldError{Field: "name", Message: "name is required"}
	}
	if utf8.RuneCountInString(r.Name) > maxContactNameLen {
		return &FieldError{Field: "name", Message: fmt.Sprintf("name must be at most %d characters", maxContactNameLen)}
	}

	if r.Subject == "" {
		return &FieldError{Field: "subject", Message: "subject is required"}
	}
	if utf8.RuneCountInString(r.Subject) > maxSubjectLen {
		return &FieldError{Field: "subject", Message: fmt.Sprintf("subject must be at most %d characters", maxSubjectLen)}
	}

	// Bounds count characters, not bytes.
	if utf8.RuneCountInString(r.Message) < minMessageLen {
		return &FieldError{Field: "message", Message: fmt.Sprintf("message must be at least %d characters", minMessageLen)}
	}
	if utf8.RuneCountInString(r.Message) > maxMessageLen {
		return &FieldError{Field: "message", Message: fmt.Sprintf("message must be at most %d characters", maxMessageLen)}
	}

	if strings.TrimSpace(r.TurnstileToken) == "" {
		return &FieldError{Field: "cf-turnstile-response", Message: "verification token is required"}
	}

	return nil
}
