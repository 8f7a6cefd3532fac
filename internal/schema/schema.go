// Package schema validates raw form submissions. Parsing is strict: unknown
// fields are rejected, and validation is fail-fast, reporting only the first
// failing field so the client can highlight it.
package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// FieldError names the first field that failed validation together with a
// human-readable reason. It is safe to return to clients.
type FieldError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (e *FieldError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

var emailRe = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

func validEmail(s string) bool {
	return emailRe.MatchString(s)
}

// decodeStrict decodes a single JSON object into dst, rejecting unknown
// fields and trailing data.
func decodeStrict(r io.Reader, dst interface{}) *FieldError {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return decodeError(err)
	}
	if dec.More() {
		return &FieldError{Message: "request body must be a single JSON object"}
	}
	return nil
}

func decodeError(err error) *FieldError {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return &FieldError{
			Field:   typeErr.Field,
			Message: fmt.Sprintf("must be of type %s", typeErr.Type),
		}
	}

	// encoding/json reports unknown fields only through the error string.
	msg := err.Error()
	if rest, ok := strings.CutPrefix(msg, `json: unknown field `); ok {
		return &FieldError{
			Field:   strings.Trim(rest, `"`),
			Message: "unexpected field",
		}
	}

	return &FieldError{Message: "invalid JSON body"}
}

// InterestList accepts either a JSON array of strings or a single
// comma-delimited string and normalizes to a slice.
type InterestList []string

func (l *InterestList) UnmarshalJSON(data []byte) error {
	var arr []string
	if err := json.Unmarshal(data, &arr); err == nil {
		*l = arr
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return errors.New("interests must be a string or an array of strings")
	}

	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	*l = out
	return nil
}

// Agreement accepts a JSON boolean or a checkbox-style string value
// (any non-empty string counts as checked).
type Agreement bool

func (a *Agreement) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*a = Agreement(b)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return errors.New("agreement must be a boolean or a string")
	}
	*a = Agreement(len(s) > 0)
	return nil
}
