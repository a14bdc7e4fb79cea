package remote

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Kind classifies remote call failures.
type Kind int

const (
	// KindNetwork means no usable response was received.
	KindNetwork Kind = iota
	// KindRejected means the server answered with a 4xx/5xx status.
	KindRejected
	// KindValidation means the input was invalid, either caught before
	// sending or reported by the server as a 422.
	KindValidation
	// KindSessionExpired means an authenticated call came back 401.
	KindSessionExpired
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindRejected:
		return "rejected"
	case KindValidation:
		return "validation"
	case KindSessionExpired:
		return "session expired"
	}
	return "unknown"
}

// Error is the typed failure every client method returns. Message is
// always safe to show to the user.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Fields  map[string][]string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// IsKind reports whether err is a remote Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var re *Error
	return errors.As(err, &re) && re.Kind == kind
}

// UserMessage extracts the displayable message from err, falling back
// to the given default for untyped errors.
func UserMessage(err error, fallback string) string {
	var re *Error
	if errors.As(err, &re) && re.Message != "" {
		return re.Message
	}
	return fallback
}

type errorBody struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

// flattenBody turns an error response body into one user-facing message
// plus the raw field errors: an explicit message wins, otherwise all
// field messages are joined in field order.
func flattenBody(body []byte) (string, map[string][]string) {
	var parsed errorBody
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", nil
	}
	if parsed.Message != "" && len(parsed.Errors) == 0 {
		return parsed.Message, nil
	}
	if len(parsed.Errors) > 0 {
		fields := make([]string, 0, len(parsed.Errors))
		for f := range parsed.Errors {
			fields = append(fields, f)
		}
		sort.Strings(fields)
		var msgs []string
		for _, f := range fields {
			msgs = append(msgs, parsed.Errors[f]...)
		}
		return strings.Join(msgs, " "), parsed.Errors
	}
	return parsed.Message, nil
}
