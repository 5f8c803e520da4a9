package apiclient

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// FallbackMessage is shown when no extractor can produce anything better.
const FallbackMessage = "Something went wrong. Please try again."

// APIError is a request the server rejected: the envelope said
// isSuccess=false, possibly with field-level validation errors.
type APIError struct {
	HTTPStatus int
	Message    string
	Fields     map[string][]string
}

func (e *APIError) Error() string {
	if msg, ok := fieldErrorsMessage(e); ok {
		return msg
	}
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed (%d)", e.HTTPStatus)
}

// ExtractMessage turns any error from this package into a single
// displayable string. Extractors are probed in order: field-level
// validation errors, then the server message, then the error's own
// text, then the generic fallback.
func ExtractMessage(err error) string {
	if err == nil {
		return ""
	}
	for _, extract := range extractors {
		if msg, ok := extract(err); ok {
			return msg
		}
	}
	return FallbackMessage
}

type extractor func(error) (string, bool)

var extractors = []extractor{
	func(err error) (string, bool) {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return fieldErrorsMessage(apiErr)
		}
		return "", false
	},
	func(err error) (string, bool) {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			return apiErr.Message, true
		}
		return "", false
	},
	// Transport and encoding errors carry their own text; server
	// rejections without fields or a message fall through to the
	// generic fallback instead of leaking internals.
	func(err error) (string, bool) {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return "", false
		}
		if msg := err.Error(); msg != "" {
			return msg, true
		}
		return "", false
	},
}

// fieldErrorsMessage renders "email: Invalid; name: too short" with
// fields in stable order.
func fieldErrorsMessage(e *APIError) (string, bool) {
	if len(e.Fields) == 0 {
		return "", false
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], ", "))
	}
	return strings.Join(parts, "; "), true
}
