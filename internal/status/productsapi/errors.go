package productsapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// FieldDetail is one entry of a structured validation failure: the path of
// the offending field and a human-readable message.
type FieldDetail struct {
	Loc []json.RawMessage `json:"loc"`
	Msg string            `json:"msg"`
}

// Location joins the loc path segments with dots. Segments may be strings
// or array indices on the wire; both render naturally. An empty path
// renders as "request".
func (d FieldDetail) Location() string {
	if len(d.Loc) == 0 {
		return "request"
	}
	parts := make([]string, 0, len(d.Loc))
	for _, segment := range d.Loc {
		var asString string
		if err := json.Unmarshal(segment, &asString); err == nil {
			parts = append(parts, asString)
			continue
		}
		parts = append(parts, string(segment))
	}
	return strings.Join(parts, ".")
}

// APIError is a non-2xx backend response. For 422 validation failures the
// Detail list carries per-field diagnostics.
type APIError struct {
	StatusCode int
	Detail     []FieldDetail `json:"detail"`
}

func (e *APIError) Error() string {
	if len(e.Detail) == 0 {
		return fmt.Sprintf("backend returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.StatusCode, e.ValidationMessage())
}

// IsValidation reports whether the error carries structured validation
// detail.
func (e *APIError) IsValidation() bool {
	return e.StatusCode == http.StatusUnprocessableEntity && len(e.Detail) > 0
}

// ValidationMessage renders the detail list as "loc: msg" entries joined
// by " | ". It returns the empty string when no detail is present.
func (e *APIError) ValidationMessage() string {
	if len(e.Detail) == 0 {
		return ""
	}
	entries := make([]string, 0, len(e.Detail))
	for _, item := range e.Detail {
		msg := item.Msg
		if msg == "" {
			msg = "invalid value"
		}
		entries = append(entries, item.Location()+": "+msg)
	}
	return strings.Join(entries, " | ")
}

// decodeAPIError turns a non-2xx response into an *APIError. A body that
// fails to decode still yields an error carrying the status code.
func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err == nil && len(body) > 0 {
		_ = json.Unmarshal(body, apiErr)
	}
	return apiErr
}
