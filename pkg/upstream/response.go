package upstream

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrUnavailable marks transport failures: the upstream host could not be reached
// or the connection broke before a response arrived.
var ErrUnavailable = errors.New("upstream unavailable")

type UnavailableError struct {
	Method string
	URL    string
	Err    error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("upstream %s %s unreachable: %v", e.Method, e.URL, e.Err)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

func (e *UnavailableError) Is(target error) bool {
	return target == ErrUnavailable
}

// HTTPError is a non-2xx upstream answer. It is never returned by Execute itself;
// callers derive it from the Response when they need an error value.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("upstream responded %d: %s", e.StatusCode, e.Message)
}

// Response is one upstream answer with its body already read.
type Response struct {
	StatusCode int
	Status     string
	Header     http.Header
	Body       []byte
}

func (r *Response) Success() bool {
	return r != nil && r.StatusCode >= 200 && r.StatusCode <= 299
}

// Payload parses the body as a JSON object. Malformed or non-object bodies yield
// an empty map.
func (r *Response) Payload() map[string]any {
	if r == nil {
		return map[string]any{}
	}
	var parsed any
	if err := json.Unmarshal(r.Body, &parsed); err != nil {
		return map[string]any{}
	}
	if m, ok := parsed.(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

// Data is the payload after resolving the optional "data" envelope.
func (r *Response) Data() map[string]any {
	if r == nil {
		return map[string]any{}
	}
	return UnwrapJSON(r.Body)
}

// Message picks the best human readable explanation for the response.
func (r *Response) Message() string {
	if r == nil {
		return "Unknown Error"
	}
	payload := r.Payload()
	for _, key := range []string{"message", "error"} {
		if msg := messageValue(payload[key]); msg != "" {
			return msg
		}
	}
	if reason := http.StatusText(r.StatusCode); reason != "" {
		return reason
	}
	if status := strings.TrimSpace(r.Status); status != "" {
		return status
	}
	return "Unknown Error"
}

func (r *Response) Err() error {
	if r.Success() {
		return nil
	}
	if r == nil {
		return &HTTPError{Message: "Unknown Error"}
	}
	return &HTTPError{StatusCode: r.StatusCode, Message: r.Message()}
}

func messageValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case map[string]any:
		// {"error": {"message": "..."}} shows up on some upstream failures
		return messageValue(val["message"])
	default:
		return strings.TrimSpace(fmt.Sprint(val))
	}
}
