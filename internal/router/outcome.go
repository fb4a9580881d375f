package router

import "net/http"

// Outcome is the uniform result of routing an intent: an HTTP status and a
// JSON-encodable body.
type Outcome struct {
	Status int
	Body   map[string]any
}

// OK reports success with the given body.
func OK(body map[string]any) Outcome {
	return Outcome{Status: http.StatusOK, Body: body}
}

// BadRequest reports a client-caused validation failure.
func BadRequest(msg string) Outcome {
	return Outcome{Status: http.StatusBadRequest, Body: map[string]any{"error": msg}}
}

// UpstreamError reports a failed downstream call.
func UpstreamError(msg string) Outcome {
	return Outcome{Status: http.StatusInternalServerError, Body: map[string]any{"error": msg}}
}

// Error returns the error message, if any.
func (o Outcome) Error() string {
	if msg, ok := o.Body["error"].(string); ok {
		return msg
	}
	return ""
}
