package httpx

import (
	"net/http"
	"time"
)

// Problem is the JSON error document returned by the HTTP surface. The
// shape follows RFC 7807 with two extensions: a per-field error list for
// validation failures and the request path that produced the error.
type Problem struct {
	Type      string       `json:"type"`
	Title     string       `json:"title"`
	Status    int          `json:"status"`
	Detail    string       `json:"detail"`
	Errors    []FieldError `json:"errors,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
	Path      string       `json:"path"`
}

// FieldError describes a single validation failure on a request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// NewProblem builds a Problem for the given status with the standard
// about:blank type and the status text as title.
func NewProblem(r *http.Request, status int, detail string) Problem {
	return Problem{
		Type:      "about:blank",
		Title:     http.StatusText(status),
		Status:    status,
		Detail:    detail,
		Timestamp: time.Now().UTC(),
		Path:      r.URL.Path,
	}
}

// WriteProblem writes a Problem as the response body with its status.
func WriteProblem(w http.ResponseWriter, r *http.Request, status int, detail string) {
	WriteJSON(w, status, NewProblem(r, status, detail))
}

// WriteValidationProblem writes a 400 Problem carrying field errors.
func WriteValidationProblem(w http.ResponseWriter, r *http.Request, detail string, errs []FieldError) {
	p := NewProblem(r, http.StatusBadRequest, detail)
	p.Errors = errs
	WriteJSON(w, http.StatusBadRequest, p)
}
