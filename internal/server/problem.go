package server

import (
	"encoding/json"
	"net/http"

	"github.com/Go-Digital-Alchemy-Repos/Power-Plunge-20-sub001/internal/schema"
)

// Problem types for RFC 7807 Problem Details responses.
const (
	ProblemTypeNotFound     = "https://powerplunge.com/problems/not-found"
	ProblemTypeBadRequest   = "https://powerplunge.com/problems/bad-request"
	ProblemTypeValidation   = "https://powerplunge.com/problems/validation-failed"
	ProblemTypeInternal     = "https://powerplunge.com/problems/internal-error"
	ProblemTypeUnauthorized = "https://powerplunge.com/problems/unauthorized"
	ProblemTypeRateLimited  = "https://powerplunge.com/problems/rate-limited"
)

// Problem represents an RFC 7807 Problem Details response. Error and Details
// are extension members: Error repeats the detail for clients that only read
// {error}, Details carries the per-field validation report.
type Problem struct {
	Type     string              `json:"type" example:"https://powerplunge.com/problems/bad-request"`
	Title    string              `json:"title" example:"Bad Request"`
	Status   int                 `json:"status" example:"400"`
	Detail   string              `json:"detail,omitempty" example:"request body is not valid JSON"`
	Instance string              `json:"instance,omitempty" example:"/api/v1/settings/site"`
	Error    string              `json:"error" example:"request body is not valid JSON"`
	Details  map[string][]string `json:"details,omitempty"`
}

// WriteProblem writes an RFC 7807 Problem Details JSON response.
func WriteProblem(w http.ResponseWriter, p Problem) {
	if p.Error == "" {
		p.Error = p.Detail
	}
	if p.Error == "" {
		p.Error = p.Title
	}
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

// NotFound writes a 404 problem response.
func NotFound(w http.ResponseWriter, detail, instance string) {
	WriteProblem(w, Problem{
		Type:     ProblemTypeNotFound,
		Title:    "Not Found",
		Status:   http.StatusNotFound,
		Detail:   detail,
		Instance: instance,
	})
}

// BadRequest writes a 400 problem response.
func BadRequest(w http.ResponseWriter, detail, instance string) {
	WriteProblem(w, Problem{
		Type:     ProblemTypeBadRequest,
		Title:    "Bad Request",
		Status:   http.StatusBadRequest,
		Detail:   detail,
		Instance: instance,
	})
}

// ValidationFailed writes report as a problem with the given status
// (400 for rejected writes, 422 for schema checks).
func ValidationFailed(w http.ResponseWriter, status int, report *schema.ValidationError, instance string) {
	WriteProblem(w, Problem{
		Type:     ProblemTypeValidation,
		Title:    "Validation Failed",
		Status:   status,
		Detail:   "one or more fields are invalid",
		Instance: instance,
		Details:  report.Fields,
	})
}

// Unauthorized writes a 401 problem response.
func Unauthorized(w http.ResponseWriter, detail, instance string) {
	WriteProblem(w, Problem{
		Type:     ProblemTypeUnauthorized,
		Title:    "Unauthorized",
		Status:   http.StatusUnauthorized,
		Detail:   detail,
		Instance: instance,
	})
}

// InternalError writes a 500 problem response.
func InternalError(w http.ResponseWriter, detail, instance string) {
	WriteProblem(w, Problem{
		Type:     ProblemTypeInternal,
		Title:    "Internal Server Error",
		Status:   http.StatusInternalServerError,
		Detail:   detail,
		Instance: instance,
	})
}

// RateLimited writes a 429 problem response.
func RateLimited(w http.ResponseWriter, detail, instance string) {
	WriteProblem(w, Problem{
		Type:     ProblemTypeRateLimited,
		Title:    "Too Many Requests",
		Status:   http.StatusTooManyRequests,
		Detail:   detail,
		Instance: instance,
	})
}
