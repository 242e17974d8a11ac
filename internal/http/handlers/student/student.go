// Package student contains the HTTP handlers for the Student resource.
//
// Handlers are built by factory functions that receive their dependencies
// once, at route registration, and return the http.HandlerFunc the router
// calls on every request:
//
//	r.Post("/students", student.New(storage))
package student

import (
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/aanand-mishra/student-api/internal/storage"
	"github.com/aanand-mishra/student-api/internal/types"
	"github.com/aanand-mishra/student-api/internal/utils/response"
)

// Response messages.
const (
	WelcomeMessage = "Welcome to the Student API"
	CreatedMessage = "Student added successfully"
)

// validate is shared by all handlers; a *validator.Validate caches struct
// metadata and is safe for concurrent use. Failing fields are reported by
// their json name.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonName)
	return v
}

func jsonName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	return name
}

// ListResponse is the body of GET /students.
type ListResponse struct {
	Students []types.Student `json:"students"`
}

// CreateResponse is the body of a successful POST /students.
type CreateResponse struct {
	Message string `json:"message"`
	ID      int64  `json:"id"`
}

// Welcome handles GET /
//
//	{ "message": "Welcome to the Student API" }
func Welcome() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.WriteJSON(w, http.StatusOK, map[string]string{"message": WelcomeMessage})
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// New handles POST /students
//
// Request body (JSON), every key required:
//
//	{ "name": "Jane Doe", "admission_number": "A123",
//	  "class_name": "Form 2", "stream": "North" }
//
// Success response (201 Created):
//
//	{ "message": "Student added successfully", "id": 1 }
//
// Error responses:
//
//	422 Unprocessable Entity  empty body, malformed JSON, trailing data,
//	                          wrong types or missing keys; the database is
//	                          not touched
//	500 Internal Server Error database failure
//
// ─────────────────────────────────────────────────────────────────────────────
func New(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("creating a student")

		payload, problem := decodeNewStudent(r.Body)
		if problem != nil {
			response.WriteJSON(w, http.StatusUnprocessableEntity, problem)
			return
		}

		id, err := storage.CreateStudent(r.Context(), payload.Student())
		if err != nil {
			slog.Error("error creating student", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.DatabaseError(err))
			return
		}

		slog.Info("student created", slog.Int64("id", id))
		response.WriteJSON(w, http.StatusCreated, CreateResponse{Message: CreatedMessage, ID: id})
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// List handles GET /students
//
// Success response (200 OK):
//
//	{ "students": [
//	    { "id": 1, "name": "Jane Doe", "admission_number": "A123",
//	      "class": "Form 2", "stream": "North" }
//	] }
//
// An empty table gives { "students": [] }. A database failure gives 500
// with { "detail": "Database error: ..." }.
// ─────────────────────────────────────────────────────────────────────────────
func List(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("getting all students")

		students, err := storage.ListStudents(r.Context())
		if err != nil {
			slog.Error("error getting students", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.DatabaseError(err))
			return
		}
		if students == nil {
			students = []types.Student{}
		}

		response.WriteJSON(w, http.StatusOK, ListResponse{Students: students})
	}
}

// Health handles GET /health. It reports 503 when the database does not
// answer a ping.
func Health(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := storage.Ping(r.Context()); err != nil {
			slog.Warn("health check failed", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusServiceUnavailable, response.DatabaseError(err))
			return
		}
		response.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
