// Package response provides helpers for writing consistent JSON HTTP
// responses.
//
// Every error leaves the API in the same envelope, {"detail": ...}, where
// detail is either a message string or, for request validation failures,
// a list of FieldError values.
package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// Response is the envelope returned for error cases.
type Response struct {
	Detail any `json:"detail"`
}

// FieldError describes one problem with a request body.
//
//	{ "loc": ["body", "name"], "msg": "Field required", "type": "missing" }
type FieldError struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

// Error types used in FieldError.Type.
const (
	TypeMissing     = "missing"
	TypeString      = "string_type"
	TypeJSONInvalid = "json_invalid"
	TypeModel       = "model_attributes_type"
)

// DatabaseErrorPrefix starts the detail of every storage failure.
const DatabaseErrorPrefix = "Database error: "

// WriteJSON writes data as JSON with the given HTTP status code.
//
// Headers must be set before WriteHeader; once the status line is out,
// they are locked.
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// Message wraps a plain message into the error envelope.
func Message(msg string) Response {
	return Response{Detail: msg}
}

// DatabaseError wraps a storage failure, carrying the driver's text.
//
//	{ "detail": "Database error: dial tcp 127.0.0.1:5432: connection refused" }
func DatabaseError(err error) Response {
	return Response{Detail: DatabaseErrorPrefix + err.Error()}
}

// Details wraps a list of problems into the error envelope.
func Details(details []FieldError) Response {
	return Response{Detail: details}
}

// ValidationError converts validator failures into one FieldError per
// failing field. Field names are reported as the validator knows them, so
// the validator should be set up to use json tag names.
func ValidationError(errs validator.ValidationErrors) Response {
	return Details(ValidationDetails(errs))
}

// ValidationDetails is ValidationError without the envelope.
func ValidationDetails(errs validator.ValidationErrors) []FieldError {
	details := make([]FieldError, 0, len(errs))

	for _, e := range errs {
		switch e.ActualTag() {
		case "required":
			details = append(details, FieldError{
				Loc:  []string{"body", e.Field()},
				Msg:  "Field required",
				Type: TypeMissing,
			})
		default:
			details = append(details, FieldError{
				Loc:  []string{"body", e.Field()},
				Msg:  fmt.Sprintf("Field failed the %q check", e.ActualTag()),
				Type: e.ActualTag(),
			})
		}
	}

	return details
}

// MissingBody is the validation envelope for an empty request body.
func MissingBody() Response {
	return Details([]FieldError{{
		Loc:  []string{"body"},
		Msg:  "Field required",
		Type: TypeMissing,
	}})
}

// StringTypeError reports a field whose JSON value is not a string.
func StringTypeError(field string) FieldError {
	return FieldError{
		Loc:  []string{"body", field},
		Msg:  "Input should be a valid string",
		Type: TypeString,
	}
}

// InvalidJSON reports a body that is not a single well-formed JSON value.
func InvalidJSON(msg string) FieldError {
	return FieldError{
		Loc:  []string{"body"},
		Msg:  "JSON decode error: " + msg,
		Type: TypeJSONInvalid,
	}
}

// DecodeError converts a json decoding failure into the validation
// envelope. Type mismatches are reported against the offending field.
func DecodeError(err error) Response {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		if typeErr.Field == "" {
			return Details([]FieldError{{
				Loc:  []string{"body"},
				Msg:  "Input should be a valid dictionary or object",
				Type: TypeModel,
			}})
		}
		return Details([]FieldError{StringTypeError(typeErr.Field)})
	}

	return Details([]FieldError{InvalidJSON(err.Error())})
}
