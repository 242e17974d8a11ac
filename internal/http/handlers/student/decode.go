package student

import (
	"encoding/json"
	"errors"
	"io"
	"reflect"

	"github.com/go-playground/validator/v10"

	"github.com/aanand-mishra/student-api/internal/types"
	"github.com/aanand-mishra/student-api/internal/utils/response"
)

// decodeNewStudent reads the POST /students body. The body must hold
// exactly one JSON object. On failure the returned response lists every
// problem found, in field order: a field is reported either as having the
// wrong type or as missing, never both.
func decodeNewStudent(body io.Reader) (types.NewStudent, *response.Response) {
	var payload types.NewStudent

	dec := json.NewDecoder(body)

	var raw map[string]json.RawMessage
	err := dec.Decode(&raw)
	if errors.Is(err, io.EOF) {
		return payload, ptr(response.MissingBody())
	}
	if err != nil {
		return payload, ptr(response.DecodeError(err))
	}
	if raw == nil {
		// the body was a literal null
		return payload, ptr(response.MissingBody())
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return payload, ptr(response.Details([]response.FieldError{
			response.InvalidJSON("unexpected data after the JSON object"),
		}))
	}

	v := reflect.ValueOf(&payload).Elem()
	t := v.Type()

	wrongType := make(map[string]bool)
	for i := range t.NumField() {
		name := jsonName(t.Field(i))
		value, ok := raw[name]
		if !ok {
			continue
		}
		if err := json.Unmarshal(value, v.Field(i).Addr().Interface()); err != nil {
			wrongType[name] = true
		}
	}

	invalid := make(map[string]response.FieldError)
	if err := validate.Struct(payload); err != nil {
		var validateErrs validator.ValidationErrors
		if !errors.As(err, &validateErrs) {
			return payload, ptr(response.Message(err.Error()))
		}
		for _, fe := range response.ValidationDetails(validateErrs) {
			invalid[fe.Loc[len(fe.Loc)-1]] = fe
		}
	}

	var problems []response.FieldError
	for i := range t.NumField() {
		name := jsonName(t.Field(i))
		if wrongType[name] {
			problems = append(problems, response.StringTypeError(name))
			continue
		}
		if fe, ok := invalid[name]; ok {
			problems = append(problems, fe)
		}
	}
	if len(problems) > 0 {
		return payload, ptr(response.Details(problems))
	}

	return payload, nil
}

func ptr(r response.Response) *response.Response {
	return &r
}
