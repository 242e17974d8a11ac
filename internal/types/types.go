// Package types holds the shared data structures used across the
// application. Handlers and storage backends both import it, so neither
// has to depend on the other.
package types

// Student is a persisted student record.
//
// ClassName is stored in the "class" column and is serialized under that
// same key when students are listed.
type Student struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	AdmissionNumber string `json:"admission_number"`
	ClassName       string `json:"class"`
	Stream          string `json:"stream"`
}

// NewStudent is the payload accepted when adding a student.
//
// Fields are pointers so that a missing key can be told apart from an
// empty string: validate:"required" on a pointer fails only when the key
// was absent (or null), while "" is still accepted.
type NewStudent struct {
	Name            *string `json:"name"             validate:"required"`
	AdmissionNumber *string `json:"admission_number" validate:"required"`
	ClassName       *string `json:"class_name"       validate:"required"`
	Stream          *string `json:"stream"           validate:"required"`
}

// Student returns the record n describes, without an ID.
// Call it only after n passed validation.
func (n NewStudent) Student() Student {
	return Student{
		Name:            deref(n.Name),
		AdmissionNumber: deref(n.AdmissionNumber),
		ClassName:       deref(n.ClassName),
		Stream:          deref(n.Stream),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
