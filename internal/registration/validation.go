package registration

import "log/slog"

// Field is a form field key the service reports validation failures for.
type Field string

const (
	FieldName       Field = "name"
	FieldEmail      Field = "email"
	FieldPhone      Field = "phone"
	FieldPositionID Field = "position_id"
	FieldPhoto      Field = "photo"
)

// ValidationErrors holds the first server message per known field.
type ValidationErrors struct {
	Name       string
	Email      string
	Phone      string
	PositionID string
	Photo      string
}

// NewValidationErrors keeps the first message of each known field. Unknown
// keys are logged and dropped. It returns nil when fails is nil.
func NewValidationErrors(fails map[string][]string) *ValidationErrors {
	if fails == nil {
		return nil
	}

	v := &ValidationErrors{}
	for key, messages := range fails {
		if len(messages) == 0 {
			continue
		}
		first := messages[0]

		switch Field(key) {
		case FieldName:
			v.Name = first
		case FieldEmail:
			v.Email = first
		case FieldPhone:
			v.Phone = first
		case FieldPositionID:
			v.PositionID = first
		case FieldPhoto:
			v.Photo = first
		default:
			slog.Warn("Unrecognized fail field", "field", key)
		}
	}
	return v
}

// Get returns the message for f.
func (v *ValidationErrors) Get(f Field) string {
	if v == nil {
		return ""
	}
	switch f {
	case FieldName:
		return v.Name
	case FieldEmail:
		return v.Email
	case FieldPhone:
		return v.Phone
	case FieldPositionID:
		return v.PositionID
	case FieldPhoto:
		return v.Photo
	default:
		return ""
	}
}

func (v *ValidationErrors) Empty() bool {
	return v == nil || *v == ValidationErrors{}
}
