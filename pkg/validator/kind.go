package validator

// Kind classifies a validation failure.
type Kind string

const (
	KindRequired Kind = "required"
	KindRange    Kind = "range"
	KindFormat   Kind = "format"
	KindCoercion Kind = "coercion"
	KindCustom   Kind = "custom"
)

// Err returns the sentinel error for the kind.
func (k Kind) Err() error {
	switch k {
	case KindRequired:
		return ErrRequired
	case KindRange:
		return ErrOutOfRange
	case KindFormat:
		return ErrInvalidFormat
	case KindCoercion:
		return ErrCoercion
	case KindCustom:
		return ErrCustomRule
	default:
		return ErrValidationFailed
	}
}

func (k Kind) String() string {
	return string(k)
}
