package form

import (
	"fmt"
	"strings"
)

// Mode selects when field events trigger validation.
type Mode string

const (
	// OnSubmit validates only on submission.
	OnSubmit Mode = "onSubmit"
	// OnBlur validates a field when it loses focus.
	OnBlur Mode = "onBlur"
	// OnChange validates a field on every change.
	OnChange Mode = "onChange"
	// OnTouched validates on the first blur and on every change after it.
	OnTouched Mode = "onTouched"
	// All validates on both blur and change.
	All Mode = "all"
)

func (m Mode) String() string {
	return string(m)
}

// ParseMode parses a mode name, case-insensitively.
func ParseMode(s string) (Mode, error) {
	for _, m := range []Mode{OnSubmit, OnBlur, OnChange, OnTouched, All} {
		if strings.EqualFold(string(m), strings.TrimSpace(s)) {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

type fieldEvent int

const (
	changeEvent fieldEvent = iota
	blurEvent
)

// shouldValidate decides whether a field event runs validation. Before the
// first submission mode applies, afterwards reValidate does.
func shouldValidate(mode, reValidate Mode, submitted, touched bool, ev fieldEvent) bool {
	if submitted {
		switch reValidate {
		case OnBlur:
			return ev == blurEvent
		case OnChange:
			return ev == changeEvent
		case All:
			return true
		default:
			return false
		}
	}

	switch mode {
	case All:
		return true
	case OnBlur:
		return ev == blurEvent
	case OnChange:
		return ev == changeEvent
	case OnTouched:
		return ev == blurEvent || touched
	default:
		return false
	}
}
