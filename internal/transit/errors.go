package transit

import "errors"

// Kind classifies search failures so callers can branch on them.
type Kind int

const (
	KindInvalidDate Kind = iota + 1
	KindGeocodeFailure
	KindStoreUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindInvalidDate:
		return "invalid date"
	case KindGeocodeFailure:
		return "geocode failure"
	case KindStoreUnavailable:
		return "store unavailable"
	default:
		return "unknown"
	}
}

var (
	ErrInvalidDate      = errors.New("invalid date")
	ErrGeocodeFailure   = errors.New("geocode failure")
	ErrStoreUnavailable = errors.New("store unavailable")
)

// Error is a typed search failure.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the sentinel for the error's kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrInvalidDate:
		return e.Kind == KindInvalidDate
	case ErrGeocodeFailure:
		return e.Kind == KindGeocodeFailure
	case ErrStoreUnavailable:
		return e.Kind == KindStoreUnavailable
	}
	return false
}

func NewError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
