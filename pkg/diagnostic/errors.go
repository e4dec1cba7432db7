package diagnostic

import "errors"

var ErrMalformedBody = errors.New("malformed JSON body")

// ValidationError reports a request body that parsed but broke the patient schema.
type ValidationError struct {
	reason error
}

func (e ValidationError) Error() string {
	return e.reason.Error()
}

func (e ValidationError) Unwrap() error {
	return e.reason
}

func IsValidationError(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}
