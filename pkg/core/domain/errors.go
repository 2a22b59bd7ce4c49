package domain

import "errors"

var (
	ErrCardNotFound  = errors.New("card not found")
	ErrWrongPassword = errors.New("password does not match")
	ErrURLExists     = errors.New("URL already exists")
	ErrNoCards       = errors.New("no cards to export")
)

// ValidationError is returned for input rejected before it reaches storage.
// Its text is safe to show to the user as-is.
type ValidationError string

func (e ValidationError) Error() string {
	return string(e)
}
