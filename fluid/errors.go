package fluid

import "errors"

var (
	// ErrInvalidParams is returned by New and Params.Validate for unusable parameters.
	ErrInvalidParams = errors.New("fluid: invalid parameters")

	// ErrOutOfRange is returned when a grid coordinate lies outside its array family.
	ErrOutOfRange = errors.New("fluid: index out of range")

	// ErrBorderCell is returned when a caller tries to open a domain border cell.
	ErrBorderCell = errors.New("fluid: border cells are always solid")
)
