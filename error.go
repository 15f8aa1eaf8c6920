package cdecl

import (
	"errors"
)

// DuplicateDeclError reports a qualified name already present in the
// declaration table.
type DuplicateDeclError struct {
	Name string // qualified name, e.g. "typedef foo_t"
}

func (e *DuplicateDeclError) Error() string {
	return "multiple declarations of " + e.Name
}

func IsDuplicateDeclError(err error) bool {
	var e *DuplicateDeclError
	return errors.As(err, &e)
}

// DuplicateFieldListError reports a second defining mention of an
// aggregate whose field list is already set.
type DuplicateFieldListError struct {
	Name string // tag or synthetic name
}

func (e *DuplicateFieldListError) Error() string {
	return "duplicate field list for " + e.Name
}

func IsDuplicateFieldListError(err error) bool {
	var e *DuplicateFieldListError
	return errors.As(err, &e)
}

// UnnamedDeclError reports a declaration that declares nothing: a
// typedef without a name, or a plain declaration with neither a
// variable name nor a named or field-carrying tag.
type UnnamedDeclError struct {
	Msg string
}

func (e *UnnamedDeclError) Error() string { return e.Msg }

func IsUnnamedDeclError(err error) bool {
	var e *UnnamedDeclError
	return errors.As(err, &e)
}

// UnsupportedConstructError reports a top-level construct the
// registrar does not recognize, or a front-end parse failure.
type UnsupportedConstructError struct {
	Msg string
	Err error // underlying parse error, if any
}

func (e *UnsupportedConstructError) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *UnsupportedConstructError) Unwrap() error { return e.Err }

func IsUnsupportedConstructError(err error) bool {
	var e *UnsupportedConstructError
	return errors.As(err, &e)
}

// UnsupportedTypeError reports a nested type node the resolver does
// not recognize, or a negative array length or bit-field width.
type UnsupportedTypeError struct {
	Msg string
}

func (e *UnsupportedTypeError) Error() string { return e.Msg }

func IsUnsupportedTypeError(err error) bool {
	var e *UnsupportedTypeError
	return errors.As(err, &e)
}

// NonConstExprError reports an array-length, bit-field or enumerator
// expression outside the literal/negation subset.
type NonConstExprError struct{}

func (e *NonConstExprError) Error() string {
	return "unsupported non-constant or not immediately constant expression"
}

func IsNonConstExprError(err error) bool {
	var e *NonConstExprError
	return errors.As(err, &e)
}
