package object

import "errors"

// ErrObjectNotFound indicates a referenced digest is absent from the store.
var ErrObjectNotFound = errors.New("object not found")

// ErrMalformedObject indicates stored or supplied bytes failed to decode.
var ErrMalformedObject = errors.New("malformed object")
