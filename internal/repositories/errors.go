package repositories

import "errors"

// ErrNotFound is returned when a lookup resolves to no record. Callers match
// it with errors.Is; the wrapping message carries the specifics.
var ErrNotFound = errors.New("record not found")
