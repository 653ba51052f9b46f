// Package store holds the persistence collaborators. Every query is
// parameterized and every "row not found" surfaces as ErrNotFound so
// callers handle absence at the type level instead of catching driver
// errors.
package store

import "errors"

var ErrNotFound = errors.New("store: not found")
