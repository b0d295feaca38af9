package domain

import "errors"

// ErrViewNotFound is returned when a view ID cannot be found in the store.
var ErrViewNotFound = errors.New("view not found")

// ErrUnknownSignal is returned by hosts when a signal type is not recognized.
var ErrUnknownSignal = errors.New("unknown signal")
