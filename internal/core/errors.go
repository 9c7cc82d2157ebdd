package core

import "errors"

// Sentinel errors the services wrap so the HTTP layer can map failures to
// status codes without inspecting database or Temporal error types.
var (
	ErrNotFound    = errors.New("not found")
	ErrRunInFlight = errors.New("run already in flight")
	ErrRunFinished = errors.New("run already finished")
	ErrValidation  = errors.New("invalid request")
)
