package forecast

import "errors"

var (
	ErrNoOptions         = errors.New("no initialized forecast options")
	ErrUnknownTransform  = errors.New("unknown transform")
	ErrUnknownPolicy     = errors.New("unknown selection policy")
	ErrNoCandidates      = errors.New("no model candidates configured")
	ErrInvalidThreshold  = errors.New("invalid minimum history threshold")
	ErrInvalidAlpha      = errors.New("alpha must be between 0 and 1")
	ErrNoSeries          = errors.New("no series to forecast")
	ErrNoTargets         = errors.New("no target months requested")
	ErrNegativeSteps     = errors.New("forecast steps must not be negative")
	ErrInvalidValidation = errors.New("validation window must not be negative")
	ErrCandidatePanicked = errors.New("candidate fit panicked")
)
