package models

import (
	"errors"
)

var (
	ErrNoOptions       = errors.New("no initialized model options")
	ErrNoTrainingArray = errors.New("no training array")
	ErrSingularDesign  = errors.New("lag design matrix is singular")

	ErrInvalidOrder     = errors.New("invalid model order")
	ErrInvalidCriterion = errors.New("unknown information criterion")
	ErrInsufficientData = errors.New("insufficient observations to fit model")
	ErrNotConverged     = errors.New("optimizer did not converge")
	ErrDegenerateFit    = errors.New("degenerate fit with zero residual variance")
	ErrNonFinite        = errors.New("non-finite values encountered")
	ErrUnfitted         = errors.New("model has not been fit")
	ErrInvalidHorizon   = errors.New("forecast horizon must be at least one step")
	ErrInvalidAlpha     = errors.New("alpha must be between 0 and 1")
)
