package calculator

import "errors"

var (
	// ErrInvalidLevel is returned when the requested location level is not district, state or national.
	ErrInvalidLevel = errors.New("invalid location level, choose from district, state, national")
	// ErrInvalidProfile is returned when the package profile has a non-positive dimension, weight or divisor.
	ErrInvalidProfile = errors.New("package dimensions, weight and volumetric divisor must be positive")
	// ErrInvalidRateTable is returned when the carrier rate table is empty or incomplete.
	ErrInvalidRateTable = errors.New("rate table must list uniquely named carriers with a non-negative rate for every level")
	// ErrNoCosts is returned when the cheapest carrier is requested from an empty cost list.
	ErrNoCosts = errors.New("no carrier costs to compare")
)
