package location

import "errors"

// ErrInvalidFormat is returned when a postal code is not exactly six decimal digits.
var ErrInvalidFormat = errors.New("pincode must be a 6-digit number")
