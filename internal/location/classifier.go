package location

import (
	"github.com/eugenenazirov/pincode-shipping/internal/shipping"
)

const pincodeLength = 6

var (
	defaultDistrictCodes = []string{"400001"}
	defaultStatePrefixes = []string{"40", "41", "43", "44", "42"}
)

// Classifier maps a postal code to the level used for rate selection.
type Classifier interface {
	Classify(pincode string) (shipping.Level, error)
}

type prefixClassifier struct {
	districtCodes map[string]struct{}
	statePrefixes map[string]struct{}
}

// New creates a Classifier backed by the built-in district codes and state
// prefixes.
func New() Classifier {
	return &prefixClassifier{
		districtCodes: toSet(defaultDistrictCodes),
		statePrefixes: toSet(defaultStatePrefixes),
	}
}

// Classify checks the exact district codes first, then the state prefixes,
// and falls back to national.
func (c *prefixClassifier) Classify(pincode string) (shipping.Level, error) {
	if !validPincode(pincode) {
		return "", ErrInvalidFormat
	}
	if _, ok := c.districtCodes[pincode]; ok {
		return shipping.LevelDistrict, nil
	}
	if _, ok := c.statePrefixes[pincode[:2]]; ok {
		return shipping.LevelState, nil
	}
	return shipping.LevelNational, nil
}

func validPincode(pincode string) bool {
	if len(pincode) != pincodeLength {
		return false
	}
	for i := 0; i < len(pincode); i++ {
		if pincode[i] < '0' || pincode[i] > '9' {
			return false
		}
	}
	return true
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
