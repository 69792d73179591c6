package shipping

import "fmt"

// Level is the coarse distance tier used to pick a carrier rate.
type Level string

const (
	LevelDistrict Level = "district"
	LevelState    Level = "state"
	LevelNational Level = "national"
)

// Levels lists every recognised level from nearest to farthest.
func Levels() []Level {
	return []Level{LevelDistrict, LevelState, LevelNational}
}

// Valid reports whether l is one of the recognised levels.
func (l Level) Valid() bool {
	switch l {
	case LevelDistrict, LevelState, LevelNational:
		return true
	default:
		return false
	}
}

func (l Level) String() string {
	return string(l)
}

// ParseLevel converts a textual level into a Level.
func ParseLevel(raw string) (Level, error) {
	l := Level(raw)
	if !l.Valid() {
		return "", fmt.Errorf("unknown location level %q", raw)
	}
	return l, nil
}

// WeightKind tells which candidate weight became the chargeable weight.
type WeightKind string

const (
	WeightVolumetric WeightKind = "volumetric_weight"
	WeightActual     WeightKind = "actual_weight"
)

// ChargeableWeight is the billing weight in kilograms and where it came from.
type ChargeableWeight struct {
	Kind  WeightKind `json:"type"`
	Value float64    `json:"value"`
}

// PackageProfile describes the parcel being quoted. Dimensions are in
// centimetres, weight in kilograms.
type PackageProfile struct {
	Length            float64 `json:"length" yaml:"length"`
	Breadth           float64 `json:"breadth" yaml:"breadth"`
	Height            float64 `json:"height" yaml:"height"`
	ActualWeight      float64 `json:"actualWeight" yaml:"actual_weight"`
	VolumetricDivisor float64 `json:"volumetricDivisor" yaml:"volumetric_divisor"`
}

// DefaultPackageProfile returns the reference parcel.
func DefaultPackageProfile() PackageProfile {
	return PackageProfile{
		Length:            2.0,
		Breadth:           2.0,
		Height:            3.0,
		ActualWeight:      10.0,
		VolumetricDivisor: 5000,
	}
}

// CarrierRates holds the per-kilogram rate of one carrier for every level.
type CarrierRates struct {
	Name  string            `json:"name"`
	Rates map[Level]float64 `json:"rates"`
}

// RateTable is an ordered list of carriers. Order is significant: it is the
// iteration order for quotes and the tie-break order for the cheapest option.
type RateTable []CarrierRates

// DefaultRateTable returns the reference carrier rates.
func DefaultRateTable() RateTable {
	return RateTable{
		{Name: "Delhivery", Rates: map[Level]float64{LevelDistrict: 50, LevelState: 60, LevelNational: 125}},
		{Name: "DTDC", Rates: map[Level]float64{LevelDistrict: 45, LevelState: 85, LevelNational: 120}},
		{Name: "eKart", Rates: map[Level]float64{LevelDistrict: 55, LevelState: 65, LevelNational: 130}},
	}
}

// Clone returns a deep copy of the table.
func (t RateTable) Clone() RateTable {
	if t == nil {
		return nil
	}
	out := make(RateTable, len(t))
	for i, carrier := range t {
		rates := make(map[Level]float64, len(carrier.Rates))
		for level, rate := range carrier.Rates {
			rates[level] = rate
		}
		out[i] = CarrierRates{Name: carrier.Name, Rates: rates}
	}
	return out
}

// CarrierCost is the computed price of shipping with one carrier.
type CarrierCost struct {
	Carrier string
	Cost    float64
}
