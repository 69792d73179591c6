package calculator

import (
	"fmt"
	"math"

	"github.com/eugenenazirov/pincode-shipping/internal/shipping"
)

type rateCalculator struct {
	profile shipping.PackageProfile
	rates   shipping.RateTable
}

// New creates a Calculator for a fixed package profile and carrier rate table.
// The table is copied, so later changes by the caller have no effect.
func New(profile shipping.PackageProfile, rates shipping.RateTable) (Calculator, error) {
	if err := ValidateProfile(profile); err != nil {
		return nil, err
	}
	if err := ValidateRateTable(rates); err != nil {
		return nil, err
	}
	return &rateCalculator{
		profile: profile,
		rates:   rates.Clone(),
	}, nil
}

func (c *rateCalculator) ComputeCosts(level shipping.Level) (Quote, error) {
	if !level.Valid() {
		return Quote{}, fmt.Errorf("%w: %q", ErrInvalidLevel, level)
	}

	weight := ChargeableWeight(c.profile)

	costs := make([]shipping.CarrierCost, 0, len(c.rates))
	for _, carrier := range c.rates {
		costs = append(costs, shipping.CarrierCost{
			Carrier: carrier.Name,
			Cost:    roundTo2Decimals(weight.Value * carrier.Rates[level]),
		})
	}

	return Quote{
		Level:      level,
		Costs:      costs,
		WeightUsed: weight,
	}, nil
}

// VolumetricWeight is the notional weight of the package from its dimensions.
func VolumetricWeight(p shipping.PackageProfile) float64 {
	return (p.Length * p.Breadth * p.Height) / p.VolumetricDivisor
}

// ChargeableWeight picks the larger of the actual and volumetric weights.
// The volumetric kind is reported only on exact float equality.
func ChargeableWeight(p shipping.PackageProfile) shipping.ChargeableWeight {
	volumetric := VolumetricWeight(p)
	chargeable := math.Max(p.ActualWeight, volumetric)

	kind := shipping.WeightActual
	if chargeable == volumetric {
		kind = shipping.WeightVolumetric
	}
	return shipping.ChargeableWeight{Kind: kind, Value: chargeable}
}

// Cheapest returns the lowest cost. Ties go to the carrier listed first.
func Cheapest(costs []shipping.CarrierCost) (shipping.CarrierCost, error) {
	if len(costs) == 0 {
		return shipping.CarrierCost{}, ErrNoCosts
	}
	best := costs[0]
	for _, c := range costs[1:] {
		if c.Cost < best.Cost {
			best = c
		}
	}
	return best, nil
}

// ValidateProfile rejects profiles that cannot produce a meaningful weight.
func ValidateProfile(p shipping.PackageProfile) error {
	for _, v := range []float64{p.Length, p.Breadth, p.Height, p.ActualWeight, p.VolumetricDivisor} {
		if !(v > 0) || math.IsInf(v, 0) {
			return ErrInvalidProfile
		}
	}
	return nil
}

// ValidateRateTable checks every carrier has a name and a rate for each level.
func ValidateRateTable(rates shipping.RateTable) error {
	if len(rates) == 0 {
		return ErrInvalidRateTable
	}

	seen := make(map[string]struct{}, len(rates))
	for _, carrier := range rates {
		if carrier.Name == "" {
			return fmt.Errorf("%w: carrier name is empty", ErrInvalidRateTable)
		}
		if _, dup := seen[carrier.Name]; dup {
			return fmt.Errorf("%w: duplicate carrier %q", ErrInvalidRateTable, carrier.Name)
		}
		seen[carrier.Name] = struct{}{}

		for _, level := range shipping.Levels() {
			rate, ok := carrier.Rates[level]
			if !ok {
				return fmt.Errorf("%w: carrier %q has no %s rate", ErrInvalidRateTable, carrier.Name, level)
			}
			if rate < 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
				return fmt.Errorf("%w: carrier %q has invalid %s rate %v", ErrInvalidRateTable, carrier.Name, level, rate)
			}
		}
	}
	return nil
}

// roundTo2Decimals rounds half away from zero.
func roundTo2Decimals(value float64) float64 {
	return math.Round(value*100) / 100
}
