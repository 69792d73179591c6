package calculator

import "github.com/eugenenazirov/pincode-shipping/internal/shipping"

// Quote is the outcome of costing one package at one level.
// Costs follow the rate table's carrier order.
type Quote struct {
	Level      shipping.Level
	Costs      []shipping.CarrierCost
	WeightUsed shipping.ChargeableWeight
}

// Calculator describes the behaviour required from a shipping cost calculator.
type Calculator interface {
	ComputeCosts(level shipping.Level) (Quote, error)
}
