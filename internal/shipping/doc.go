// Package shipping holds the value types shared by the location classifier,
// the cost calculator and the HTTP layer: location levels, the package
// profile, carrier rate tables and computed costs.
package shipping
