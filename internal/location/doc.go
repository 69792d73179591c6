// Package location classifies six-digit postal codes into the district,
// state or national level used to select carrier rates.
package location
