package storage

import (
	"github.com/eugenenazirov/pincode-shipping/internal/calculator"
	"github.com/eugenenazirov/pincode-shipping/internal/shipping"
)

// Storage provides access to the carrier rates and package profile used by the calculator.
type Storage interface {
	GetRateTable() (shipping.RateTable, error)
	GetPackageProfile() (shipping.PackageProfile, error)
}

// MemoryStorage keeps a rate table fixed at construction time. It is never
// mutated afterwards, so reads need no locking.
type MemoryStorage struct {
	rates   shipping.RateTable
	profile shipping.PackageProfile
}

// NewMemoryStorage initialises storage with a copy of the reference rates and profile.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		rates:   shipping.DefaultRateTable(),
		profile: shipping.DefaultPackageProfile(),
	}
}

// NewMemoryStorageWith stores a copy of the provided rates and profile.
// Tables rejected by calculator.ValidateRateTable are refused.
func NewMemoryStorageWith(rates shipping.RateTable, profile shipping.PackageProfile) (*MemoryStorage, error) {
	if err := calculator.ValidateRateTable(rates); err != nil {
		return nil, err
	}
	return &MemoryStorage{
		rates:   rates.Clone(),
		profile: profile,
	}, nil
}

// GetRateTable returns a defensive copy of the configured carrier rates.
func (s *MemoryStorage) GetRateTable() (shipping.RateTable, error) {
	return s.rates.Clone(), nil
}

// GetPackageProfile returns the configured package profile.
func (s *MemoryStorage) GetPackageProfile() (shipping.PackageProfile, error) {
	return s.profile, nil
}
