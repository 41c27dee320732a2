package domain

import (
	"errors"
	"math"
)

// MajorAmount is a donor-facing amount in major currency units (dollars).
// The gateway adapter owns the single conversion to the processor's
// minor-unit representation; nothing else in the system may convert, and
// units are never inferred from magnitude.
type MajorAmount float64

var ErrInvalidAmount = errors.New("invalid_amount")

const maxMajorAmount = 1_000_000_000

// Validate rejects non-positive amounts and amounts with more than two
// decimal places.
func (a MajorAmount) Validate() error {
	value := float64(a)
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return ErrInvalidAmount
	}
	if value <= 0 || value > maxMajorAmount {
		return ErrInvalidAmount
	}
	scaled := value * 100
	if math.Abs(scaled-math.Round(scaled)) > 1e-6 {
		return ErrInvalidAmount
	}
	return nil
}

// MinorUnits converts to the gateway's minor-unit representation (cents).
func (a MajorAmount) MinorUnits() int64 {
	return int64(math.Round(float64(a) * 100))
}

// MajorFromMinor converts a gateway-reported minor-unit amount back to
// major units for API responses.
func MajorFromMinor(minor int64) float64 {
	return float64(minor) / 100
}
