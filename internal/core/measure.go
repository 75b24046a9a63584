package core

import "math"

const (
	UnitSqft Unit = "sqft"
	UnitFt   Unit = "ft"
	UnitIn   Unit = "in"
	UnitNos  Unit = "nos"
)

// Unit is the measurement unit of a line item.
type Unit string

// Dimensions are the measured inputs of a line item. The same formula
// serves estimates, bills, and measurements.
type Dimensions struct {
	Length  float64
	Breadth float64
	Nos     float64
	Unit    Unit
}

func (u Unit) Validate() error {
	switch u {
	case UnitSqft, UnitFt, UnitIn, UnitNos:
		return nil
	}
	return ErrInvalidType
}

func (d Dimensions) Validate() error {
	if err := d.Unit.Validate(); err != nil {
		return err
	}
	if d.Length < 0 || d.Breadth < 0 || d.Nos < 0 {
		return ErrNegativeDimension
	}
	return nil
}

// Quantity derives the billable quantity from the dimensions:
//
//	nos          -> Nos
//	ft, in       -> Length x Nos
//	sqft (default) -> Length x Breadth x Nos
//
// rounded to 2 decimal places.
func (d Dimensions) Quantity() float64 {
	var q float64
	switch d.Unit {
	case UnitNos:
		q = d.Nos
	case UnitFt, UnitIn:
		q = d.Length * d.Nos
	default:
		q = d.Length * d.Breadth * d.Nos
	}
	return Round2(q)
}

// Extend computes the derived quantity and the line amount
// (quantity x rate, rounded to 2 decimal places).
func Extend(d Dimensions, rate Money) (quantity float64, amount Money) {
	quantity = d.Quantity()
	amount = Money{Paise: int64(math.Round(quantity * float64(rate.Paise)))}
	return quantity, amount
}

// Round2 rounds to 2 decimal places using standard half-up rounding.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}
