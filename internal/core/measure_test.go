package core

import "testing"

func TestDimensionsQuantity(t *testing.T) {
	cases := []struct {
		name string
		d    Dimensions
		want float64
	}{
		{"nos counts pieces", Dimensions{Nos: 5, Unit: UnitNos}, 5},
		{"ft is length times nos", Dimensions{Length: 10, Nos: 3, Unit: UnitFt}, 30},
		{"in is length times nos", Dimensions{Length: 2.5, Nos: 4, Unit: UnitIn}, 10},
		{"sqft is area times nos", Dimensions{Length: 4, Breadth: 5, Nos: 2, Unit: UnitSqft}, 40},
		{"fractional sqft rounds to 2 places", Dimensions{Length: 1.33, Breadth: 1.33, Nos: 1, Unit: UnitSqft}, 1.77},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.d.Quantity(); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestExtend(t *testing.T) {
	// 4x5 sqft, 2 nos at 12.50/sqft -> 40 sqft, 500.00
	d := Dimensions{Length: 4, Breadth: 5, Nos: 2, Unit: UnitSqft}
	q, amt := Extend(d, Money{Paise: 1250})
	if q != 40 {
		t.Fatalf("expected quantity 40, got %v", q)
	}
	if amt.Paise != 50000 {
		t.Fatalf("expected amount 50000 paise, got %d", amt.Paise)
	}

	// Fractional quantity: 1.77 sqft at 99.99 -> 176.98
	d = Dimensions{Length: 1.33, Breadth: 1.33, Nos: 1, Unit: UnitSqft}
	q, amt = Extend(d, Money{Paise: 9999})
	if q != 1.77 {
		t.Fatalf("expected quantity 1.77, got %v", q)
	}
	if amt.Paise != 17698 {
		t.Fatalf("expected amount 17698 paise, got %d", amt.Paise)
	}
}

func TestDimensionsValidate(t *testing.T) {
	if err := (Dimensions{Length: 1, Nos: 1, Unit: UnitFt}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Dimensions{Length: -1, Nos: 1, Unit: UnitFt}).Validate(); err == nil {
		t.Fatal("expected error for negative length")
	}
	if err := (Dimensions{Length: 1, Nos: 1, Unit: "acre"}).Validate(); err == nil {
		t.Fatal("expected error for unknown unit")
	}
}
