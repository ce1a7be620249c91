package quotes

import "math"

const nanoFactor = 1_000_000_000

// Quotation is the fixed-point price representation used by the upstream
// trading API: an integer unit part plus a fractional part in nanos
// (-999999999..999999999). The float value is Units + Nano/1e9.
type Quotation struct {
	Units int64 `json:"units"`
	Nano  int32 `json:"nano"`
}

// ToFloat converts the quotation to a float64. The zero value maps to 0.
func (q Quotation) ToFloat() float64 {
	return float64(q.Units) + float64(q.Nano)/nanoFactor
}

// FloatToQuotation splits a float into the unit/nano representation.
// Rounding of the fractional part follows the host round-half-to-even
// arithmetic; a carry out of the nano range is normalized into units.
func FloatToQuotation(value float64) Quotation {
	units := math.Trunc(value)
	nano := int64(math.Round((value - units) * nanoFactor))
	if nano >= nanoFactor {
		units++
		nano -= nanoFactor
	} else if nano <= -nanoFactor {
		units--
		nano += nanoFactor
	}
	return Quotation{Units: int64(units), Nano: int32(nano)}
}
