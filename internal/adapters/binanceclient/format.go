package binanceclient

import "github.com/shopspring/decimal"

// priceSigDigits is the precision ceiling for values sent to the exchange.
const priceSigDigits = 12

// FloatToString converts a float to its shortest fixed-point decimal string,
// capped at 12 significant digits. The exchange rejects prices in scientific
// notation, and small floats (e.g. 0.0000001) default to exponential form
// under naive formatting.
func FloatToString(f float64) string {
	d := decimal.NewFromFloat(f)
	if nd := int32(d.NumDigits()); nd > priceSigDigits {
		d = d.Round(-d.Exponent() - (nd - priceSigDigits))
		// Re-normalize so rounding leaves no trailing zeros behind.
		d = decimal.NewFromFloat(d.InexactFloat64())
	}
	return d.String()
}
