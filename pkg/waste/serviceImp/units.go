package serviceImp

import (
	"strings"

	"github.com/shopspring/decimal"
)

var kgPer = map[string]decimal.Decimal{
	"kg":     decimal.NewFromInt(1),
	"kgs":    decimal.NewFromInt(1),
	"g":      decimal.RequireFromString("0.001"),
	"gram":   decimal.RequireFromString("0.001"),
	"grams":  decimal.RequireFromString("0.001"),
	"t":      decimal.NewFromInt(1000),
	"ton":    decimal.NewFromInt(1000),
	"tonne":  decimal.NewFromInt(1000),
	"tonnes": decimal.NewFromInt(1000),
	"lb":     decimal.RequireFromString("0.45359237"),
	"lbs":    decimal.RequireFromString("0.45359237"),
}

func unitKey(u string) string { return strings.ToLower(strings.TrimSpace(u)) }

// convert expresses q (in unit from) in unit to. Identical units always
// convert; otherwise both must be mass units.
func convert(q decimal.Decimal, from, to string) (decimal.Decimal, bool) {
	f, t := unitKey(from), unitKey(to)
	if f == t {
		return q, true
	}
	fk, ok1 := kgPer[f]
	tk, ok2 := kgPer[t]
	if !ok1 || !ok2 {
		return decimal.Zero, false
	}
	return q.Mul(fk).Div(tk), true
}

func toKg(q decimal.Decimal, unit string) (decimal.Decimal, bool) {
	return convert(q, unit, "kg")
}
