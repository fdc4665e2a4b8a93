package rates

import (
	"fmt"

	"currency-converter/internal/currency"
	"currency-converter/internal/datastructs"

	"github.com/shopspring/decimal"
)

// ComputeDisplayRate renders the indicative rate between from and to.
// The second result is false when the table lacks an entry required for
// the pair; the caller must then hide the rate instead of showing an old one.
func ComputeDisplayRate(table *datastructs.RateTable, from, to string) (string, bool) {
	if table == nil {
		return "", false
	}

	var text string
	toEntry, toOK := table.Entry(to)
	fromEntry, fromOK := table.Entry(from)

	switch {
	case from == currency.Base && toOK:
		rate := perBase(toEntry)
		text = fmt.Sprintf("1 %s = %s %s", currency.Base, rate.StringFixed(4), to)
	case to == currency.Base && fromOK:
		rate := inBase(fromEntry)
		text = fmt.Sprintf("1 %s = %s %s", from, rate.StringFixed(2), currency.Base)
	case fromOK && toOK:
		rate := inBase(fromEntry).Mul(perBase(toEntry))
		text = fmt.Sprintf("1 %s = %s %s", from, rate.StringFixed(4), to)
	default:
		return "", false
	}

	if table.DateLabel != "" {
		text += " (" + table.DateLabel + ")"
	}
	return text, true
}

// inBase is the price of one unit of the entry's currency in the base currency.
func inBase(e datastructs.RateEntry) decimal.Decimal {
	return decimal.NewFromFloat(e.MidPrice).Div(decimal.NewFromFloat(e.Unit))
}

// perBase is how much of the entry's currency one unit of the base currency buys.
func perBase(e datastructs.RateEntry) decimal.Decimal {
	return decimal.NewFromFloat(e.Unit).Div(decimal.NewFromFloat(e.MidPrice))
}
