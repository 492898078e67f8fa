package render

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/akylbek/payment-system/fraud-dashboard/internal/models"
)

var hundred = decimal.NewFromInt(100)

// Currency formats an amount as dollars with two decimals and thousands separators.
func Currency(amount float64) string {
	d := decimal.NewFromFloat(amount)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}

	fixed := d.StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + "$" + b.String() + "." + frac
}

// Percent formats a probability in [0,1] as a percentage with the given decimals.
func Percent(probability float64, decimals int32) string {
	return decimal.NewFromFloat(probability).Mul(hundred).StringFixed(decimals) + "%"
}

// Rate formats an already-scaled percentage with one decimal.
func Rate(pct float64) string {
	return strconv.FormatFloat(pct, 'f', 1, 64) + "%"
}

// RiskClass is the CSS modifier for a risk level badge.
func RiskClass(level models.RiskLevel) string {
	return "risk-" + strings.ToLower(strings.TrimSpace(string(level)))
}
