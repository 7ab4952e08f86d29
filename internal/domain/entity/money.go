package entity

import (
	"github.com/shopspring/decimal"
)

// LineTotal is price × quantity rounded to paise.
func LineTotal(price float64, quantity int) float64 {
	total := decimal.NewFromFloat(price).Mul(decimal.NewFromInt(int64(quantity))).Round(2)
	f, _ := total.Float64()
	return f
}

// AddCharge adds a flat surcharge to an amount without float drift.
func AddCharge(amount float64, charge int64) float64 {
	f, _ := decimal.NewFromFloat(amount).Add(decimal.NewFromInt(charge)).Round(2).Float64()
	return f
}

// FormatAmount renders an amount with two decimals, as payment links expect.
func FormatAmount(amount float64) string {
	return decimal.NewFromFloat(amount).StringFixed(2)
}

// Sum adds amounts exactly.
func Sum(amounts ...float64) float64 {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(decimal.NewFromFloat(a))
	}
	f, _ := total.Round(2).Float64()
	return f
}

// Average divides total by n, rounded to two decimals. Zero when n is 0.
func Average(total float64, n int) float64 {
	if n == 0 {
		return 0
	}
	f, _ := decimal.NewFromFloat(total).Div(decimal.NewFromInt(int64(n))).Round(2).Float64()
	return f
}

// RunningAverage computes (avg*count + next) / (count+1) rounded to one decimal.
func RunningAverage(avg float64, count int, next int) float64 {
	sum := decimal.NewFromFloat(avg).Mul(decimal.NewFromInt(int64(count))).Add(decimal.NewFromInt(int64(next)))
	f, _ := sum.Div(decimal.NewFromInt(int64(count + 1))).Round(1).Float64()
	return f
}
