package calculator

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// SplitShare computes each person's share of an equal split:
// round(total / n, 2). The rounding residual is not redistributed, so
// n * share may differ from total by up to 0.01 * (n-1).
func SplitShare(total float64, n int) (float64, error) {
	if n <= 0 {
		return 0, fmt.Errorf("must have at least one participant")
	}
	if math.IsNaN(total) || math.IsInf(total, 0) {
		return 0, fmt.Errorf("total must be a finite number")
	}

	share := decimal.NewFromFloat(total).
		Div(decimal.NewFromInt(int64(n))).
		Round(2)
	return share.InexactFloat64(), nil
}

// SplitDrift returns total minus the sum of n shares, rounded to cents.
func SplitDrift(total, share float64, n int) float64 {
	sum := decimal.NewFromFloat(share).Mul(decimal.NewFromInt(int64(n)))
	return decimal.NewFromFloat(total).Sub(sum).Round(2).InexactFloat64()
}
