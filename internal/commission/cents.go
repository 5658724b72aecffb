package commission

import (
	"github.com/shopspring/decimal"
)

// ToCents converts a euro amount to integer cents, rounding half up on the
// shortest decimal representation of the float. The engine never rounds;
// callers persisting amounts use this at the storage boundary.
func ToCents(amount float64) int64 {
	return decimal.NewFromFloat(amount).Round(2).Shift(2).IntPart()
}

// FromCents converts integer cents back to euros.
func FromCents(c int64) float64 {
	f, _ := decimal.New(c, -2).Float64()
	return f
}

// FormatEUR formats cents for display (e.g., 1250 -> "€12.50").
func FormatEUR(c int64) string {
	return "€" + decimal.New(c, -2).StringFixed(2)
}

// Breakdown is a Result converted for storage.
type Breakdown struct {
	SaleCents       int64
	CommissionCents int64
	PayoutCents     int64
}

// Cents converts an eligible result to cents using the sale price it was
// computed from. The commission is rounded and
// the base payout is the remainder, so SaleCents always equals
// CommissionCents plus the pre-bonus payout. The store credit bonus is
// applied to that remainder and rounded half up.
func (r Result) Cents() Breakdown {
	sale := ToCents(r.SalePrice)
	comm := ToCents(r.CommissionAmount)
	payout := sale - comm
	if r.PayoutType == PayoutStoreCredit {
		payout = decimal.New(payout, 0).Mul(decimal.NewFromFloat(StoreCreditBonus)).Round(0).IntPart()
	}
	return Breakdown{SaleCents: sale, CommissionCents: comm, PayoutCents: payout}
}
