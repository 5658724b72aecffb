package commission

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidArgument is returned for non-finite or negative amounts and
// unknown payout types. Retrying with the same input cannot succeed.
var ErrInvalidArgument = errors.New("invalid argument")

// MinimumResaleValue is the eligibility floor in euros.
const MinimumResaleValue = 50.0

// StoreCreditBonus is the multiplier applied to the post-commission payout
// when the consignor elects store credit.
const StoreCreditBonus = 1.10

const (
	FloorMessage = "Items valued below €50 cannot be accepted for consignment"
	FloorReason  = "Below €50 the handling costs of photographing, listing and shipping an item exceed our margin, and the resale risk is too high to offer a fair payout"
)

// PayoutType is how the consignor is paid once an item sells.
type PayoutType string

const (
	PayoutCash        PayoutType = "cash"
	PayoutStoreCredit PayoutType = "store_credit"
)

// ParsePayoutType resolves a payout type. The empty string means cash.
func ParsePayoutType(s string) (PayoutType, error) {
	switch PayoutType(s) {
	case "", PayoutCash:
		return PayoutCash, nil
	case PayoutStoreCredit:
		return PayoutStoreCredit, nil
	default:
		return "", fmt.Errorf("%w: unknown payout type %q", ErrInvalidArgument, s)
	}
}

// Tier is a half-open sale price range [Low, High) and the percentage of
// the sale price the platform keeps. High is +Inf for the open-ended tier.
type Tier struct {
	Low     float64
	High    float64
	Percent int
}

// Rate is Percent as a fraction.
func (t Tier) Rate() float64 { return float64(t.Percent) / 100 }

func (t Tier) contains(v float64) bool { return v >= t.Low && v < t.High }

var tiers = [...]Tier{
	{Low: 50, High: 100, Percent: 50},
	{Low: 100, High: 200, Percent: 40},
	{Low: 200, High: 500, Percent: 30},
	{Low: 500, High: math.Inf(1), Percent: 20},
}

// Tiers returns a copy of the commission schedule in ascending order.
func Tiers() []Tier {
	out := make([]Tier, len(tiers))
	copy(out, tiers[:])
	return out
}

// Eligibility is the outcome of an intake check.
type Eligibility struct {
	Eligible bool   `json:"eligible"`
	Message  string `json:"message,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// Result is a commission and payout breakdown. When Eligible is false only
// Message is set.
type Result struct {
	SalePrice        float64    `json:"-"`
	Eligible         bool       `json:"eligible"`
	Message          string     `json:"message,omitempty"`
	CommissionRate   float64    `json:"commission_rate,omitempty"`
	CommissionAmount float64    `json:"commission_amount,omitempty"`
	PayoutAmount     float64    `json:"payout_amount,omitempty"`
	PayoutType       PayoutType `json:"payout_type,omitempty"`
}

func validateAmount(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %s must be a finite number", ErrInvalidArgument, name)
	}
	if v < 0 {
		return fmt.Errorf("%w: %s must not be negative, got %v", ErrInvalidArgument, name, v)
	}
	return nil
}

// CheckEligibility decides whether an item with the given estimated resale
// value can be accepted.
func CheckEligibility(estimatedResaleValue float64) (Eligibility, error) {
	if err := validateAmount("estimated resale value", estimatedResaleValue); err != nil {
		return Eligibility{}, err
	}
	if estimatedResaleValue < MinimumResaleValue {
		return Eligibility{Eligible: false, Message: FloorMessage, Reason: FloorReason}, nil
	}
	return Eligibility{Eligible: true}, nil
}

// TierFor returns the first tier containing salePrice. ok is false below
// the eligibility floor.
func TierFor(salePrice float64) (tier Tier, ok bool) {
	for _, t := range tiers {
		if t.contains(salePrice) {
			return t, true
		}
	}
	return Tier{}, false
}

// CalculateCommission splits a sale price into the platform commission and
// the consignor payout. Store credit payouts get a 10% bonus on the
// post-commission amount. Amounts are salePrice times the tier rate with no
// rounding.
func CalculateCommission(salePrice float64, payoutType PayoutType) (Result, error) {
	if err := validateAmount("sale price", salePrice); err != nil {
		return Result{}, err
	}
	pt, err := ParsePayoutType(string(payoutType))
	if err != nil {
		return Result{}, err
	}
	if salePrice < MinimumResaleValue {
		return Result{Eligible: false, Message: FloorMessage}, nil
	}

	tier, _ := TierFor(salePrice)
	commission := salePrice * tier.Rate()
	payout := salePrice - commission
	if pt == PayoutStoreCredit {
		payout *= StoreCreditBonus
	}

	return Result{
		SalePrice:        salePrice,
		Eligible:         true,
		CommissionRate:   float64(tier.Percent),
		CommissionAmount: commission,
		PayoutAmount:     payout,
		PayoutType:       pt,
	}, nil
}
