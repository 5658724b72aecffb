package entity

import "time"

const (
	OrderCompleted = "completed"
	OrderCancelled = "cancelled"

	PayoutPending = "pending"
	PayoutPaid    = "paid"
)

// Order is a finalised sale of one consigned item. Amounts are stored in
// cents, rounded half up from the commission engine's result.
type Order struct {
	ID              int        `json:"id"`
	OrderRef        string     `json:"order_ref"`
	ItemID          int        `json:"item_id"`
	ConsignorID     int        `json:"consignor_id"`
	SalePriceCents  int64      `json:"sale_price_cents"`
	CommissionRate  int        `json:"commission_rate"` // percent
	CommissionCents int64      `json:"commission_cents"`
	PayoutCents     int64      `json:"payout_cents"`
	PayoutType      string     `json:"payout_type"`
	PayoutStatus    string     `json:"payout_status"`
	Status          string     `json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
	PaidAt          *time.Time `json:"paid_at,omitempty"`
}

// Dashboard aggregates a consignor's orders.
type Dashboard struct {
	ConsignorID        int            `json:"consignor_id"`
	OrderCount         int            `json:"order_count"`
	SalesCents         int64          `json:"sales_cents"`
	CommissionCents    int64          `json:"commission_cents"`
	PendingPayoutCents int64          `json:"pending_payout_cents"`
	PaidPayoutCents    int64          `json:"paid_payout_cents"`
	ItemCounts         map[string]int `json:"item_counts"`
}
