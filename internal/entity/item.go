package entity

import "time"

const (
	ItemPending   = "pending"
	ItemApproved  = "approved"
	ItemRejected  = "rejected"
	ItemSold      = "sold"
	ItemWithdrawn = "withdrawn"
)

type Item struct {
	ID                  int       `json:"id"`
	ConsignorID         int       `json:"consignor_id"`
	Title               string    `json:"title"`
	Description         string    `json:"description"`
	Brand               string    `json:"brand"`
	Category            string    `json:"category"`
	Condition           string    `json:"condition"`
	EstimatedValueCents int64     `json:"estimated_value_cents"`
	Status              string    `json:"status"` // e.g., "pending", "approved", "sold"
	IdempotentKey       string    `json:"-"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// ItemFilter narrows ListItems. Zero values match everything.
type ItemFilter struct {
	ConsignorID int
	Status      string
}

/*
Mysql Table

CREATE TABLE items (
	id INT AUTO_INCREMENT PRIMARY KEY,
	consignor_id INT NOT NULL,
	title VARCHAR(255) NOT NULL,
	...
	estimated_value_cents BIGINT NOT NULL,
	status VARCHAR(20) NOT NULL,
	idempotent_key VARCHAR(255) UNIQUE NOT NULL
);
*/
