package migrations

import (
	"database/sql"
	"fmt"
	"time"
)

const usersTable = `
	CREATE TABLE IF NOT EXISTS users (
		id INT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		email VARCHAR(255) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		role VARCHAR(20) NOT NULL
	);
`

const itemsTable = `
	CREATE TABLE IF NOT EXISTS items (
		id INT AUTO_INCREMENT PRIMARY KEY,
		consignor_id INT NOT NULL,
		title VARCHAR(255) NOT NULL,
		description TEXT NOT NULL,
		brand VARCHAR(100) NOT NULL,
		category VARCHAR(100) NOT NULL,
		item_condition VARCHAR(50) NOT NULL,
		estimated_value_cents BIGINT NOT NULL,
		status VARCHAR(20) NOT NULL,
		idempotent_key VARCHAR(255) UNIQUE NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		INDEX consignor_idx (consignor_id, status)
	);
`

const ordersTable = `
	CREATE TABLE IF NOT EXISTS orders (
		id INT AUTO_INCREMENT PRIMARY KEY,
		order_ref CHAR(36) NOT NULL UNIQUE,
		item_id INT NOT NULL,
		consignor_id INT NOT NULL,
		sale_price_cents BIGINT NOT NULL,
		commission_rate INT NOT NULL,
		commission_cents BIGINT NOT NULL,
		payout_cents BIGINT NOT NULL,
		payout_type VARCHAR(20) NOT NULL,
		payout_status VARCHAR(20) NOT NULL,
		status VARCHAR(20) NOT NULL,
		created_at DATETIME NOT NULL,
		paid_at DATETIME NULL,
		INDEX consignor_idx (consignor_id)
	);
`

// AutoMigrateUsers creates the users table on the primary database.
func AutoMigrateUsers(retries int, db *sql.DB) error {
	return migrate(usersTable, retries, db)
}

// AutoMigrateItems creates the items table on the primary database.
func AutoMigrateItems(retries int, db *sql.DB) error {
	return migrate(itemsTable, retries, db)
}

// AutoMigrateOrders creates the orders table on every shard.
func AutoMigrateOrders(retries int, dbs ...*sql.DB) error {
	return migrate(ordersTable, retries, dbs...)
}

func migrate(query string, retries int, dbs ...*sql.DB) error {
	for i, db := range dbs {
		_, err := db.Exec(query)
		// Retry creating the table
		for attempt := 0; err != nil && attempt < retries; attempt++ {
			time.Sleep(1 * time.Second)
			_, err = db.Exec(query)
		}
		if err != nil {
			return fmt.Errorf("migrate shard %d: %w", i, err)
		}
	}
	return nil
}
