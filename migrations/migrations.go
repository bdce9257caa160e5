package migrations

import (
	"database/sql"
	"fmt"
	"time"
)

var retryDelay = 1 * time.Second

var catalogTables = []string{
	`
		CREATE TABLE IF NOT EXISTS products (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			description TEXT NOT NULL,
			price DECIMAL(10,2) NOT NULL,
			image_url VARCHAR(512) NOT NULL,
			category VARCHAR(100) NOT NULL,
			stock INT NOT NULL DEFAULT 0,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			INDEX idx_category (category)
		);
	`,
	`
		CREATE TABLE IF NOT EXISTS users (
			id VARCHAR(36) PRIMARY KEY,
			email VARCHAR(255) NOT NULL UNIQUE,
			first_name VARCHAR(100) NOT NULL,
			last_name VARCHAR(100) NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`,
	`
		CREATE TABLE IF NOT EXISTS cart_items (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			user_id VARCHAR(36) NOT NULL,
			product_id BIGINT NOT NULL,
			quantity INT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE KEY uniq_user_product (user_id, product_id),
			FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE CASCADE
		);
	`,
}

var orderTables = []string{
	`
		CREATE TABLE IF NOT EXISTS orders (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			user_id VARCHAR(36) NOT NULL,
			shipping_address JSON NOT NULL,
			total DECIMAL(12,2) NOT NULL,
			status VARCHAR(20) NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			INDEX idx_user_id (user_id)
		);
	`,
	`
		CREATE TABLE IF NOT EXISTS order_items (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			order_id BIGINT NOT NULL,
			product_id BIGINT NOT NULL,
			quantity INT NOT NULL,
			price DECIMAL(10,2) NOT NULL,
			FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE
		);
	`,
}

// AutoMigrateCatalog creates the products, users and cart_items tables on the primary database.
func AutoMigrateCatalog(retries int, db *sql.DB) error {
	for _, query := range catalogTables {
		if err := execWithRetry(retries, query, db); err != nil {
			return err
		}
	}
	return nil
}

// AutoMigrateOrders creates the orders and order_items tables on every order shard.
func AutoMigrateOrders(retries int, dbs ...*sql.DB) error {
	for _, query := range orderTables {
		if err := execWithRetry(retries, query, dbs...); err != nil {
			return err
		}
	}
	return nil
}

func execWithRetry(retries int, query string, dbs ...*sql.DB) error {
	for i, db := range dbs {
		_, err := db.Exec(query)
		// Retry creating the table
		for attempt := 0; err != nil && attempt < retries; attempt++ {
			time.Sleep(retryDelay)
			_, err = db.Exec(query)
		}
		if err != nil {
			return fmt.Errorf("migrate database %d: %w", i, err)
		}
	}
	return nil
}
