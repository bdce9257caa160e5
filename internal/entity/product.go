package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name" validate:"required,max=255"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"imageUrl" validate:"omitempty,url"`
	Category    string          `json:"category" validate:"required,max=100"`
	Stock       int             `json:"stock" validate:"gte=0"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// Sort keys accepted by the catalog listing.
const (
	SortByName  = "name"
	SortByPrice = "price"
)

// ProductFilter narrows and orders a catalog listing. Zero value lists everything by id.
type ProductFilter struct {
	Category string `query:"category"`
	SortBy   string `query:"sort" validate:"omitempty,oneof=name price"`
	Order    string `query:"order" validate:"omitempty,oneof=asc desc"`
}

/*
Schema MySQL for products table:
CREATE TABLE `products` (
  `id` BIGINT AUTO_INCREMENT PRIMARY KEY,
  `name` VARCHAR(255) NOT NULL,
  `description` TEXT NOT NULL,
  `price` DECIMAL(10,2) NOT NULL,
  `image_url` VARCHAR(512) NOT NULL,
  `category` VARCHAR(100) NOT NULL,
  `stock` INT NOT NULL DEFAULT 0,
  `created_at` TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
*/
