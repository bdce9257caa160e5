package service

import (
	"github.com/shopspring/decimal"

	"storefront-service/internal/entity"
)

func seedProducts() []entity.Product {
	return []entity.Product{
		{
			Name:        "Premium Wireless Headphones",
			Description: "High-quality audio with noise cancellation and 30-hour battery life",
			Price:       decimal.RequireFromString("199.99"),
			ImageURL:    "https://images.unsplash.com/photo-1505740420928-5e560c06d30e?ixlib=rb-4.0.3&auto=format&fit=crop&w=800&h=600",
			Category:    "electronics",
			Stock:       50,
		},
		{
			Name:        "Smart Fitness Watch",
			Description: "Track your health and fitness with advanced sensors and GPS",
			Price:       decimal.RequireFromString("299.99"),
			ImageURL:    "https://images.unsplash.com/photo-1523275335684-37898b6baf30?ixlib=rb-4.0.3&auto=format&fit=crop&w=800&h=600",
			Category:    "electronics",
			Stock:       30,
		},
		{
			Name:        "Professional Camera Lens",
			Description: "50mm f/1.4 lens perfect for portraits and low-light photography",
			Price:       decimal.RequireFromString("599.99"),
			ImageURL:    "https://images.unsplash.com/photo-1606983340126-99ab4feaa64a?ixlib=rb-4.0.3&auto=format&fit=crop&w=800&h=600",
			Category:    "electronics",
			Stock:       15,
		},
		{
			Name:        "Ergonomic Gaming Chair",
			Description: "Premium comfort for long gaming sessions with lumbar support",
			Price:       decimal.RequireFromString("449.99"),
			ImageURL:    "https://images.unsplash.com/photo-1586023492125-27b2c045efd7?ixlib=rb-4.0.3&auto=format&fit=crop&w=800&h=600",
			Category:    "furniture",
			Stock:       20,
		},
		{
			Name:        "LED Desk Lamp",
			Description: "Adjustable brightness with touch controls and USB charging port",
			Price:       decimal.RequireFromString("89.99"),
			ImageURL:    "https://images.unsplash.com/photo-1507003211169-0a1dd7228f2d?ixlib=rb-4.0.3&auto=format&fit=crop&w=800&h=600",
			Category:    "home",
			Stock:       40,
		},
		{
			Name:        "Mechanical Keyboard",
			Description: "RGB backlit with Cherry MX switches for ultimate typing experience",
			Price:       decimal.RequireFromString("159.99"),
			ImageURL:    "https://images.unsplash.com/photo-1541140532154-b024d705b90a?ixlib=rb-4.0.3&auto=format&fit=crop&w=800&h=600",
			Category:    "electronics",
			Stock:       25,
		},
		{
			Name:        "Portable Bluetooth Speaker",
			Description: "Waterproof design with 360-degree sound and 12-hour battery",
			Price:       decimal.RequireFromString("129.99"),
			ImageURL:    "https://images.unsplash.com/photo-1608043152269-423dbba4e7e1?ixlib=rb-4.0.3&auto=format&fit=crop&w=800&h=600",
			Category:    "electronics",
			Stock:       35,
		},
		{
			Name:        "Premium Leather Backpack",
			Description: "Handcrafted with laptop compartment and lifetime warranty",
			Price:       decimal.RequireFromString("279.99"),
			ImageURL:    "https://images.unsplash.com/photo-1553062407-98eeb64c6a62?ixlib=rb-4.0.3&auto=format&fit=crop&w=800&h=600",
			Category:    "fashion",
			Stock:       18,
		},
	}
}
