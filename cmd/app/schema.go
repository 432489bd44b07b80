package main

import (
	"database/sql"
	"fmt"
)

// Table definitions match the column names the repositories query.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		user_id SERIAL PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		full_name TEXT,
		phone TEXT,
		created_at TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS categories (
		category_id SERIAL PRIMARY KEY,
		title TEXT NOT NULL,
		image_src TEXT,
		image_alt TEXT,
		parent_id INT REFERENCES categories(category_id),
		active BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		product_id SERIAL PRIMARY KEY,
		title TEXT NOT NULL,
		category_id INT REFERENCES categories(category_id),
		price NUMERIC NOT NULL,
		sale_price NUMERIC,
		sale_from TIMESTAMPTZ,
		sale_to TIMESTAMPTZ,
		count INT NOT NULL DEFAULT 0,
		free_delivery BOOLEAN NOT NULL DEFAULT FALSE,
		description TEXT,
		date TIMESTAMPTZ NOT NULL DEFAULT now(),
		sort_index INT NOT NULL DEFAULT 0,
		purchases_count INT NOT NULL DEFAULT 0,
		is_limited BOOLEAN NOT NULL DEFAULT FALSE,
		is_banner BOOLEAN NOT NULL DEFAULT FALSE,
		archived BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE TABLE IF NOT EXISTS tags (
		tag_id SERIAL PRIMARY KEY,
		name TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS product_tags (
		product_id INT NOT NULL REFERENCES products(product_id),
		tag_id INT NOT NULL REFERENCES tags(tag_id),
		PRIMARY KEY (product_id, tag_id)
	)`,
	`CREATE TABLE IF NOT EXISTS product_images (
		image_id SERIAL PRIMARY KEY,
		product_id INT NOT NULL REFERENCES products(product_id),
		src TEXT NOT NULL,
		alt TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS reviews (
		review_id SERIAL PRIMARY KEY,
		product_id INT NOT NULL REFERENCES products(product_id),
		author TEXT,
		email TEXT,
		text TEXT,
		rate INT NOT NULL,
		date TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS basket (
		user_id INT NOT NULL REFERENCES users(user_id),
		product_id INT NOT NULL REFERENCES products(product_id),
		count INT NOT NULL,
		PRIMARY KEY (user_id, product_id)
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		order_id SERIAL PRIMARY KEY,
		user_id INT NOT NULL REFERENCES users(user_id),
		created_at TEXT,
		full_name TEXT,
		email TEXT,
		phone TEXT,
		delivery_type TEXT,
		payment_type TEXT,
		city TEXT,
		address TEXT,
		status TEXT NOT NULL DEFAULT 'pending',
		total_cost NUMERIC NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS order_products (
		order_id INT NOT NULL REFERENCES orders(order_id),
		product_id INT NOT NULL,
		title TEXT NOT NULL,
		count INT NOT NULL,
		price NUMERIC NOT NULL,
		PRIMARY KEY (order_id, product_id)
	)`,
}

func bootstrapSchema(db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	return seedCategories(db)
}

// seedCategories fills the category tree on an empty database so a fresh
// install has something to browse.
func seedCategories(db *sql.DB) error {
	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM categories`).Scan(&count); err != nil {
		return fmt.Errorf("count categories: %w", err)
	}
	if count > 0 {
		return nil
	}

	roots := []string{"Electronics", "Home appliances", "Accessories"}
	children := map[string][]string{
		"Electronics":     {"Monitors", "Keyboards", "Headphones"},
		"Home appliances": {"Kitchen", "Cleaning"},
		"Accessories":     {"Cables", "Bags"},
	}
	for _, root := range roots {
		var rootID int
		err := db.QueryRow(
			`INSERT INTO categories (title, active) VALUES ($1, TRUE) RETURNING category_id`,
			root,
		).Scan(&rootID)
		if err != nil {
			return fmt.Errorf("seed category %q: %w", root, err)
		}
		for _, child := range children[root] {
			_, err := db.Exec(
				`INSERT INTO categories (title, parent_id, active) VALUES ($1, $2, TRUE)`,
				child, rootID)
			if err != nil {
				return fmt.Errorf("seed category %q: %w", child, err)
			}
		}
	}
	return nil
}
