package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/isdelr/inventory-manager-be/internal/models"
	"github.com/rs/zerolog/log"
)

var seedProducts = []models.Product{
	{Name: "Laptop", Description: "High-performance laptop", Price: 999.99, Stock: 50, Category: "Electronics"},
	{Name: "Mouse", Description: "Wireless mouse", Price: 29.99, Stock: 100, Category: "Accessories"},
	{Name: "Keyboard", Description: "Mechanical keyboard", Price: 89.99, Stock: 75, Category: "Accessories"},
	{Name: "Monitor", Description: "27-inch 4K monitor", Price: 449.99, Stock: 30, Category: "Electronics"},
}

var seedCustomers = []models.Customer{
	{Name: "John Doe", Email: "john@example.com", Phone: "+1234567890", Address: "123 Main St, New York, NY", Company: "Acme Corp"},
	{Name: "Jane Smith", Email: "jane@example.com", Phone: "+0987654321", Address: "456 Oak Ave, Los Angeles, CA", Company: "Tech Solutions"},
	{Name: "Bob Johnson", Email: "bob@example.com", Phone: "+1122334455", Address: "789 Pine Rd, Chicago, IL", Company: "Global Industries"},
}

var seedUsers = []models.UserCreate{
	{Username: "admin", Email: "admin@example.com", Password: "admin123", FullName: "Admin User", Role: models.RoleAdmin},
	{Username: "manager", Email: "manager@example.com", Password: "manager123", FullName: "Manager User", Role: models.RoleManager},
	{Username: "johndoe", Email: "john.user@example.com", Password: "password123", FullName: "John Doe", Role: models.RoleUser},
}

func tableEmpty(ctx context.Context, tx *sql.Tx, table string) (bool, error) {
	var n int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		return false, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return n == 0, nil
}

// Seed fills empty tables with demo data. Tables that already hold rows are
// left alone, so running it again changes nothing.
func Seed(ctx context.Context, db *sql.DB, hasher PasswordHasher) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if empty, err := tableEmpty(ctx, tx, "products"); err != nil {
		return err
	} else if empty {
		for _, p := range seedProducts {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO products (name, description, price, stock, category) VALUES (?, ?, ?, ?, ?)",
				p.Name, p.Description, p.Price, p.Stock, p.Category); err != nil {
				return fmt.Errorf("failed to seed product %s: %w", p.Name, err)
			}
		}
		log.Info().Int("count", len(seedProducts)).Msg("Seeded products")
	}

	if empty, err := tableEmpty(ctx, tx, "customers"); err != nil {
		return err
	} else if empty {
		for _, c := range seedCustomers {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO customers (name, email, phone, address, company) VALUES (?, ?, ?, ?, ?)",
				c.Name, c.Email, c.Phone, c.Address, c.Company); err != nil {
				return fmt.Errorf("failed to seed customer %s: %w", c.Name, err)
			}
		}
		log.Info().Int("count", len(seedCustomers)).Msg("Seeded customers")
	}

	if empty, err := tableEmpty(ctx, tx, "users"); err != nil {
		return err
	} else if empty {
		for _, u := range seedUsers {
			hash, err := hasher.Hash(u.Password)
			if err != nil {
				return fmt.Errorf("failed to hash seed password: %w", err)
			}
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO users (username, email, password_hash, full_name, is_active, role) VALUES (?, ?, ?, ?, 1, ?)",
				u.Username, u.Email, hash, u.FullName, u.Role); err != nil {
				return fmt.Errorf("failed to seed user %s: %w", u.Username, err)
			}
		}
		log.Info().Int("count", len(seedUsers)).Msg("Seeded users")
	}

	return tx.Commit()
}
