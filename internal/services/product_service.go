package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/isdelr/inventory-manager-be/internal/models"
)

// ProductServiceProvider defines the interface for product services.
type ProductServiceProvider interface {
	GetAllProducts(ctx context.Context) ([]models.Product, error)
	GetProductByID(ctx context.Context, id int64) (models.Product, error)
	CreateProduct(ctx context.Context, p models.Product) (models.Product, error)
	UpdateProduct(ctx context.Context, id int64, in models.ProductUpdate) (models.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
}

// ProductService provides business logic for the product catalogue.
type ProductService struct {
	db     *sql.DB
	events EventServiceProvider
}

// NewProductService creates a new ProductService. events may be nil.
func NewProductService(db *sql.DB, events EventServiceProvider) *ProductService {
	return &ProductService{db: db, events: events}
}

const productColumns = "id, name, description, price, stock, category"

func scanProduct(row scanner) (models.Product, error) {
	var (
		p           models.Product
		description sql.NullString
		category    sql.NullString
	)
	if err := row.Scan(&p.ID, &p.Name, &description, &p.Price, &p.Stock, &category); err != nil {
		return models.Product{}, err
	}
	p.Description = description.String
	p.Category = category.String
	return p, nil
}

// GetAllProducts retrieves all products.
func (s *ProductService) GetAllProducts(ctx context.Context) ([]models.Product, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+productColumns+" FROM products ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product row: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// GetProductByID retrieves a single product.
func (s *ProductService) GetProductByID(ctx context.Context, id int64) (models.Product, error) {
	p, err := scanProduct(s.db.QueryRowContext(ctx, "SELECT "+productColumns+" FROM products WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Product{}, notFound("Product with id %d not found", id)
	}
	if err != nil {
		return models.Product{}, fmt.Errorf("failed to get product %d: %w", id, err)
	}
	return p, nil
}

// CreateProduct inserts p and returns it with its new id.
func (s *ProductService) CreateProduct(ctx context.Context, p models.Product) (models.Product, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO products (name, description, price, stock, category) VALUES (?, ?, ?, ?, ?)",
		p.Name, p.Description, p.Price, p.Stock, p.Category)
	if err != nil {
		return models.Product{}, fmt.Errorf("failed to insert product: %w", err)
	}
	if p.ID, err = res.LastInsertId(); err != nil {
		return models.Product{}, err
	}
	record(ctx, s.events, "product.create", "info", fmt.Sprintf("Product '%s' created", p.Name), actorFromContext(ctx))
	return p, nil
}

// UpdateProduct applies the non-nil fields of in.
func (s *ProductService) UpdateProduct(ctx context.Context, id int64, in models.ProductUpdate) (models.Product, error) {
	p, err := s.GetProductByID(ctx, id)
	if err != nil {
		return models.Product{}, err
	}
	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.Stock != nil {
		p.Stock = *in.Stock
	}
	if in.Category != nil {
		p.Category = *in.Category
	}

	_, err = s.db.ExecContext(ctx,
		"UPDATE products SET name = ?, description = ?, price = ?, stock = ?, category = ? WHERE id = ?",
		p.Name, p.Description, p.Price, p.Stock, p.Category, id)
	if err != nil {
		return models.Product{}, fmt.Errorf("failed to update product: %w", err)
	}
	record(ctx, s.events, "product.update", "info", fmt.Sprintf("Product '%s' updated", p.Name), actorFromContext(ctx))
	return p, nil
}

// DeleteProduct removes a product.
func (s *ProductService) DeleteProduct(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM products WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound("Product with id %d not found", id)
	}
	record(ctx, s.events, "product.delete", "warn", fmt.Sprintf("Product %d deleted", id), actorFromContext(ctx))
	return nil
}
