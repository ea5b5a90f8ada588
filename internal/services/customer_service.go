package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/isdelr/inventory-manager-be/internal/models"
)

// CustomerServiceProvider defines the interface for customer services.
type CustomerServiceProvider interface {
	GetAllCustomers(ctx context.Context) ([]models.Customer, error)
	GetCustomerByID(ctx context.Context, id int64) (models.Customer, error)
	CreateCustomer(ctx context.Context, c models.Customer) (models.Customer, error)
	UpdateCustomer(ctx context.Context, id int64, in models.CustomerUpdate) (models.Customer, error)
	DeleteCustomer(ctx context.Context, id int64) error
}

// CustomerService provides business logic for customer records.
type CustomerService struct {
	db     *sql.DB
	events EventServiceProvider
}

// NewCustomerService creates a new CustomerService. events may be nil.
func NewCustomerService(db *sql.DB, events EventServiceProvider) *CustomerService {
	return &CustomerService{db: db, events: events}
}

const customerColumns = "id, name, email, phone, address, company"

func scanCustomer(row scanner) (models.Customer, error) {
	var (
		c                       models.Customer
		phone, address, company sql.NullString
	)
	if err := row.Scan(&c.ID, &c.Name, &c.Email, &phone, &address, &company); err != nil {
		return models.Customer{}, err
	}
	c.Phone, c.Address, c.Company = phone.String, address.String, company.String
	return c, nil
}

// GetAllCustomers retrieves all customers.
func (s *CustomerService) GetAllCustomers(ctx context.Context) ([]models.Customer, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+customerColumns+" FROM customers ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query customers: %w", err)
	}
	defer rows.Close()

	customers := []models.Customer{}
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan customer row: %w", err)
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

// GetCustomerByID retrieves a single customer.
func (s *CustomerService) GetCustomerByID(ctx context.Context, id int64) (models.Customer, error) {
	c, err := scanCustomer(s.db.QueryRowContext(ctx, "SELECT "+customerColumns+" FROM customers WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Customer{}, notFound("Customer with id %d not found", id)
	}
	if err != nil {
		return models.Customer{}, fmt.Errorf("failed to get customer %d: %w", id, err)
	}
	return c, nil
}

func (s *CustomerService) emailTaken(ctx context.Context, email string, exceptID int64) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM customers WHERE email = ? AND id != ?", email, exceptID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// CreateCustomer inserts c. Emails are unique across customers.
func (s *CustomerService) CreateCustomer(ctx context.Context, c models.Customer) (models.Customer, error) {
	taken, err := s.emailTaken(ctx, c.Email, 0)
	if err != nil {
		return models.Customer{}, fmt.Errorf("failed to check customer email: %w", err)
	}
	if taken {
		return models.Customer{}, duplicate("Customer with email %s already exists", c.Email)
	}

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO customers (name, email, phone, address, company) VALUES (?, ?, ?, ?, ?)",
		c.Name, c.Email, c.Phone, c.Address, c.Company)
	if isUniqueViolation(err) {
		return models.Customer{}, duplicate("Customer with email %s already exists", c.Email)
	}
	if err != nil {
		return models.Customer{}, fmt.Errorf("failed to insert customer: %w", err)
	}
	if c.ID, err = res.LastInsertId(); err != nil {
		return models.Customer{}, err
	}
	record(ctx, s.events, "customer.create", "info", fmt.Sprintf("Customer '%s' created", c.Name), actorFromContext(ctx))
	return c, nil
}

// UpdateCustomer applies the non-nil fields of in.
func (s *CustomerService) UpdateCustomer(ctx context.Context, id int64, in models.CustomerUpdate) (models.Customer, error) {
	c, err := s.GetCustomerByID(ctx, id)
	if err != nil {
		return models.Customer{}, err
	}
	if in.Email != nil && *in.Email != c.Email {
		taken, err := s.emailTaken(ctx, *in.Email, id)
		if err != nil {
			return models.Customer{}, fmt.Errorf("failed to check customer email: %w", err)
		}
		if taken {
			return models.Customer{}, duplicate("Customer with email %s already exists", *in.Email)
		}
		c.Email = *in.Email
	}
	if in.Name != nil {
		c.Name = *in.Name
	}
	if in.Phone != nil {
		c.Phone = *in.Phone
	}
	if in.Address != nil {
		c.Address = *in.Address
	}
	if in.Company != nil {
		c.Company = *in.Company
	}

	_, err = s.db.ExecContext(ctx,
		"UPDATE customers SET name = ?, email = ?, phone = ?, address = ?, company = ? WHERE id = ?",
		c.Name, c.Email, c.Phone, c.Address, c.Company, id)
	if isUniqueViolation(err) {
		return models.Customer{}, duplicate("Customer with email %s already exists", c.Email)
	}
	if err != nil {
		return models.Customer{}, fmt.Errorf("failed to update customer: %w", err)
	}
	record(ctx, s.events, "customer.update", "info", fmt.Sprintf("Customer '%s' updated", c.Name), actorFromContext(ctx))
	return c, nil
}

// DeleteCustomer removes a customer.
func (s *CustomerService) DeleteCustomer(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM customers WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound("Customer with id %d not found", id)
	}
	record(ctx, s.events, "customer.delete", "warn", fmt.Sprintf("Customer %d deleted", id), actorFromContext(ctx))
	return nil
}
