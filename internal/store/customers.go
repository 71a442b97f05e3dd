package store

import (
	"context"

	"storefront-service/internal/models"

	"github.com/jmoiron/sqlx"
)

const customerColumns = `id, store_id, name, phone, address, email, created_at, updated_at`

// GetCustomerByStorePhone looks up the customer of storeID with phone
func (s *Store) GetCustomerByStorePhone(ctx context.Context, storeID int64, phone string) (*models.Customer, error) {
	var c models.Customer
	err := getOne(ctx, s.db, &c,
		s.db.Rebind("SELECT "+customerColumns+" FROM customers WHERE store_id = ? AND phone = ?"), storeID, phone)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateCustomer inserts a customer
func (s *Store) CreateCustomer(ctx context.Context, c *models.Customer) error {
	now := s.now()
	query := s.db.Rebind(`
		INSERT INTO customers (store_id, name, phone, address, email, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id`)

	if err := s.db.GetContext(ctx, &c.ID, query,
		c.StoreID, c.Name, c.Phone, c.Address, c.Email, now, now); err != nil {
		return classify(err)
	}
	c.CreatedAt, c.UpdatedAt = now, now
	return nil
}

// UpdateCustomer persists name, address and email
func (s *Store) UpdateCustomer(ctx context.Context, c *models.Customer) error {
	now := s.now()
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`
		UPDATE customers SET name = ?, address = ?, email = ?, updated_at = ? WHERE id = ?`),
		c.Name, c.Address, c.Email, now, c.ID)
	if err != nil {
		return classify(err)
	}
	c.UpdatedAt = now
	return nil
}

// GetCustomersByStore lists a store's customers, newest first
func (s *Store) GetCustomersByStore(ctx context.Context, storeID int64) ([]models.Customer, error) {
	customers := []models.Customer{}
	err := s.db.SelectContext(ctx, &customers,
		s.db.Rebind("SELECT "+customerColumns+" FROM customers WHERE store_id = ? ORDER BY created_at DESC, id DESC"), storeID)
	return customers, err
}

// GetCustomersByIDs retrieves multiple customers by IDs
func (s *Store) GetCustomersByIDs(ctx context.Context, ids []int64) ([]models.Customer, error) {
	if len(ids) == 0 {
		return []models.Customer{}, nil
	}

	query, args, err := sqlx.In("SELECT "+customerColumns+" FROM customers WHERE id IN (?)", ids)
	if err != nil {
		return nil, err
	}

	var customers []models.Customer
	err = s.db.SelectContext(ctx, &customers, s.db.Rebind(query), args...)
	return customers, err
}
