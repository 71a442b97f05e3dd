package store

import (
	"context"
	"errors"

	"storefront-service/internal/models"
)

const sellerColumns = `id, name, email, phone, status, plan, plan_expires_at, created_at, updated_at`

// GetSellerByID retrieves a seller by ID
func (s *Store) GetSellerByID(ctx context.Context, id int64) (*models.Seller, error) {
	var seller models.Seller
	err := getOne(ctx, s.db, &seller, s.db.Rebind("SELECT "+sellerColumns+" FROM sellers WHERE id = ?"), id)
	if err != nil {
		return nil, err
	}
	return &seller, nil
}

// GetSellerByPhone retrieves a seller by phone number
func (s *Store) GetSellerByPhone(ctx context.Context, phone string) (*models.Seller, error) {
	var seller models.Seller
	err := getOne(ctx, s.db, &seller, s.db.Rebind("SELECT "+sellerColumns+" FROM sellers WHERE phone = ?"), phone)
	if err != nil {
		return nil, err
	}
	return &seller, nil
}

// CreateSeller inserts a seller and fills in its generated fields.
func (s *Store) CreateSeller(ctx context.Context, seller *models.Seller) error {
	now := s.now()
	query := s.db.Rebind(`
		INSERT INTO sellers (name, email, phone, status, plan, plan_expires_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`)

	if err := s.db.GetContext(ctx, &seller.ID, query,
		seller.Name, seller.Email, seller.Phone, seller.Status, seller.Plan, seller.PlanExpiresAt, now, now); err != nil {
		return classify(err)
	}
	seller.CreatedAt, seller.UpdatedAt = now, now
	return nil
}

// FindOrCreateSellerByPhone returns the seller owning phone, provisioning a
// FREE seller on first sight. created reports whether a row was inserted.
func (s *Store) FindOrCreateSellerByPhone(ctx context.Context, phone string) (seller *models.Seller, created bool, err error) {
	seller, err = s.GetSellerByPhone(ctx, phone)
	if err == nil {
		return seller, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}

	seller = &models.Seller{Phone: phone, Status: 1, Plan: models.PlanFree}
	if err := s.CreateSeller(ctx, seller); err != nil {
		if errors.Is(err, ErrDuplicate) {
			// lost a race with a concurrent first login
			seller, err = s.GetSellerByPhone(ctx, phone)
			return seller, false, err
		}
		return nil, false, err
	}
	return seller, true, nil
}
