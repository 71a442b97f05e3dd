package store

import (
	"context"

	"storefront-service/internal/models"
)

const storeColumns = `id, seller_id, name, slug, logo_url, whatsapp_number, upi_id, status, created_at, updated_at`

// CreateStore inserts a store
func (s *Store) CreateStore(ctx context.Context, st *models.Store) error {
	now := s.now()
	query := s.db.Rebind(`
		INSERT INTO stores (seller_id, name, slug, logo_url, whatsapp_number, upi_id, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`)

	if err := s.db.GetContext(ctx, &st.ID, query,
		st.SellerID, st.Name, st.Slug, st.LogoURL, st.WhatsappNumber, st.UpiID, st.Status, now, now); err != nil {
		return classify(err)
	}
	st.CreatedAt, st.UpdatedAt = now, now
	return nil
}

// GetStoreByID retrieves a store by ID
func (s *Store) GetStoreByID(ctx context.Context, id int64) (*models.Store, error) {
	var st models.Store
	if err := getOne(ctx, s.db, &st, s.db.Rebind("SELECT "+storeColumns+" FROM stores WHERE id = ?"), id); err != nil {
		return nil, err
	}
	return &st, nil
}

// GetOwnedStore retrieves a store only if sellerID owns it.
func (s *Store) GetOwnedStore(ctx context.Context, id, sellerID int64) (*models.Store, error) {
	var st models.Store
	err := getOne(ctx, s.db, &st,
		s.db.Rebind("SELECT "+storeColumns+" FROM stores WHERE id = ? AND seller_id = ?"), id, sellerID)
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// GetStoreBySlug retrieves a store by its public slug
func (s *Store) GetStoreBySlug(ctx context.Context, slug string) (*models.Store, error) {
	var st models.Store
	if err := getOne(ctx, s.db, &st, s.db.Rebind("SELECT "+storeColumns+" FROM stores WHERE slug = ?"), slug); err != nil {
		return nil, err
	}
	return &st, nil
}

// StoreSlugTaken reports whether another store already uses slug.
// excludeID of 0 checks every store.
func (s *Store) StoreSlugTaken(ctx context.Context, slug string, excludeID int64) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		s.db.Rebind("SELECT EXISTS(SELECT 1 FROM stores WHERE slug = ? AND id <> ?)"), slug, excludeID)
	return exists, err
}

// GetStoresBySeller lists a seller's stores, newest first
func (s *Store) GetStoresBySeller(ctx context.Context, sellerID int64) ([]models.Store, error) {
	stores := []models.Store{}
	err := s.db.SelectContext(ctx, &stores,
		s.db.Rebind("SELECT "+storeColumns+" FROM stores WHERE seller_id = ? ORDER BY created_at DESC, id DESC"), sellerID)
	return stores, err
}

// UpdateStore persists the mutable store fields
func (s *Store) UpdateStore(ctx context.Context, st *models.Store) error {
	now := s.now()
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`
		UPDATE stores
		SET name = ?, slug = ?, logo_url = ?, whatsapp_number = ?, upi_id = ?, status = ?, updated_at = ?
		WHERE id = ?`),
		st.Name, st.Slug, st.LogoURL, st.WhatsappNumber, st.UpiID, st.Status, now, st.ID)
	if err != nil {
		return classify(err)
	}
	st.UpdatedAt = now
	return nil
}

// DeleteOwnedStore deletes a store owned by sellerID together with
// everything that hangs off it.
func (s *Store) DeleteOwnedStore(ctx context.Context, id, sellerID int64) error {
	res, err := s.db.ExecContext(ctx,
		s.db.Rebind("DELETE FROM stores WHERE id = ? AND seller_id = ?"), id, sellerID)
	if err != nil {
		return classify(err)
	}
	return expectAffected(res)
}
