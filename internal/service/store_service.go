package service

import (
	"context"
	"fmt"

	"storefront-service/internal/apperr"
	"storefront-service/internal/models"
	"storefront-service/internal/store"
	"storefront-service/internal/util"

	"go.uber.org/zap"
)

// StoreService manages the stores a seller owns
type StoreService struct {
	store  *store.Store
	logger *zap.Logger
}

// NewStoreService creates a new store service
func NewStoreService(store *store.Store) *StoreService {
	return &StoreService{store: store, logger: util.GetLogger()}
}

// CreateStoreRequest holds the fields of a new store.
type CreateStoreRequest struct {
	Name           string  `json:"name"`
	WhatsappNumber string  `json:"whatsappNumber"`
	UpiID          *string `json:"upiId"`
	LogoURL        *string `json:"logoUrl"`
}

// UpdateStoreRequest carries a partial update; nil fields are left alone.
type UpdateStoreRequest struct {
	Name           *string `json:"name"`
	WhatsappNumber *string `json:"whatsappNumber"`
	UpiID          *string `json:"upiId"`
	LogoURL        *string `json:"logoUrl"`
}

// Create opens a new store for sellerID. The slug is derived from the name
// and must be unused by every other store.
func (s *StoreService) Create(ctx context.Context, sellerID int64, req *CreateStoreRequest) (*models.Store, error) {
	ctx, span := util.StartSpan(ctx, "StoreService.Create")
	defer span.End()

	if req.Name == "" || req.WhatsappNumber == "" {
		return nil, apperr.BadRequest("Missing required fields")
	}

	slug := util.Slugify(req.Name)
	if slug == "" {
		return nil, apperr.BadRequest("Invalid store name")
	}
	if err := s.ensureSlugFree(ctx, slug, 0); err != nil {
		return nil, err
	}

	st := &models.Store{
		SellerID:       sellerID,
		Name:           req.Name,
		Slug:           slug,
		WhatsappNumber: req.WhatsappNumber,
		UpiID:          strOrNil(req.UpiID),
		LogoURL:        strOrNil(req.LogoURL),
		Status:         models.StoreActive,
	}
	if err := s.store.CreateStore(ctx, st); err != nil {
		return nil, writeErr(err, "Store name already exists")
	}

	s.logger.Info("Store created",
		zap.Int64("store_id", st.ID),
		zap.Int64("seller_id", sellerID),
		zap.String("slug", slug))
	return st, nil
}

func (s *StoreService) ensureSlugFree(ctx context.Context, slug string, excludeID int64) error {
	taken, err := s.store.StoreSlugTaken(ctx, slug, excludeID)
	if err != nil {
		return apperr.Internal(fmt.Errorf("failed to check store slug: %w", err))
	}
	if taken {
		return apperr.Conflict("Store name already exists")
	}
	return nil
}

// ListMine returns every store of sellerID
func (s *StoreService) ListMine(ctx context.Context, sellerID int64) ([]models.Store, error) {
	ctx, span := util.StartSpan(ctx, "StoreService.ListMine")
	defer span.End()

	stores, err := s.store.GetStoresBySeller(ctx, sellerID)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("failed to list stores: %w", err))
	}
	return stores, nil
}

// Get returns a store of sellerID. Stores of other sellers are reported
// as missing.
func (s *StoreService) Get(ctx context.Context, sellerID, storeID int64) (*models.Store, error) {
	ctx, span := util.StartSpan(ctx, "StoreService.Get")
	defer span.End()

	st, err := s.store.GetOwnedStore(ctx, storeID, sellerID)
	if err != nil {
		return nil, lookupErr(err, "Store not found")
	}
	return st, nil
}

// Update applies the non-nil fields of req to a store of sellerID. A new
// name re-derives the slug.
func (s *StoreService) Update(ctx context.Context, sellerID, storeID int64, req *UpdateStoreRequest) (*models.Store, error) {
	ctx, span := util.StartSpan(ctx, "StoreService.Update")
	defer span.End()

	st, err := s.store.GetOwnedStore(ctx, storeID, sellerID)
	if err != nil {
		return nil, lookupErr(err, "Store not found")
	}

	if req.Name != nil && *req.Name != "" {
		slug := util.Slugify(*req.Name)
		if slug == "" {
			return nil, apperr.BadRequest("Invalid store name")
		}
		if err := s.ensureSlugFree(ctx, slug, st.ID); err != nil {
			return nil, err
		}
		st.Name, st.Slug = *req.Name, slug
	}
	if req.WhatsappNumber != nil && *req.WhatsappNumber != "" {
		st.WhatsappNumber = *req.WhatsappNumber
	}
	if req.UpiID != nil {
		st.UpiID = strOrNil(req.UpiID)
	}
	if req.LogoURL != nil {
		st.LogoURL = strOrNil(req.LogoURL)
	}

	if err := s.store.UpdateStore(ctx, st); err != nil {
		return nil, writeErr(err, "Store name already exists")
	}
	return st, nil
}

// Delete removes a store with its products, customers and orders
func (s *StoreService) Delete(ctx context.Context, sellerID, storeID int64) error {
	ctx, span := util.StartSpan(ctx, "StoreService.Delete")
	defer span.End()

	if err := s.store.DeleteOwnedStore(ctx, storeID, sellerID); err != nil {
		return lookupErr(err, "Store not found")
	}

	s.logger.Info("Store deleted", zap.Int64("store_id", storeID), zap.Int64("seller_id", sellerID))
	return nil
}
