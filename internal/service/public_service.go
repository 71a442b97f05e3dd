package service

import (
	"context"
	"fmt"
	"strings"

	"storefront-service/internal/apperr"
	"storefront-service/internal/models"
	"storefront-service/internal/store"
	"storefront-service/internal/util"
)

// PublicService serves the anonymous storefront
type PublicService struct {
	store *store.Store
}

// NewPublicService creates a new public storefront service
func NewPublicService(store *store.Store) *PublicService {
	return &PublicService{store: store}
}

// PublicStore is an active store with its active products.
type PublicStore struct {
	models.Store
	Products []models.Product `json:"products"`
}

// GetStoreBySlug returns an active store with its active products, newest
// first. Inactive stores are reported as missing.
func (s *PublicService) GetStoreBySlug(ctx context.Context, slug string) (*PublicStore, error) {
	ctx, span := util.StartSpan(ctx, "PublicService.GetStoreBySlug")
	defer span.End()

	st, err := s.activeStore(ctx, slug)
	if err != nil {
		return nil, err
	}

	products, _, err := s.store.ListProducts(ctx, store.ProductFilter{
		StoreID:    st.ID,
		ActiveOnly: true,
	})
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("failed to list products: %w", err))
	}

	return &PublicStore{Store: *st, Products: products}, nil
}

// ListStoreProducts pages through an active store's active products,
// optionally filtered by a case-insensitive name substring.
func (s *PublicService) ListStoreProducts(ctx context.Context, slug, search string, page util.PageRequest) (*Page[models.Product], error) {
	ctx, span := util.StartSpan(ctx, "PublicService.ListStoreProducts")
	defer span.End()

	st, err := s.activeStore(ctx, slug)
	if err != nil {
		return nil, err
	}

	products, total, err := s.store.ListProducts(ctx, store.ProductFilter{
		StoreID:    st.ID,
		ActiveOnly: true,
		Search:     strings.TrimSpace(search),
		Limit:      page.Limit,
		Offset:     page.Offset(),
	})
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("failed to list products: %w", err))
	}

	return &Page[models.Product]{
		Data:       products,
		Pagination: page.PaginateCursor(total, len(products)),
	}, nil
}

func (s *PublicService) activeStore(ctx context.Context, slug string) (*models.Store, error) {
	if slug == "" {
		return nil, apperr.BadRequest("Store slug is required")
	}

	st, err := s.store.GetStoreBySlug(ctx, slug)
	if err != nil {
		return nil, lookupErr(err, "Store not found")
	}
	if st.Status != models.StoreActive {
		return nil, apperr.NotFound("Store not found")
	}
	return st, nil
}
