package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"storefront-service/internal/apperr"
	"storefront-service/internal/models"
	"storefront-service/internal/store"
	"storefront-service/internal/util"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProductService manages a store's catalogue
type ProductService struct {
	store  *store.Store
	logger *zap.Logger
}

// NewProductService creates a new product service
func NewProductService(store *store.Store) *ProductService {
	return &ProductService{store: store, logger: util.GetLogger()}
}

// CreateProductRequest holds the fields of a new product.
type CreateProductRequest struct {
	StoreID     int64           `json:"storeId"`
	Name        string          `json:"name"`
	Description *string         `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	ImageURL    *string         `json:"imageUrl"`
}

// UpdateProductRequest carries a partial update; nil fields are left alone.
type UpdateProductRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Quantity    *int             `json:"quantity"`
	ImageURL    *string          `json:"imageUrl"`
	Status      *int             `json:"status"`
}

// Create adds a product to a store owned by sellerID. Product slugs are
// unique within their store.
func (s *ProductService) Create(ctx context.Context, sellerID int64, req *CreateProductRequest) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "ProductService.Create")
	defer span.End()

	if req.StoreID == 0 || req.Name == "" || req.Price.IsZero() {
		return nil, apperr.BadRequest("Missing required fields")
	}
	if req.Price.IsNegative() || req.Quantity < 0 {
		return nil, apperr.BadRequest("Invalid price or quantity")
	}

	if _, err := s.store.GetOwnedStore(ctx, req.StoreID, sellerID); err != nil {
		return nil, lookupErr(err, "Store not found")
	}

	slug := util.Slugify(req.Name)
	if slug == "" {
		return nil, apperr.BadRequest("Invalid product name")
	}
	if err := s.ensureSlugFree(ctx, req.StoreID, slug, 0); err != nil {
		return nil, err
	}

	p := &models.Product{
		StoreID:     req.StoreID,
		Name:        req.Name,
		Slug:        slug,
		Description: req.Description,
		Price:       req.Price,
		Quantity:    req.Quantity,
		ImageURL:    strOrNil(req.ImageURL),
		Status:      models.ProductActive,
	}
	if err := s.store.CreateProduct(ctx, p); err != nil {
		return nil, writeErr(err, "Product with same name exists")
	}

	s.logger.Info("Product created",
		zap.Int64("product_id", p.ID),
		zap.Int64("store_id", p.StoreID))
	return p, nil
}

func (s *ProductService) ensureSlugFree(ctx context.Context, storeID int64, slug string, excludeID int64) error {
	taken, err := s.store.ProductSlugTaken(ctx, storeID, slug, excludeID)
	if err != nil {
		return apperr.Internal(fmt.Errorf("failed to check product slug: %w", err))
	}
	if taken {
		return apperr.Conflict("Product with same name exists")
	}
	return nil
}

// ListByStore returns every product of a store, newest first
func (s *ProductService) ListByStore(ctx context.Context, storeID int64) ([]models.Product, error) {
	ctx, span := util.StartSpan(ctx, "ProductService.ListByStore")
	defer span.End()

	products, err := s.store.GetProductsByStore(ctx, storeID)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("failed to list products: %w", err))
	}
	return products, nil
}

// Get retrieves a product by ID
func (s *ProductService) Get(ctx context.Context, productID int64) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "ProductService.Get")
	defer span.End()

	p, err := s.store.GetProductByID(ctx, productID)
	if err != nil {
		return nil, lookupErr(err, "Product not found")
	}
	return p, nil
}

// Update edits a product whose store belongs to sellerID
func (s *ProductService) Update(ctx context.Context, sellerID, productID int64, req *UpdateProductRequest) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "ProductService.Update")
	defer span.End()

	p, err := s.store.GetOwnedProduct(ctx, productID, sellerID)
	if err != nil {
		return nil, lookupErr(err, "Product not found")
	}

	if req.Name != nil && *req.Name != "" {
		slug := util.Slugify(*req.Name)
		if slug == "" {
			return nil, apperr.BadRequest("Invalid product name")
		}
		if err := s.ensureSlugFree(ctx, p.StoreID, slug, p.ID); err != nil {
			return nil, err
		}
		p.Name, p.Slug = *req.Name, slug
	}
	if req.Description != nil {
		p.Description = req.Description
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, apperr.BadRequest("Invalid price or quantity")
		}
		p.Price = *req.Price
	}
	if req.Quantity != nil {
		if *req.Quantity < 0 {
			return nil, apperr.BadRequest("Invalid price or quantity")
		}
		p.Quantity = *req.Quantity
	}
	if req.ImageURL != nil {
		p.ImageURL = strOrNil(req.ImageURL)
	}
	if req.Status != nil {
		if *req.Status != models.ProductActive && *req.Status != models.ProductInactive {
			return nil, apperr.BadRequest("Invalid product status")
		}
		p.Status = *req.Status
	}

	if err := s.store.UpdateProduct(ctx, p); err != nil {
		return nil, writeErr(err, "Product with same name exists")
	}
	return p, nil
}

// Delete removes a product that no order references
func (s *ProductService) Delete(ctx context.Context, sellerID, productID int64) error {
	ctx, span := util.StartSpan(ctx, "ProductService.Delete")
	defer span.End()

	if _, err := s.store.GetOwnedProduct(ctx, productID, sellerID); err != nil {
		return lookupErr(err, "Product not found")
	}

	if err := s.store.DeleteProduct(ctx, productID); err != nil {
		if errors.Is(err, store.ErrForeignKey) {
			return apperr.Wrap(http.StatusConflict, "Product is part of existing orders", err)
		}
		return lookupErr(err, "Product not found")
	}

	s.logger.Info("Product deleted", zap.Int64("product_id", productID))
	return nil
}
