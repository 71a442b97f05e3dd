package service

import (
	"context"
	"errors"
	"fmt"

	"storefront-service/internal/apperr"
	"storefront-service/internal/models"
	"storefront-service/internal/store"
	"storefront-service/internal/util"

	"go.uber.org/zap"
)

// CustomerService keeps one customer record per store and phone
type CustomerService struct {
	store  *store.Store
	logger *zap.Logger
}

// NewCustomerService creates a new customer service
func NewCustomerService(store *store.Store) *CustomerService {
	return &CustomerService{store: store, logger: util.GetLogger()}
}

// UpsertCustomerRequest is a checkout customer keyed by store and phone.
type UpsertCustomerRequest struct {
	StoreID int64   `json:"storeId"`
	Name    string  `json:"name"`
	Phone   string  `json:"phone"`
	Address string  `json:"address"`
	Email   *string `json:"email"`
}

// Upsert creates the customer of (storeId, phone) or refreshes the
// existing one. Only non-empty name, email and address overwrite.
func (s *CustomerService) Upsert(ctx context.Context, req *UpsertCustomerRequest) (*models.Customer, error) {
	ctx, span := util.StartSpan(ctx, "CustomerService.Upsert")
	defer span.End()

	if req.StoreID == 0 || req.Name == "" || req.Phone == "" || req.Address == "" {
		return nil, apperr.BadRequest("Missing required fields")
	}

	if _, err := s.store.GetStoreByID(ctx, req.StoreID); err != nil {
		return nil, lookupErr(err, "Store not found")
	}

	existing, err := s.store.GetCustomerByStorePhone(ctx, req.StoreID, req.Phone)
	switch {
	case err == nil:
		return s.refresh(ctx, existing, req)
	case !errors.Is(err, store.ErrNotFound):
		return nil, apperr.Internal(fmt.Errorf("failed to look up customer: %w", err))
	}

	c := &models.Customer{
		StoreID: req.StoreID,
		Name:    req.Name,
		Phone:   req.Phone,
		Address: req.Address,
		Email:   strOrNil(req.Email),
	}
	err = s.store.CreateCustomer(ctx, c)
	if errors.Is(err, store.ErrDuplicate) {
		// lost a race with a concurrent upsert of the same phone
		existing, getErr := s.store.GetCustomerByStorePhone(ctx, req.StoreID, req.Phone)
		if getErr == nil {
			return s.refresh(ctx, existing, req)
		}
	}
	if err != nil {
		return nil, writeErr(err, "Customer email already in use")
	}

	s.logger.Info("Customer created",
		zap.Int64("customer_id", c.ID),
		zap.Int64("store_id", c.StoreID))
	return c, nil
}

func (s *CustomerService) refresh(ctx context.Context, c *models.Customer, req *UpsertCustomerRequest) (*models.Customer, error) {
	if req.Name != "" {
		c.Name = req.Name
	}
	if req.Address != "" {
		c.Address = req.Address
	}
	if email := strOrNil(req.Email); email != nil {
		c.Email = email
	}

	if err := s.store.UpdateCustomer(ctx, c); err != nil {
		return nil, writeErr(err, "Customer email already in use")
	}
	return c, nil
}

// ListByStore returns the customers of a store
func (s *CustomerService) ListByStore(ctx context.Context, storeID int64) ([]models.Customer, error) {
	ctx, span := util.StartSpan(ctx, "CustomerService.ListByStore")
	defer span.End()

	customers, err := s.store.GetCustomersByStore(ctx, storeID)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("failed to list customers: %w", err))
	}
	return customers, nil
}
