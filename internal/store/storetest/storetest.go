// Package storetest opens throwaway in-memory datastores for tests and
// seeds them with the minimum rows a scenario needs.
package storetest

import (
	"context"
	"fmt"
	"testing"

	"storefront-service/internal/models"
	"storefront-service/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// New returns a migrated store backed by a private in-memory sqlite database.
func New(t testing.TB) *store.Store {
	t.Helper()

	s, err := store.NewStore(store.DriverSQLite, "file::memory:")
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))

	t.Cleanup(func() { _ = s.Close() })
	return s
}

// Seller inserts a FREE seller with the given phone.
func Seller(t testing.TB, s *store.Store, phone string) *models.Seller {
	t.Helper()

	seller := &models.Seller{Phone: phone, Status: 1, Plan: models.PlanFree}
	require.NoError(t, s.CreateSeller(context.Background(), seller))
	return seller
}

// Store inserts an active store for sellerID using slug as both name and slug.
func Store(t testing.TB, s *store.Store, sellerID int64, slug string) *models.Store {
	t.Helper()

	st := &models.Store{
		SellerID:       sellerID,
		Name:           slug,
		Slug:           slug,
		WhatsappNumber: "9990001111",
		Status:         models.StoreActive,
	}
	require.NoError(t, s.CreateStore(context.Background(), st))
	return st
}

// Product inserts an active product priced at price.
func Product(t testing.TB, s *store.Store, storeID int64, name, price string) *models.Product {
	t.Helper()

	p := &models.Product{
		StoreID:  storeID,
		Name:     name,
		Slug:     name,
		Price:    decimal.RequireFromString(price),
		Quantity: 10,
		Status:   models.ProductActive,
	}
	require.NoError(t, s.CreateProduct(context.Background(), p))
	return p
}

// Customer inserts a customer of storeID.
func Customer(t testing.TB, s *store.Store, storeID int64, phone string) *models.Customer {
	t.Helper()

	c := &models.Customer{
		StoreID: storeID,
		Name:    fmt.Sprintf("Customer %s", phone),
		Phone:   phone,
		Address: "12 Market Road",
	}
	require.NoError(t, s.CreateCustomer(context.Background(), c))
	return c
}

// Count returns the number of rows in table.
func Count(t testing.TB, s *store.Store, table string) int {
	t.Helper()

	var n int
	require.NoError(t, s.GetDB().Get(&n, "SELECT COUNT(*) FROM "+table))
	return n
}
