package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"storefront-service/internal/apperr"
	"storefront-service/internal/models"
	"storefront-service/internal/store"
	"storefront-service/internal/store/storetest"

	"github.com/stretchr/testify/assert"
)

type recordingPublisher struct {
	mu      sync.Mutex
	placed  []*models.OrderPlacedEvent
	changed []*models.OrderStatusChangedEvent
	err     error
}

func (p *recordingPublisher) PublishOrderPlaced(_ context.Context, e *models.OrderPlacedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.placed = append(p.placed, e)
	return p.err
}

func (p *recordingPublisher) PublishOrderStatusChanged(_ context.Context, e *models.OrderStatusChangedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.changed = append(p.changed, e)
	return p.err
}

// tick makes every datastore timestamp one second later than the last.
func tick(s *store.Store) {
	var mu sync.Mutex
	t := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	s.SetClock(func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	})
}

func assertStatus(t *testing.T, err error, status int, msg string) {
	t.Helper()

	var ae *apperr.Error
	if assert.True(t, errors.As(err, &ae), "expected *apperr.Error, got %v", err) {
		assert.Equal(t, status, ae.Status)
		if msg != "" {
			assert.Equal(t, msg, ae.Message)
		}
	}
}

// shop is a seller with one store, two products and a customer.
type shop struct {
	store    *store.Store
	seller   *models.Seller
	st       *models.Store
	tea      *models.Product
	coffee   *models.Product
	customer *models.Customer
}

func newShop(t *testing.T) *shop {
	s := storetest.New(t)
	tick(s)

	seller := storetest.Seller(t, s, "9000000001")
	st := storetest.Store(t, s, seller.ID, "corner-shop")
	return &shop{
		store:    s,
		seller:   seller,
		st:       st,
		tea:      storetest.Product(t, s, st.ID, "green-tea", "4.50"),
		coffee:   storetest.Product(t, s, st.ID, "coffee", "12.00"),
		customer: storetest.Customer(t, s, st.ID, "9100000001"),
	}
}
