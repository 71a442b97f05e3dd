package service

import (
	"context"
	"errors"
	"net/http"

	"storefront-service/internal/apperr"
	"storefront-service/internal/models"
	"storefront-service/internal/store"
	"storefront-service/internal/util"
)

// EventPublisher delivers order domain events after the datastore commit.
type EventPublisher interface {
	PublishOrderPlaced(ctx context.Context, event *models.OrderPlacedEvent) error
	PublishOrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error
}

// Page is one page of a listing plus its metadata.
type Page[T any] struct {
	Data       []T             `json:"data"`
	Pagination util.Pagination `json:"pagination"`
}

// lookupErr turns a datastore miss into a 404 carrying msg. Anything else
// is unexpected.
func lookupErr(err error, msg string) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound(msg)
	}
	return apperr.Internal(err)
}

// writeErr maps constraint violations raised by a write.
func writeErr(err error, conflictMsg string) error {
	switch {
	case errors.Is(err, store.ErrDuplicate):
		return apperr.Wrap(http.StatusConflict, conflictMsg, err)
	case errors.Is(err, store.ErrForeignKey), errors.Is(err, store.ErrCheck):
		return apperr.Wrap(http.StatusBadRequest, "Invalid reference or value", err)
	case errors.Is(err, store.ErrNotFound):
		return apperr.Wrap(http.StatusNotFound, "Not found", err)
	}
	return apperr.Internal(err)
}

func strOrNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
