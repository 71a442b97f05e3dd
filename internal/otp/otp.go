// Package otp issues and checks numeric login codes. Codes are kept only as
// bcrypt hashes in an injected expiring CodeStore.
package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// CodeStore keeps one hashed code per phone until its TTL runs out.
// Save overwrites any previous entry for the phone. ConsumeOTP deletes the
// entry only while it still holds hash, as a single atomic step, and
// reports whether it did.
type CodeStore interface {
	SaveOTP(ctx context.Context, phone, hash string, ttl time.Duration) error
	GetOTP(ctx context.Context, phone string) (hash string, ok bool, err error)
	ConsumeOTP(ctx context.Context, phone, hash string) (bool, error)
}

// ErrInvalidCode covers wrong, expired and never-issued codes alike.
var ErrInvalidCode = errors.New("invalid otp")

// Issuer hands out login codes and checks them against a CodeStore.
type Issuer struct {
	store CodeStore
	ttl   time.Duration
	cost  int
}

// NewIssuer creates an Issuer whose codes live for ttl.
func NewIssuer(store CodeStore, ttl time.Duration) *Issuer {
	return &Issuer{store: store, ttl: ttl, cost: bcrypt.DefaultCost}
}

// WithCost sets the bcrypt cost used for new codes.
func (i *Issuer) WithCost(cost int) *Issuer {
	i.cost = cost
	return i
}

// Issue generates a fresh six digit code for phone and stores its hash,
// replacing whatever was issued before. The plain code is returned for
// delivery.
func (i *Issuer) Issue(ctx context.Context, phone string) (string, error) {
	code, err := generateCode()
	if err != nil {
		return "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(code), i.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash otp: %w", err)
	}

	if err := i.store.SaveOTP(ctx, phone, string(hash), i.ttl); err != nil {
		return "", fmt.Errorf("failed to save otp: %w", err)
	}
	return code, nil
}

// Verify checks code against the latest code issued for phone. A match
// consumes the code; of several concurrent matches only one succeeds.
func (i *Issuer) Verify(ctx context.Context, phone, code string) error {
	hash, ok, err := i.store.GetOTP(ctx, phone)
	if err != nil {
		return fmt.Errorf("failed to load otp: %w", err)
	}
	if !ok {
		return ErrInvalidCode
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)) != nil {
		return ErrInvalidCode
	}

	consumed, err := i.store.ConsumeOTP(ctx, phone, hash)
	if err != nil {
		return fmt.Errorf("failed to consume otp: %w", err)
	}
	if !consumed {
		return ErrInvalidCode
	}
	return nil
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
