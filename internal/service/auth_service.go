package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"storefront-service/internal/apperr"
	"storefront-service/internal/auth"
	"storefront-service/internal/models"
	"storefront-service/internal/otp"
	"storefront-service/internal/store"
	"storefront-service/internal/util"

	"go.uber.org/zap"
)

var phonePattern = regexp.MustCompile(`^[0-9]{10,15}$`)

// AuthService runs the OTP login flow for sellers
type AuthService struct {
	store  *store.Store
	codes  *otp.Issuer
	tokens *auth.TokenManager
	logger *zap.Logger
	now    func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(store *store.Store, codes *otp.Issuer, tokens *auth.TokenManager) *AuthService {
	return &AuthService{
		store:  store,
		codes:  codes,
		tokens: tokens,
		logger: util.GetLogger(),
		now:    time.Now,
	}
}

// SendOTPResponse is returned once a code has been issued.
type SendOTPResponse struct {
	Message   string `json:"message"`
	IsNewUser bool   `json:"isNewUser"`
}

// SellerProfile is the signed-in seller as returned by Me.
type SellerProfile struct {
	models.Seller
	PlanActive bool `json:"planActive"`
}

// SendOTP issues a login code for phone, creating a FREE seller the first
// time the phone is seen. The code is delivered through the log.
func (s *AuthService) SendOTP(ctx context.Context, phone string) (*SendOTPResponse, error) {
	ctx, span := util.StartSpan(ctx, "AuthService.SendOTP")
	defer span.End()

	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, apperr.BadRequest("Phone is required")
	}
	if !phonePattern.MatchString(phone) {
		return nil, apperr.BadRequest("Invalid phone number")
	}

	seller, created, err := s.store.FindOrCreateSellerByPhone(ctx, phone)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("failed to provision seller: %w", err))
	}
	if created {
		s.logger.Info("Seller provisioned", zap.Int64("seller_id", seller.ID))
	}

	code, err := s.codes.Issue(ctx, phone)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	util.OTPIssuedTotal.Inc()

	s.logger.Info("OTP issued",
		zap.String("phone", phone),
		zap.String("otp", code))

	return &SendOTPResponse{
		Message:   "OTP sent successfully",
		IsNewUser: seller.Email == nil || *seller.Email == "",
	}, nil
}

// VerifyOTP checks code for phone and, on success, returns a session token
// for the seller.
func (s *AuthService) VerifyOTP(ctx context.Context, phone, code string) (string, error) {
	ctx, span := util.StartSpan(ctx, "AuthService.VerifyOTP")
	defer span.End()

	phone, code = strings.TrimSpace(phone), strings.TrimSpace(code)
	if phone == "" || code == "" {
		return "", apperr.BadRequest("Phone and OTP are required")
	}

	seller, err := s.store.GetSellerByPhone(ctx, phone)
	if err != nil {
		return "", lookupErr(err, "Seller not found")
	}

	if err := s.codes.Verify(ctx, phone, code); err != nil {
		if errors.Is(err, otp.ErrInvalidCode) {
			util.OTPVerificationsTotal.WithLabelValues("invalid").Inc()
			return "", apperr.BadRequest("Invalid OTP")
		}
		util.OTPVerificationsTotal.WithLabelValues("error").Inc()
		return "", apperr.Internal(err)
	}
	util.OTPVerificationsTotal.WithLabelValues("ok").Inc()

	token, err := s.tokens.Issue(seller.ID, seller.Email)
	if err != nil {
		return "", apperr.Internal(err)
	}

	s.logger.Info("Seller signed in", zap.Int64("seller_id", seller.ID))
	return token, nil
}

// Me returns the profile of the signed-in seller
func (s *AuthService) Me(ctx context.Context, sellerID int64) (*SellerProfile, error) {
	ctx, span := util.StartSpan(ctx, "AuthService.Me")
	defer span.End()

	seller, err := s.store.GetSellerByID(ctx, sellerID)
	if err != nil {
		return nil, lookupErr(err, "Seller not found")
	}
	return &SellerProfile{Seller: *seller, PlanActive: seller.HasActivePlan(s.now())}, nil
}
