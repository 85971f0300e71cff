// internal/services/payment_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"
	"gorm.io/gorm"

	"github.com/greensupply/greensupply-backend/internal/config"
	"github.com/greensupply/greensupply-backend/internal/models"
)

// PaymentService collects each participant's share of a confirmed order.
// Share rows are created at confirmation with status pending; the intent
// is only created when the business actually starts paying.
type PaymentService struct {
	db     *gorm.DB
	config *config.Config
}

type PaymentIntentResponse struct {
	ClientSecret string  `json:"client_secret"`
	PaymentID    string  `json:"payment_id"`
	Status       string  `json:"status"`
	AmountUSD    float64 `json:"amount_usd"`
}

type ConfirmSharePaymentRequest struct {
	PaymentIntentID string `json:"payment_intent_id" validate:"required"`
}

func NewPaymentService(db *gorm.DB, config *config.Config) *PaymentService {
	// Initialize Stripe
	stripe.Key = config.Payment.StripeSecretKey

	return &PaymentService{
		db:     db,
		config: config,
	}
}

// CreateSharePaymentIntent opens a Stripe PaymentIntent for one business's
// share of its group order. Re-calling for a share that already has an
// intent reuses the stored intent instead of double-charging.
func (s *PaymentService) CreateSharePaymentIntent(businessID, groupID uuid.UUID) (*PaymentIntentResponse, error) {
	var share models.CommitmentPayment
	if err := s.db.Where("group_id = ? AND business_id = ?", groupID, businessID).
		First(&share).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("no payment share found for this business and group")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if share.Status == models.PaymentStatusSucceeded {
		return nil, errors.New("share has already been paid")
	}

	if share.StripePaymentIntentID != "" {
		pi, err := paymentintent.Get(share.StripePaymentIntentID, nil)
		if err == nil && pi.Status != stripe.PaymentIntentStatusCanceled {
			return &PaymentIntentResponse{
				ClientSecret: pi.ClientSecret,
				PaymentID:    pi.ID,
				Status:       string(pi.Status),
				AmountUSD:    share.AmountUSD,
			}, nil
		}
	}

	// Convert amount to cents for Stripe
	amountInCents := int64(share.AmountUSD * 100)

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountInCents),
		Currency: stripe.String(share.Currency),
	}
	params.AddMetadata("business_id", businessID.String())
	params.AddMetadata("group_id", groupID.String())
	params.AddMetadata("commitment_payment_id", share.ID.String())

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	if err := s.db.Model(&share).Update("stripe_payment_intent_id", pi.ID).Error; err != nil {
		return nil, fmt.Errorf("failed to store payment intent reference: %w", err)
	}

	return &PaymentIntentResponse{
		ClientSecret: pi.ClientSecret,
		PaymentID:    pi.ID,
		Status:       string(pi.Status),
		AmountUSD:    share.AmountUSD,
	}, nil
}

// ConfirmSharePayment syncs a share row with the Stripe intent status.
func (s *PaymentService) ConfirmSharePayment(req *ConfirmSharePaymentRequest) error {
	pi, err := paymentintent.Get(req.PaymentIntentID, nil)
	if err != nil {
		return fmt.Errorf("failed to get payment intent: %w", err)
	}

	var share models.CommitmentPayment
	if err := s.db.Where("stripe_payment_intent_id = ?", req.PaymentIntentID).
		First(&share).Error; err != nil {
		return fmt.Errorf("payment share not found: %w", err)
	}

	switch pi.Status {
	case stripe.PaymentIntentStatusSucceeded:
		now := time.Now()
		share.Status = models.PaymentStatusSucceeded
		share.ProcessedAt = &now

	case stripe.PaymentIntentStatusRequiresAction, stripe.PaymentIntentStatusRequiresConfirmation,
		stripe.PaymentIntentStatusRequiresPaymentMethod, stripe.PaymentIntentStatusProcessing:
		share.Status = models.PaymentStatusPending

	default:
		share.Status = models.PaymentStatusFailed
	}

	if err := s.db.Save(&share).Error; err != nil {
		return fmt.Errorf("failed to update payment share: %w", err)
	}

	return nil
}

// ListGroupShares returns every share for a group, for the supplier's
// payment overview.
func (s *PaymentService) ListGroupShares(groupID uuid.UUID) ([]models.CommitmentPayment, error) {
	var shares []models.CommitmentPayment
	if err := s.db.Where("group_id = ?", groupID).
		Order("created_at ASC").
		Find(&shares).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch payment shares: %w", err)
	}
	return shares, nil
}
