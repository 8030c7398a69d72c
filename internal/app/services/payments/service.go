// Package payments computes billing totals and settles charges against
// bookings through a pluggable payment gateway.
package payments

import (
	"context"
	"fmt"
	"strings"

	"github.com/nekoneko-space/travel-platform/internal/app/domain/payment"
	"github.com/nekoneko-space/travel-platform/internal/app/metrics"
	"github.com/nekoneko-space/travel-platform/internal/app/services/bookings"
	"github.com/nekoneko-space/travel-platform/internal/app/storage"
	"github.com/nekoneko-space/travel-platform/pkg/logger"
)

const (
	// Full upfront payment earns a 5% discount.
	fullPaymentDiscount = 0.05
	// Consumption tax applied to the discounted subtotal.
	taxRate = 0.10
)

// Gateway settles charges with an external payment processor.
type Gateway interface {
	Charge(ctx context.Context, amount int64, method string) (transactionID string, err error)
	Refund(ctx context.Context, transactionID string, amount int64) error
}

// GatewayFunc adapts charge/refund functions to the Gateway interface.
type GatewayFunc struct {
	ChargeFunc func(ctx context.Context, amount int64, method string) (string, error)
	RefundFunc func(ctx context.Context, transactionID string, amount int64) error
}

func (g GatewayFunc) Charge(ctx context.Context, amount int64, method string) (string, error) {
	return g.ChargeFunc(ctx, amount, method)
}

func (g GatewayFunc) Refund(ctx context.Context, transactionID string, amount int64) error {
	if g.RefundFunc == nil {
		return nil
	}
	return g.RefundFunc(ctx, transactionID, amount)
}

// Service manages payments.
type Service struct {
	store    storage.PaymentStore
	bookings *bookings.Service
	gateway  Gateway
	log      *logger.Logger
}

// New constructs a payment service.
func New(store storage.PaymentStore, bookingSvc *bookings.Service, gateway Gateway, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("payments")
	}
	return &Service{
		store:    store,
		bookings: bookingSvc,
		gateway:  gateway,
		log:      log,
	}
}

// CalculateTotals breaks a quoted subtotal into discount, tax and total for
// the chosen payment plan.
func CalculateTotals(subtotal int64, plan payment.Plan) (payment.Totals, error) {
	if subtotal < 0 {
		return payment.Totals{}, fmt.Errorf("subtotal must not be negative")
	}

	var discount int64
	switch plan {
	case payment.PlanFull:
		discount = int64(float64(subtotal) * fullPaymentDiscount)
	case payment.PlanSplit, payment.PlanDeposit:
		discount = 0
	default:
		return payment.Totals{}, fmt.Errorf("unknown payment plan %q", plan)
	}

	discounted := subtotal - discount
	tax := int64(float64(discounted) * taxRate)

	return payment.Totals{
		Subtotal: subtotal,
		Discount: discount,
		Tax:      tax,
		Total:    discounted + tax,
	}, nil
}

// Charge settles a booking through the gateway. A successful charge confirms
// the booking; a declined charge is recorded with status failed.
func (s *Service) Charge(ctx context.Context, bookingID, method string, plan payment.Plan) (payment.Payment, payment.Totals, error) {
	method = strings.TrimSpace(method)
	if method == "" {
		method = "credit_card"
	}

	b, err := s.bookings.Get(ctx, bookingID)
	if err != nil {
		return payment.Payment{}, payment.Totals{}, err
	}

	totals, err := CalculateTotals(b.TotalPrice, plan)
	if err != nil {
		return payment.Payment{}, payment.Totals{}, err
	}

	p := payment.Payment{
		BookingID:     b.ID,
		Amount:        totals.Total,
		PaymentMethod: method,
	}

	txID, chargeErr := s.gateway.Charge(ctx, totals.Total, method)
	if chargeErr != nil {
		p.Status = payment.StatusFailed
		if _, err := s.store.CreatePayment(ctx, p); err != nil {
			s.log.WithError(err).Error("failed to record declined payment")
		}
		metrics.RecordPaymentCharge(string(payment.StatusFailed))
		return payment.Payment{}, totals, fmt.Errorf("charge declined: %w", chargeErr)
	}

	p.Status = payment.StatusSucceeded
	p.TransactionID = txID
	p, err = s.store.CreatePayment(ctx, p)
	if err != nil {
		return payment.Payment{}, totals, err
	}

	if _, err := s.bookings.Confirm(ctx, b.ID); err != nil {
		s.log.WithError(err).WithField("booking_id", b.ID).Error("payment succeeded but booking confirmation failed")
	}

	metrics.RecordPaymentCharge(string(payment.StatusSucceeded))
	s.log.WithField("payment_id", p.ID).
		WithField("booking_id", b.ID).
		WithField("amount", p.Amount).
		Info("payment captured")
	return p, totals, nil
}

// Refund reverses a succeeded payment and cancels its booking.
func (s *Service) Refund(ctx context.Context, paymentID string) (payment.Payment, error) {
	p, err := s.store.GetPayment(ctx, paymentID)
	if err != nil {
		return payment.Payment{}, err
	}
	if p.Status != payment.StatusSucceeded {
		return payment.Payment{}, fmt.Errorf("payment %s is not refundable (status %s)", paymentID, p.Status)
	}

	if err := s.gateway.Refund(ctx, p.TransactionID, p.Amount); err != nil {
		return payment.Payment{}, fmt.Errorf("refund failed: %w", err)
	}

	p.Status = payment.StatusRefunded
	p, err = s.store.UpdatePayment(ctx, p)
	if err != nil {
		return payment.Payment{}, err
	}

	if _, err := s.bookings.Cancel(ctx, p.BookingID); err != nil {
		s.log.WithError(err).WithField("booking_id", p.BookingID).Error("refund succeeded but booking cancellation failed")
	}

	metrics.RecordPaymentCharge(string(payment.StatusRefunded))
	s.log.WithField("payment_id", p.ID).Info("payment refunded")
	return p, nil
}

// Get retrieves a payment by id.
func (s *Service) Get(ctx context.Context, id string) (payment.Payment, error) {
	return s.store.GetPayment(ctx, id)
}

// List returns payments for a booking.
func (s *Service) List(ctx context.Context, bookingID string) ([]payment.Payment, error) {
	return s.store.ListPayments(ctx, bookingID)
}
