package payment

import "time"

// Status tracks the payment lifecycle.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusRefunded  Status = "refunded"
)

// Plan selects the payment schedule offered to a traveller.
type Plan string

const (
	PlanFull    Plan = "full"
	PlanSplit   Plan = "split"
	PlanDeposit Plan = "deposit"
)

// Payment is a persisted charge or refund against a booking.
type Payment struct {
	ID            string
	BookingID     string
	Amount        int64
	PaymentMethod string
	Status        Status
	TransactionID string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Totals breaks a quoted amount down into its billing components.
type Totals struct {
	Subtotal int64
	Discount int64
	Tax      int64
	Total    int64
}
