package entity

import (
	"context"

	"pharmabill/internal/core/apperror"
)

// PaymentMode is how an invoice was settled.
type PaymentMode string

const (
	PaymentCash   PaymentMode = "cash"
	PaymentCard   PaymentMode = "card"
	PaymentUPI    PaymentMode = "upi"
	PaymentCredit PaymentMode = "credit"
)

// PaymentAware is a trait for documents that carry a settlement mode.
// Used for composition in SalesInvoice and PurchaseInvoice.
type PaymentAware struct {
	PaymentMode PaymentMode `db:"payment_mode" json:"paymentMode"`
}

// ValidatePayment ensures the mode is one of the known settlement modes.
// An empty mode defaults to cash rather than failing: data entry first.
func (p *PaymentAware) ValidatePayment(ctx context.Context) error {
	switch p.PaymentMode {
	case "":
		p.PaymentMode = PaymentCash
		return nil
	case PaymentCash, PaymentCard, PaymentUPI, PaymentCredit:
		return nil
	default:
		return apperror.NewValidation("unknown payment mode").
			WithDetail("field", "paymentMode").
			WithDetail("value", string(p.PaymentMode))
	}
}
